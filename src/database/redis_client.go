package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// InitRedis connects to uri (host:port or a redis:// URL). An empty uri means
// Redis is not configured and returns a nil client.
func InitRedis(ctx context.Context, uri string) (*redis.Client, error) {
	if uri == "" {
		log.Println("⚠️ REDIS_URI not set. Login limiter and mail queue are disabled.")
		return nil, nil
	}

	client := redis.NewClient(redisOptions(uri))
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("❌ Failed to connect Redis: %w", err)
	}
	log.Println("✅ Redis connected successfully")
	return client, nil
}

func redisOptions(uri string) *redis.Options {
	if strings.HasPrefix(uri, "redis://") || strings.HasPrefix(uri, "rediss://") {
		if opt, err := redis.ParseURL(uri); err == nil {
			return opt
		}
	}
	return &redis.Options{
		Addr:     uri, // เช่น localhost:6379
		Password: "",
		DB:       0,
	}
}

// AsynqRedisOpt converts the same uri into asynq's connection option.
func AsynqRedisOpt(uri string) asynq.RedisConnOpt {
	opt := redisOptions(uri)
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}
}
