package database

import (
	"log"

	"github.com/hibiken/asynq"
)

// InitAsynq returns an asynq client for uri, or nil when Redis is not configured.
func InitAsynq(uri string) *asynq.Client {
	if uri == "" {
		log.Println("⚠️ Redis not available. Asynq client will not be initialized.")
		return nil
	}

	client := asynq.NewClient(AsynqRedisOpt(uri))
	log.Println("✅ Asynq Client initialized successfully")
	return client
}
