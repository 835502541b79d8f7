package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Backend-PMS/src/models"

	"github.com/redis/go-redis/v9"
)

// attemptStore is the subset of Redis the limiter needs; *redis.Client is adapted below.
type attemptStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	Del(ctx context.Context, key string) error
}

type redisAttemptStore struct{ c *redis.Client }

func (r redisAttemptStore) Incr(ctx context.Context, key string) (int64, error) {
	return r.c.Incr(ctx, key).Result()
}

func (r redisAttemptStore) Get(ctx context.Context, key string) (int64, error) {
	n, err := r.c.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (r redisAttemptStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return r.c.Expire(ctx, key, ttl).Err()
}

func (r redisAttemptStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	return r.c.TTL(ctx, key).Result()
}

func (r redisAttemptStore) Del(ctx context.Context, key string) error {
	return r.c.Del(ctx, key).Err()
}

// LoginLimiter counts failed logins per email in Redis and blocks after maxAttempts
// failures inside window. A limiter without Redis allows everything.
type LoginLimiter struct {
	store       attemptStore
	maxAttempts int
	window      time.Duration
}

// NewLoginLimiter returns a limiter backed by client. client may be nil (development mode).
func NewLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	if client == nil {
		return &LoginLimiter{}
	}
	return newLoginLimiter(redisAttemptStore{c: client}, maxAttempts, window)
}

func newLoginLimiter(store attemptStore, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{store: store, maxAttempts: maxAttempts, window: window}
}

// Enabled reports whether attempts are being counted.
func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.store != nil && l.maxAttempts > 0
}

func attemptKey(email string) string {
	return fmt.Sprintf("login_attempts:%s", models.NormalizeEmail(email))
}

// Check reports whether email is currently locked out and for how long.
func (l *LoginLimiter) Check(ctx context.Context, email string) (bool, time.Duration, error) {
	if !l.Enabled() {
		return false, 0, nil
	}

	key := attemptKey(email)
	count, err := l.store.Get(ctx, key)
	if err != nil {
		return false, 0, fmt.Errorf("failed to read login attempts: %w", err)
	}
	if count < int64(l.maxAttempts) {
		return false, 0, nil
	}

	remaining, err := l.store.TTL(ctx, key)
	if err != nil {
		return true, l.window, fmt.Errorf("failed to read lockout ttl: %w", err)
	}
	if remaining < 0 {
		remaining = l.window
	}
	return true, remaining, nil
}

// Fail records one failed attempt. The window starts at the first failure.
func (l *LoginLimiter) Fail(ctx context.Context, email string) error {
	if !l.Enabled() {
		return nil
	}

	key := attemptKey(email)
	count, err := l.store.Incr(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	if count == 1 {
		if err := l.store.Expire(ctx, key, l.window); err != nil {
			return fmt.Errorf("failed to set attempt window: %w", err)
		}
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if !l.Enabled() {
		return nil
	}
	if err := l.store.Del(ctx, attemptKey(email)); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}
