package jobs

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"Backend-PMS/src/config"
	"Backend-PMS/src/database"
	"Backend-PMS/src/logger"
	"Backend-PMS/src/services/mail"

	"github.com/hibiken/asynq"
)

// NewServeMux wires every background task handler.
func NewServeMux(cfg *config.Config) (*asynq.ServeMux, error) {
	mux := asynq.NewServeMux()
	if err := mail.RegisterHandlers(mux, cfg.SMTP); err != nil {
		return nil, fmt.Errorf("register mail handlers: %w", err)
	}
	return mux, nil
}

// RunWorker processes queued tasks until ctx is cancelled or SIGINT/SIGTERM arrives.
func RunWorker(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if cfg.Redis.URI == "" {
		return fmt.Errorf("❌ REDIS_URI is required to run the worker")
	}

	mux, err := NewServeMux(cfg)
	if err != nil {
		return err
	}

	srv := asynq.NewServer(database.AsynqRedisOpt(cfg.Redis.URI), asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			mail.QueueName: 5,
			"default":      1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error("Worker: task failed", "type", task.Type(), "error", err.Error())
		}),
	})

	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("❌ Failed to start worker: %w", err)
	}
	log.Info("✅ Worker started", "queues", []string{mail.QueueName, "default"})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("Worker: shutting down")
	srv.Shutdown()
	return nil
}
