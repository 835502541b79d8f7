package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "Backend-PMS/docs"
	"Backend-PMS/src/config"
	"Backend-PMS/src/controllers"
	"Backend-PMS/src/database"
	"Backend-PMS/src/jobs"
	"Backend-PMS/src/logger"
	"Backend-PMS/src/metrics"
	"Backend-PMS/src/middleware"
	"Backend-PMS/src/routes"
	"Backend-PMS/src/services/accounts"
	"Backend-PMS/src/services/activity"
	"Backend-PMS/src/services/auth"
	"Backend-PMS/src/services/mail"
	"Backend-PMS/src/services/resumes"
	"Backend-PMS/src/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pms",
		Short:        "Placement management backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "worker",
			Short: "Run the background mail worker",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := loadConfig()
				if err != nil {
					return err
				}
				return jobs.RunWorker(cmd.Context(), cfg, log)
			},
		},
	)
	return root
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.SetDefault()
	return cfg, log, nil
}

// stores picks the account and event stores for STORE_DRIVER.
func stores(ctx context.Context, cfg *config.Config, log *logger.Logger) (accounts.Store, activity.EventStore, func(), error) {
	if cfg.Store.Driver == "memory" {
		log.Warn("⚠️ STORE_DRIVER=memory, data is lost on restart")
		return accounts.NewMemoryStore(), activity.NewMemoryEventStore(), func() {}, nil
	}

	mdb, err := database.ConnectMongoDB(ctx, cfg.Store.MongoURI, cfg.Store.MongoDB)
	if err != nil {
		return nil, nil, nil, err
	}
	store := accounts.NewMongoStore(mdb.DB)
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Warn("⚠️ Failed to ensure account indexes", "error", err.Error())
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mdb.Disconnect(ctx)
	}
	return store, activity.NewMongoEventStore(mdb.GetCollection(activity.CollectionName)), closeFn, nil
}

// resetMailer prefers the asynq queue, then direct SMTP. nil means development mode.
func resetMailer(cfg *config.Config, queue *asynq.Client, log *logger.Logger) mail.ResetMailer {
	if !cfg.SMTP.Enabled() {
		log.Warn("⚠️ SMTP not configured, reset tokens are returned in API responses",
			"missing", strings.Join(cfg.SMTP.Missing(), ","))
		return nil
	}
	if queue != nil {
		return mail.NewQueueMailer(queue)
	}
	transport, err := mail.NewSMTPTransport(cfg.SMTP)
	if err != nil {
		log.Warn("⚠️ Failed to build SMTP transport", "error", err.Error())
		return nil
	}
	return mail.NewDirectMailer(transport)
}

func runServe(ctx context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, events, closeStore, err := stores(ctx, cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to open account store", "driver", cfg.Store.Driver, "error", err.Error())
	}
	defer closeStore()

	var (
		rdb   *redis.Client
		queue *asynq.Client
	)
	if cfg.Redis.URI != "" {
		rdb, err = database.InitRedis(ctx, cfg.Redis.URI)
		if err != nil {
			log.Warn("⚠️ Redis unavailable, continuing without limiter and mail queue", "error", err.Error())
		} else {
			defer rdb.Close()
			queue = database.InitAsynq(cfg.Redis.URI)
			defer queue.Close()
		}
	}

	m := metrics.New()
	recorder := activity.NewRecorder(events, log, m, cfg.Store.AuditTimeout)
	jwtManager := utils.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpire.Duration())

	authSvc := auth.NewService(cfg.Auth, cfg.AppBaseURL, auth.Deps{
		Store:    store,
		Sessions: jwtManager,
		Recorder: recorder,
		Mailer:   resetMailer(cfg, queue, log),
		Limiter:  utils.NewLoginLimiter(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockout),
		Metrics:  m,
		Logger:   log,
	})
	resumeSvc := resumes.NewService(store, m, log)

	app := newApp(cfg, log, routes.Handlers{
		Accounts: controllers.NewAccountController(authSvc),
		Resumes:  controllers.NewResumeController(resumeSvc),
		Tokens:   jwtManager,
		Metrics:  m,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server is running on port " + cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server stopped: %w", err)
		}
	case <-sigCtx.Done():
		log.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("❌ Server shutdown failed", "error", err.Error())
		}
	}

	recorder.Wait()
	return nil
}

func newApp(cfg *config.Config, log *logger.Logger, h routes.Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: cfg.UploadMaxBytes,
		AppName:   "pms",
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.RequestIDHeader + ", X-Student-Email",
	}))

	routes.InitRoutes(app, h)
	return app
}
