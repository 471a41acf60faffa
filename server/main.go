package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"venuebook/api/routes"
	"venuebook/internal/memstore"
	"venuebook/internal/notifications"
	"venuebook/internal/outbox"
	"venuebook/internal/payments"
	"venuebook/internal/shared/clock"
	"venuebook/internal/shared/config"
	"venuebook/internal/shared/database"
	"venuebook/internal/shared/middleware"
	"venuebook/pkg/logger"
	"venuebook/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, repos, err := openStore(cfg)
	if err != nil {
		appLogger.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	container, err := routes.NewContainer(cfg, db, repos, clock.System(), appLogger)
	if err != nil {
		appLogger.Error("failed to wire services", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize Rate Limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db != nil && db.Redis != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, cfg.RateLimit)
		preloadCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rateLimiter.PreloadScript(preloadCtx); err != nil {
			appLogger.Warn("failed to preload rate limit script", slog.Any("error", err))
		}
		cancel()
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	notifier := notifications.NewNotifier(newEmailService(cfg, appLogger), container.Venues, appLogger)
	paymentHandler := payments.NewHandler(newEscrow(cfg, appLogger), appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	// Outbox relay: Kafka when configured, otherwise handlers run in process
	var dispatcher outbox.Dispatcher
	if cfg.UsesKafka() {
		kafkaDispatcher, err := outbox.NewKafkaDispatcher(
			outbox.DefaultKafkaProducerConfig(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic), appLogger)
		if err != nil {
			appLogger.Error("failed to create Kafka producer", slog.Any("error", err))
			os.Exit(1)
		}
		defer kafkaDispatcher.Close()
		dispatcher = kafkaDispatcher

		consumers := []struct {
			groupID string
			handler interface {
				outbox.Handler
				EventTypes() []outbox.EventType
			}
		}{
			{cfg.Kafka.NotificationGroupID, notifier},
			{cfg.Kafka.PaymentGroupID, paymentHandler},
		}
		for _, c := range consumers {
			consumer, err := outbox.NewEventConsumer(
				outbox.DefaultConsumerConfig(cfg.Kafka.Brokers, c.groupID, cfg.Kafka.EventsTopic),
				c.handler, appLogger, c.handler.EventTypes()...)
			if err != nil {
				appLogger.Error("failed to create Kafka consumer", slog.String("group", c.groupID), slog.Any("error", err))
				os.Exit(1)
			}
			g.Go(func() error {
				return consumer.Run(ctx, cfg.Kafka.ConsumerWorkers)
			})
		}
	} else {
		bus := outbox.NewLocalBus(appLogger)
		bus.Subscribe(notifier, notifier.EventTypes()...)
		bus.Subscribe(paymentHandler, paymentHandler.EventTypes()...)
		dispatcher = bus
	}

	relay := outbox.NewRelay(repos.Outbox, repos.Tx, dispatcher, outbox.RelayConfig{
		PollInterval: cfg.Engine.OutboxPollInterval,
		BatchSize:    cfg.Engine.OutboxBatchSize,
	}, appLogger)
	g.Go(func() error {
		return relay.Run(ctx)
	})

	container.Sweeper.Start(ctx)

	router := setupRouter(container, db, rateLimiter)
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	g.Go(func() error {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_status", fmt.Sprintf("http://localhost:%s/status", cfg.Port)),
			slog.String("version", Version),
			slog.String("store", cfg.StoreDriver),
			slog.String("event_transport", cfg.EventTransport),
			slog.Bool("redis", db != nil && db.Redis != nil),
			slog.Bool("rate_limiting", rateLimiter != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-ctx.Done()
		appLogger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Forced shutdown", slog.Any("error", err))
		}

		container.Sweeper.Stop()
		container.Trigger.Wait()
		relay.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	appLogger.Info("Server exited gracefully")
}

// openStore connects the configured backend. The memory store still uses
// Redis for locks and caching when it is enabled.
func openStore(cfg *config.Config) (*database.DB, routes.Repositories, error) {
	if cfg.UsesMemoryStore() {
		var db *database.DB
		if cfg.Redis.Enabled {
			rdb, err := database.ConnectRedis(cfg)
			if err != nil {
				return nil, routes.Repositories{}, err
			}
			db = &database.DB{Redis: rdb}
		}
		return db, routes.MemoryRepositories(memstore.New()), nil
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, routes.Repositories{}, err
	}
	return db, routes.PostgresRepositories(db), nil
}

func newEmailService(cfg *config.Config, log *logger.Logger) notifications.EmailService {
	if cfg.Email.SMTPHost == "" {
		log.Info("SMTP not configured, notifications are logged only")
		return notifications.NewLogEmailService(log)
	}
	svc, err := notifications.NewSMTPEmailService(notifications.NewSMTPConfig(cfg.Email), log)
	if err != nil {
		log.Warn("failed to initialize SMTP, notifications are logged only", slog.Any("error", err))
		return notifications.NewLogEmailService(log)
	}
	return svc
}

func newEscrow(cfg *config.Config, log *logger.Logger) payments.Escrow {
	if cfg.Stripe.SecretKey == "" {
		return payments.NewLoggingEscrow(log)
	}
	escrow, err := payments.NewStripeEscrow(cfg.Stripe)
	if err != nil {
		log.Warn("failed to initialize Stripe escrow, falling back to logging", slog.Any("error", err))
		return payments.NewLoggingEscrow(log)
	}
	return escrow
}

func setupRouter(container *routes.Container, db *database.DB, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := container.Logger

	// Built-in middleware: logs requests + recovers from panics
	engine.Use(middleware.RequestLogger(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-RateLimit-*"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	routes.NewRouter(container, db).SetupRoutes(engine)
	return engine
}
