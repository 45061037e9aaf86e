package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/cashstock/internal/adapter/http"
	"github.com/iho/cashstock/internal/adapter/http/handler"
	"github.com/iho/cashstock/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/cashstock/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cashstock/internal/adapter/repository/redis"
	"github.com/iho/cashstock/internal/infrastructure/config"
	"github.com/iho/cashstock/internal/infrastructure/eventpublisher"
	"github.com/iho/cashstock/internal/infrastructure/logger"
	"github.com/iho/cashstock/internal/infrastructure/logging"
	"github.com/iho/cashstock/internal/infrastructure/metrics"
	"github.com/iho/cashstock/internal/infrastructure/postgres"
	"github.com/iho/cashstock/internal/infrastructure/redis"
	"github.com/iho/cashstock/internal/usecase"
)

func main() {
	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Request-scoped and application logging speak zerolog; background
	// workers use slog.
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat))

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("migrations applied")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	kioskRepo := postgresRepo.NewKioskRepository(pool)
	stockRepo := postgresRepo.NewStockRepository(pool)
	movementRepo := postgresRepo.NewMovementRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	// Initialize use cases
	kioskUC := usecase.NewKioskUseCase(txManager, kioskRepo, outboxRepo, idGen, m)
	stockUC := usecase.NewStockUseCase(txManager, kioskRepo, stockRepo, movementRepo, outboxRepo, idGen, cache, m)
	reservationUC := usecase.NewReservationUseCase(txManager, kioskRepo, stockRepo, movementRepo, outboxRepo, idGen, m).
		WithRetrier(retrier)
	reconciliationUC := usecase.NewReconciliationUseCase(txManager, kioskRepo, stockRepo, movementRepo, m)

	// Outbox publisher worker
	var publisher eventpublisher.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher := eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, slog.Default(), m)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing events to kafka")
	} else {
		publisher = eventpublisher.NewLogPublisher(slog.Default())
		log.Info().Msg("kafka disabled, publishing events to log")
	}

	eventPublisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  publisher,
		Logger:     slog.Default(),
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
	})

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	go func() {
		if err := eventPublisher.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Initialize handlers
	kioskHandler := handler.NewKioskHandler(kioskUC)
	stockHandler := handler.NewStockHandler(stockUC, reconciliationUC)
	reservationHandler := handler.NewReservationHandler(reservationUC)
	movementHandler := handler.NewMovementHandler(stockUC)
	currencyHandler := handler.NewCurrencyHandler()
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)

	// Kiosk addresses churn; drop idle per-IP buckets once an hour.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				rateLimiter.CleanupLimiters()
			}
		}
	}()

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		KioskHandler:       kioskHandler,
		StockHandler:       stockHandler,
		ReservationHandler: reservationHandler,
		MovementHandler:    movementHandler,
		CurrencyHandler:    currencyHandler,
		HealthHandler:      healthHandler,
		IdempotencyStore:   idempotencyStore,
		RateLimiter:        rateLimiter,
		Logging:            middleware.NewLoggingMiddleware(log.Logger),
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown: stop accepting requests, then stop the outbox worker.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	stopWorkers()

	log.Info().Msg("server stopped")
}
