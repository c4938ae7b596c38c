package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/creditledger/internal/adapter/http"
	"github.com/iho/creditledger/internal/adapter/http/handler"
	"github.com/iho/creditledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/creditledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/creditledger/internal/adapter/repository/redis"
	"github.com/iho/creditledger/internal/infrastructure/config"
	"github.com/iho/creditledger/internal/infrastructure/eventpublisher"
	"github.com/iho/creditledger/internal/infrastructure/logger"
	"github.com/iho/creditledger/internal/infrastructure/metrics"
	"github.com/iho/creditledger/internal/infrastructure/postgres"
	"github.com/iho/creditledger/internal/infrastructure/redis"
	"github.com/iho/creditledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "creditledger",
	})
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) error {
	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
		LockTimeout:    cfg.DatabaseLockTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	// Connect to Redis; idempotency is disabled without it.
	var redisClient goredis.UniversalClient
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL, cfg.DatabaseTimeout)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close()
		redisClient = client
		appLogger.Info().Msg("connected to redis")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	ledger := newLedgerService(cfg, pool, outboxRepo, appMetrics, appLogger)

	publisher, closePublisher := newPublisher(cfg, appLogger)
	defer closePublisher()

	relay := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  publisher,
		Logger:     appLogger,
		Metrics:    appMetrics,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	routerCfg := httpAdapter.RouterConfig{
		LedgerHandler:  handler.NewLedgerHandler(ledger),
		HoldHandler:    handler.NewHoldHandler(ledger),
		HealthHandler:  handler.NewHealthHandler(pool, redisClient),
		IdempotencyTTL: cfg.IdempotencyTTL,
		Metrics:        appMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Logger:         appLogger,
	}
	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.RateLimitIdleTTL, appMetrics)
		go limiter.Run(ctx)
		routerCfg.RateLimiter = limiter
	}
	if redisClient != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}

	server := newHTTPServer(cfg, httpAdapter.NewRouter(routerCfg))

	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error().Err(err).Msg("outbox relay stopped")
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	<-relayDone

	appLogger.Info().Msg("server stopped")
	return nil
}

func newLedgerService(cfg *config.Config, pool *pgxpool.Pool, outboxRepo usecase.OutboxRepository, m *metrics.Metrics, appLogger zerolog.Logger) *usecase.LedgerService {
	return usecase.NewLedgerService(
		postgresRepo.NewTxManager(pool),
		postgresRepo.NewBalanceRepository(pool),
		postgresRepo.NewHoldRepository(pool),
		outboxRepo,
		postgresRepo.NewULIDGenerator(),
		ledgerOptions(cfg, m, appLogger)...,
	)
}

func ledgerOptions(cfg *config.Config, m *metrics.Metrics, appLogger zerolog.Logger) []usecase.Option {
	return []usecase.Option{
		usecase.WithDefaultCurrency(cfg.DefaultCurrency),
		usecase.WithPayeeCreditOnCapture(cfg.CreditPayeeOnCapture),
		usecase.WithTransactionTimeout(cfg.LedgerTxTimeout),
		usecase.WithMetrics(m),
		usecase.WithLogger(appLogger),
	}
}

// newPublisher picks Kafka when brokers are configured and the log
// publisher otherwise. The returned func releases the publisher.
func newPublisher(cfg *config.Config, appLogger zerolog.Logger) (eventpublisher.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		appLogger.Warn().Msg("KAFKA_BROKERS not set, outbox events are only logged")
		return eventpublisher.NewLogPublisher(appLogger), func() {}
	}

	kafka := eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	return kafka, func() {
		if err := kafka.Close(); err != nil {
			appLogger.Error().Err(err).Msg("failed to close kafka writer")
		}
	}
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           h,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}
}
