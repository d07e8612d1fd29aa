package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/iho/bankrecon/internal/adapter/http"
	"github.com/iho/bankrecon/internal/adapter/http/handler"
	"github.com/iho/bankrecon/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/bankrecon/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/bankrecon/internal/adapter/repository/redis"
	"github.com/iho/bankrecon/internal/infrastructure/auth"
	"github.com/iho/bankrecon/internal/infrastructure/config"
	"github.com/iho/bankrecon/internal/infrastructure/logger"
	"github.com/iho/bankrecon/internal/infrastructure/metrics"
	"github.com/iho/bankrecon/internal/infrastructure/postgres"
	"github.com/iho/bankrecon/internal/infrastructure/redis"
	"github.com/iho/bankrecon/internal/matcher"
	"github.com/iho/bankrecon/internal/parser"
	"github.com/iho/bankrecon/internal/usecase"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Replace the bootstrap logger with the configured one
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	movementRepo := postgresRepo.NewMovementRepository(pool)
	retrier := postgresRepo.NewRetrier()
	idGen := postgresRepo.NewULIDGenerator()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Initialize use cases
	statementParser := parser.New(idGen)
	ingestUC := usecase.NewIngestUseCase(txManager, movementRepo, statementParser, retrier, cache)
	verificationUC := usecase.NewVerificationUseCase(movementRepo, statementParser)
	reconcileUC := usecase.NewReconcileUseCase(movementRepo, statementParser)
	movementUC := usecase.NewMovementUseCase(movementRepo, cache)

	// Initialize handlers
	m := metrics.New()
	ingestHandler := handler.NewIngestHandler(ingestUC, verificationUC, idGen, m, cfg.MaxUploadBytes)
	reconcileHandler := handler.NewReconcileHandler(reconcileUC, matcherOptions(cfg), m, cfg.MaxUploadBytes)
	movementHandler := handler.NewMovementHandler(movementUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			rateLimiter.CleanupLimiters()
		}
	}()

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		IngestHandler:    ingestHandler,
		ReconcileHandler: reconcileHandler,
		MovementHandler:  movementHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		JWTManager:       jwtManager,
		AuthEnabled:      jwtManager != nil,
		RateLimiter:      rateLimiter,
		Logger:           log.Logger,
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

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// matcherOptions builds matching options from config, falling back to
// the defaults on an unparseable tolerance.
func matcherOptions(cfg *config.Config) matcher.Options {
	opts := matcher.Options{DateToleranceDays: cfg.DateToleranceDays}

	tolerance, err := decimal.NewFromString(cfg.AmountTolerance)
	if err != nil || tolerance.IsNegative() {
		log.Warn().Str("amount_tolerance", cfg.AmountTolerance).Msg("invalid amount tolerance, using default")
		tolerance = matcher.DefaultAmountTolerance
	}
	opts.AmountTolerance = tolerance

	return opts
}
