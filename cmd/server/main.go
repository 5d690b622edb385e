package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/cultivategames/creditledger/internal/adapter/http"
	"github.com/cultivategames/creditledger/internal/adapter/http/handler"
	"github.com/cultivategames/creditledger/internal/adapter/http/middleware"
	"github.com/cultivategames/creditledger/internal/adapter/progression"
	postgresRepo "github.com/cultivategames/creditledger/internal/adapter/repository/postgres"
	redisRepo "github.com/cultivategames/creditledger/internal/adapter/repository/redis"
	"github.com/cultivategames/creditledger/internal/domain"
	"github.com/cultivategames/creditledger/internal/infrastructure/auth"
	"github.com/cultivategames/creditledger/internal/infrastructure/config"
	"github.com/cultivategames/creditledger/internal/infrastructure/dispatch"
	"github.com/cultivategames/creditledger/internal/infrastructure/logger"
	"github.com/cultivategames/creditledger/internal/infrastructure/metrics"
	"github.com/cultivategames/creditledger/internal/infrastructure/postgres"
	"github.com/cultivategames/creditledger/internal/infrastructure/redis"
	"github.com/cultivategames/creditledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, "creditledger")

	policy, err := redemptionPolicyFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid redemption policy")
	}

	ctx := context.Background()

	// Migrations run before the pool opens so the schema is ready.
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
		PingTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New(prometheus.DefaultRegisterer)

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			m.DBConnections.Set(float64(pool.Stat().TotalConns()))
		}
	}()

	// Repositories and infrastructure
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	txLogRepo := postgresRepo.NewTransactionLogRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier().WithMaxRetries(cfg.RetryMaxAttempts)

	balanceCache := redisRepo.NewBalanceCache(redisClient, cfg.CacheTTL)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	executor := dispatch.New(dispatch.Config{
		Shards:    cfg.DispatchShards,
		QueueSize: cfg.DispatchQueue,
	})
	defer executor.Close()

	var hook usecase.ProgressionHook
	if cfg.ProgressionURL != "" {
		hook = progression.NewClient(cfg.ProgressionURL, cfg.ProgressionTimeout)
	} else {
		hook = progression.NewLogHook(log)
	}

	// Use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, txLogRepo, balanceCache, executor, retrier, idGen).
		WithMetrics(m).
		WithLogger(log)
	redemptionUC := usecase.NewRedemptionUseCase(ledgerUC, ledgerUC, hook, policy, log).WithMetrics(m)
	reconciliationUC := usecase.NewReconciliationUseCase(ledgerRepo).WithMetrics(m)

	// HTTP surface
	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PlayerHandler:     handler.NewPlayerHandler(ledgerUC),
		TransferHandler:   handler.NewTransferHandler(ledgerUC),
		RedemptionHandler: handler.NewRedemptionHandler(redemptionUC),
		LedgerHandler:     handler.NewLedgerHandler(reconciliationUC),
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),
		Logger:            log,
		Metrics:           m,
		RateLimiter:       rateLimiter,
		IdempotencyStore:  idempotencyStore,
		IdempotencyTTL:    cfg.IdempotencyTTL,
		JWTManager:        jwtManager,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// redemptionPolicyFromConfig parses the conversion rate. The rate may be
// fractional, e.g. 1.5 credits per level.
func redemptionPolicyFromConfig(cfg *config.Config) (domain.RedemptionPolicy, error) {
	rate, err := decimal.NewFromString(cfg.RedeemCreditsPerLevel)
	if err != nil {
		return domain.RedemptionPolicy{}, fmt.Errorf("invalid REDEEM_CREDITS_PER_LEVEL %q: %w", cfg.RedeemCreditsPerLevel, err)
	}
	if rate.Sign() <= 0 {
		return domain.RedemptionPolicy{}, fmt.Errorf("REDEEM_CREDITS_PER_LEVEL must be positive, got %s", rate)
	}

	return domain.RedemptionPolicy{
		CreditsPerLevel: rate,
		MaxLevels:       cfg.RedeemMaxLevels,
	}, nil
}
