package integration

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/cultivategames/creditledger/internal/adapter/http"
	"github.com/cultivategames/creditledger/internal/adapter/http/handler"
	postgresRepo "github.com/cultivategames/creditledger/internal/adapter/repository/postgres"
	redisRepo "github.com/cultivategames/creditledger/internal/adapter/repository/redis"
	"github.com/cultivategames/creditledger/internal/domain"
	"github.com/cultivategames/creditledger/internal/infrastructure/dispatch"
	"github.com/cultivategames/creditledger/internal/usecase"
	"github.com/cultivategames/creditledger/tests/testutil"
)

// grantFunc adapts a function to usecase.ProgressionHook.
type grantFunc func(ctx context.Context, playerID uuid.UUID, skill domain.Skill, levels int64) error

func (f grantFunc) GrantProgress(ctx context.Context, playerID uuid.UUID, skill domain.Skill, levels int64) error {
	return f(ctx, playerID, skill, levels)
}

// stack wires the full service against a live database and an in-process
// Redis, with the HTTP surface mounted on an httptest server.
type stack struct {
	DB           *testutil.TestDB
	Ledger       *usecase.LedgerUseCase
	Redemptions  *usecase.RedemptionUseCase
	Reconciler   *usecase.ReconciliationUseCase
	Server       *httptest.Server
	CacheBackend *miniredis.Miniredis
}

func newStack(t *testing.T, hook usecase.ProgressionHook) *stack {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.TruncateAll(context.Background())

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	pool := testDB.Pool
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	txLogRepo := postgresRepo.NewTransactionLogRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	cache := redisRepo.NewBalanceCache(redisClient, time.Minute)

	executor := dispatch.New(dispatch.Config{Shards: 4, QueueSize: 64})
	t.Cleanup(executor.Close)

	if hook == nil {
		hook = grantFunc(func(ctx context.Context, playerID uuid.UUID, skill domain.Skill, levels int64) error {
			return nil
		})
	}

	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, txLogRepo, cache, executor, retrier, idGen)
	policy := domain.RedemptionPolicy{CreditsPerLevel: decimal.NewFromInt(1), MaxLevels: 100}
	redemptionUC := usecase.NewRedemptionUseCase(ledgerUC, ledgerUC, hook, policy, zerolog.Nop())
	reconciliationUC := usecase.NewReconciliationUseCase(ledgerRepo)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PlayerHandler:     handler.NewPlayerHandler(ledgerUC),
		TransferHandler:   handler.NewTransferHandler(ledgerUC),
		RedemptionHandler: handler.NewRedemptionHandler(redemptionUC),
		LedgerHandler:     handler.NewLedgerHandler(reconciliationUC),
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),
		Logger:            zerolog.Nop(),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &stack{
		DB:           testDB,
		Ledger:       ledgerUC,
		Redemptions:  redemptionUC,
		Reconciler:   reconciliationUC,
		Server:       server,
		CacheBackend: mr,
	}
}
