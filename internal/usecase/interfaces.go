package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cultivategames/creditledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, playerID uuid.UUID) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	// Ensure lazily creates the account row if it does not exist yet.
	Ensure(ctx context.Context, tx Transaction, playerID uuid.UUID, username string) error
	// ApplyDelta applies a signed delta as a single conditional statement.
	// It returns domain.ErrInsufficientBalance when the resulting balance
	// would be negative, without modifying the row.
	ApplyDelta(ctx context.Context, tx Transaction, playerID uuid.UUID, delta int64) (*domain.Account, error)
	// SetBalance overwrites the balance and returns the updated account
	// together with the balance it replaced.
	SetBalance(ctx context.Context, tx Transaction, playerID uuid.UUID, balance int64) (*domain.Account, int64, error)
	AddRedeemed(ctx context.Context, tx Transaction, playerID uuid.UUID, amount int64) error
	SetUsername(ctx context.Context, playerID uuid.UUID, username string) error
	Top(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransactionLogRepository defines data access for the append-only audit trail.
type TransactionLogRepository interface {
	Create(ctx context.Context, tx Transaction, record *domain.TransactionRecord) error
	ListByPlayer(ctx context.Context, playerID uuid.UUID, limit, offset int) ([]*domain.TransactionRecord, error)
}

// LedgerRepository defines ledger-wide queries.
type LedgerRepository interface {
	// CheckConsistency returns accounts whose balance does not equal the
	// sum of their recorded deltas.
	CheckConsistency(ctx context.Context) ([]domain.ConsistencyViolation, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Executor runs tasks with per-key FIFO ordering. Tasks submitted for the
// same key never run concurrently; tasks for different keys may.
type Executor interface {
	Do(ctx context.Context, key string, task func(ctx context.Context) error) error
}

// BalanceCache is a write-through read accelerator for balances.
type BalanceCache interface {
	Get(ctx context.Context, playerID uuid.UUID) (int64, bool, error)
	Set(ctx context.Context, playerID uuid.UUID, balance int64) error
	// SetIfAbsent stores a balance only when no entry exists, so a stale
	// read-repair cannot overwrite a fresher write-through.
	SetIfAbsent(ctx context.Context, playerID uuid.UUID, balance int64) error
	Invalidate(ctx context.Context, playerID uuid.UUID) error
}

// ProgressionHook grants progress in the external skill system. It must be
// called at most once per successful ledger debit.
type ProgressionHook interface {
	GrantProgress(ctx context.Context, playerID uuid.UUID, skill domain.Skill, levels int64) error
}

// ProcessingMarker is the idempotency value stored while the first request
// with a key is still in flight. A duplicate that observes it is told to
// retry rather than allowed to execute.
const ProcessingMarker = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the client may retry after a failure.
	Release(ctx context.Context, key string) error
}
