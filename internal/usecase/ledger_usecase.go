package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/cultivategames/creditledger/internal/domain"
	"github.com/cultivategames/creditledger/internal/infrastructure/metrics"
)

// LedgerUseCase is the public API over player credit balances. Reads are
// cache-first; mutations are serialized per player on the executor and
// write the balance change and its audit record in one database
// transaction, then write through to the cache.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txLogRepo   TransactionLogRepository
	cache       BalanceCache
	exec        Executor
	retrier     Retrier
	idGen       IDGenerator
	metrics     *metrics.Metrics
	log         zerolog.Logger

	loads singleflight.Group
}

// NewLedgerUseCase creates a new LedgerUseCase. Instrumentation defaults
// to discards; wire it with WithMetrics and WithLogger.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txLogRepo TransactionLogRepository,
	cache BalanceCache,
	exec Executor,
	retrier Retrier,
	idGen IDGenerator,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txLogRepo:   txLogRepo,
		cache:       cache,
		exec:        exec,
		retrier:     retrier,
		idGen:       idGen,
		metrics:     metrics.NewNop(),
		log:         zerolog.Nop(),
	}
}

// WithMetrics installs the metrics recorded by credit operations.
func (uc *LedgerUseCase) WithMetrics(m *metrics.Metrics) *LedgerUseCase {
	uc.metrics = m
	return uc
}

// WithLogger installs the logger used for cache degradation warnings.
func (uc *LedgerUseCase) WithLogger(log zerolog.Logger) *LedgerUseCase {
	uc.log = log
	return uc
}

// GetBalance returns the player's balance, serving from cache when possible.
// Unknown players report a zero balance; the account row materializes on
// their first mutation.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, playerID uuid.UUID) (int64, error) {
	balance, ok, err := uc.cache.Get(ctx, playerID)
	if err != nil {
		// Cache trouble degrades to a store read, never fails the call.
		uc.metrics.RedisErrors.WithLabelValues("get").Inc()
		uc.log.Warn().Err(err).Stringer("player_id", playerID).Msg("balance cache read failed")
	}
	if ok {
		uc.metrics.CacheHits.Inc()
		return balance, nil
	}
	uc.metrics.CacheMisses.Inc()

	// Collapse concurrent misses for the same player into one store read.
	v, err, _ := uc.loads.Do(playerID.String(), func() (any, error) {
		account, err := uc.accountRepo.GetByID(ctx, playerID)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return int64(0), nil
			}
			return int64(0), err
		}

		// SetIfAbsent so a concurrent mutation's fresher write-through
		// is never clobbered by this read's snapshot.
		if err := uc.cache.SetIfAbsent(ctx, playerID, account.Balance); err != nil {
			uc.metrics.RedisErrors.WithLabelValues("set").Inc()
			uc.log.Warn().Err(err).Stringer("player_id", playerID).Msg("balance cache repair failed")
		}

		return account.Balance, nil
	})
	if err != nil {
		return 0, err
	}

	return v.(int64), nil
}

// GetAccount loads the full account row, bypassing the cache.
func (uc *LedgerUseCase) GetAccount(ctx context.Context, playerID uuid.UUID) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, playerID)
}

// GetAccountByUsername looks an account up by its last-known username.
func (uc *LedgerUseCase) GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return uc.accountRepo.GetByUsername(ctx, username)
}

// AddCreditsInput represents input for granting credits.
type AddCreditsInput struct {
	PlayerID uuid.UUID
	Amount   int64
	Reason   domain.TransactionReason
	Skill    *domain.Skill
}

// AddCredits grants credits to a player, creating the account on first use.
func (uc *LedgerUseCase) AddCredits(ctx context.Context, input AddCreditsInput) (int64, error) {
	if input.Amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	reason := input.Reason
	if reason == "" {
		reason = domain.ReasonGrant
	}

	return uc.applyDelta(ctx, input.PlayerID, input.Amount, reason, input.Skill)
}

// RemoveCreditsInput represents input for spending credits.
type RemoveCreditsInput struct {
	PlayerID uuid.UUID
	Amount   int64
	Reason   domain.TransactionReason
	Skill    *domain.Skill
}

// RemoveCredits deducts credits from a player. It fails with
// domain.ErrInsufficientBalance when the deduction would go negative.
func (uc *LedgerUseCase) RemoveCredits(ctx context.Context, input RemoveCreditsInput) (int64, error) {
	if input.Amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	reason := input.Reason
	if reason == "" {
		reason = domain.ReasonSpend
	}

	return uc.applyDelta(ctx, input.PlayerID, -input.Amount, reason, input.Skill)
}

// SetCreditsInput represents input for overwriting a balance.
type SetCreditsInput struct {
	PlayerID uuid.UUID
	Balance  int64
}

// SetCredits overwrites the balance. The audit record carries the
// difference between the old and new balance so the running sum still
// reconciles.
func (uc *LedgerUseCase) SetCredits(ctx context.Context, input SetCreditsInput) (int64, error) {
	if input.Balance < 0 {
		return 0, domain.ErrNegativeBalance
	}

	start := time.Now()

	var newBalance, applied int64
	err := uc.exec.Do(ctx, input.PlayerID.String(), func(taskCtx context.Context) error {
		return uc.retrier.Retry(taskCtx, func() error {
			account, err := uc.inTx(taskCtx, func(tx Transaction) (*domain.Account, error) {
				if err := uc.accountRepo.Ensure(taskCtx, tx, input.PlayerID, ""); err != nil {
					return nil, err
				}

				account, old, err := uc.accountRepo.SetBalance(taskCtx, tx, input.PlayerID, input.Balance)
				if err != nil {
					return nil, err
				}

				applied = account.Balance - old
				if account.Balance == old {
					return account, nil
				}

				record := &domain.TransactionRecord{
					ID:              uc.idGen.Generate(),
					PlayerID:        input.PlayerID,
					Delta:           account.Balance - old,
					PreviousBalance: old,
					CurrentBalance:  account.Balance,
					Reason:          domain.ReasonSet,
					CreatedAt:       time.Now().UTC(),
				}

				return account, uc.txLogRepo.Create(taskCtx, tx, record)
			})
			if err != nil {
				return err
			}

			newBalance = account.Balance
			uc.writeThrough(taskCtx, input.PlayerID, account.Balance)

			return nil
		})
	})
	if err != nil {
		uc.metrics.OperationErrors.WithLabelValues(errorLabel(err)).Inc()
		return 0, err
	}

	uc.recordOperation(domain.ReasonSet, applied, start)

	return newBalance, nil
}

// Reset zeroes the balance. The account row remains.
func (uc *LedgerUseCase) Reset(ctx context.Context, playerID uuid.UUID) (int64, error) {
	return uc.SetCredits(ctx, SetCreditsInput{PlayerID: playerID, Balance: 0})
}

// TransferInput represents input for moving credits between players.
type TransferInput struct {
	FromID uuid.UUID
	ToID   uuid.UUID
	Amount int64
}

// TransferResult holds the post-transfer balances.
type TransferResult struct {
	FromBalance int64
	ToBalance   int64
}

// Transfer debits the sender and credits the receiver as two serialized
// single-account transactions. When the credit fails after the debit
// committed, the debit is reversed best-effort and the caller sees
// domain.ErrTransferFailed rather than a silent partial application.
func (uc *LedgerUseCase) Transfer(ctx context.Context, input TransferInput) (TransferResult, error) {
	if input.FromID == input.ToID {
		return TransferResult{}, domain.ErrSameAccount
	}
	if input.Amount <= 0 {
		return TransferResult{}, domain.ErrInvalidAmount
	}

	fromBalance, err := uc.applyDelta(ctx, input.FromID, -input.Amount, domain.ReasonTransferOut, nil)
	if err != nil {
		return TransferResult{}, err
	}

	toBalance, err := uc.applyDelta(ctx, input.ToID, input.Amount, domain.ReasonTransferIn, nil)
	if err != nil {
		uc.metrics.TransfersCompensated.Inc()

		// Reverse the committed debit. A compensation failure strands
		// credits and must surface loudly.
		restored, refundErr := uc.applyDelta(ctx, input.FromID, input.Amount, domain.ReasonTransferIn, nil)
		if refundErr != nil {
			uc.log.Error().
				Stringer("from", input.FromID).
				Stringer("to", input.ToID).
				Int64("amount", input.Amount).
				AnErr("credit_error", err).
				AnErr("refund_error", refundErr).
				Msg("transfer debit stranded: refund failed")

			return TransferResult{}, fmt.Errorf("%w: credit failed (%v) and refund failed (%v)",
				domain.ErrTransferFailed, err, refundErr)
		}

		fromBalance = restored

		return TransferResult{}, fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
	}

	uc.metrics.TransfersCompleted.Inc()

	return TransferResult{FromBalance: fromBalance, ToBalance: toBalance}, nil
}

// ListTransactionsInput represents input for listing audit records.
type ListTransactionsInput struct {
	PlayerID uuid.UUID
	Limit    int
	Offset   int
}

// ListTransactions lists a player's audit trail, newest first.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.TransactionRecord, error) {
	limit, offset := clampPage(input.Limit, input.Offset)
	return uc.txLogRepo.ListByPlayer(ctx, input.PlayerID, limit, offset)
}

// TopInput represents input for the leaderboard.
type TopInput struct {
	Limit  int
	Offset int
}

// Top lists accounts ordered by balance, highest first.
func (uc *LedgerUseCase) Top(ctx context.Context, input TopInput) ([]*domain.Account, error) {
	limit, offset := clampPage(input.Limit, input.Offset)
	return uc.accountRepo.Top(ctx, limit, offset)
}

// SetUsername records the player's current display name.
func (uc *LedgerUseCase) SetUsername(ctx context.Context, playerID uuid.UUID, username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	return uc.accountRepo.SetUsername(ctx, playerID, username)
}

// applyDelta is the single mutation path: serialized per player, retried on
// transient store errors, balance update and audit record committed
// together, cache written through after commit.
func (uc *LedgerUseCase) applyDelta(ctx context.Context, playerID uuid.UUID, delta int64, reason domain.TransactionReason, skill *domain.Skill) (int64, error) {
	start := time.Now()

	var newBalance int64
	err := uc.exec.Do(ctx, playerID.String(), func(taskCtx context.Context) error {
		return uc.retrier.Retry(taskCtx, func() error {
			account, err := uc.inTx(taskCtx, func(tx Transaction) (*domain.Account, error) {
				if err := uc.accountRepo.Ensure(taskCtx, tx, playerID, ""); err != nil {
					return nil, err
				}

				account, err := uc.accountRepo.ApplyDelta(taskCtx, tx, playerID, delta)
				if err != nil {
					return nil, err
				}

				record := &domain.TransactionRecord{
					ID:              uc.idGen.Generate(),
					PlayerID:        playerID,
					Delta:           delta,
					PreviousBalance: account.Balance - delta,
					CurrentBalance:  account.Balance,
					Reason:          reason,
					Skill:           skill,
					CreatedAt:       time.Now().UTC(),
				}

				if err := record.Validate(); err != nil {
					return nil, err
				}

				return account, uc.txLogRepo.Create(taskCtx, tx, record)
			})
			if err != nil {
				return err
			}

			newBalance = account.Balance
			uc.writeThrough(taskCtx, playerID, account.Balance)

			return nil
		})
	})
	if err != nil {
		uc.metrics.OperationErrors.WithLabelValues(errorLabel(err)).Inc()
		return 0, err
	}

	uc.recordOperation(reason, delta, start)

	return newBalance, nil
}

// writeThrough updates the cache after a committed mutation. Failures are
// logged and counted; the committed balance stands regardless.
func (uc *LedgerUseCase) writeThrough(ctx context.Context, playerID uuid.UUID, balance int64) {
	if err := uc.cache.Set(ctx, playerID, balance); err != nil {
		uc.metrics.RedisErrors.WithLabelValues("set").Inc()
		uc.log.Warn().Err(err).Stringer("player_id", playerID).Msg("balance cache write-through failed")
	}
}

func (uc *LedgerUseCase) recordOperation(reason domain.TransactionReason, delta int64, start time.Time) {
	amount := delta
	if amount < 0 {
		amount = -amount
	}

	uc.metrics.CreditOperations.WithLabelValues(string(reason)).Inc()
	uc.metrics.OperationDuration.WithLabelValues(string(reason)).Observe(time.Since(start).Seconds())
	uc.metrics.CreditAmount.WithLabelValues(string(reason)).Observe(float64(amount))
}

func errorLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrNegativeBalance):
		return "invalid_input"
	default:
		return "other"
	}
}

// addRedeemed bumps the lifetime redeemed counter, serialized with the
// player's balance mutations.
func (uc *LedgerUseCase) addRedeemed(ctx context.Context, playerID uuid.UUID, amount int64) error {
	return uc.exec.Do(ctx, playerID.String(), func(taskCtx context.Context) error {
		return uc.retrier.Retry(taskCtx, func() error {
			_, err := uc.inTx(taskCtx, func(tx Transaction) (*domain.Account, error) {
				return nil, uc.accountRepo.AddRedeemed(taskCtx, tx, playerID, amount)
			})
			return err
		})
	})
}

func (uc *LedgerUseCase) inTx(ctx context.Context, fn func(tx Transaction) (*domain.Account, error)) (*domain.Account, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := fn(tx)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
