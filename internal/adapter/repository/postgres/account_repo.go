package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cultivategames/creditledger/internal/domain"
	"github.com/cultivategames/creditledger/internal/usecase"
)

const accountColumns = "player_id, username, balance, redeemed, version, created_at, updated_at"

type dbQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool dbQuerier
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return newAccountRepositoryWithQuerier(pool)
}

func newAccountRepositoryWithQuerier(db dbQuerier) *AccountRepository {
	return &AccountRepository{pool: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.PlayerID, &a.Username, &a.Balance, &a.Redeemed, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, classifyError(err)
	}
	return &a, nil
}

// GetByID retrieves an account by player ID.
func (r *AccountRepository) GetByID(ctx context.Context, playerID uuid.UUID) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE player_id = $1",
		playerID)

	return scanAccount(row)
}

// GetByUsername retrieves an account by its last-known username.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE lower(username) = lower($1)",
		username)

	return scanAccount(row)
}

// Ensure lazily creates the account row with a zero balance.
func (r *AccountRepository) Ensure(ctx context.Context, tx usecase.Transaction, playerID uuid.UUID, username string) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		`INSERT INTO accounts (player_id, username, balance, redeemed, version, created_at, updated_at)
		 VALUES ($1, $2, 0, 0, 1, now(), now())
		 ON CONFLICT (player_id) DO NOTHING`,
		playerID, username)

	return classifyError(err)
}

// ApplyDelta applies a signed delta in one conditional statement. The
// `balance + delta >= 0` predicate closes the check-then-write race: a
// racing debit that would overdraw simply matches zero rows.
func (r *AccountRepository) ApplyDelta(ctx context.Context, tx usecase.Transaction, playerID uuid.UUID, delta int64) (*domain.Account, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx,
		`UPDATE accounts
		 SET balance = balance + $2, version = version + 1, updated_at = now()
		 WHERE player_id = $1 AND balance + $2 >= 0
		 RETURNING `+accountColumns,
		playerID, delta)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			// The row exists (Ensure ran in this transaction), so zero
			// rows means the predicate rejected the overdraw.
			return nil, domain.ErrInsufficientBalance
		}
		return nil, err
	}

	return account, nil
}

// SetBalance overwrites the balance, returning the updated account and the
// previous balance. The row is locked first so the old value read and the
// write are one atomic step.
func (r *AccountRepository) SetBalance(ctx context.Context, tx usecase.Transaction, playerID uuid.UUID, balance int64) (*domain.Account, int64, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var old int64
	err := pgxTx.QueryRow(ctx,
		"SELECT balance FROM accounts WHERE player_id = $1 FOR UPDATE",
		playerID).Scan(&old)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, domain.ErrAccountNotFound
		}
		return nil, 0, classifyError(err)
	}

	row := pgxTx.QueryRow(ctx,
		`UPDATE accounts
		 SET balance = $2, version = version + 1, updated_at = now()
		 WHERE player_id = $1
		 RETURNING `+accountColumns,
		playerID, balance)

	account, err := scanAccount(row)
	if err != nil {
		return nil, 0, err
	}

	return account, old, nil
}

// AddRedeemed bumps the lifetime redeemed counter.
func (r *AccountRepository) AddRedeemed(ctx context.Context, tx usecase.Transaction, playerID uuid.UUID, amount int64) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		"UPDATE accounts SET redeemed = redeemed + $2, updated_at = now() WHERE player_id = $1",
		playerID, amount)

	return classifyError(err)
}

// SetUsername records the player's current display name, creating the row
// if the player has never held credits.
func (r *AccountRepository) SetUsername(ctx context.Context, playerID uuid.UUID, username string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO accounts (player_id, username, balance, redeemed, version, created_at, updated_at)
		 VALUES ($1, $2, 0, 0, 1, now(), now())
		 ON CONFLICT (player_id) DO UPDATE SET username = EXCLUDED.username, updated_at = now()`,
		playerID, username)

	return classifyError(err)
}

// Top lists accounts by balance, highest first.
func (r *AccountRepository) Top(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+accountColumns+" FROM accounts ORDER BY balance DESC, player_id LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, classifyError(err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, classifyError(rows.Err())
}
