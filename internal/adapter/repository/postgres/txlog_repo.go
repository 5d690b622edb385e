package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cultivategames/creditledger/internal/domain"
	"github.com/cultivategames/creditledger/internal/usecase"
)

// TransactionLogRepository implements usecase.TransactionLogRepository over
// the append-only transactions table.
type TransactionLogRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionLogRepository creates a new TransactionLogRepository.
func NewTransactionLogRepository(pool *pgxpool.Pool) *TransactionLogRepository {
	return &TransactionLogRepository{pool: pool}
}

// Create appends a record inside the caller's transaction, so the audit
// entry commits atomically with the balance change it describes.
func (r *TransactionLogRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.TransactionRecord) error {
	pgxTx := tx.(*Tx).PgxTx()

	var skill *string
	if record.Skill != nil {
		s := record.Skill.String()
		skill = &s
	}

	_, err := pgxTx.Exec(ctx,
		`INSERT INTO transactions (id, player_id, delta, previous_balance, current_balance, reason, skill, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.ID, record.PlayerID, record.Delta, record.PreviousBalance,
		record.CurrentBalance, string(record.Reason), skill, record.CreatedAt)

	return classifyError(err)
}

// ListByPlayer lists a player's records, newest first.
func (r *TransactionLogRepository) ListByPlayer(ctx context.Context, playerID uuid.UUID, limit, offset int) ([]*domain.TransactionRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, player_id, delta, previous_balance, current_balance, reason, skill, created_at
		 FROM transactions
		 WHERE player_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		playerID, limit, offset)
	if err != nil {
		return nil, classifyError(err)
	}
	defer rows.Close()

	var records []*domain.TransactionRecord
	for rows.Next() {
		var rec domain.TransactionRecord
		var reason string
		var skill *string

		err := rows.Scan(&rec.ID, &rec.PlayerID, &rec.Delta, &rec.PreviousBalance,
			&rec.CurrentBalance, &reason, &skill, &rec.CreatedAt)
		if err != nil {
			return nil, classifyError(err)
		}

		rec.Reason = domain.TransactionReason(reason)
		if skill != nil {
			s := domain.Skill(*skill)
			rec.Skill = &s
		}

		records = append(records, &rec)
	}

	return records, classifyError(rows.Err())
}
