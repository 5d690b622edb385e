package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cultivategames/creditledger/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// CheckConsistency finds accounts whose balance disagrees with the sum of
// their audit deltas. An empty result means the ledger reconciles.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) ([]domain.ConsistencyViolation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.player_id, a.balance, COALESCE(t.delta_sum, 0)
		 FROM accounts a
		 LEFT JOIN (
		     SELECT player_id, SUM(delta) AS delta_sum
		     FROM transactions
		     GROUP BY player_id
		 ) t ON t.player_id = a.player_id
		 WHERE a.balance <> COALESCE(t.delta_sum, 0)`)
	if err != nil {
		return nil, classifyError(err)
	}
	defer rows.Close()

	var violations []domain.ConsistencyViolation
	for rows.Next() {
		var v domain.ConsistencyViolation
		if err := rows.Scan(&v.PlayerID, &v.Balance, &v.DeltaSum); err != nil {
			return nil, classifyError(err)
		}
		violations = append(violations, v)
	}

	return violations, classifyError(rows.Err())
}
