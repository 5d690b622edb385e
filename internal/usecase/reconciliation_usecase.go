package usecase

import (
	"context"
	"time"

	"github.com/cultivategames/creditledger/internal/domain"
	"github.com/cultivategames/creditledger/internal/infrastructure/metrics"
)

// ReconciliationUseCase verifies the audit-sum invariant: every account's
// balance equals the sum of its transaction deltas.
type ReconciliationUseCase struct {
	ledgerRepo LedgerRepository
	metrics    *metrics.Metrics
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(ledgerRepo LedgerRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		ledgerRepo: ledgerRepo,
		metrics:    metrics.NewNop(),
	}
}

// WithMetrics installs the metrics recorded by consistency checks.
func (uc *ReconciliationUseCase) WithMetrics(m *metrics.Metrics) *ReconciliationUseCase {
	uc.metrics = m
	return uc
}

// ConsistencyReport is the result of a ledger-wide consistency check.
type ConsistencyReport struct {
	CheckedAt  time.Time
	Violations []domain.ConsistencyViolation
	Consistent bool
}

// CheckConsistency runs the ledger-wide audit-sum check.
func (uc *ReconciliationUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	violations, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return nil, err
	}

	uc.metrics.ConsistencyChecks.Inc()
	uc.metrics.ConsistencyViolations.Set(float64(len(violations)))

	return &ConsistencyReport{
		CheckedAt:  time.Now().UTC(),
		Violations: violations,
		Consistent: len(violations) == 0,
	}, nil
}
