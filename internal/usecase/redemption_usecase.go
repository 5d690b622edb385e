package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cultivategames/creditledger/internal/domain"
	"github.com/cultivategames/creditledger/internal/infrastructure/metrics"
)

// LedgerService is the slice of LedgerUseCase the redemption engine needs.
type LedgerService interface {
	AddCredits(ctx context.Context, input AddCreditsInput) (int64, error)
	RemoveCredits(ctx context.Context, input RemoveCreditsInput) (int64, error)
}

// RedemptionUseCase exchanges credits for progression levels in the
// external skill system. Cross-system atomicity is approximated with
// compensation: a debit whose grant fails is refunded, never stranded.
type RedemptionUseCase struct {
	ledger   LedgerService
	counters *LedgerUseCase
	hook     ProgressionHook
	policy   domain.RedemptionPolicy
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewRedemptionUseCase creates a new RedemptionUseCase. counters may equal
// ledger; it is separate so tests can mock the ledger surface.
func NewRedemptionUseCase(
	ledger LedgerService,
	counters *LedgerUseCase,
	hook ProgressionHook,
	policy domain.RedemptionPolicy,
	logger zerolog.Logger,
) *RedemptionUseCase {
	return &RedemptionUseCase{
		ledger:   ledger,
		counters: counters,
		hook:     hook,
		policy:   policy,
		metrics:  metrics.NewNop(),
		logger:   logger,
	}
}

// WithMetrics installs the metrics recorded by redemptions.
func (uc *RedemptionUseCase) WithMetrics(m *metrics.Metrics) *RedemptionUseCase {
	uc.metrics = m
	return uc
}

// RedemptionResult holds the outcome of a successful redemption.
type RedemptionResult struct {
	Skill      domain.Skill
	Credits    int64
	Levels     int64
	NewBalance int64
}

// Redeem validates the request, debits the full cost, then grants the
// converted levels through the progression hook. The hook runs at most once
// per debit; a hook failure triggers an exact refund before the error
// surfaces as domain.ErrRedemptionFailed.
func (uc *RedemptionUseCase) Redeem(ctx context.Context, redemption domain.Redemption) (RedemptionResult, error) {
	levels, err := redemption.Validate(uc.policy)
	if err != nil {
		return RedemptionResult{}, err
	}

	skill := redemption.Skill

	newBalance, err := uc.ledger.RemoveCredits(ctx, RemoveCreditsInput{
		PlayerID: redemption.PlayerID,
		Amount:   redemption.Amount,
		Reason:   domain.ReasonRedeem,
		Skill:    &skill,
	})
	if err != nil {
		// Insufficient balance or store failure: nothing was debited,
		// so the hook must not be called.
		return RedemptionResult{}, err
	}

	if err := uc.hook.GrantProgress(ctx, redemption.PlayerID, skill, levels); err != nil {
		return RedemptionResult{}, uc.refund(ctx, redemption, err)
	}

	if uc.counters != nil {
		if err := uc.counters.addRedeemed(ctx, redemption.PlayerID, redemption.Amount); err != nil {
			uc.logger.Warn().Err(err).
				Stringer("player_id", redemption.PlayerID).
				Msg("failed to update redeemed counter")
		}
	}

	uc.metrics.RedemptionsCompleted.Inc()
	uc.metrics.RedemptionLevels.Observe(float64(levels))
	uc.metrics.RedemptionsBySkill.WithLabelValues(skill.String()).Inc()

	return RedemptionResult{
		Skill:      skill,
		Credits:    redemption.Amount,
		Levels:     levels,
		NewBalance: newBalance,
	}, nil
}

func (uc *RedemptionUseCase) refund(ctx context.Context, redemption domain.Redemption, hookErr error) error {
	uc.metrics.RedemptionsRefunded.Inc()

	skill := redemption.Skill

	_, refundErr := uc.ledger.AddCredits(ctx, AddCreditsInput{
		PlayerID: redemption.PlayerID,
		Amount:   redemption.Amount,
		Reason:   domain.ReasonRedeemRefund,
		Skill:    &skill,
	})
	if refundErr != nil {
		uc.logger.Error().
			Stringer("player_id", redemption.PlayerID).
			Int64("amount", redemption.Amount).
			AnErr("hook_error", hookErr).
			AnErr("refund_error", refundErr).
			Msg("redemption debit stranded: refund failed")

		return fmt.Errorf("%w: grant failed (%v) and refund failed (%v)",
			domain.ErrRedemptionFailed, hookErr, refundErr)
	}

	uc.logger.Warn().
		Stringer("player_id", redemption.PlayerID).
		Str("skill", redemption.Skill.String()).
		Int64("amount", redemption.Amount).
		Err(hookErr).
		Msg("progression grant failed, credits refunded")

	return fmt.Errorf("%w: %v", domain.ErrRedemptionFailed, hookErr)
}
