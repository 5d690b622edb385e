package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RedemptionPolicy holds the configured conversion between credits and
// progression levels.
type RedemptionPolicy struct {
	// CreditsPerLevel is the cost of one level. It may be fractional,
	// e.g. 1.5 credits per level.
	CreditsPerLevel decimal.Decimal
	// MaxLevels caps how many levels a single redemption may grant.
	MaxLevels int64
}

// DefaultRedemptionPolicy converts one credit into one level, capped at
// 100 levels per redemption.
func DefaultRedemptionPolicy() RedemptionPolicy {
	return RedemptionPolicy{
		CreditsPerLevel: decimal.NewFromInt(1),
		MaxLevels:       100,
	}
}

// Levels converts a credit amount into whole levels, rounding down.
func (p RedemptionPolicy) Levels(credits int64) int64 {
	if p.CreditsPerLevel.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	return decimal.NewFromInt(credits).Div(p.CreditsPerLevel).IntPart()
}

// Redemption is a request to exchange credits for skill progression.
type Redemption struct {
	PlayerID uuid.UUID
	Skill    Skill
	Amount   int64
}

// Validate checks the redemption against the policy. It returns the number
// of whole levels the redemption would grant.
func (r Redemption) Validate(policy RedemptionPolicy) (int64, error) {
	if !r.Skill.Redeemable() {
		return 0, fmt.Errorf("%w: skill %q cannot be redeemed into", ErrInvalidRedemption, r.Skill)
	}
	if r.Amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", ErrInvalidRedemption)
	}

	levels := policy.Levels(r.Amount)
	if levels < 1 {
		return 0, fmt.Errorf("%w: %d credits converts to less than one level", ErrInvalidRedemption, r.Amount)
	}
	if policy.MaxLevels > 0 && levels > policy.MaxLevels {
		return 0, fmt.Errorf("%w: %d levels exceeds the cap of %d", ErrInvalidRedemption, levels, policy.MaxLevels)
	}

	return levels, nil
}
