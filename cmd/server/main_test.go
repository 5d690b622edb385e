package main

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cultivategames/creditledger/internal/infrastructure/config"
)

func TestRedemptionPolicyFromConfig(t *testing.T) {
	cfg := &config.Config{RedeemCreditsPerLevel: "1.5", RedeemMaxLevels: 100}

	policy, err := redemptionPolicyFromConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !policy.CreditsPerLevel.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("expected rate 1.5, got %s", policy.CreditsPerLevel)
	}
	if policy.MaxLevels != 100 {
		t.Fatalf("expected max levels 100, got %d", policy.MaxLevels)
	}
}

func TestRedemptionPolicyFromConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		rate string
	}{
		{"not a number", "one"},
		{"zero", "0"},
		{"negative", "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{RedeemCreditsPerLevel: tt.rate, RedeemMaxLevels: 100}
			if _, err := redemptionPolicyFromConfig(cfg); err == nil {
				t.Fatalf("expected error for rate %q", tt.rate)
			}
		})
	}
}
