package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/cultivategames/creditledger/internal/adapter/http/dto"
	"github.com/cultivategames/creditledger/internal/domain"
	"github.com/cultivategames/creditledger/internal/usecase"
)

func TestRedemptionOverHTTP(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	var granted []int64
	hook := grantFunc(func(ctx context.Context, playerID uuid.UUID, skill domain.Skill, levels int64) error {
		granted = append(granted, levels)
		return nil
	})

	s := newStack(t, hook)
	ctx := context.Background()

	player := uuid.New()
	if _, err := s.Ledger.AddCredits(ctx, usecase.AddCreditsInput{PlayerID: player, Amount: 100}); err != nil {
		t.Fatalf("failed to seed player: %v", err)
	}

	body, _ := json.Marshal(dto.RedemptionRequest{
		PlayerID: player.String(),
		Skill:    "mining",
		Amount:   60,
	})
	res, err := http.Post(s.Server.URL+"/api/v1/redemptions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("redemption request failed: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		t.Fatalf("redemption returned %d", res.StatusCode)
	}

	var resp dto.RedemptionResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode redemption: %v", err)
	}
	if resp.Levels != 60 || resp.NewBalance != 40 {
		t.Fatalf("unexpected redemption response: %+v", resp)
	}

	if len(granted) != 1 || granted[0] != 60 {
		t.Fatalf("expected one grant of 60 levels, got %v", granted)
	}

	account, err := s.Ledger.GetAccount(ctx, player)
	if err != nil {
		t.Fatalf("failed to load account: %v", err)
	}
	if account.Redeemed != 60 {
		t.Fatalf("expected redeemed counter 60, got %d", account.Redeemed)
	}
}

func TestRedemptionRefundsWhenGrantFails(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	hook := grantFunc(func(ctx context.Context, playerID uuid.UUID, skill domain.Skill, levels int64) error {
		return errors.New("progression system offline")
	})

	s := newStack(t, hook)
	ctx := context.Background()

	player := uuid.New()
	if _, err := s.Ledger.AddCredits(ctx, usecase.AddCreditsInput{PlayerID: player, Amount: 100}); err != nil {
		t.Fatalf("failed to seed player: %v", err)
	}

	_, err := s.Redemptions.Redeem(ctx, domain.Redemption{
		PlayerID: player,
		Skill:    domain.SkillMining,
		Amount:   60,
	})
	if !errors.Is(err, domain.ErrRedemptionFailed) {
		t.Fatalf("expected ErrRedemptionFailed, got %v", err)
	}

	balance, err := s.Ledger.GetBalance(ctx, player)
	if err != nil {
		t.Fatalf("failed to read balance: %v", err)
	}
	if balance != 100 {
		t.Fatalf("expected refund to restore balance 100, got %d", balance)
	}

	// Debit and refund both appear in the audit trail.
	report, err := s.Reconciler.CheckConsistency(ctx)
	if err != nil {
		t.Fatalf("consistency check failed: %v", err)
	}
	if !report.Consistent {
		t.Fatalf("expected consistent ledger after refund, got %+v", report.Violations)
	}
}
