package dto

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/cultivategames/creditledger/internal/domain"
	"github.com/cultivategames/creditledger/internal/usecase"
)

// Mutation operations accepted by the credits endpoint.
const (
	OpAdd  = "add"
	OpTake = "take"
	OpSet  = "set"
)

// MutateCreditsRequest represents a balance mutation for a single player.
type MutateCreditsRequest struct {
	Op     string `json:"op"`
	Amount int64  `json:"amount"`
}

// Validate checks the operation name and amount shape.
func (r *MutateCreditsRequest) Validate() error {
	switch r.Op {
	case OpAdd, OpTake:
		if r.Amount <= 0 {
			return domain.ErrInvalidAmount
		}
	case OpSet:
		if r.Amount < 0 {
			return domain.ErrNegativeBalance
		}
	default:
		return fmt.Errorf("unknown op %q", r.Op)
	}
	return nil
}

// TransferRequest represents a request to move credits between players.
type TransferRequest struct {
	FromPlayerID string `json:"from_player_id"`
	ToPlayerID   string `json:"to_player_id"`
	Amount       int64  `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput() (usecase.TransferInput, error) {
	fromID, err := uuid.Parse(r.FromPlayerID)
	if err != nil {
		return usecase.TransferInput{}, fmt.Errorf("invalid from_player_id: %w", err)
	}

	toID, err := uuid.Parse(r.ToPlayerID)
	if err != nil {
		return usecase.TransferInput{}, fmt.Errorf("invalid to_player_id: %w", err)
	}

	return usecase.TransferInput{
		FromID: fromID,
		ToID:   toID,
		Amount: r.Amount,
	}, nil
}

// RedemptionRequest represents a request to convert credits into skill levels.
type RedemptionRequest struct {
	PlayerID string `json:"player_id"`
	Skill    string `json:"skill"`
	Amount   int64  `json:"amount"`
}

// ToDomain converts to a domain redemption.
func (r *RedemptionRequest) ToDomain() (domain.Redemption, error) {
	playerID, err := uuid.Parse(r.PlayerID)
	if err != nil {
		return domain.Redemption{}, fmt.Errorf("invalid player_id: %w", err)
	}

	skill, err := domain.ParseSkill(r.Skill)
	if err != nil {
		return domain.Redemption{}, err
	}

	return domain.Redemption{
		PlayerID: playerID,
		Skill:    skill,
		Amount:   r.Amount,
	}, nil
}

// SetUsernameRequest represents a display name update.
type SetUsernameRequest struct {
	Username string `json:"username"`
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// PaginationFromQuery reads limit and offset query parameters. Missing
// or malformed values fall back to the given default limit and a zero
// offset, and negative values are ignored the same way.
func PaginationFromQuery(r *http.Request, defaultLimit int) PaginationRequest {
	p := PaginationRequest{Limit: defaultLimit}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p.Limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p.Offset = v
		}
	}

	return p
}
