package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cultivategames/creditledger/internal/adapter/http/dto"
	"github.com/cultivategames/creditledger/internal/domain"
	"github.com/cultivategames/creditledger/internal/usecase"
)

// RedemptionService defines the behavior needed by RedemptionHandler.
type RedemptionService interface {
	Redeem(ctx context.Context, redemption domain.Redemption) (usecase.RedemptionResult, error)
}

// RedemptionHandler handles redemption HTTP requests.
type RedemptionHandler struct {
	redemptionUC RedemptionService
}

// NewRedemptionHandler creates a new RedemptionHandler.
func NewRedemptionHandler(redemptionUC RedemptionService) *RedemptionHandler {
	return &RedemptionHandler{redemptionUC: redemptionUC}
}

// Create converts credits into levels for a redeemable skill.
func (h *RedemptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RedemptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	redemption, err := req.ToDomain()
	if err != nil {
		writeError(w, mapDomainError(err), "invalid redemption", err.Error())
		return
	}

	result, err := h.redemptionUC.Redeem(r.Context(), redemption)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to redeem", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.RedemptionFromResult(req.PlayerID, result))
}

// ListSkills lists the skills credits can be redeemed into.
func (h *RedemptionHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills := domain.RedeemableSkills()
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.String()
	}

	writeJSON(w, http.StatusOK, dto.SkillsResponse{Skills: names})
}
