package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cultivategames/creditledger/internal/adapter/http/dto"
	"github.com/cultivategames/creditledger/internal/usecase"
)

// TransferService defines the behavior needed by TransferHandler.
type TransferService interface {
	Transfer(ctx context.Context, input usecase.TransferInput) (usecase.TransferResult, error)
}

// TransferHandler handles transfer HTTP requests.
type TransferHandler struct {
	ledgerUC TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(ledgerUC TransferService) *TransferHandler {
	return &TransferHandler{ledgerUC: ledgerUC}
}

// Create moves credits between two players.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transfer", err.Error())
		return
	}

	result, err := h.ledgerUC.Transfer(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to transfer", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferResponse{
		FromPlayerID: req.FromPlayerID,
		ToPlayerID:   req.ToPlayerID,
		Amount:       req.Amount,
		FromBalance:  result.FromBalance,
		ToBalance:    result.ToBalance,
	})
}
