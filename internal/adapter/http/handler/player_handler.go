package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cultivategames/creditledger/internal/adapter/http/dto"
	"github.com/cultivategames/creditledger/internal/domain"
	"github.com/cultivategames/creditledger/internal/usecase"
)

// PlayerService defines the behavior needed by PlayerHandler.
type PlayerService interface {
	GetBalance(ctx context.Context, playerID uuid.UUID) (int64, error)
	GetAccount(ctx context.Context, playerID uuid.UUID) (*domain.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error)
	AddCredits(ctx context.Context, input usecase.AddCreditsInput) (int64, error)
	RemoveCredits(ctx context.Context, input usecase.RemoveCreditsInput) (int64, error)
	SetCredits(ctx context.Context, input usecase.SetCreditsInput) (int64, error)
	SetUsername(ctx context.Context, playerID uuid.UUID, username string) error
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.TransactionRecord, error)
	Top(ctx context.Context, input usecase.TopInput) ([]*domain.Account, error)
}

// PlayerHandler handles player-scoped HTTP requests.
type PlayerHandler struct {
	ledgerUC PlayerService
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(ledgerUC PlayerService) *PlayerHandler {
	return &PlayerHandler{ledgerUC: ledgerUC}
}

// GetBalance returns a player's current balance. Unknown players read as zero.
func (h *PlayerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	playerID, ok := parsePlayerID(w, r)
	if !ok {
		return
	}

	balance, err := h.ledgerUC.GetBalance(r.Context(), playerID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		PlayerID: playerID.String(),
		Balance:  balance,
	})
}

// GetAccount returns the full account row for a player.
func (h *PlayerHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	playerID, ok := parsePlayerID(w, r)
	if !ok {
		return
	}

	account, err := h.ledgerUC.GetAccount(r.Context(), playerID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// LookupByUsername resolves a display name to its account. Usernames
// are not unique over time, so this returns the most recent holder.
func (h *PlayerHandler) LookupByUsername(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "missing username parameter", "")
		return
	}

	account, err := h.ledgerUC.GetAccountByUsername(r.Context(), username)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to look up player", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// MutateCredits applies an add, take or set operation to a player's balance.
func (h *PlayerHandler) MutateCredits(w http.ResponseWriter, r *http.Request) {
	playerID, ok := parsePlayerID(w, r)
	if !ok {
		return
	}

	var req dto.MutateCreditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid mutation", err.Error())
		return
	}

	var (
		balance int64
		err     error
	)

	switch req.Op {
	case dto.OpAdd:
		balance, err = h.ledgerUC.AddCredits(r.Context(), usecase.AddCreditsInput{
			PlayerID: playerID,
			Amount:   req.Amount,
		})
	case dto.OpTake:
		balance, err = h.ledgerUC.RemoveCredits(r.Context(), usecase.RemoveCreditsInput{
			PlayerID: playerID,
			Amount:   req.Amount,
		})
	case dto.OpSet:
		balance, err = h.ledgerUC.SetCredits(r.Context(), usecase.SetCreditsInput{
			PlayerID: playerID,
			Balance:  req.Amount,
		})
	}

	if err != nil {
		writeError(w, mapDomainError(err), "failed to apply mutation", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		PlayerID: playerID.String(),
		Balance:  balance,
	})
}

// SetUsername records a player's current display name.
func (h *PlayerHandler) SetUsername(w http.ResponseWriter, r *http.Request) {
	playerID, ok := parsePlayerID(w, r)
	if !ok {
		return
	}

	var req dto.SetUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username cannot be empty", "")
		return
	}

	if err := h.ledgerUC.SetUsername(r.Context(), playerID, req.Username); err != nil {
		writeError(w, mapDomainError(err), "failed to set username", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTransactions lists a player's audit trail, newest first.
func (h *PlayerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	playerID, ok := parsePlayerID(w, r)
	if !ok {
		return
	}

	page := dto.PaginationFromQuery(r, 20)
	records, err := h.ledgerUC.ListTransactions(r.Context(), usecase.ListTransactionsInput{
		PlayerID: playerID,
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(records))
}

// Leaderboard lists accounts ordered by balance, highest first.
func (h *PlayerHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	page := dto.PaginationFromQuery(r, 20)
	accounts, err := h.ledgerUC.Top(r.Context(), usecase.TopInput{
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to load leaderboard", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LeaderboardResponse{
		Entries: dto.AccountsFromDomain(accounts),
	})
}

// parsePlayerID reads and validates the {id} route parameter. It writes the
// error response itself so handlers can bail with a single check.
func parsePlayerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing player ID", "")
		return uuid.Nil, false
	}

	playerID, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player ID", err.Error())
		return uuid.Nil, false
	}

	return playerID, true
}
