package dto

import (
	"time"

	"github.com/cultivategames/creditledger/internal/domain"
	"github.com/cultivategames/creditledger/internal/usecase"
)

// BalanceResponse represents a player's balance in API responses.
type BalanceResponse struct {
	PlayerID string `json:"player_id"`
	Balance  int64  `json:"balance"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	PlayerID  string    `json:"player_id"`
	Username  string    `json:"username,omitempty"`
	Balance   int64     `json:"balance"`
	Redeemed  int64     `json:"redeemed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		PlayerID:  a.PlayerID.String(),
		Username:  a.Username,
		Balance:   a.Balance,
		Redeemed:  a.Redeemed,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// LeaderboardResponse represents the balance leaderboard.
type LeaderboardResponse struct {
	Entries []*AccountResponse `json:"entries"`
}

// TransactionResponse represents an audit record in API responses.
type TransactionResponse struct {
	ID              string    `json:"id"`
	PlayerID        string    `json:"player_id"`
	Delta           int64     `json:"delta"`
	PreviousBalance int64     `json:"previous_balance"`
	CurrentBalance  int64     `json:"current_balance"`
	Reason          string    `json:"reason"`
	Skill           string    `json:"skill,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// TransactionFromDomain converts a domain audit record to a response.
func TransactionFromDomain(t *domain.TransactionRecord) *TransactionResponse {
	resp := &TransactionResponse{
		ID:              t.ID,
		PlayerID:        t.PlayerID.String(),
		Delta:           t.Delta,
		PreviousBalance: t.PreviousBalance,
		CurrentBalance:  t.CurrentBalance,
		Reason:          string(t.Reason),
		CreatedAt:       t.CreatedAt,
	}
	if t.Skill != nil {
		resp.Skill = t.Skill.String()
	}
	return resp
}

// TransactionsFromDomain converts domain audit records to responses.
func TransactionsFromDomain(records []*domain.TransactionRecord) []*TransactionResponse {
	result := make([]*TransactionResponse, len(records))
	for i, t := range records {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// TransferResponse represents a completed transfer.
type TransferResponse struct {
	FromPlayerID string `json:"from_player_id"`
	ToPlayerID   string `json:"to_player_id"`
	Amount       int64  `json:"amount"`
	FromBalance  int64  `json:"from_balance"`
	ToBalance    int64  `json:"to_balance"`
}

// RedemptionResponse represents a completed redemption.
type RedemptionResponse struct {
	PlayerID   string `json:"player_id"`
	Skill      string `json:"skill"`
	Credits    int64  `json:"credits"`
	Levels     int64  `json:"levels"`
	NewBalance int64  `json:"new_balance"`
}

// RedemptionFromResult converts a use case result to a response.
func RedemptionFromResult(playerID string, res usecase.RedemptionResult) *RedemptionResponse {
	return &RedemptionResponse{
		PlayerID:   playerID,
		Skill:      res.Skill.String(),
		Credits:    res.Credits,
		Levels:     res.Levels,
		NewBalance: res.NewBalance,
	}
}

// ViolationResponse represents one inconsistent account.
type ViolationResponse struct {
	PlayerID string `json:"player_id"`
	Balance  int64  `json:"balance"`
	DeltaSum int64  `json:"delta_sum"`
}

// ConsistencyResponse represents a ledger consistency report.
type ConsistencyResponse struct {
	CheckedAt  time.Time            `json:"checked_at"`
	Consistent bool                 `json:"consistent"`
	Violations []*ViolationResponse `json:"violations,omitempty"`
}

// ConsistencyFromReport converts a use case report to a response.
func ConsistencyFromReport(report *usecase.ConsistencyReport) *ConsistencyResponse {
	resp := &ConsistencyResponse{
		CheckedAt:  report.CheckedAt,
		Consistent: report.Consistent,
	}
	for _, v := range report.Violations {
		resp.Violations = append(resp.Violations, &ViolationResponse{
			PlayerID: v.PlayerID.String(),
			Balance:  v.Balance,
			DeltaSum: v.DeltaSum,
		})
	}
	return resp
}

// SkillsResponse lists the skills credits can be redeemed into.
type SkillsResponse struct {
	Skills []string `json:"skills"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
