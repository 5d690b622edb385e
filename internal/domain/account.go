package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a player's credit account.
type Account struct {
	PlayerID  uuid.UUID
	Username  string
	Balance   int64
	Redeemed  int64
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount creates an account with a zero balance.
func NewAccount(playerID uuid.UUID, username string, now time.Time) *Account {
	return &Account{
		PlayerID:  playerID,
		Username:  username,
		Balance:   0,
		Redeemed:  0,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
