package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransactionReason classifies why a balance changed.
type TransactionReason string

const (
	ReasonGrant        TransactionReason = "grant"
	ReasonSpend        TransactionReason = "spend"
	ReasonSet          TransactionReason = "set"
	ReasonTransferIn   TransactionReason = "transfer_in"
	ReasonTransferOut  TransactionReason = "transfer_out"
	ReasonRedeem       TransactionReason = "redeem"
	ReasonRedeemRefund TransactionReason = "redeem_refund"
)

// Valid reports whether the reason is one of the known values.
func (r TransactionReason) Valid() bool {
	switch r {
	case ReasonGrant, ReasonSpend, ReasonSet, ReasonTransferIn,
		ReasonTransferOut, ReasonRedeem, ReasonRedeemRefund:
		return true
	}
	return false
}

// TransactionRecord is a single append-only entry in the audit trail.
// Per player, the sum of Delta over all records equals the current balance.
type TransactionRecord struct {
	CreatedAt       time.Time
	ID              string
	PlayerID        uuid.UUID
	Delta           int64
	PreviousBalance int64
	CurrentBalance  int64
	Reason          TransactionReason
	Skill           *Skill
}

// Validate validates a record before it is written.
func (t *TransactionRecord) Validate() error {
	if !t.Reason.Valid() {
		return fmt.Errorf("invalid transaction reason %q", t.Reason)
	}
	if t.PreviousBalance+t.Delta != t.CurrentBalance {
		return fmt.Errorf("transaction delta %d does not reconcile %d -> %d",
			t.Delta, t.PreviousBalance, t.CurrentBalance)
	}
	return nil
}
