package domain

import "github.com/google/uuid"

// ConsistencyViolation is an account whose stored balance disagrees with the
// sum of its audit-trail deltas.
type ConsistencyViolation struct {
	PlayerID uuid.UUID
	Balance  int64
	DeltaSum int64
}
