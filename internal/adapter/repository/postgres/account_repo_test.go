package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
)

// A lazily-created row must match the schema default of version 1 so the
// first ApplyDelta bumps it to 2 just like a row created by migration
// backfill would.
func TestAccountRepositoryEnsureInsertsVersionOne(t *testing.T) {
	mockPool := newMockPool(t)
	playerID := uuid.New()

	mockPool.ExpectBegin()
	mockPool.ExpectExec(regexp.QuoteMeta("VALUES ($1, $2, 0, 0, 1, now(), now())")).
		WithArgs(playerID, "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectCommit()

	manager := newTxManagerWithPool(mockPool)
	tx, err := manager.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	repo := newAccountRepositoryWithQuerier(mockPool)
	if err := repo.Ensure(context.Background(), tx, playerID, ""); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}

	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestAccountRepositorySetUsernameUpsertsVersionOne(t *testing.T) {
	mockPool := newMockPool(t)
	playerID := uuid.New()

	mockPool.ExpectExec(regexp.QuoteMeta("VALUES ($1, $2, 0, 0, 1, now(), now())")).
		WithArgs(playerID, "Notch").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := newAccountRepositoryWithQuerier(mockPool)
	if err := repo.SetUsername(context.Background(), playerID, "Notch"); err != nil {
		t.Fatalf("set username failed: %v", err)
	}

	assertExpectations(t, mockPool)
}
