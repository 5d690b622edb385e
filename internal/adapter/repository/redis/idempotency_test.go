package redis

import (
	"context"
	"testing"
	"time"

	"github.com/cultivategames/creditledger/internal/usecase"
)

func TestIdempotencyStoreCheckAndSet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, _, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if exists {
		t.Fatal("expected first check to claim the key")
	}

	if err := store.Update(ctx, "key-1", []byte(`{"balance":10}`), time.Minute); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	exists, cached, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !exists || string(cached) != `{"balance":10}` {
		t.Fatalf("expected stored response, got exists=%v cached=%s", exists, cached)
	}
}

func TestIdempotencyStoreConcurrentClaim(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if exists, _, err := store.CheckAndSet(ctx, "dup", nil, time.Minute); err != nil || exists {
		t.Fatalf("first claim: exists=%v err=%v", exists, err)
	}

	// The second caller sees the processing marker, not a fresh claim.
	exists, cached, err := store.CheckAndSet(ctx, "dup", nil, time.Minute)
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	if !exists {
		t.Fatal("expected second claim to observe the first")
	}
	if string(cached) != usecase.ProcessingMarker {
		t.Fatalf("expected processing marker, got %q", cached)
	}
}

func TestIdempotencyStoreRelease(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if exists, _, err := store.CheckAndSet(ctx, "retry-me", nil, time.Minute); err != nil || exists {
		t.Fatalf("first claim: exists=%v err=%v", exists, err)
	}

	if err := store.Release(ctx, "retry-me"); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	// After release the key is claimable again.
	if exists, _, err := store.CheckAndSet(ctx, "retry-me", nil, time.Minute); err != nil || exists {
		t.Fatalf("expected fresh claim after release, exists=%v err=%v", exists, err)
	}
}
