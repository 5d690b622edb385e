package progression

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cultivategames/creditledger/internal/domain"
)

func TestClient_GrantProgress(t *testing.T) {
	playerID := uuid.New()

	var got grantRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/grants" {
			t.Errorf("path = %s, want /grants", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	if err := client.GrantProgress(context.Background(), playerID, domain.SkillMining, 3); err != nil {
		t.Fatalf("GrantProgress() error = %v", err)
	}

	if got.PlayerID != playerID.String() {
		t.Errorf("player_id = %s, want %s", got.PlayerID, playerID)
	}
	if got.Skill != "mining" {
		t.Errorf("skill = %s, want mining", got.Skill)
	}
	if got.Levels != 3 {
		t.Errorf("levels = %d, want 3", got.Levels)
	}
}

func TestClient_GrantProgressNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "skill system offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	if err := client.GrantProgress(context.Background(), uuid.New(), domain.SkillHerbalism, 1); err == nil {
		t.Fatal("GrantProgress() expected error for 503 response")
	}
}

func TestClient_GrantProgressUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	if err := client.GrantProgress(context.Background(), uuid.New(), domain.SkillMining, 1); err == nil {
		t.Fatal("GrantProgress() expected error for unreachable endpoint")
	}
}
