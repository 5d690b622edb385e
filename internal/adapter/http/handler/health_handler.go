package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const readinessTimeout = 5 * time.Second

// HealthHandler exposes liveness and readiness endpoints. Readiness
// checks both backing stores because the ledger cannot serve writes
// without Postgres nor keep idempotency guarantees without Redis.
type HealthHandler struct {
	pool  *pgxpool.Pool
	cache *redis.Client
}

func NewHealthHandler(pool *pgxpool.Pool, cache *redis.Client) *HealthHandler {
	return &HealthHandler{pool: pool, cache: cache}
}

// Liveness reports that the process is running.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness reports whether the ledger can take traffic. Each
// dependency is named in the response so an operator can see which
// one is degraded.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	deps := map[string]string{"ledger_store": "ok", "balance_cache": "ok"}

	if err := h.pool.Ping(ctx); err != nil {
		deps["ledger_store"] = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "dependencies": deps})
		return
	}

	if err := h.cache.Ping(ctx).Err(); err != nil {
		deps["balance_cache"] = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "dependencies": deps})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "dependencies": deps})
}
