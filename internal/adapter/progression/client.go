// Package progression integrates the ledger with the external skill
// progression system. Only the grant contract is modeled here; the system
// itself lives outside this process.
package progression

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cultivategames/creditledger/internal/domain"
)

// Client implements usecase.ProgressionHook over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new progression client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type grantRequest struct {
	PlayerID string `json:"player_id"`
	Skill    string `json:"skill"`
	Levels   int64  `json:"levels"`
}

// GrantProgress grants levels in the external system. Any non-2xx response
// is a failure; the caller compensates the ledger.
func (c *Client) GrantProgress(ctx context.Context, playerID uuid.UUID, skill domain.Skill, levels int64) error {
	body, err := json.Marshal(grantRequest{
		PlayerID: playerID.String(),
		Skill:    skill.String(),
		Levels:   levels,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/grants", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("progression hook unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("progression hook returned status %d", resp.StatusCode)
	}

	return nil
}

// LogHook is a stand-in hook for deployments without a progression system
// wired up. It grants nothing and only records the request.
type LogHook struct {
	logger zerolog.Logger
}

// NewLogHook creates a LogHook.
func NewLogHook(logger zerolog.Logger) *LogHook {
	return &LogHook{logger: logger}
}

// GrantProgress logs the grant and reports success.
func (h *LogHook) GrantProgress(ctx context.Context, playerID uuid.UUID, skill domain.Skill, levels int64) error {
	h.logger.Info().
		Stringer("player_id", playerID).
		Str("skill", skill.String()).
		Int64("levels", levels).
		Msg("progression grant (log-only hook)")

	return nil
}
