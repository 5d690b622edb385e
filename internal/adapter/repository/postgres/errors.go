package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cultivategames/creditledger/internal/domain"
)

// PostgreSQL error class prefixes that indicate the store is temporarily
// unreachable rather than the statement being wrong.
const (
	pgClassConnection       = "08" // connection exception
	pgClassResources        = "53" // insufficient resources (pool, disk, memory)
	pgClassOperatorShutdown = "57" // operator intervention / shutdown
	pgClassSystem           = "58" // system error (I/O)
)

const pgErrCheckViolation = "23514"

// classifyError maps raw driver errors onto the domain taxonomy at the
// store boundary, so callers above never see pgx details.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgErrCheckViolation {
			// The balance CHECK is the last line of defense; the
			// conditional update normally catches this first.
			return domain.ErrInsufficientBalance
		}

		for _, class := range []string{pgClassConnection, pgClassResources, pgClassOperatorShutdown, pgClassSystem} {
			if strings.HasPrefix(pgErr.Code, class) {
				return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
			}
		}

		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return err
}
