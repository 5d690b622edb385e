package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cultivategames/creditledger/internal/domain"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect error
	}{
		{
			name:   "nil stays nil",
			err:    nil,
			expect: nil,
		},
		{
			name:   "check violation becomes insufficient balance",
			err:    &pgconn.PgError{Code: pgErrCheckViolation},
			expect: domain.ErrInsufficientBalance,
		},
		{
			name:   "connection exception becomes store unavailable",
			err:    &pgconn.PgError{Code: "08006"},
			expect: domain.ErrStoreUnavailable,
		},
		{
			name:   "too many connections becomes store unavailable",
			err:    &pgconn.PgError{Code: "53300"},
			expect: domain.ErrStoreUnavailable,
		},
		{
			name:   "admin shutdown becomes store unavailable",
			err:    &pgconn.PgError{Code: "57P01"},
			expect: domain.ErrStoreUnavailable,
		},
		{
			name: "constraint violation passes through",
			err:  &pgconn.PgError{Code: "23505"},
		},
		{
			name: "unrelated error passes through",
			err:  errors.New("something else"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)

			if tt.expect == nil && tt.err != nil {
				if !errors.Is(got, tt.err) {
					t.Errorf("expected original error preserved, got %v", got)
				}
				return
			}
			if tt.expect == nil {
				if got != nil {
					t.Errorf("expected nil, got %v", got)
				}
				return
			}
			if !errors.Is(got, tt.expect) {
				t.Errorf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}
