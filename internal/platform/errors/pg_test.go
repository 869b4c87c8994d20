package errors

import (
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGCode(t *testing.T) {
	cases := []struct {
		state string
		want  ErrorCode
	}{
		{"23505", ErrorCodeConflict},        // unique_violation
		{"23503", ErrorCodeConflict},        // foreign_key_violation
		{"22P02", ErrorCodeInvalidArgument}, // invalid_text_representation
		{"40001", ErrorCodeUnavailable},     // serialization_failure
		{"40P01", ErrorCodeUnavailable},     // deadlock_detected
		{"57P03", ErrorCodeUnavailable},     // cannot_connect_now
		{"08006", ErrorCodeUnavailable},     // connection_failure
		{"42P01", ErrorCodeDB},              // undefined_table
		{"X", ErrorCodeDB},
	}
	for _, c := range cases {
		err := fmt.Errorf("exec: %w", &pgconn.PgError{Code: c.state})
		if got := PGCode(err); got != c.want {
			t.Errorf("PGCode(%s) = %v, want %v", c.state, got, c.want)
		}
	}

	if got := PGCode(pgx.ErrNoRows); got != ErrorCodeNotFound {
		t.Errorf("no rows = %v", got)
	}
	if got := PGCode(stderrs.New("pool closed")); got != ErrorCodeDB {
		t.Errorf("plain = %v", got)
	}
}

func TestFromPostgres(t *testing.T) {
	if FromPostgres(nil, "x") != nil || FromPostgresf(nil, "x %d", 1) != nil {
		t.Fatal("nil must stay nil")
	}

	pgErr := &pgconn.PgError{Code: "40001"}
	err := FromPostgresf(pgErr, "upsert survey %s", "S-1")
	if !IsCode(err, ErrorCodeUnavailable) {
		t.Fatalf("code = %v", CodeOf(err))
	}
	var got *pgconn.PgError
	if !stderrs.As(err, &got) {
		t.Fatal("pg error not reachable")
	}

	// a coded miss from a helper keeps NotFound rather than collapsing to DB
	err = FromPostgres(ErrNotFound, "finish sync run")
	if !IsCode(err, ErrorCodeNotFound) || !stderrs.Is(err, ErrNotFound) {
		t.Fatalf("coded error lost its code: %v", err)
	}
}
