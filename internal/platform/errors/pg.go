package errors

import (
	stderrs "errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// sqlstate classes keyed by their two character prefix
// https://www.postgresql.org/docs/current/errcodes-appendix.html
var codeBySQLStateClass = map[string]ErrorCode{
	"22": ErrorCodeInvalidArgument, // data exception, e.g. bad uuid text
	"23": ErrorCodeConflict,        // integrity constraint
	"40": ErrorCodeUnavailable,     // serialization failure, deadlock
	"53": ErrorCodeUnavailable,     // insufficient resources
	"57": ErrorCodeUnavailable,     // operator intervention, startup in progress
	"08": ErrorCodeUnavailable,     // connection exception
}

// PGCode classifies err by its SQLSTATE class
// pgx.ErrNoRows is NotFound; anything else is DB
func PGCode(err error) ErrorCode {
	if stderrs.Is(err, pgx.ErrNoRows) {
		return ErrorCodeNotFound
	}
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		if c, ok := codeBySQLStateClass[pgErr.Code[:2]]; ok {
			return c
		}
	}
	return ErrorCodeDB
}

// FromPostgres wraps a storage error with its mapped code; nil stays nil
// errors that already carry a code keep it
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return Wrap(err, e.code, msg)
	}
	return Wrap(err, PGCode(err), msg)
}

// FromPostgresf is FromPostgres with a formatted message
func FromPostgresf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return FromPostgres(err, fmt.Sprintf(format, a...))
}
