package store

import (
	"context"

	perr "surveysync/internal/platform/errors"
)

// ExecOne runs a write that must touch exactly one row
// zero rows is a not found error so callers can tell a stale key from success
func ExecOne(ctx context.Context, q RowQuerier, sql string, args ...any) error {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	switch n := tag.RowsAffected(); {
	case n == 0:
		return perr.ErrNotFound
	case n > 1:
		return perr.Newf(perr.ErrorCodeConflict, "expected one row affected, got %d", n)
	}
	return nil
}

// Scalar scans the first column of the first row into T
// aggregate queries always yield a row; use a pointer T for nullable results
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (T, error) {
	var v T
	if err := q.QueryRow(ctx, sql, args...).Scan(&v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Many maps every row of a result set through scan
func Many[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	rs, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var out []T
	for rs.Next() {
		item, err := scan(rs)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rs.Err()
}
