// Package repo provides postgres access for survey sync reads and writes
package repo

import (
	"context"
	"fmt"
	"time"

	"surveysync/internal/modkit/repokit"
	perr "surveysync/internal/platform/errors"
	"surveysync/internal/platform/store"
	"surveysync/internal/services/surveysync/domain"

	"github.com/google/uuid"
)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// dimensionTables maps each dimension to its table; values are never user input
var dimensionTables = map[domain.Dimension]string{
	domain.DimensionCompany:  "companies",
	domain.DimensionLocation: "locations",
	domain.DimensionCustomer: "customers",
}

// LatestCreatedAt returns the newest surveys.created_at
func (r *queries) LatestCreatedAt(ctx context.Context) (time.Time, bool, error) {
	ts, err := store.Scalar[*time.Time](ctx, r.q, `SELECT max(created_at) FROM surveys`)
	if err != nil {
		return time.Time{}, false, perr.FromPostgres(err, "latest survey created_at")
	}
	if ts == nil {
		return time.Time{}, false, nil
	}
	return ts.UTC(), true, nil
}

// CountSurveys returns the surveys row count
func (r *queries) CountSurveys(ctx context.Context) (int64, error) {
	n, err := store.Scalar[int64](ctx, r.q, `SELECT count(*) FROM surveys`)
	return n, perr.FromPostgres(err, "count surveys")
}

// ResolveRef looks up <dimension>.id by ovation_id; a miss is not an error
func (r *queries) ResolveRef(ctx context.Context, dim domain.Dimension, externalID string) (domain.RefID, error) {
	if externalID == "" {
		return domain.RefID{}, nil
	}
	table, ok := dimensionTables[dim]
	if !ok {
		return domain.RefID{}, perr.InvalidArgf("unknown reference dimension %q", dim)
	}

	// scalar subquery always yields one row so a miss scans as NULL
	q := fmt.Sprintf(`SELECT (SELECT id FROM %s WHERE ovation_id = $1 LIMIT 1)`, table)
	var id *uuid.UUID
	if err := r.q.QueryRow(ctx, q, externalID).Scan(&id); err != nil {
		return domain.RefID{}, perr.FromPostgresf(err, "resolve %s %s", dim, externalID)
	}
	if id == nil {
		return domain.RefID{}, nil
	}
	return domain.RefID{ID: *id, Found: true}, nil
}

// UpsertSurvey inserts or rewrites one survey keyed by ovation_id
// xmax is zero only on the row version a plain INSERT produced
func (r *queries) UpsertSurvey(ctx context.Context, w domain.SurveyWrite) (domain.UpsertOutcome, error) {
	const q = `
		INSERT INTO surveys (
			ovation_id, company_id, location_id, customer_id,
			rating, feedback, source, response_message, response_by, response_time,
			created_at, local_created_at, processed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (ovation_id) DO UPDATE SET
			company_id       = EXCLUDED.company_id,
			location_id      = EXCLUDED.location_id,
			customer_id      = EXCLUDED.customer_id,
			rating           = EXCLUDED.rating,
			feedback         = EXCLUDED.feedback,
			source           = EXCLUDED.source,
			response_message = EXCLUDED.response_message,
			response_by      = EXCLUDED.response_by,
			response_time    = EXCLUDED.response_time,
			created_at       = EXCLUDED.created_at,
			local_created_at = EXCLUDED.local_created_at,
			processed_at     = EXCLUDED.processed_at
		RETURNING (xmax = 0) AS inserted
	`
	rec := w.Record
	var inserted bool
	err := r.q.QueryRow(ctx, q,
		rec.ExternalID, w.Refs.Company.Ptr(), w.Refs.Location.Ptr(), w.Refs.Customer.Ptr(),
		rec.Rating, rec.Feedback, rec.Source, rec.ResponseMessage, rec.ResponseBy, rec.ResponseTime,
		rec.CreatedAt.UTC(), rec.LocalCreatedAtOrCreated().UTC(), w.ProcessedAt.UTC(),
	).Scan(&inserted)
	if err != nil {
		return 0, perr.FromPostgresf(err, "upsert survey %s", rec.ExternalID)
	}
	if inserted {
		return domain.OutcomeInserted, nil
	}
	return domain.OutcomeUpdated, nil
}
