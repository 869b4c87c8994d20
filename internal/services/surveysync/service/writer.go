package service

import (
	"context"
	"time"

	perr "surveysync/internal/platform/errors"
	"surveysync/internal/services/surveysync/domain"
)

// UpsertWriter persists one record idempotently on its external id
type UpsertWriter struct {
	Resolver ReferenceResolver
	Now      func() time.Time
}

// Upsert resolves references then writes the record through repo
func (w UpsertWriter) Upsert(ctx context.Context, repo domain.StorageRepo, rec domain.SurveyRecord) (domain.UpsertOutcome, error) {
	if rec.ExternalID == "" {
		return 0, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "survey has no id"), "_id")
	}
	if rec.CreatedAt.IsZero() {
		return 0, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "survey %s has no created_at", rec.ExternalID), "created_at")
	}

	refs, err := w.Resolver.ResolveAll(ctx, repo, rec)
	if err != nil {
		return 0, err
	}
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	return repo.UpsertSurvey(ctx, domain.SurveyWrite{
		Record:      rec,
		Refs:        refs,
		ProcessedAt: now().UTC(),
	})
}
