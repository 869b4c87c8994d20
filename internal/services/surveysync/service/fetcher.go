package service

import (
	"context"

	"surveysync/internal/platform/logger"
	"surveysync/internal/services/surveysync/domain"
	"surveysync/internal/services/surveysync/guardrails"
)

const (
	defaultPageSize = 200
	defaultMaxPages = 10
)

// RecordFetcher pulls every upstream survey in a window, page by page
type RecordFetcher struct {
	Source     domain.SurveySource
	Sessions   *SessionManager
	Timeouts   guardrails.Timeouts
	CompanyIDs []string
	PageSize   int
	MaxPages   int
}

func (f *RecordFetcher) pageSize() int {
	if f.PageSize <= 0 {
		return defaultPageSize
	}
	return f.PageSize
}

func (f *RecordFetcher) maxPages() int {
	if f.MaxPages <= 0 {
		return defaultMaxPages
	}
	return f.MaxPages
}

// FetchPage performs one bounded list call
func (f *RecordFetcher) FetchPage(ctx context.Context, s domain.Session, w domain.Window, skip int) ([]domain.SurveyRecord, error) {
	fctx, cancel := guardrails.ForFetch(ctx, f.Timeouts)
	defer cancel()

	companies := f.CompanyIDs
	if companies == nil {
		companies = []string{}
	}
	recs, err := f.Source.ListSurveys(fctx, s, domain.PageQuery{
		Window:     w,
		CompanyIDs: companies,
		Limit:      f.pageSize(),
		Skip:       skip,
	})
	if err != nil {
		if domain.IsFetchError(err) {
			return nil, err
		}
		return nil, domain.FetchError(err)
	}
	return recs, nil
}

// FetchWindow loops pages until a short page or the page bound is reached
// the session is re-checked before each page so a long run refreshes in time
func (f *RecordFetcher) FetchWindow(ctx context.Context, w domain.Window) (domain.FetchResult, error) {
	var (
		out   domain.FetchResult
		skip  int
		size  = f.pageSize()
		limit = f.maxPages()
	)
	for out.Pages < limit {
		s, err := f.Sessions.EnsureSession(ctx)
		if err != nil {
			return domain.FetchResult{}, err
		}
		page, err := f.FetchPage(ctx, s, w, skip)
		if err != nil {
			return domain.FetchResult{}, err
		}
		out.Pages++
		out.Records = append(out.Records, page...)
		if len(page) < size {
			return out, nil
		}
		skip += len(page)
	}

	out.Truncated = true
	logger.C(ctx).Warn().
		Int("pages", out.Pages).
		Int("records", len(out.Records)).
		Time("window_start", w.Start).
		Time("window_end", w.End).
		Msg("surveysync: page bound reached, remaining records wait for the next run")
	return out, nil
}
