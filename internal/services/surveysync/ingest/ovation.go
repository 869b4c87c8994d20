// Package ingest holds adapter shims for survey sync ports
package ingest

import (
	"context"
	"time"

	"surveysync/internal/adapters/ingest/ovation"
	"surveysync/internal/services/surveysync/domain"
)

// OvationClient is the subset of *ovation.Client the shims call
type OvationClient interface {
	AccessToken(ctx context.Context) (ovation.Token, error)
	ListSurveys(ctx context.Context, tok ovation.Token, q ovation.ListQuery) ([]ovation.Survey, error)
}

type authenticator struct{ c OvationClient }

// NewAuthenticator adapts the ovation client to domain.Authenticator
func NewAuthenticator(c OvationClient) domain.Authenticator { return &authenticator{c: c} }

func (a *authenticator) Authenticate(ctx context.Context) (domain.Session, error) {
	tok, err := a.c.AccessToken(ctx)
	if err != nil {
		return domain.Session{}, domain.AuthError(err)
	}
	return domain.Session{
		AccessToken: tok.AccessToken,
		APIKey:      tok.APIKey,
		ExpiresAt:   tok.ExpiresAt,
	}, nil
}

type source struct{ c OvationClient }

// NewSource adapts the ovation client to domain.SurveySource
func NewSource(c OvationClient) domain.SurveySource { return &source{c: c} }

func (s *source) ListSurveys(ctx context.Context, sess domain.Session, q domain.PageQuery) ([]domain.SurveyRecord, error) {
	page, err := s.c.ListSurveys(ctx, ovation.Token{
		AccessToken: sess.AccessToken,
		APIKey:      sess.APIKey,
		ExpiresAt:   sess.ExpiresAt,
	}, ovation.ListQuery{
		CreatedFrom: q.Window.Start,
		CreatedTo:   q.Window.End,
		CompanyIDs:  q.CompanyIDs,
		Limit:       q.Limit,
		Skip:        q.Skip,
	})
	if err != nil {
		return nil, domain.FetchError(err)
	}
	out := make([]domain.SurveyRecord, 0, len(page))
	for _, sv := range page {
		out = append(out, ToRecord(sv))
	}
	return out, nil
}

// ToRecord maps an upstream survey to the domain record
// a missing created_at stays zero and is rejected at write time
func ToRecord(sv ovation.Survey) domain.SurveyRecord {
	if sv.Err != nil {
		return domain.SurveyRecord{ExternalID: sv.ID, DecodeErr: sv.Err}
	}
	var created time.Time
	if sv.CreatedAt.Valid {
		created = sv.CreatedAt.Time
	}
	return domain.SurveyRecord{
		ExternalID:         sv.ID,
		CompanyExternalID:  sv.Company.String(),
		LocationExternalID: sv.Location.String(),
		CustomerExternalID: sv.Customer.String(),
		Rating:             sv.Rating,
		Feedback:           sv.Feedback,
		Source:             sv.Source,
		ResponseMessage:    sv.ResponseMessage,
		ResponseBy:         sv.ResponseBy,
		ResponseTime:       sv.ResponseTime.Ptr(),
		CreatedAt:          created,
		LocalCreatedAt:     sv.LocalCreatedAt.Ptr(),
	}
}
