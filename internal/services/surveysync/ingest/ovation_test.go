package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveysync/internal/adapters/ingest/ovation"
	perr "surveysync/internal/platform/errors"
	"surveysync/internal/services/surveysync/domain"
)

type fakeClient struct {
	tok     ovation.Token
	tokErr  error
	page    []ovation.Survey
	pageErr error
	lastQ   ovation.ListQuery
	lastTok ovation.Token
}

func (f *fakeClient) AccessToken(context.Context) (ovation.Token, error) { return f.tok, f.tokErr }

func (f *fakeClient) ListSurveys(_ context.Context, tok ovation.Token, q ovation.ListQuery) ([]ovation.Survey, error) {
	f.lastTok, f.lastQ = tok, q
	return f.page, f.pageErr
}

func TestAuthenticator_MapsToken(t *testing.T) {
	exp := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	a := NewAuthenticator(&fakeClient{tok: ovation.Token{AccessToken: "a", APIKey: "k", ExpiresAt: exp}})

	s, err := a.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Session{AccessToken: "a", APIKey: "k", ExpiresAt: exp}, s)
}

func TestAuthenticator_ErrorsAreAuthErrors(t *testing.T) {
	a := NewAuthenticator(&fakeClient{tokErr: errors.New("dial tcp: refused")})

	_, err := a.Authenticate(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsAuthError(err))
}

func TestSource_PassesQueryAndMaps(t *testing.T) {
	var sv ovation.Survey
	require.NoError(t, json.Unmarshal([]byte(`{
		"_id":"s1","company":"c1","location":{"_id":"l1"},"rating":4,
		"created_at":"2025-02-01T12:00:00Z","response_time":null
	}`), &sv))

	fc := &fakeClient{page: []ovation.Survey{sv}}
	w := domain.Window{Start: time.Unix(100, 0).UTC(), End: time.Unix(200, 0).UTC()}
	recs, err := NewSource(fc).ListSurveys(context.Background(),
		domain.Session{AccessToken: "a", APIKey: "k"},
		domain.PageQuery{Window: w, CompanyIDs: []string{"c1"}, Limit: 50, Skip: 100})
	require.NoError(t, err)

	assert.Equal(t, "a", fc.lastTok.AccessToken)
	assert.Equal(t, w.Start, fc.lastQ.CreatedFrom)
	assert.Equal(t, w.End, fc.lastQ.CreatedTo)
	assert.Equal(t, 50, fc.lastQ.Limit)
	assert.Equal(t, 100, fc.lastQ.Skip)

	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, "s1", r.ExternalID)
	assert.Equal(t, "c1", r.CompanyExternalID)
	assert.Equal(t, "l1", r.LocationExternalID)
	assert.Empty(t, r.CustomerExternalID)
	assert.Nil(t, r.ResponseTime)
	assert.Nil(t, r.LocalCreatedAt)
	assert.Equal(t, r.CreatedAt, r.LocalCreatedAtOrCreated())
}

func TestSource_ErrorsAreFetchErrors(t *testing.T) {
	fc := &fakeClient{pageErr: perr.New(perr.ErrorCodeJSON, "bad json")}
	_, err := NewSource(fc).ListSurveys(context.Background(), domain.Session{}, domain.PageQuery{})
	require.Error(t, err)
	assert.True(t, domain.IsFetchError(err))
}

func TestToRecord_CarriesDecodeError(t *testing.T) {
	bad := ovation.Survey{ID: "s9", Err: perr.New(perr.ErrorCodeJSON, "bad timestamp")}

	rec := ToRecord(bad)
	assert.Equal(t, "s9", rec.ExternalID)
	require.Error(t, rec.DecodeErr)
	assert.True(t, rec.CreatedAt.IsZero())
}
