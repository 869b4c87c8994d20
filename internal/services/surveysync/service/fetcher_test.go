package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "surveysync/internal/platform/errors"
	"surveysync/internal/services/surveysync/domain"
	"surveysync/internal/services/surveysync/guardrails"
)

func newFetcher(src *fakeSource, pageSize, maxPages int) (*RecordFetcher, *fakeAuth) {
	clk := newClock(t0)
	auth := &fakeAuth{clk: clk, ttl: time.Hour}
	return &RecordFetcher{
		Source:   src,
		Sessions: NewSessionManager(auth, guardrails.Timeouts{}, 0, clk.Now),
		PageSize: pageSize,
		MaxPages: maxPages,
	}, auth
}

func records(n int) []domain.SurveyRecord {
	out := make([]domain.SurveyRecord, n)
	for i := range out {
		out[i] = rec(fmt.Sprintf("s%03d", i), t0.Add(-time.Duration(n-i)*time.Second))
	}
	return out
}

var wideWindow = domain.Window{Start: t0.Add(-24 * time.Hour), End: t0}

func TestFetchWindow_StopsOnShortPage(t *testing.T) {
	src := &fakeSource{}
	src.set(records(7)...)
	f, auth := newFetcher(src, 3, 10)

	res, err := f.FetchWindow(context.Background(), wideWindow)
	require.NoError(t, err)
	assert.Len(t, res.Records, 7)
	assert.Equal(t, 3, res.Pages)
	assert.False(t, res.Truncated)
	assert.Equal(t, 1, auth.count())

	require.Len(t, src.queries, 3)
	assert.Equal(t, []int{0, 3, 6}, []int{src.queries[0].Skip, src.queries[1].Skip, src.queries[2].Skip})
}

func TestFetchWindow_ExactMultipleFetchesEmptyTail(t *testing.T) {
	src := &fakeSource{}
	src.set(records(6)...)
	f, _ := newFetcher(src, 3, 10)

	res, err := f.FetchWindow(context.Background(), wideWindow)
	require.NoError(t, err)
	assert.Len(t, res.Records, 6)
	assert.Equal(t, 3, res.Pages)
	assert.False(t, res.Truncated)
}

func TestFetchWindow_TruncatesAtPageBound(t *testing.T) {
	src := &fakeSource{}
	src.set(records(20)...)
	f, _ := newFetcher(src, 3, 2)

	res, err := f.FetchWindow(context.Background(), wideWindow)
	require.NoError(t, err)
	assert.Len(t, res.Records, 6)
	assert.Equal(t, 2, res.Pages)
	assert.True(t, res.Truncated)
	assert.Equal(t, "s005", res.Records[5].ExternalID, "pages arrive oldest first")
}

func TestFetchWindow_Defaults(t *testing.T) {
	src := &fakeSource{}
	f, _ := newFetcher(src, 0, 0)

	res, err := f.FetchWindow(context.Background(), wideWindow)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, defaultPageSize, src.lastQuery().Limit)
}

func TestFetchWindow_ErrorDropsPartialPages(t *testing.T) {
	src := &fakeSource{}
	src.set(records(5)...)
	f, _ := newFetcher(src, 3, 10)

	_, err := f.FetchWindow(context.Background(), wideWindow)
	require.NoError(t, err)

	src.err = fmt.Errorf("boom")
	res, err := f.FetchWindow(context.Background(), wideWindow)
	require.Error(t, err)
	assert.True(t, domain.IsFetchError(err))
	assert.Empty(t, res.Records)
}

func TestFetchWindow_AuthErrorSurfaces(t *testing.T) {
	src := &fakeSource{}
	f, auth := newFetcher(src, 3, 10)
	auth.err = fmt.Errorf("nope")

	_, err := f.FetchWindow(context.Background(), wideWindow)
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnauthorized))
	assert.Empty(t, src.queries)
}
