package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"surveysync/internal/modkit/repokit"
	perr "surveysync/internal/platform/errors"
	"surveysync/internal/platform/store"
	"surveysync/internal/services/surveysync/domain"
	"surveysync/internal/services/surveysync/guardrails"

	"github.com/google/uuid"
)

// clock is a settable time source
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock(t time.Time) *clock { return &clock{t: t} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeDB satisfies repokit.TxRunner; repos never issue SQL against it
type fakeDB struct {
	mu  sync.Mutex
	txs int
}

func (d *fakeDB) Exec(context.Context, string, ...any) (store.CommandTag, error) {
	return nil, errors.New("fakeDB: no sql")
}

func (d *fakeDB) Query(context.Context, string, ...any) (store.Rows, error) {
	return nil, errors.New("fakeDB: no sql")
}

func (d *fakeDB) QueryRow(context.Context, string, ...any) store.Row { return nil }

func (d *fakeDB) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	d.mu.Lock()
	d.txs++
	d.mu.Unlock()
	return fn(d)
}

type storedSurvey struct {
	ID    uuid.UUID
	Write domain.SurveyWrite
}

// memRepo is an in-memory domain.StorageRepo
type memRepo struct {
	mu sync.Mutex

	surveys map[string]*storedSurvey
	refs    map[domain.Dimension]map[string]uuid.UUID
	runs    map[uuid.UUID]*domain.RunRecord

	resolveCalls int
	latestErr    error
	upsertErr    map[string]error
	historyErr   error
	runWriteErr  error
}

func newMemRepo() *memRepo {
	return &memRepo{
		surveys:   map[string]*storedSurvey{},
		refs:      map[domain.Dimension]map[string]uuid.UUID{},
		runs:      map[uuid.UUID]*domain.RunRecord{},
		upsertErr: map[string]error{},
	}
}

func (m *memRepo) binder() repokit.Binder[domain.StorageRepo] {
	return repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo { return m })
}

func (m *memRepo) addRef(dim domain.Dimension, ext string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refs[dim] == nil {
		m.refs[dim] = map[string]uuid.UUID{}
	}
	id := uuid.New()
	m.refs[dim][ext] = id
	return id
}

func (m *memRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.surveys)
}

func (m *memRepo) get(ext string) (*storedSurvey, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.surveys[ext]
	return s, ok
}

func (m *memRepo) LatestCreatedAt(context.Context) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latestErr != nil {
		return time.Time{}, false, m.latestErr
	}
	var (
		latest time.Time
		ok     bool
	)
	for _, s := range m.surveys {
		if !ok || s.Write.Record.CreatedAt.After(latest) {
			latest, ok = s.Write.Record.CreatedAt, true
		}
	}
	return latest, ok, nil
}

func (m *memRepo) CountSurveys(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.surveys)), nil
}

func (m *memRepo) ResolveRef(_ context.Context, dim domain.Dimension, ext string) (domain.RefID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolveCalls++
	if id, ok := m.refs[dim][ext]; ok {
		return domain.RefID{ID: id, Found: true}, nil
	}
	return domain.RefID{}, nil
}

func (m *memRepo) UpsertSurvey(_ context.Context, w domain.SurveyWrite) (domain.UpsertOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.upsertErr[w.Record.ExternalID]; err != nil {
		return 0, err
	}
	if s, ok := m.surveys[w.Record.ExternalID]; ok {
		s.Write = w
		return domain.OutcomeUpdated, nil
	}
	m.surveys[w.Record.ExternalID] = &storedSurvey{ID: uuid.New(), Write: w}
	return domain.OutcomeInserted, nil
}

func (m *memRepo) StartRun(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runWriteErr != nil {
		return m.runWriteErr
	}
	m.runs[id] = &domain.RunRecord{ID: id, StartedAt: at, Status: domain.RunRunning}
	return nil
}

func (m *memRepo) FinishRun(_ context.Context, id uuid.UUID, fin domain.RunFinish) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runWriteErr != nil {
		return m.runWriteErr
	}
	r, ok := m.runs[id]
	if !ok {
		return perr.NotFoundf("run %s", id)
	}
	r.Status = fin.Status
	r.Fetched, r.Inserted, r.Updated, r.Failed = fin.Fetched, fin.Inserted, fin.Updated, fin.Failed
	r.Pages, r.Truncated, r.ElapsedMS = fin.Pages, fin.Truncated, fin.ElapsedMS
	w := fin.Window
	r.Window = &w
	if fin.ErrText != "" {
		e := fin.ErrText
		r.Error = &e
	}
	return nil
}

func (m *memRepo) RecentRuns(_ context.Context, limit int) ([]domain.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	out := make([]domain.RunRecord, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeAuth issues sessions valid for ttl from the clock
type fakeAuth struct {
	mu    sync.Mutex
	clk   *clock
	ttl   time.Duration
	calls int
	err   error
}

func (a *fakeAuth) Authenticate(context.Context) (domain.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.err != nil {
		return domain.Session{}, perr.Unauthorizedf("ovation authentication failed: %v", a.err)
	}
	return domain.Session{
		AccessToken: "tok",
		APIKey:      "key",
		ExpiresAt:   a.clk.Now().Add(a.ttl),
	}, nil
}

func (a *fakeAuth) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// fakeSource serves records created inside the query window, paged by skip
type fakeSource struct {
	mu      sync.Mutex
	records []domain.SurveyRecord
	err     error
	queries []domain.PageQuery
	block   chan struct{}
	entered chan struct{}
}

func (s *fakeSource) ListSurveys(ctx context.Context, _ domain.Session, q domain.PageQuery) ([]domain.SurveyRecord, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	block, entered := s.block, s.entered
	s.mu.Unlock()

	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var in []domain.SurveyRecord
	for _, r := range s.records {
		if !r.CreatedAt.Before(q.Window.Start) && !r.CreatedAt.After(q.Window.End) {
			in = append(in, r)
		}
	}
	sort.SliceStable(in, func(i, j int) bool { return in[i].CreatedAt.Before(in[j].CreatedAt) })
	if q.Skip >= len(in) {
		return nil, nil
	}
	end := min(q.Skip+q.Limit, len(in))
	return in[q.Skip:end], nil
}

func (s *fakeSource) set(recs ...domain.SurveyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = recs
}

func (s *fakeSource) lastQuery() domain.PageQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[len(s.queries)-1]
}

func rec(id string, created time.Time) domain.SurveyRecord {
	rating := 5.0
	return domain.SurveyRecord{ExternalID: id, CreatedAt: created, Rating: &rating}
}

type harness struct {
	clk  *clock
	repo *memRepo
	auth *fakeAuth
	src  *fakeSource
	db   *fakeDB
	svc  *Service
}

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newHarness(cfg Config) *harness {
	h := &harness{
		clk:  newClock(t0),
		repo: newMemRepo(),
		src:  &fakeSource{},
		db:   &fakeDB{},
	}
	h.auth = &fakeAuth{clk: h.clk, ttl: time.Hour}
	if cfg.Timeouts == (guardrails.Timeouts{}) {
		cfg.Timeouts = guardrails.Timeouts{Run: 5 * time.Second, Auth: time.Second, Fetch: time.Second, DB: time.Second}
	}
	h.svc = New(h.db, h.repo.binder(), h.auth, h.src, cfg).WithClock(h.clk.Now)
	return h
}
