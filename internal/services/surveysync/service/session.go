package service

import (
	"context"
	"sync"
	"time"

	"surveysync/internal/platform/logger"
	ptime "surveysync/internal/platform/time"
	"surveysync/internal/services/surveysync/domain"
	"surveysync/internal/services/surveysync/guardrails"
)

// SessionManager owns the upstream credential lifecycle
type SessionManager struct {
	auth     domain.Authenticator
	timeouts guardrails.Timeouts
	margin   time.Duration
	now      func() time.Time

	mu  sync.Mutex
	cur domain.Session
}

// NewSessionManager constructs a SessionManager; margin <= 0 uses domain.RefreshMargin
func NewSessionManager(a domain.Authenticator, t guardrails.Timeouts, margin time.Duration, now func() time.Time) *SessionManager {
	if a == nil {
		panic("surveysync.SessionManager requires a non nil Authenticator")
	}
	if margin <= 0 {
		margin = domain.RefreshMargin
	}
	if now == nil {
		now = time.Now
	}
	return &SessionManager{auth: a, timeouts: t, margin: margin, now: now}
}

// EnsureSession returns the current session, authenticating when absent or stale
func (m *SessionManager) EnsureSession(ctx context.Context) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.cur.Stale(m.now(), m.margin) {
		return m.cur, nil
	}
	return m.authenticateLocked(ctx)
}

// Authenticate forces a token request and replaces the session on success
func (m *SessionManager) Authenticate(ctx context.Context) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticateLocked(ctx)
}

func (m *SessionManager) authenticateLocked(ctx context.Context) (domain.Session, error) {
	actx, cancel := guardrails.ForAuth(ctx, m.timeouts)
	defer cancel()

	s, err := m.auth.Authenticate(actx)
	if err != nil {
		// previous session is left untouched on failure
		return domain.Session{}, domain.AuthError(err)
	}
	m.cur = s
	logger.C(ctx).Debug().Time("expires_at", s.ExpiresAt).Msg("surveysync: session refreshed")
	return s, nil
}

// Status reports the current credential state without refreshing it
func (m *SessionManager) Status() domain.SessionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.SessionStatus{
		HasValidToken: m.cur.Valid(),
		TokenExpiry:   ptime.Ptr(m.cur.ExpiresAt),
	}
}
