// Package domain holds the core types and ports for the survey sync engine
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// ServiceName is reported by status reads
	ServiceName = "ovation-survey-sync"

	// ServiceVersion is reported by status reads
	ServiceVersion = "1.0.0"

	// WindowOverlap is subtracted from the watermark to tolerate late upstream writes
	WindowOverlap = time.Hour

	// RefreshMargin is how long before expiry a session is treated as stale
	RefreshMargin = 5 * time.Minute

	// HealthWindow is the longest gap since the last success that still reads healthy
	HealthWindow = 30 * time.Minute
)

// DefaultWatermark is used when the store holds no surveys yet
var DefaultWatermark = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Session is the credential set issued by the token endpoint
type Session struct {
	AccessToken string
	APIKey      string
	ExpiresAt   time.Time
}

// Valid reports whether the session carries a token at all
func (s Session) Valid() bool { return s.AccessToken != "" }

// Stale reports whether the session must be refreshed before the next call
func (s Session) Stale(now time.Time, margin time.Duration) bool {
	if !s.Valid() {
		return true
	}
	return !now.Before(s.ExpiresAt.Add(-margin))
}

// Window is the created_at range a run queries; Start <= End
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SurveyRecord is one survey as received upstream
type SurveyRecord struct {
	ExternalID         string
	CompanyExternalID  string
	LocationExternalID string
	CustomerExternalID string
	Rating             *float64
	Feedback           *string
	Source             *string
	ResponseMessage    *string
	ResponseBy         *string
	ResponseTime       *time.Time
	CreatedAt          time.Time
	LocalCreatedAt     *time.Time

	// DecodeErr marks a record that arrived but could not be read; it is never written
	DecodeErr error
}

// LocalCreatedAtOrCreated returns LocalCreatedAt, falling back to CreatedAt
func (r SurveyRecord) LocalCreatedAtOrCreated() time.Time {
	if r.LocalCreatedAt != nil {
		return *r.LocalCreatedAt
	}
	return r.CreatedAt
}

// Dimension names a reference table keyed by ovation_id
type Dimension string

const (
	// DimensionCompany resolves against companies
	DimensionCompany Dimension = "company"
	// DimensionLocation resolves against locations
	DimensionLocation Dimension = "location"
	// DimensionCustomer resolves against customers
	DimensionCustomer Dimension = "customer"
)

// Dimensions lists every reference dimension in resolution order
var Dimensions = []Dimension{DimensionCompany, DimensionLocation, DimensionCustomer}

// RefID is the result of a reference lookup; Found is false on a miss
type RefID struct {
	ID    uuid.UUID
	Found bool
}

// Ptr returns the id or nil for a miss
func (r RefID) Ptr() *uuid.UUID {
	if !r.Found {
		return nil
	}
	id := r.ID
	return &id
}

// Refs holds the resolved references for one record
type Refs struct {
	Company  RefID
	Location RefID
	Customer RefID
}

// SurveyWrite is a record ready for persistence
type SurveyWrite struct {
	Record      SurveyRecord
	Refs        Refs
	ProcessedAt time.Time
}

// UpsertOutcome says which branch an upsert took
type UpsertOutcome int

const (
	// OutcomeInserted means the externalId was new to the store
	OutcomeInserted UpsertOutcome = iota + 1
	// OutcomeUpdated means an existing row was rewritten in place
	OutcomeUpdated
)

func (o UpsertOutcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// FetchResult is every record pulled for one window
type FetchResult struct {
	Records   []SurveyRecord
	Pages     int
	Truncated bool
}

// RunStats are process-lifetime counters
type RunStats struct {
	TotalRuns        int64      `json:"totalRuns"`
	SuccessfulRuns   int64      `json:"successfulRuns"`
	Errors           int64      `json:"errors"`
	LastRun          *time.Time `json:"lastRun"`
	LastSuccess      *time.Time `json:"lastSuccess"`
	SurveysProcessed int64      `json:"surveysProcessed"`
	NewSurveysAdded  int64      `json:"newSurveysAdded"`
}

// RunResult summarizes one completed run
type RunResult struct {
	RunID          uuid.UUID `json:"runId"`
	TotalFetched   int       `json:"totalFetched"`
	NewSurveys     int       `json:"newSurveys"`
	SkippedSurveys int       `json:"skippedSurveys"`
	FailedSurveys  int       `json:"failedSurveys"`
	Pages          int       `json:"pages"`
	Truncated      bool      `json:"truncated"`
	Window         Window    `json:"window"`
	Timestamp      time.Time `json:"timestamp"`
}

// HealthSnapshot is derived from RunStats on demand
type HealthSnapshot struct {
	IsHealthy bool     `json:"isHealthy"`
	Stats     RunStats `json:"stats"`

	// TimeSinceLastSuccess is whole minutes, nil before any success
	TimeSinceLastSuccess *int64 `json:"timeSinceLastSuccess"`
}

// DatabaseStatus is read fresh from the store
type DatabaseStatus struct {
	TotalSurveys     int64      `json:"totalSurveys"`
	LatestSurveyDate *time.Time `json:"latestSurveyDate"`
}

// SessionStatus describes the current credential
type SessionStatus struct {
	HasValidToken bool       `json:"hasValidToken"`
	TokenExpiry   *time.Time `json:"tokenExpiry"`
}

// StatusSnapshot is the detailed status view
type StatusSnapshot struct {
	Service string  `json:"service"`
	Version string  `json:"version"`
	Uptime  float64 `json:"uptime"` // seconds
	HealthSnapshot
	Database DatabaseStatus `json:"database"`
	Ovation  SessionStatus  `json:"ovation"`
}

// RunStatus is the lifecycle state of a recorded run
type RunStatus string

const (
	// RunRunning is written at run start
	RunRunning RunStatus = "running"
	// RunOK marks a completed run
	RunOK RunStatus = "ok"
	// RunError marks a failed run
	RunError RunStatus = "error"
)

// RunFinish carries the fields written when a run ends
type RunFinish struct {
	Status    RunStatus
	Fetched   int
	Inserted  int
	Updated   int
	Failed    int
	Pages     int
	Truncated bool
	Window    Window
	ElapsedMS int
	ErrText   string
}

// RunRecord is one row of run history
type RunRecord struct {
	ID         uuid.UUID  `json:"id"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt"`
	Status     RunStatus  `json:"status"`
	Fetched    int        `json:"totalFetched"`
	Inserted   int        `json:"newSurveys"`
	Updated    int        `json:"skippedSurveys"`
	Failed     int        `json:"failedSurveys"`
	Pages      int        `json:"pages"`
	Truncated  bool       `json:"truncated"`
	Window     *Window    `json:"window,omitempty"`
	ElapsedMS  int        `json:"elapsedMs"`
	Error      *string    `json:"error,omitempty"`
}

// HistorySnapshot is recent runs plus the live counters
type HistorySnapshot struct {
	RecentRuns []RunRecord `json:"recentRuns"`
	Summary    RunStats    `json:"summary"`
}
