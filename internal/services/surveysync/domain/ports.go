package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ServicePort is the public port exposed by the module
type ServicePort interface {
	RunSync(ctx context.Context) (RunResult, error)
	HealthStatus(ctx context.Context) HealthSnapshot
	DetailedStatus(ctx context.Context) (StatusSnapshot, error)
	SyncHistory(ctx context.Context, limit int) (HistorySnapshot, error)
}

// Authenticator obtains a fresh session from the upstream token endpoint
type Authenticator interface {
	Authenticate(ctx context.Context) (Session, error)
}

// PageQuery selects one page of upstream surveys
type PageQuery struct {
	Window     Window
	CompanyIDs []string
	Limit      int
	Skip       int
}

// SurveySource lists upstream surveys sorted ascending by created_at
type SurveySource interface {
	ListSurveys(ctx context.Context, s Session, q PageQuery) ([]SurveyRecord, error)
}

// StorageRepo is the storage repository interface
type StorageRepo interface {
	// LatestCreatedAt returns the newest persisted created_at; ok is false when empty
	LatestCreatedAt(ctx context.Context) (t time.Time, ok bool, err error)

	// CountSurveys returns the number of persisted surveys
	CountSurveys(ctx context.Context) (int64, error)

	// ResolveRef looks up the internal id for an external id in one dimension
	ResolveRef(ctx context.Context, dim Dimension, externalID string) (RefID, error)

	// UpsertSurvey writes one survey keyed by its external id
	UpsertSurvey(ctx context.Context, w SurveyWrite) (UpsertOutcome, error)

	// StartRun records the beginning of a sync run
	StartRun(ctx context.Context, id uuid.UUID, startedAt time.Time) error

	// FinishRun records the end of a sync run
	FinishRun(ctx context.Context, id uuid.UUID, fin RunFinish) error

	// RecentRuns returns the newest runs first
	RecentRuns(ctx context.Context, limit int) ([]RunRecord, error)
}
