// Package guardrails holds deadline helpers for sync runs
package guardrails

import (
	"context"
	"time"
)

// Timeouts bundles the per-phase budgets of one sync run
// zero values mean no extra limit at that level
type Timeouts struct {
	// Run is the overall budget for a whole sync run
	Run time.Duration

	// Auth caps one token request
	Auth time.Duration

	// Fetch caps one page request
	Fetch time.Duration

	// DB caps one record write or store read
	DB time.Duration
}

// WithRun returns a context limited by the run budget
func WithRun(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Run)
}

// ForAuth returns a sub context for one authentication call
func ForAuth(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Auth)
}

// ForFetch returns a sub context for one page fetch
func ForFetch(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Fetch)
}

// ForDB returns a sub context for one unit of store work
func ForDB(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.DB)
}

// Remaining returns the time until the deadline on ctx, or zero when none is set or it has passed
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout takes the tighter of d and the parent's remaining budget
// it never extends the parent deadline
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
