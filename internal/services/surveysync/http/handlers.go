// Package http provides http transport for survey sync
package http

import (
	"context"
	stdhttp "net/http"
	"strconv"
	"time"

	"surveysync/internal/modkit/httpkit"
	perr "surveysync/internal/platform/errors"
	"surveysync/internal/services/surveysync/domain"
)

// Register mounts survey sync endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s, now: time.Now}

	// liveness plus derived health
	httpkit.Get(r, "/health", h.health)

	// counters, storage and session state read fresh
	httpkit.Get(r, "/status", h.status)

	// manual trigger, 409 while another run is in flight
	httpkit.Post(r, "/sync", h.sync)

	// recent runs
	httpkit.Get(r, "/sync-history", h.history)
}

type handlers struct {
	svc domain.ServicePort
	now func() time.Time
}

// HealthBody is the /health payload
type HealthBody struct {
	Status    string                `json:"status"`
	Service   string                `json:"service"`
	Timestamp time.Time             `json:"timestamp"`
	Details   domain.HealthSnapshot `json:"details"`
}

// SyncBody is the /sync payload
type SyncBody struct {
	Message string           `json:"message"`
	Result  domain.RunResult `json:"result"`
}

func (h *handlers) health(r *stdhttp.Request) (any, error) {
	snap := h.svc.HealthStatus(r.Context())
	status := "healthy"
	if !snap.IsHealthy {
		status = "degraded"
	}
	return HealthBody{
		Status:    status,
		Service:   domain.ServiceName,
		Timestamp: h.now().UTC(),
		Details:   snap,
	}, nil
}

func (h *handlers) status(r *stdhttp.Request) (any, error) {
	return h.svc.DetailedStatus(r.Context())
}

func (h *handlers) sync(r *stdhttp.Request) (any, error) {
	// a run is never cancelled mid-flight; it stops only at its own run budget
	res, err := h.svc.RunSync(context.WithoutCancel(r.Context()))
	if err != nil {
		return nil, err
	}
	return SyncBody{Message: "sync completed", Result: res}, nil
}

func (h *handlers) history(r *stdhttp.Request) (any, error) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, perr.WithField(perr.New(perr.ErrorCodeValidation, "limit must be a non-negative integer"), "limit")
		}
		limit = n
	}
	return h.svc.SyncHistory(r.Context(), limit)
}
