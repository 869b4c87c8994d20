package http

import (
	stdctx "context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	phttp "surveysync/internal/platform/net/http"
)

type pinger struct{ err error }

func (p pinger) Ping(stdctx.Context) error { return p.err }

func get(t *testing.T, d Deps, path string, out any) int {
	t.Helper()
	m := chi.NewRouter()
	Register(phttp.AdaptChi(m), d)
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, path, nil))

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return rec.Code
}

func TestReady(t *testing.T) {
	cases := []struct {
		name string
		pg   any
		want string
	}{
		{"ok", pinger{}, "ok"},
		{"fail", pinger{err: errors.New("refused")}, "fail"},
		{"skipped", nil, "degraded"},
		{"unknown", struct{}{}, "degraded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got ReadyResponse
			if code := get(t, Deps{PG: tc.pg}, "/ready", &got); code != stdhttp.StatusOK {
				t.Fatalf("status = %d", code)
			}
			if got.Status != tc.want {
				t.Fatalf("overall = %q, want %q", got.Status, tc.want)
			}
			if len(got.Checks) != 1 || got.Checks[0].Name != "pg" {
				t.Fatalf("checks = %+v", got.Checks)
			}
		})
	}
}

func TestService_Uptime(t *testing.T) {
	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d := Deps{
		ServiceName: "ovation-survey-sync",
		StartedAt:   started,
		Now:         func() time.Time { return started.Add(90 * time.Second) },
	}
	var got ServiceResponse
	if code := get(t, d, "/service", &got); code != stdhttp.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got.Uptime != 90 || got.Name != "ovation-survey-sync" {
		t.Fatalf("got %+v", got)
	}
}

func TestVersion(t *testing.T) {
	var got map[string]string
	if code := get(t, Deps{}, "/version", &got); code != stdhttp.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got["service"] == "" || got["version"] == "" {
		t.Fatalf("got %+v", got)
	}
}
