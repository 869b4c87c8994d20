package httpkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	perr "surveysync/internal/platform/errors"
	phttp "surveysync/internal/platform/net/http"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Error      string          `json:"error"`
	Data       json.RawMessage `json:"data"`
}

func serve(t *testing.T, h http.Handler, method, path string) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestCall(t *testing.T) {
	cases := map[string]struct {
		fn       func(*http.Request) (any, error)
		wantCode int
		wantData string
		wantErr  string
	}{
		"value wraps as ok": {
			fn:       func(*http.Request) (any, error) { return map[string]int{"fetched": 3}, nil },
			wantCode: http.StatusOK,
			wantData: `{"fetched":3}`,
		},
		"response passes through": {
			fn: func(*http.Request) (any, error) {
				return Response{Status: http.StatusAccepted, Body: "queued"}, nil
			},
			wantCode: http.StatusAccepted,
			wantData: `"queued"`,
		},
		"coded error maps status": {
			fn: func(*http.Request) (any, error) {
				return nil, perr.Unavailablef("ovation down")
			},
			wantCode: http.StatusServiceUnavailable,
			wantErr:  "ovation down",
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			code, env := serve(t, http.HandlerFunc(Call(c.fn)), http.MethodGet, "/")
			if code != c.wantCode || env.StatusCode != c.wantCode {
				t.Fatalf("status = %d/%d, want %d", code, env.StatusCode, c.wantCode)
			}
			if c.wantData != "" && string(env.Data) != c.wantData {
				t.Fatalf("data = %s", env.Data)
			}
			if env.Error != c.wantErr {
				t.Fatalf("error = %q", env.Error)
			}
		})
	}
}

func TestGetPostAndMountUnder(t *testing.T) {
	r := phttp.AdaptChi(chi.NewRouter())
	stamp := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Module", "surveysync")
			next.ServeHTTP(w, req)
		})
	}
	MountUnder(r, "/sync", []func(http.Handler) http.Handler{stamp}, func(sub Router) {
		Get(sub, "/status", func(*http.Request) (any, error) { return "idle", nil })
		Post(sub, "/run", func(*http.Request) (any, error) { return "ran", nil })
	})

	code, env := serve(t, r.Mux(), http.MethodGet, "/sync/status")
	if code != http.StatusOK || string(env.Data) != `"idle"` {
		t.Fatalf("get = %d %s", code, env.Data)
	}
	code, env = serve(t, r.Mux(), http.MethodPost, "/sync/run")
	if code != http.StatusOK || string(env.Data) != `"ran"` {
		t.Fatalf("post = %d %s", code, env.Data)
	}

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sync/status", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method = %d", rec.Code)
	}
	if rec.Header().Get("X-Module") != "surveysync" {
		t.Fatal("prefix middleware not applied")
	}
}
