package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	perr "surveysync/internal/platform/errors"
	"surveysync/internal/platform/logger"
	pnet "surveysync/internal/platform/net"
)

// RecoverJSON turns a panic into the standard 500 envelope and logs the stack
// http.ErrAbortHandler is re-raised so net/http can drop the connection
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			reqID := pnet.RequestID(r.Context())
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			err := perr.PanicErrf("panic recovered")
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			if reqID != "" {
				w.Header().Set("X-Request-ID", reqID)
			}
			w.WriteHeader(perr.HTTPStatus(err))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status_code": perr.HTTPStatus(err),
				"status":      http.StatusText(perr.HTTPStatus(err)),
				"error":       err.Error(),
				"request_id":  reqID,
			})
		}()
		next.ServeHTTP(w, r)
	})
}
