package middleware

import (
	"net/http"
	"time"

	"surveysync/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// AccessLogOptions configures AccessLogZerolog
type AccessLogOptions struct {
	// Slow logs at warn at or past this duration; 0 disables
	Slow time.Duration
}

// AccessLogZerolog logs one line per request through the request logger
func AccessLogZerolog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log := logger.C(r.Context())
			evt := log.Info()
			if (opt.Slow > 0 && elapsed >= opt.Slow) || status >= http.StatusInternalServerError {
				evt = log.Warn()
			}
			evt.Int("status", status).
				Dur("elapsed", elapsed).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("bytes", ww.BytesWritten()).
				Msg("request done")
		})
	}
}
