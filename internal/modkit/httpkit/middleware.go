package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"surveysync/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	// RequestTimeout cancels the request context, 0 -> 30s
	RequestTimeout time.Duration
	// SlowRequest logs requests at warn level past this, 0 disables
	SlowRequest time.Duration
	// AllowedOrigins for CORS, empty allows none
	AllowedOrigins []string
}

// CommonStack returns a baseline per module middleware slice
// the heartbeat answers /ping so modules may own /health
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	timeout := o.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RealIP(),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),

		// observability
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: o.SlowRequest}),

		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.AllowedOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/ping"),
		middleware.RedirectSlashes(),
		middleware.StripSlashes(),
		middleware.Timeout(timeout),
	}
}
