// Package middleware re-exports the chi middleware the API stack mounts
// plus the in house access log and panic recovery
package middleware

import (
	"net/http"
	"time"

	pstrings "surveysync/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// RequestID attaches or propagates X-Request-ID
func RequestID() func(http.Handler) http.Handler { return chimw.RequestID }

// RealIP trusts X-Forwarded-For and X-Real-IP
func RealIP() func(http.Handler) http.Handler { return chimw.RealIP }

// Timeout cancels the request context after d
func Timeout(d time.Duration) func(http.Handler) http.Handler { return chimw.Timeout(d) }

// NoCache disables client and proxy caching
func NoCache() func(http.Handler) http.Handler { return chimw.NoCache }

// Compress uses chi's compressor at level, e.g. flate.BestSpeed
func Compress(level int) func(http.Handler) http.Handler {
	return chimw.NewCompressor(level).Handler
}

// RedirectSlashes redirects /sync/ to /sync
func RedirectSlashes() func(http.Handler) http.Handler { return chimw.RedirectSlashes }

// StripSlashes routes /sync/ as /sync
func StripSlashes() func(http.Handler) http.Handler { return chimw.StripSlashes }

// Heartbeat answers GET path with 200 before routing
func Heartbeat(path string) func(http.Handler) http.Handler { return chimw.Heartbeat(path) }

// CORSOptions is the subset of go-chi/cors the API configures
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// CORS fills empty methods and headers with what the sync endpoints need
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: pstrings.IfEmpty(o.AllowedMethods, []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders: pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"}),
		MaxAge:         o.MaxAge,
	})
}
