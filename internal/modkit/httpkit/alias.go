// Package httpkit is the slice of the platform http package modules use
package httpkit

import (
	"net/http"

	phttp "surveysync/internal/platform/net/http"
)

type (
	// Router is the routing seam modules mount against
	Router = phttp.Router
	// Handler is a plain handler func
	Handler = phttp.Handler
	// Response is a status plus body, or an error
	Response = phttp.Response
)

// OK is a 200 with data
func OK(data any) Response { return phttp.OK(data) }

// Error maps err to its status and envelope
func Error(err error) Response { return phttp.Error(err) }

// Handle adapts a Response returning func
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

// Call adapts a value and error func; a returned Response passes through
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return OK(out)
	})
}
