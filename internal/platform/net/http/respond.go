// Package http is the transport edge: routing over chi, the response envelope, and the server
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "surveysync/internal/platform/errors"
	lumnet "surveysync/internal/platform/net"
)

// Envelope wraps every response body
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// Response is what return style handlers hand back
// an error Body picks its status from the error code
type Response struct {
	Status int
	Body   any
}

// OK is a 200 carrying data
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Error is a response whose status and envelope come from err
func Error(err error) Response { return Response{Body: err} }

// Handle adapts a return style handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		write(w, r, h(r))
	}
}

func write(w stdhttp.ResponseWriter, r *stdhttp.Request, resp Response) {
	env := Envelope{StatusCode: resp.Status, RequestID: lumnet.RequestID(r.Context())}
	if err, ok := resp.Body.(error); ok && err != nil {
		wire := perr.WireFrom(err)
		env.StatusCode = perr.HTTPStatus(err)
		env.Code, env.Error, env.Field = wire.Code, wire.Message, wire.Field
	} else {
		env.Data = resp.Body
	}
	if env.StatusCode == 0 {
		env.StatusCode = stdhttp.StatusOK
	}
	env.Status = stdhttp.StatusText(env.StatusCode)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(env.StatusCode)
	_ = json.NewEncoder(w).Encode(env)
}
