// Package errors carries coded errors from adapters up to the http edge
package errors

// Import as perr so it never shadows the standard errors package

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies a failure for callers and for the wire
// numeric values are part of the response envelope; append only
type ErrorCode uint16

const (
	ErrorCodeUnknown         ErrorCode = iota // unclassified
	ErrorCodePanic                            // recovered panic
	ErrorCodeUnavailable                      // upstream or dependency down, retry may help
	ErrorCodeConflict                         // state clash such as an overlapping sync run
	ErrorCodeUnauthorized                     // credentials rejected
	ErrorCodeInvalidArgument                  // caller passed something unusable
	ErrorCodeValidation                       // record failed a content check
	ErrorCodeJSON                             // payload did not decode
	ErrorCodeNotFound                         // key matched nothing
	ErrorCodeDB                               // storage failure
)

var statusByCode = map[ErrorCode]int{
	ErrorCodeUnavailable:     http.StatusServiceUnavailable,
	ErrorCodeConflict:        http.StatusConflict,
	ErrorCodeUnauthorized:    http.StatusUnauthorized,
	ErrorCodeInvalidArgument: http.StatusUnprocessableEntity,
	ErrorCodeValidation:      http.StatusBadRequest,
	ErrorCodeJSON:            http.StatusBadRequest,
	ErrorCodeNotFound:        http.StatusNotFound,
}

// HTTPStatusCode maps a code to a response status; unmapped codes are 500
func HTTPStatusCode(c ErrorCode) int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// ErrNotFound is the shared miss sentinel
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Error is a coded error with an optional cause, field and op label
type Error struct {
	code  ErrorCode
	msg   string
	field string
	op    string
	cause error
}

// Wire is the error body the api writes
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }
func (e *Error) Code() ErrorCode { return e.code }
func (e *Error) Field() string { return e.field }
func (e *Error) Op() string { return e.op }
func (e *Error) ToWire() Wire { return Wire{Code: e.code, Message: e.msg, Field: e.field} }

func (e *Error) clone() *Error {
	c := *e
	return &c
}

// WireFrom renders any error for the response body
// foreign errors come out as Unknown with their text
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// As finds the outermost *Error in the chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

// CodeOf reports the code of the outermost *Error, Unknown otherwise
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether CodeOf(err) is code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus maps any error to a response status
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// WithField returns a copy of err naming the offending field
// foreign errors pass through untouched
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := e.clone()
		c.field = field
		return c
	}
	return err
}

// WithOp returns a copy of err tagged with the operation that failed
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := e.clone()
		c.op = op
		return c
	}
	return err
}

func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

func Wrap(cause error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, cause: cause}
}

func Wrapf(cause error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), cause: cause}
}

func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }
func Unauthorizedf(format string, a ...any) error { return Newf(ErrorCodeUnauthorized, format, a...) }
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }
func DBf(format string, a ...any) error { return Newf(ErrorCodeDB, format, a...) }
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }
