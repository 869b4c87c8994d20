package ovation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// StatusError wraps non-2xx HTTP responses from Ovation
type StatusError struct {
	Path   string
	Status int
	Body   string
	Err    error
}

// Error interface
func (e *StatusError) Error() string { return e.Err.Error() }

// Unwrap interface
func (e *StatusError) Unwrap() error { return e.Err }

// HTTPStatus interface
func (e *StatusError) HTTPStatus() int { return e.Status }

func newStatusError(path string, status int, body []byte) *StatusError {
	tail := string(body)
	if len(tail) > 2048 {
		tail = tail[:2048]
	}
	return &StatusError{
		Path:   path,
		Status: status,
		Body:   tail,
		Err:    fmt.Errorf("ovation %s unexpected status %d body %s", path, status, tail),
	}
}

// IsUnauthorized reports whether err is a StatusError with 401 or 403 status
func IsUnauthorized(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden
	}
	return false
}

// IsTransient reports whether err is a StatusError with a 5xx status
func IsTransient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status >= 500 && se.Status <= 599
	}
	return false
}

// Ref is an entity reference that Ovation sends either as a bare id string
// or as an embedded object carrying _id/id
type Ref string

// UnmarshalJSON accepts "abc", {"_id":"abc"}, {"id":"abc"}, numbers, or null
func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = Ref(strings.TrimSpace(s))
		return nil
	case '{':
		var obj struct {
			UID json.RawMessage `json:"_id"`
			ID  json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		raw := obj.UID
		if len(raw) == 0 {
			raw = obj.ID
		}
		if len(raw) == 0 {
			*r = ""
			return nil
		}
		return r.UnmarshalJSON(raw)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("ovation ref: unsupported value %s", string(b))
		}
		*r = Ref(n.String())
		return nil
	}
}

// String returns the plain id
func (r Ref) String() string { return string(r) }

// timestampLayouts lists the forms seen for created_at/local_created_at
// local timestamps arrive without a zone and are read as UTC wall time
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp is a nullable instant tolerant of zone-less layouts
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// UnmarshalJSON accepts null, empty strings, and the layouts above
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("ovation timestamp: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		v, err := time.Parse(layout, s)
		if err == nil {
			*t = Timestamp{Time: v.UTC(), Valid: true}
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("ovation timestamp %q: %w", s, lastErr)
}

// Ptr returns a pointer to the instant or nil when absent
func (t Timestamp) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
