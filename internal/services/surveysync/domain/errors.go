package domain

import (
	stderrs "errors"

	perr "surveysync/internal/platform/errors"
)

// ErrSyncBusy is returned when a run is already in flight
var ErrSyncBusy = perr.New(perr.ErrorCodeConflict, "sync already in progress")

// IsBusy reports whether err is a rejected concurrent trigger
func IsBusy(err error) bool { return stderrs.Is(err, ErrSyncBusy) }

// AuthError marks err as a run-fatal authentication failure
func AuthError(err error) error {
	if err == nil {
		return nil
	}
	if perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		return err
	}
	return perr.Wrap(err, perr.ErrorCodeUnauthorized, "authentication failed")
}

// FetchError marks err as a run-fatal retrieval failure
func FetchError(err error) error {
	if err == nil {
		return nil
	}
	return perr.Wrap(err, perr.ErrorCodeUnavailable, "fetch surveys failed")
}

// IsAuthError reports whether err is an authentication failure
func IsAuthError(err error) bool { return perr.IsCode(err, perr.ErrorCodeUnauthorized) }

// IsFetchError reports whether err is a retrieval failure
func IsFetchError(err error) bool { return perr.IsCode(err, perr.ErrorCodeUnavailable) }
