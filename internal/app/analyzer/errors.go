package analyzer

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUpstreamNotFound means YouTube had no item for the requested identifier.
	ErrUpstreamNotFound = errors.New("youtube resource not found")
	// ErrUpstreamUnavailable means YouTube could not be reached or refused the call.
	// Callers may retry; the analyzer never does.
	ErrUpstreamUnavailable = errors.New("youtube upstream unavailable")
	// ErrAccountInactive means the caller's account was deleted or deactivated after the
	// token was issued.
	ErrAccountInactive = errors.New("account is inactive")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type QuotaExceededError struct {
	Limit   int
	Used    int
	ResetAt time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("analysis limit reached (%d/%d)", e.Used, e.Limit)
}

// StorageError wraps a failed database step; the whole analysis was rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func outcome(err error) string {
	var (
		validation *ValidationError
		quota      *QuotaExceededError
		storage    *StorageError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &validation):
		return "invalid"
	case errors.As(err, &quota):
		return "quota_exceeded"
	case errors.Is(err, ErrAccountInactive):
		return "inactive"
	case errors.Is(err, ErrUpstreamNotFound):
		return "not_found"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.As(err, &storage):
		return "storage_error"
	default:
		return "error"
	}
}
