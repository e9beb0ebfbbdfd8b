package youtube

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	// ErrNotFound means the upstream answered but had no item for the identifier.
	ErrNotFound = errors.New("youtube: resource not found")
	// ErrUnavailable covers transport, auth and quota failures reported by the upstream.
	ErrUnavailable = errors.New("youtube: upstream unavailable")
)

const reasonCommentsDisabled = "commentsDisabled"

func classify(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

func hasReason(err error, reason string) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, item := range apiErr.Errors {
		if item.Reason == reason {
			return true
		}
	}
	return false
}
