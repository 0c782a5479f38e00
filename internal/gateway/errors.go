package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable covers transport failures, timeouts and 5xx answers.
	// It is the only failure worth retrying.
	ErrUnavailable = errors.New("remote unavailable")

	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("remote record not found")
	ErrMalformedResponse = errors.New("malformed remote response")
	ErrTokenExpired      = errors.New("token expired")
)

// StatusError is a non-2xx answer that maps to none of the sentinels.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("remote status %d", e.Code)
}
