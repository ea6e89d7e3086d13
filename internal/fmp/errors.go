package fmp

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned before any I/O when no credential is configured.
	ErrMissingAPIKey = errors.New("fmp: missing API key")
	// ErrRateLimited is returned on HTTP 429.
	ErrRateLimited = errors.New("fmp: rate limited")
)

// HTTPError is a non-2xx response other than 429.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("fmp: unexpected status code: %d", e.Status)
	}
	return fmt.Sprintf("fmp: unexpected status code: %d: %s", e.Status, e.Body)
}

// NetworkError wraps a transport failure.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("fmp: %s: %v", e.Op, e.Err) }

func (e *NetworkError) Unwrap() error { return e.Err }

// Message turns err into the single line shown to a user.
func Message(err error) string {
	var httpErr *HTTPError
	var netErr *NetworkError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingAPIKey):
		return "The finance API key is not configured."
	case errors.Is(err, ErrRateLimited):
		return "Too many requests. Please try again later."
	case errors.Is(err, context.DeadlineExceeded):
		return "The finance API did not respond in time."
	case errors.As(err, &httpErr):
		return fmt.Sprintf("The finance API returned status %d.", httpErr.Status)
	case errors.As(err, &netErr):
		return "Could not reach the finance API."
	default:
		return err.Error()
	}
}
