package metaldata

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailure matches every error returned by a failed fetch
	ErrFetchFailure = errors.New("metal data fetch failed")

	// ErrMalformedResponse matches fetches whose body could not be decoded
	ErrMalformedResponse = errors.New("malformed metal data response")

	ErrUnknownMetal = errors.New("unknown metal")
)

// FetchError carries the metal that failed and the underlying cause
type FetchError struct {
	Metal      string // "all" for the bulk endpoint
	StatusCode int    // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Metal, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Metal, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes every FetchError match ErrFetchFailure
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailure
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// FetchOutcome labels the failure for metrics
func (e *FetchError) FetchOutcome() string {
	switch {
	case errors.Is(e.Err, ErrMalformedResponse):
		return "malformed"
	case e.StatusCode != 0:
		return "http_error"
	default:
		return "network"
	}
}
