package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrPageOutOfRange = errors.New("page out of range")
	ErrNoSources      = errors.New("no leaderboard sources configured")
	// ErrSuperseded is returned by Board.Load when a newer load was dispatched
	// before this one completed. Its result was discarded.
	ErrSuperseded = errors.New("leaderboard load superseded")
)

// StatusError is a non-2xx answer from a source.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// DecodeError means the source answered 2xx with a body of the wrong shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding leaderboard response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ExhaustedError is returned when every source failed. Last is the final failure.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d leaderboard attempts failed: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return false
	}
	return true
}
