package llm

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrNoJSON indicates that a reply contained no {...} span.
	ErrNoJSON = errors.New("no JSON found")
	// ErrNoChoices indicates a 200 response without any completion choices.
	ErrNoChoices = errors.New("no completion choices returned")
)

// MalformedJSONError indicates that the extracted span was not valid JSON.
type MalformedJSONError struct {
	Err      error
	Fragment string
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed JSON: %v", e.Err)
}

func (e *MalformedJSONError) Unwrap() error {
	return e.Err
}

// StatusError is returned for any non-200 response.
type StatusError struct {
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %d", e.StatusCode)
}

// TimeoutError is returned when the backend does not answer within the configured timeout.
type TimeoutError struct {
	Err     error
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out (>%ss)", FormatSeconds(e.Timeout))
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// FormatSeconds renders d in seconds without trailing zeros, e.g. 60 or 0.05.
func FormatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
