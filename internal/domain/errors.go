package domain

import (
	"errors"
	"strconv"
)

var (
	// ErrInvalidInput is returned when an input is outside the documented domain
	// (price with more than 2 fractional digits, non-positive precision). Not retriable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFetchFailed is returned when the index price request fails or returns a non-success status.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrParseFailed is returned when the index price response does not have the expected shape.
	ErrParseFailed = errors.New("parse failed")

	// ErrEngineInitFailed is returned when the MD5 primitive is not available in the binary.
	ErrEngineInitFailed = errors.New("hash engine unavailable")

	// ErrConfigNotFound is returned when configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// FetchError represents a failed index price request.
// StatusCode is 0 when no response was received.
type FetchError struct {
	Op         string // Operation that failed (e.g., "request", "status", "read")
	StatusCode int
	Err        error
	Retriable  bool
}

func (e *FetchError) Error() string {
	msg := "fetch " + e.Op
	if e.StatusCode != 0 {
		msg += " (status " + strconv.Itoa(e.StatusCode) + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) IsRetriable() bool {
	return e.Retriable
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes every FetchError match ErrFetchFailed.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

// NewTransportError creates a retriable error for a request that never got a response.
func NewTransportError(op string, err error) *FetchError {
	return &FetchError{Op: op, Err: err, Retriable: true}
}

// NewStatusError creates an error for a non-200 response.
// Only 429 and 5xx are considered retriable.
func NewStatusError(statusCode int) *FetchError {
	return &FetchError{
		Op:         "status",
		StatusCode: statusCode,
		Retriable:  statusCode == 429 || statusCode >= 500,
	}
}

// ParseError represents a response body that could not be turned into an index price.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return "parse error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ParseError) IsRetriable() bool {
	return false
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes every ParseError match ErrParseFailed.
func (e *ParseError) Is(target error) bool {
	return target == ErrParseFailed
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
