package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the kinds of failure that abort a crawl run
type ErrorType string

const (
	ErrorTypeContentNotReady    ErrorType = "content_not_ready"
	ErrorTypeNavigation         ErrorType = "navigation"
	ErrorTypePersistence        ErrorType = "persistence"
	ErrorTypeMalformedTimestamp ErrorType = "malformed_timestamp"
	ErrorTypeExtraction         ErrorType = "extraction"
	ErrorTypeStalledCursor      ErrorType = "stalled_cursor"
	ErrorTypeUnknown            ErrorType = "unknown"
)

// Error is a crawl failure with type information
type Error struct {
	Type ErrorType
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s error: %s", e.Type, e.Op)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Type, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with the given type and operation description
func New(t ErrorType, op string, err error) error {
	return &Error{Type: t, Op: op, Err: err}
}

// ContentNotReady reports a readiness wait that timed out
func ContentNotReady(url string, err error) error {
	return New(ErrorTypeContentNotReady, fmt.Sprintf("waiting for listing at %s", url), err)
}

// Navigation reports a transport failure reaching a page
func Navigation(url string, err error) error {
	return New(ErrorTypeNavigation, fmt.Sprintf("navigating to %s", url), err)
}

// Persistence reports a failed checkpoint or output write
func Persistence(op string, err error) error {
	return New(ErrorTypePersistence, op, err)
}

// MalformedTimestamp reports an oldest record whose date cannot be resolved
func MalformedTimestamp(date string, err error) error {
	return New(ErrorTypeMalformedTimestamp, fmt.Sprintf("resolving cursor from date %q", date), err)
}

// StalledCursor reports a next cursor that does not move past the current one
func StalledCursor(current, next string) error {
	return New(ErrorTypeStalledCursor, "advancing cursor",
		fmt.Errorf("next cursor %s is not older than current cursor %s", next, current))
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var crawlErr *Error
	if errors.As(err, &crawlErr) {
		return crawlErr.Type
	}
	return ErrorTypeUnknown
}

// IsType checks whether err carries the given ErrorType
func IsType(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}
