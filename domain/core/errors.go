package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)

	// Sample errors
	ErrMalformedSample = errors.New("sample is not an integer")
	ErrIndexOutOfRange = errors.New("sample too short for digit position")
	ErrEmptyDataset    = errors.New("no samples to analyze")

	// Comparison errors
	ErrZeroExpectedCount = errors.New("expected count is zero")
	ErrUnknownPosition   = errors.New("unknown digit position")
	ErrUnknownZeroPolicy = errors.New("unknown zero policy")
	ErrCountMismatch     = errors.New("observed and expected bucket counts differ")
)

// MalformedSampleError reports a non-blank sample that does not parse as an integer.
type MalformedSampleError struct {
	Line   int
	Sample string
}

func (e *MalformedSampleError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Sample, ErrMalformedSample)
}

func (e *MalformedSampleError) Unwrap() error { return ErrMalformedSample }

// IndexOutOfRangeError reports a sample with fewer characters than the requested digit position.
type IndexOutOfRangeError struct {
	Line     int
	Sample   string
	Position int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("line %d: %q has no character at position %d: %v", e.Line, e.Sample, e.Position, ErrIndexOutOfRange)
}

func (e *IndexOutOfRangeError) Unwrap() error { return ErrIndexOutOfRange }

// ZeroExpectedCountError reports a bucket whose expected count rounds to zero.
type ZeroExpectedCountError struct {
	Digit int
	Total int
}

func (e *ZeroExpectedCountError) Error() string {
	return fmt.Sprintf("digit %d at total %d: %v", e.Digit, e.Total, ErrZeroExpectedCount)
}

func (e *ZeroExpectedCountError) Unwrap() error { return ErrZeroExpectedCount }

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsSampleError reports whether err was caused by the input samples themselves.
func IsSampleError(err error) bool {
	return errors.Is(err, ErrMalformedSample) ||
		errors.Is(err, ErrIndexOutOfRange) ||
		errors.Is(err, ErrEmptyDataset)
}

// IsAnalysisError reports whether err is any error raised by the statistical core.
func IsAnalysisError(err error) bool {
	return IsSampleError(err) ||
		errors.Is(err, ErrZeroExpectedCount) ||
		errors.Is(err, ErrUnknownPosition) ||
		errors.Is(err, ErrUnknownZeroPolicy) ||
		errors.Is(err, ErrCountMismatch)
}
