// internal/finch/errors.go
package finch

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidArgument is matched by every *InvalidArgumentError.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTransport is matched by every *TransportError.
	ErrTransport = errors.New("transport error")
)

// InvalidArgumentError is returned synchronously, before any dispatch,
// when an input is outside its documented closed range.
type InvalidArgumentError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *InvalidArgumentError) Error() string {
	if e.Max == math.MaxInt {
		return fmt.Sprintf("finch: %s must be an integer >= %d; got %d", e.Field, e.Min, e.Value)
	}
	return fmt.Sprintf("finch: %s must be an integer in [%d, %d]; got %d", e.Field, e.Min, e.Max, e.Value)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// checkRange returns nil when min <= v <= max.
func checkRange(field string, v, min, max int) error {
	if v < min || v > max {
		return &InvalidArgumentError{Field: field, Value: v, Min: min, Max: max}
	}
	return nil
}

// CheckNonNegative validates a value that has no upper bound.
func CheckNonNegative(field string, v int) error {
	return checkRange(field, v, 0, math.MaxInt)
}

// TransportError is a failure reported asynchronously through a
// completion callback. Code is the remote error code, 0 when the
// failure happened locally (network, decode, abort).
type TransportError struct {
	Method string
	ID     int64
	Code   int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("finch: %s(%d) failed: code=%d: %v", e.Method, e.ID, e.Code, e.Err)
	}
	return fmt.Sprintf("finch: %s(%d) failed: %v", e.Method, e.ID, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// ErrorCode returns a best-effort uint16 code for status reporting.
// Remote codes are passed through; local failures report 1.
func (e *TransportError) ErrorCode() uint16 {
	if e.Code > 0 && e.Code <= math.MaxUint16 {
		return uint16(e.Code)
	}
	return 1
}
