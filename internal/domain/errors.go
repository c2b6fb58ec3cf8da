package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks malformed or numerically degenerate input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a lookup that resolved to nothing (no geocode result, no route).
	ErrNotFound = errors.New("not found")
)

// LookupError reports a failed station lookup for one sample point.
// It is distinct from a lookup that succeeded with zero stations.
type LookupError struct {
	Index int
	Point SamplePoint
	Err   error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("station lookup failed for sample point %d (%.5f,%.5f): %v",
		e.Index, e.Point.Lat, e.Point.Lon, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }
