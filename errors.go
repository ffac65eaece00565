package poliastro

import (
	"errors"
	"fmt"
	"time"
)

// ErrZeroRotationPeriod is returned when the angular velocity of a body
// with a zero rotational period is requested.
var ErrZeroRotationPeriod = errors.New("rotational period is zero")

// DimensionMismatchError is returned when two quantities of incompatible
// physical dimensions are combined.
type DimensionMismatchError struct {
	Op          string
	Left, Right Dimension
}

func (e DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch in %s: %s vs %s", e.Op, e.Left, e.Right)
}

// InvalidElementsError is returned when degenerate or non-physical orbital
// elements are provided.
type InvalidElementsError struct {
	Reason string
}

func (e InvalidElementsError) Error() string {
	return "invalid orbital elements: " + e.Reason
}

// EpochOutOfRangeError is returned when a propagation interval falls outside
// a window which bounds it, e.g. the validity interval of an ephemeris.
type EpochOutOfRangeError struct {
	Epoch      time.Time
	Start, End time.Time
}

func (e EpochOutOfRangeError) Error() string {
	return fmt.Sprintf("epoch %s outside of [%s, %s]", e.Epoch, e.Start, e.End)
}

// EphemerisRangeError is returned when an ephemeris interpolant is queried
// outside of its fitted validity interval.
type EphemerisRangeError struct {
	Queried    time.Time
	Start, End time.Time
}

func (e EphemerisRangeError) Error() string {
	return fmt.Sprintf("ephemeris queried at %s but fitted over [%s, %s]", e.Queried, e.Start, e.End)
}

// IntegrationError is returned when the adaptive integrator cannot meet the
// requested tolerance within its step budget. It carries the last reached
// time and state so the caller can inspect how far the propagation went.
type IntegrationError struct {
	Reason    string
	LastTime  time.Time
	LastState []float64
	Steps     uint64
	Rejected  uint64
}

func (e IntegrationError) Error() string {
	return fmt.Sprintf("integration failed at %s after %d steps (%d rejected): %s", e.LastTime, e.Steps, e.Rejected, e.Reason)
}
