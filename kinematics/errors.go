package kinematics

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidSegmentLength is returned when a segment length is not strictly positive.
	ErrInvalidSegmentLength = errors.New("segment length must be greater than zero")
	// ErrInvalidSegmentCount is returned when a robot or backbone has no segments.
	ErrInvalidSegmentCount = errors.New("segment count must be greater than zero")
	// ErrInvalidDiskRadius is returned when a robot's disk radius is not strictly positive.
	ErrInvalidDiskRadius = errors.New("disk radius must be greater than zero")
	// ErrInvalidTendon is returned when a tendon displacement is NaN or infinite.
	ErrInvalidTendon = errors.New("tendon displacement must be finite")
	// ErrNotSolved is returned when coordinates are requested from a configuration that has not
	// been solved.
	ErrNotSolved = errors.New("configuration has not been solved")
)

// CurvatureSizeError is returned when a curvature vector does not have one entry per segment.
type CurvatureSizeError struct {
	Got, Want int
}

func (e *CurvatureSizeError) Error() string {
	return fmt.Sprintf("curvature vector has %d entries, robot has %d segments", e.Got, e.Want)
}

// NewCurvatureSizeError returns an error for a mismatched curvature vector.
func NewCurvatureSizeError(got, want int) error {
	return &CurvatureSizeError{Got: got, Want: want}
}

// IsPreconditionError reports whether err describes malformed robot or configuration input, as
// opposed to a numerical failure.
func IsPreconditionError(err error) bool {
	var sizeErr *CurvatureSizeError
	switch {
	case errors.As(err, &sizeErr):
		return true
	case errors.Is(err, ErrInvalidSegmentLength),
		errors.Is(err, ErrInvalidSegmentCount),
		errors.Is(err, ErrInvalidDiskRadius),
		errors.Is(err, ErrInvalidTendon):
		return true
	}
	return false
}
