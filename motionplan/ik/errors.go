package ik

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnknownMethod is returned when a solver method name is not recognised.
var ErrUnknownMethod = errors.New("unknown solver method")

// NonConvergenceError is returned when the residual is still above tolerance at the iteration cap.
type NonConvergenceError struct {
	Iterations int
	Residual   float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("solver did not converge after %d iterations, residual norm %.3g", e.Iterations, e.Residual)
}

// IllConditionedError is returned when the residual Jacobian is singular or nearly so. Retrying
// from the same guess reproduces it; callers should perturb the guess instead.
type IllConditionedError struct {
	Iterations int
	Condition  float64
}

func (e *IllConditionedError) Error() string {
	return fmt.Sprintf("jacobian is ill-conditioned at iteration %d (condition number %.3g)", e.Iterations, e.Condition)
}

// DivergenceError is returned when a curvature component leaves the physically plausible range.
type DivergenceError struct {
	Iterations int
	Segment    int
	Curvature  float64
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("curvature of segment %d diverged to %.3g at iteration %d", e.Segment, e.Curvature, e.Iterations)
}

// IsNumericalFailure reports whether err is one of the solver's numerical failures, as opposed to
// a precondition violation or cancellation.
func IsNumericalFailure(err error) bool {
	var (
		nc *NonConvergenceError
		ic *IllConditionedError
		dv *DivergenceError
	)
	return errors.As(err, &nc) || errors.As(err, &ic) || errors.As(err, &dv)
}
