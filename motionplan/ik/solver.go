// Package ik solves a tendon-driven continuum robot's forward model: given a commanded segment
// length and tendon displacement, find the per-segment curvature that satisfies tendon
// compatibility and, optionally, keeps the backbone clear of weighted obstacles.
package ik

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/tdcr/logging"
)

// Method selects a solver strategy.
type Method int

const (
	// MethodKinematic drives the residual to zero with damped least-squares steps.
	MethodKinematic Method = iota
	// MethodGradient minimises half the squared residual norm with BFGS.
	MethodGradient
)

var methodNames = map[Method]string{
	MethodKinematic: "kinematic",
	MethodGradient:  "gradient",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMethod returns the Method named by s. The empty string selects MethodKinematic.
func ParseMethod(s string) (Method, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return MethodKinematic, nil
	}
	for m, name := range methodNames {
		if name == s {
			return m, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownMethod, "%q", s)
}

// Solution is the outcome of a successful strategy run.
type Solution struct {
	Curvature  []float64
	Iterations int
	Residual   float64
}

// Solver is a strategy that drives a Problem's residual below tolerance starting from seed.
// Numerical failures are returned as *NonConvergenceError, *IllConditionedError or
// *DivergenceError.
type Solver interface {
	Method() Method
	Options() *SolverOptions
	Solve(ctx context.Context, p *Problem, seed []float64) (*Solution, error)
}

// NewSolver returns the strategy for method. A nil opts selects the defaults.
func NewSolver(method Method, opts *SolverOptions, logger logging.Logger) (Solver, error) {
	if opts == nil {
		opts = NewDefaultSolverOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	switch method {
	case MethodKinematic:
		return &dlsSolver{opts: opts, logger: logger}, nil
	case MethodGradient:
		return &gradientSolver{opts: opts, logger: logger}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownMethod, "%d", int(method))
	}
}
