package ik

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// default values for solver options.
const (
	// Maximum number of update steps before reporting non-convergence.
	defaultMaxIterations = 100

	// Residual norm below which a curvature vector is accepted.
	defaultTolerance = 1e-9

	// Levenberg damping added to the normal equations of the kinematic strategy.
	defaultDamping = 1e-6

	// Central finite difference step for the residual Jacobian, in curvature units.
	defaultFiniteDiffStep = 1e-7

	// Jacobians whose active rows have a condition number above this are treated as singular.
	defaultMaxCondition = 1e12

	// Number of times a step is halved while it fails to reduce the residual.
	defaultBacktrackSteps = 8
)

// SolverOptions are the numerical settings shared by all solver strategies.
type SolverOptions struct {
	MaxIterations  int     `json:"max_iterations"`
	Tolerance      float64 `json:"tolerance"`
	Damping        float64 `json:"damping"`
	FiniteDiffStep float64 `json:"finite_diff_step"`
	MaxCondition   float64 `json:"max_condition"`

	// MaxCurvature bounds |kappa| for every segment. Zero means one full turn per segment,
	// 2*pi/segment length.
	MaxCurvature float64 `json:"max_curvature"`
}

// NewDefaultSolverOptions returns the default solver settings.
func NewDefaultSolverOptions() *SolverOptions {
	return &SolverOptions{
		MaxIterations:  defaultMaxIterations,
		Tolerance:      defaultTolerance,
		Damping:        defaultDamping,
		FiniteDiffStep: defaultFiniteDiffStep,
		MaxCondition:   defaultMaxCondition,
	}
}

// Validate checks that every option is usable.
func (opts *SolverOptions) Validate() error {
	var errs error
	if opts.MaxIterations <= 0 {
		errs = multierr.Append(errs, errors.Errorf("max_iterations must be positive, got %d", opts.MaxIterations))
	}
	if opts.Tolerance <= 0 {
		errs = multierr.Append(errs, errors.Errorf("tolerance must be positive, got %v", opts.Tolerance))
	}
	if opts.Damping < 0 {
		errs = multierr.Append(errs, errors.Errorf("damping must be non-negative, got %v", opts.Damping))
	}
	if opts.FiniteDiffStep <= 0 {
		errs = multierr.Append(errs, errors.Errorf("finite_diff_step must be positive, got %v", opts.FiniteDiffStep))
	}
	if opts.MaxCondition <= 1 {
		errs = multierr.Append(errs, errors.Errorf("max_condition must be greater than one, got %v", opts.MaxCondition))
	}
	if opts.MaxCurvature < 0 {
		errs = multierr.Append(errs, errors.Errorf("max_curvature must be non-negative, got %v", opts.MaxCurvature))
	}
	return errs
}
