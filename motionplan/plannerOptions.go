package motionplan

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/tdcr/motionplan/ik"
	"go.viam.com/tdcr/referenceframe"
)

// default values for planning options.
const (
	// Maximum number of accepted steps before planning stops.
	defaultMaxIter = 100

	// Largest change in segment length per step, in m.
	defaultMaxLengthStep = 0.005

	// Largest change in tendon displacement per step, in m.
	defaultMaxTendonStep = 0.0005

	// Damping of the (length, tendon) least-squares step toward the target.
	defaultStepDamping = 1e-4

	// Finite difference steps for the tip Jacobian.
	defaultLengthDiffStep = 1e-6
	defaultTendonDiffStep = 1e-7

	// Distance by which an accepted step may dip inside an obstacle's clearance margin.
	defaultSlack = 1e-6

	// Magnitude of the alternating curvature perturbation applied to the seed of the single retry, in 1/m.
	defaultRetryPerturbation = 0.1
)

// PlannerOptions configure GeneratePath.
type PlannerOptions struct {
	MaxIter       int     `json:"max_iter"`
	MaxLengthStep float64 `json:"max_length_step"`
	MaxTendonStep float64 `json:"max_tendon_step"`
	StepDamping   float64 `json:"step_damping"`

	LengthLimit referenceframe.Limit `json:"length_limit"`
	TendonLimit referenceframe.Limit `json:"tendon_limit"`

	Slack             float64 `json:"slack"`
	RetryPerturbation float64 `json:"retry_perturbation"`

	Method ik.Method         `json:"-"`
	Solver *ik.SolverOptions `json:"-"`
}

// NewDefaultPlannerOptions returns the default planner settings using the kinematic solver.
func NewDefaultPlannerOptions() *PlannerOptions {
	return &PlannerOptions{
		MaxIter:           defaultMaxIter,
		MaxLengthStep:     defaultMaxLengthStep,
		MaxTendonStep:     defaultMaxTendonStep,
		StepDamping:       defaultStepDamping,
		LengthLimit:       referenceframe.Limit{Min: 0.01, Max: 0.2},
		TendonLimit:       referenceframe.Limit{Min: -0.02, Max: 0.02},
		Slack:             defaultSlack,
		RetryPerturbation: defaultRetryPerturbation,
		Method:            ik.MethodKinematic,
		Solver:            ik.NewDefaultSolverOptions(),
	}
}

// Validate checks that every option is usable.
func (opts *PlannerOptions) Validate() error {
	var errs error
	if opts.MaxIter <= 0 {
		errs = multierr.Append(errs, errors.Errorf("max_iter must be positive, got %d", opts.MaxIter))
	}
	if opts.MaxLengthStep < 0 {
		errs = multierr.Append(errs, errors.Errorf("max_length_step must be non-negative, got %v", opts.MaxLengthStep))
	}
	if opts.MaxTendonStep < 0 {
		errs = multierr.Append(errs, errors.Errorf("max_tendon_step must be non-negative, got %v", opts.MaxTendonStep))
	}
	if opts.StepDamping < 0 {
		errs = multierr.Append(errs, errors.Errorf("step_damping must be non-negative, got %v", opts.StepDamping))
	}
	if !opts.LengthLimit.Valid() || opts.LengthLimit.Min <= 0 {
		errs = multierr.Append(errs, errors.Errorf("length_limit must be a positive range, got %v", opts.LengthLimit))
	}
	if !opts.TendonLimit.Valid() {
		errs = multierr.Append(errs, errors.Errorf("tendon_limit min exceeds max, got %v", opts.TendonLimit))
	}
	if opts.Slack < 0 {
		errs = multierr.Append(errs, errors.Errorf("slack must be non-negative, got %v", opts.Slack))
	}
	if opts.Solver != nil {
		errs = multierr.Append(errs, opts.Solver.Validate())
	}
	return errs
}
