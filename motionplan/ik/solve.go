package ik

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/tdcr/kinematics"
	"go.viam.com/tdcr/referenceframe"
)

// Result is the outcome of Solve. Configuration is a solved or failed copy of the input; the
// input configuration is never modified.
type Result struct {
	Configuration *kinematics.Configuration
	Success       bool
	Method        Method
	Iterations    int
	Residual      float64
}

// Solve finds the curvature of cfg's segments consistent with its commanded tendon displacement,
// starting from cfg's current curvature. With enforceConstraints set, every weighted obstacle in
// ts adds a clearance penalty row to the residual.
//
// Precondition violations and cancellation return a nil Result. Numerical failures return a
// Result holding a Failed configuration together with the typed failure.
func Solve(
	ctx context.Context,
	solver Solver,
	robot *kinematics.Robot,
	cfg *kinematics.Configuration,
	ts *referenceframe.Taskspace,
	enforceConstraints bool,
) (*Result, error) {
	if solver == nil {
		return nil, errors.New("solve requires a solver")
	}
	if robot == nil || cfg == nil {
		return nil, errors.New("solve requires a robot and a configuration")
	}
	if err := cfg.Validate(robot); err != nil {
		return nil, err
	}

	out := cfg.Clone()
	p := newProblem(robot, out, ts, enforceConstraints, solver.Options())
	result := &Result{Configuration: out, Method: solver.Method()}

	sol, err := solver.Solve(ctx, p, out.Curvature())
	if err != nil {
		if !IsNumericalFailure(err) {
			return nil, err
		}
		out.SetFailed(err)
		var (
			nc *NonConvergenceError
			ic *IllConditionedError
			dv *DivergenceError
		)
		switch {
		case errors.As(err, &nc):
			result.Iterations, result.Residual = nc.Iterations, nc.Residual
		case errors.As(err, &ic):
			result.Iterations = ic.Iterations
		case errors.As(err, &dv):
			result.Iterations = dv.Iterations
		}
		return result, err
	}

	coords, err := p.Backbone(sol.Curvature)
	if err != nil {
		return nil, err
	}
	out.SetSolved(sol.Curvature, coords)
	result.Success = true
	result.Iterations = sol.Iterations
	result.Residual = sol.Residual
	return result, nil
}
