package ik

import (
	"context"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"go.viam.com/tdcr/logging"
)

// gradientSolver minimises 0.5*|r|^2 with BFGS. The gradient is J^T r from the same finite
// difference Jacobian the kinematic strategy uses.
type gradientSolver struct {
	opts   *SolverOptions
	logger logging.Logger
}

func (s *gradientSolver) Method() Method {
	return MethodGradient
}

func (s *gradientSolver) Options() *SolverOptions {
	return s.opts
}

func (s *gradientSolver) Solve(ctx context.Context, p *Problem, seed []float64) (*Solution, error) {
	var evalErr error
	buf := make([]float64, p.Rows())
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			res, err := p.Residual(x, buf)
			if err != nil {
				evalErr = err
				return 0
			}
			return 0.5 * floats.Dot(res, res)
		},
		Grad: func(grad, x []float64) {
			res, err := p.Residual(x, nil)
			if err != nil {
				evalErr = err
				return
			}
			jac, err := p.Jacobian(x)
			if err != nil {
				evalErr = err
				return
			}
			g := mat.NewVecDense(len(grad), grad)
			g.MulVec(jac.T(), mat.NewVecDense(len(res), res))
		},
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, evalErr
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   s.opts.MaxIterations,
		GradientThreshold: s.opts.Tolerance / 100,
		Converger: &optimize.FunctionConverge{
			Absolute:   0.5 * s.opts.Tolerance * s.opts.Tolerance,
			Iterations: 10,
		},
	}

	result, err := optimize.Minimize(problem, append([]float64(nil), seed...), settings, &optimize.BFGS{})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if evalErr != nil {
		return nil, evalErr
	}
	if result == nil {
		return nil, &NonConvergenceError{Iterations: 0, Residual: -1}
	}
	if err != nil {
		// Line search failures near the optimum are common; the residual check below decides.
		s.logger.Debugw("bfgs stopped early", "status", result.Status.String(), "error", err)
	}

	iterations := result.Stats.MajorIterations
	if err := p.checkBounds(result.X, iterations); err != nil {
		return nil, err
	}
	res, rerr := p.Residual(result.X, nil)
	if rerr != nil {
		return nil, rerr
	}
	norm := floats.Norm(res, 2)
	if norm >= s.opts.Tolerance {
		return nil, &NonConvergenceError{Iterations: iterations, Residual: norm}
	}
	return &Solution{Curvature: result.X, Iterations: iterations, Residual: norm}, nil
}
