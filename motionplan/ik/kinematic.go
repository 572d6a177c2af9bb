package ik

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/tdcr/logging"
)

// dlsSolver takes minimum-norm damped least-squares steps,
// delta = J^T (J J^T + lambda^2 I)^-1 (-r), over the active residual rows.
type dlsSolver struct {
	opts   *SolverOptions
	logger logging.Logger
}

func (s *dlsSolver) Method() Method {
	return MethodKinematic
}

func (s *dlsSolver) Options() *SolverOptions {
	return s.opts
}

func (s *dlsSolver) Solve(ctx context.Context, p *Problem, seed []float64) (*Solution, error) {
	x := append([]float64(nil), seed...)
	res, err := p.Residual(x, nil)
	if err != nil {
		return nil, err
	}
	norm := floats.Norm(res, 2)

	for iter := 0; iter < s.opts.MaxIterations; iter++ {
		if norm < s.opts.Tolerance {
			return &Solution{Curvature: x, Iterations: iter, Residual: norm}, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		jac, err := p.Jacobian(x)
		if err != nil {
			return nil, err
		}
		step, cond := s.step(jac, res)
		if cond > s.opts.MaxCondition {
			return nil, &IllConditionedError{Iterations: iter, Condition: cond}
		}

		// Halve the step while it makes things worse; the residual is only piecewise smooth.
		next := make([]float64, len(x))
		var nextRes []float64
		nextNorm := math.Inf(1)
		scale := 1.
		for try := 0; try <= defaultBacktrackSteps; try++ {
			floats.AddScaledTo(next, x, scale, step)
			if err := p.checkBounds(next, iter+1); err != nil {
				return nil, err
			}
			nextRes, err = p.Residual(next, nextRes)
			if err != nil {
				return nil, err
			}
			nextNorm = floats.Norm(nextRes, 2)
			if nextNorm < norm {
				break
			}
			scale /= 2
		}
		x, res, norm = next, nextRes, nextNorm
	}
	if norm < s.opts.Tolerance {
		return &Solution{Curvature: x, Iterations: s.opts.MaxIterations, Residual: norm}, nil
	}
	s.logger.Debugw("kinematic solver hit iteration cap", "iterations", s.opts.MaxIterations, "residual", norm)
	return nil, &NonConvergenceError{Iterations: s.opts.MaxIterations, Residual: norm}
}

// step returns the damped least-squares update for jac and res along with the condition number
// of the undamped normal matrix over the active rows. Row 0 is always active; a penalty row is
// active while its residual is positive.
func (s *dlsSolver) step(jac *mat.Dense, res []float64) ([]float64, float64) {
	rows, cols := jac.Dims()
	active := []int{0}
	for i := 1; i < rows; i++ {
		if res[i] > 0 {
			active = append(active, i)
		}
	}

	ja := mat.NewDense(len(active), cols, nil)
	ra := mat.NewVecDense(len(active), nil)
	for k, i := range active {
		ja.SetRow(k, jac.RawRowView(i))
		ra.SetVec(k, -res[i])
	}

	var normal mat.SymDense
	normal.SymOuterK(1, ja)
	cond := mat.Cond(&normal, 2)

	damped := mat.NewSymDense(len(active), nil)
	damped.CopySym(&normal)
	lambda2 := s.opts.Damping * s.opts.Damping
	for i := 0; i < len(active); i++ {
		damped.SetSym(i, i, damped.At(i, i)+lambda2)
	}

	var y mat.VecDense
	if err := y.SolveVec(damped, ra); err != nil {
		// A mat.Condition error still carries a usable solution.
		if _, ok := err.(mat.Condition); !ok {
			return nil, math.Inf(1)
		}
	}
	var delta mat.VecDense
	delta.MulVec(ja.T(), &y)
	return mat.Col(nil, 0, &delta), cond
}
