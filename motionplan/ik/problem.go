package ik

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/tdcr/kinematics"
	"go.viam.com/tdcr/referenceframe"
)

// Problem is the residual system a solver drives to zero. Row 0 is the tendon compatibility
// residual, in curvature units. Each further row is the clearance penalty of one weighted
// obstacle: weight * max(0, margin - distance), where distance is measured to the whole backbone
// curve, arcs between disks included.
type Problem struct {
	robot        *kinematics.Robot
	cfg          *kinematics.Configuration
	obstacles    []*referenceframe.Obstacle
	maxCurvature float64
	fdStep       float64
}

func newProblem(
	robot *kinematics.Robot,
	cfg *kinematics.Configuration,
	ts *referenceframe.Taskspace,
	enforceConstraints bool,
	opts *SolverOptions,
) *Problem {
	p := &Problem{
		robot:        robot,
		cfg:          cfg,
		maxCurvature: opts.MaxCurvature,
		fdStep:       opts.FiniteDiffStep,
	}
	if p.maxCurvature == 0 {
		p.maxCurvature = 2 * math.Pi / cfg.Length()
	}
	if enforceConstraints && ts != nil {
		p.obstacles = ts.WeightedObstacles()
	}
	return p
}

// Dim returns the number of unknowns, one curvature per segment.
func (p *Problem) Dim() int {
	return p.robot.Segments()
}

// Rows returns the length of the residual vector.
func (p *Problem) Rows() int {
	return 1 + len(p.obstacles)
}

// Backbone returns the world-frame backbone for curvature.
func (p *Problem) Backbone(curvature []float64) ([]r3.Vector, error) {
	return p.cfg.Backbone(p.robot, curvature)
}

// Residual fills dst with the residual at curvature and returns it. dst may be nil.
func (p *Problem) Residual(curvature, dst []float64) ([]float64, error) {
	if len(dst) != p.Rows() {
		dst = make([]float64, p.Rows())
	}
	arc := p.robot.DiskRadius() * p.cfg.Length()
	dst[0] = (p.robot.TendonDisplacement(p.cfg.Length(), curvature) - p.cfg.Tendon()) / arc
	if len(p.obstacles) == 0 {
		return dst, nil
	}
	arcs, err := p.cfg.Arcs(p.robot, curvature)
	if err != nil {
		return nil, err
	}
	for k, obs := range p.obstacles {
		d, _ := obs.Geometry.MinArcDistance(arcs)
		dst[k+1] = obs.Weight * math.Max(0, obs.Margin-d)
	}
	return dst, nil
}

// Jacobian returns the Rows x Dim central finite difference Jacobian of the residual.
func (p *Problem) Jacobian(curvature []float64) (*mat.Dense, error) {
	jac := mat.NewDense(p.Rows(), p.Dim(), nil)
	x := append([]float64(nil), curvature...)
	plus := make([]float64, p.Rows())
	minus := make([]float64, p.Rows())
	for j := range x {
		orig := x[j]
		x[j] = orig + p.fdStep
		if _, err := p.Residual(x, plus); err != nil {
			return nil, err
		}
		x[j] = orig - p.fdStep
		if _, err := p.Residual(x, minus); err != nil {
			return nil, err
		}
		x[j] = orig
		for i := range plus {
			jac.Set(i, j, (plus[i]-minus[i])/(2*p.fdStep))
		}
	}
	return jac, nil
}

// checkBounds returns a DivergenceError when curvature is not finite or exceeds the plausible
// bound.
func (p *Problem) checkBounds(curvature []float64, iteration int) error {
	for i, k := range curvature {
		if math.IsNaN(k) || math.IsInf(k, 0) || math.Abs(k) > p.maxCurvature {
			return &DivergenceError{Iterations: iteration, Segment: i, Curvature: k}
		}
	}
	return nil
}
