package kinematics

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/tdcr/spatialmath"
)

// SolveState tracks whether a Configuration's coordinates may be used.
type SolveState int

const (
	// Unsolved configurations have a command and a curvature guess but no coordinates.
	Unsolved SolveState = iota
	// Solved configurations carry coordinates consistent with their curvature.
	Solved
	// Failed configurations record why the last solve did not converge.
	Failed
)

func (s SolveState) String() string {
	switch s {
	case Unsolved:
		return "unsolved"
	case Solved:
		return "solved"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("SolveState(%d)", int(s))
}

// Configuration is the state of one solve attempt: the commanded segment length and tendon
// displacement, the curvature vector being solved for, and the pose anchoring the backbone base.
type Configuration struct {
	length    float64
	tendon    float64
	curvature []float64
	base      spatialmath.Pose

	state   SolveState
	coords  []r3.Vector
	failure error
}

// NewConfiguration returns an unsolved configuration for robot with a straight initial guess.
func NewConfiguration(robot *Robot, length, tendon float64) (*Configuration, error) {
	cfg := &Configuration{
		length:    length,
		tendon:    tendon,
		curvature: make([]float64, robot.Segments()),
		base:      spatialmath.NewZeroPose(),
	}
	if err := cfg.Validate(robot); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against the robot it will be solved for.
func (c *Configuration) Validate(robot *Robot) error {
	if c.length <= 0 || math.IsNaN(c.length) || math.IsInf(c.length, 0) {
		return errors.Wrapf(ErrInvalidSegmentLength, "got %v", c.length)
	}
	if math.IsNaN(c.tendon) || math.IsInf(c.tendon, 0) {
		return errors.Wrapf(ErrInvalidTendon, "got %v", c.tendon)
	}
	if len(c.curvature) != robot.Segments() {
		return NewCurvatureSizeError(len(c.curvature), robot.Segments())
	}
	return nil
}

// Length returns the segment length.
func (c *Configuration) Length() float64 {
	return c.length
}

// Tendon returns the commanded tendon displacement.
func (c *Configuration) Tendon() float64 {
	return c.tendon
}

// Curvature returns a copy of the curvature vector.
func (c *Configuration) Curvature() []float64 {
	return append([]float64(nil), c.curvature...)
}

// Base returns the pose of the backbone base.
func (c *Configuration) Base() spatialmath.Pose {
	return c.base
}

// State returns the solve state.
func (c *Configuration) State() SolveState {
	return c.state
}

// FailureReason returns why the last solve failed, or nil when the state is not Failed.
func (c *Configuration) FailureReason() error {
	return c.failure
}

// SetCommand changes the commanded length and tendon displacement. Any cached coordinates are
// discarded.
func (c *Configuration) SetCommand(length, tendon float64) {
	c.length = length
	c.tendon = tendon
	c.reset()
}

// SetInitialGuess replaces the curvature vector used to seed the next solve.
func (c *Configuration) SetInitialGuess(guess []float64) error {
	if len(guess) != len(c.curvature) {
		return NewCurvatureSizeError(len(guess), len(c.curvature))
	}
	copy(c.curvature, guess)
	c.reset()
	return nil
}

// SetBase moves the backbone base. Any cached coordinates are discarded.
func (c *Configuration) SetBase(base spatialmath.Pose) {
	c.base = base
	c.reset()
}

// SetSolved records a converged curvature vector and its backbone coordinates.
func (c *Configuration) SetSolved(curvature []float64, coords []r3.Vector) {
	c.curvature = append(c.curvature[:0], curvature...)
	c.coords = coords
	c.failure = nil
	c.state = Solved
}

// SetFailed records a failed solve. Coordinates become unavailable.
func (c *Configuration) SetFailed(reason error) {
	c.coords = nil
	c.failure = reason
	c.state = Failed
}

func (c *Configuration) reset() {
	c.coords = nil
	c.failure = nil
	c.state = Unsolved
}

// Coordinates returns the solved backbone points in the world frame, base first.
func (c *Configuration) Coordinates() ([]r3.Vector, error) {
	switch c.state {
	case Solved:
		return append([]r3.Vector(nil), c.coords...), nil
	case Failed:
		if c.failure != nil {
			return nil, errors.Wrap(c.failure, "configuration failed to solve")
		}
	case Unsolved:
	}
	return nil, ErrNotSolved
}

// Tip returns the last backbone point of a solved configuration.
func (c *Configuration) Tip() (r3.Vector, error) {
	coords, err := c.Coordinates()
	if err != nil {
		return r3.Vector{}, err
	}
	return coords[len(coords)-1], nil
}

// Clone returns a deep copy of the configuration.
func (c *Configuration) Clone() *Configuration {
	cp := *c
	cp.curvature = append([]float64(nil), c.curvature...)
	cp.coords = append([]r3.Vector(nil), c.coords...)
	return &cp
}

// Backbone computes the world-frame backbone for the given curvature using the configuration's
// length and base pose, without changing the configuration's state.
func (c *Configuration) Backbone(robot *Robot, curvature []float64) ([]r3.Vector, error) {
	pts, err := ComputeBackbone(c.length, robot.Segments(), curvature, robot.Layout())
	if err != nil {
		return nil, err
	}
	for i, pt := range pts {
		pts[i] = c.base.Transform(pt)
	}
	return pts, nil
}

// Arcs is the curve form of Backbone: the world-frame arcs between consecutive backbone points.
func (c *Configuration) Arcs(robot *Robot, curvature []float64) ([]spatialmath.Arc, error) {
	arcs, err := ComputeArcs(c.length, robot.Segments(), curvature, robot.Layout())
	if err != nil {
		return nil, err
	}
	for i, a := range arcs {
		arcs[i] = a.Transform(c.base)
	}
	return arcs, nil
}
