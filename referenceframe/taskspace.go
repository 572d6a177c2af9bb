package referenceframe

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/tdcr/spatialmath"
)

var (
	// ErrNegativeWeight is returned when an obstacle is added with a negative weight.
	ErrNegativeWeight = errors.New("obstacle weight must be non-negative")
	// ErrNegativeMargin is returned when an obstacle is added with a negative clearance margin.
	ErrNegativeMargin = errors.New("obstacle clearance margin must be non-negative")
	// ErrDuplicateObstacle is returned when an obstacle id is reused.
	ErrDuplicateObstacle = errors.New("obstacle id already present")
)

const obstacleIDPrefix = "obstacle_"

// Obstacle is an entry in a Taskspace: a circle together with the weight of its clearance penalty
// and the minimum distance the backbone must keep from its surface.
type Obstacle struct {
	ID       string
	Geometry *spatialmath.Circle
	Weight   float64
	Margin   float64
}

// Target is the region the planner steers the backbone tip into.
type Target struct {
	Geometry    *spatialmath.Circle
	Orientation *spatialmath.R4AA
}

// Center returns the target center.
func (t *Target) Center() r3.Vector {
	return t.Geometry.Center()
}

// Radius returns the target radius.
func (t *Target) Radius() float64 {
	return t.Geometry.Radius()
}

// Reached returns whether pt lies within the target radius of its center.
func (t *Target) Reached(pt r3.Vector) bool {
	return pt.Sub(t.Center()).Norm() <= t.Radius()
}

// Taskspace holds the obstacles and optional target for planning. Obstacles are append-only and
// iterate in insertion order. The target is replaced wholesale. A Taskspace is not safe for
// concurrent mutation; solvers and planners only read it.
type Taskspace struct {
	obstacles []*Obstacle
	byID      map[string]*Obstacle
	target    *Target
}

// NewTaskspace returns an empty taskspace.
func NewTaskspace() *Taskspace {
	return &Taskspace{byID: map[string]*Obstacle{}}
}

// AddObstacle appends an obstacle with a generated id and returns that id.
func (ts *Taskspace) AddObstacle(circle *spatialmath.Circle, weight, margin float64) (string, error) {
	id := fmt.Sprintf("%s%d", obstacleIDPrefix, len(ts.obstacles))
	for ts.byID[id] != nil {
		id += "_"
	}
	return id, ts.AddNamedObstacle(id, circle, weight, margin)
}

// AddNamedObstacle appends an obstacle under the given id.
func (ts *Taskspace) AddNamedObstacle(id string, circle *spatialmath.Circle, weight, margin float64) error {
	if circle == nil {
		return errors.New("obstacle geometry cannot be nil")
	}
	if weight < 0 || math.IsNaN(weight) {
		return errors.Wrapf(ErrNegativeWeight, "obstacle %q has weight %v", id, weight)
	}
	if margin < 0 || math.IsNaN(margin) {
		return errors.Wrapf(ErrNegativeMargin, "obstacle %q has margin %v", id, margin)
	}
	if _, ok := ts.byID[id]; ok {
		return errors.Wrapf(ErrDuplicateObstacle, "%q", id)
	}
	obs := &Obstacle{ID: id, Geometry: circle, Weight: weight, Margin: margin}
	ts.obstacles = append(ts.obstacles, obs)
	ts.byID[id] = obs
	return nil
}

// Obstacle looks up an obstacle by id.
func (ts *Taskspace) Obstacle(id string) (*Obstacle, bool) {
	obs, ok := ts.byID[id]
	return obs, ok
}

// Obstacles returns the obstacles in insertion order.
func (ts *Taskspace) Obstacles() []*Obstacle {
	return append([]*Obstacle(nil), ts.obstacles...)
}

// WeightedObstacles returns the obstacles whose clearance is enforced, in insertion order.
func (ts *Taskspace) WeightedObstacles() []*Obstacle {
	weighted := make([]*Obstacle, 0, len(ts.obstacles))
	for _, obs := range ts.obstacles {
		if obs.Weight > 0 {
			weighted = append(weighted, obs)
		}
	}
	return weighted
}

// SetTarget replaces the target. A nil orientation means the approach direction is free.
func (ts *Taskspace) SetTarget(circle *spatialmath.Circle, orientation *spatialmath.R4AA) error {
	if circle == nil {
		return errors.New("target geometry cannot be nil")
	}
	ts.target = &Target{Geometry: circle, Orientation: orientation}
	return nil
}

// ClearTarget removes the target.
func (ts *Taskspace) ClearTarget() {
	ts.target = nil
}

// Target returns the current target, or nil.
func (ts *Taskspace) Target() *Target {
	return ts.target
}

// Clone returns a copy of the taskspace that can be mutated independently.
func (ts *Taskspace) Clone() *Taskspace {
	cp := NewTaskspace()
	for _, obs := range ts.obstacles {
		o := *obs
		cp.obstacles = append(cp.obstacles, &o)
		cp.byID[o.ID] = &o
	}
	if ts.target != nil {
		tgt := *ts.target
		cp.target = &tgt
	}
	return cp
}

// ClearanceViolations returns the ids of weighted obstacles that any point of arcs comes closer to
// than margin - slack.
func (ts *Taskspace) ClearanceViolations(arcs []spatialmath.Arc, slack float64) []string {
	var violated []string
	for _, obs := range ts.WeightedObstacles() {
		if d, _ := obs.Geometry.MinArcDistance(arcs); d < obs.Margin-slack {
			violated = append(violated, obs.ID)
		}
	}
	return violated
}
