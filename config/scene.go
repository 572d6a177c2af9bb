// Package config reads scene files: the robot, its start configuration, the taskspace and the
// planner settings for one planning problem.
package config

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/tdcr/kinematics"
	"go.viam.com/tdcr/motionplan"
	"go.viam.com/tdcr/motionplan/ik"
	"go.viam.com/tdcr/referenceframe"
	"go.viam.com/tdcr/spatialmath"
)

// default scene values.
const (
	DefaultDiskRadius    = 0.006
	DefaultSegments      = 5
	DefaultSegmentLength = 0.1

	// display units per workspace unit, and the display origin of the workspace origin.
	DefaultViewScale   = 200.
	DefaultViewOriginX = 400.
	DefaultViewOriginY = 600.

	// radius, in display units, given to obstacles placed in display coordinates.
	DefaultDisplayObstacleRadius = 10.
)

// Point is a workspace point.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vector converts the point to an r3.Vector.
func (p Point) Vector() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// RobotConfig describes the robot's disks.
type RobotConfig struct {
	DiskRadius float64 `json:"disk_radius"`
	Segments   int     `json:"segments"`
	BendPlane  float64 `json:"bend_plane"`
}

// StartConfig is the configuration planning starts from.
type StartConfig struct {
	Length       float64   `json:"length"`
	Tendon       float64   `json:"tendon"`
	InitialGuess []float64 `json:"initial_guess"`
}

// ObstacleConfig is one obstacle. Exactly one of Center and Display places it; Display is in
// display units and goes through the scene's view transform.
type ObstacleConfig struct {
	ID      string    `json:"id"`
	Center  *Point    `json:"center"`
	Display []float64 `json:"display"`
	Radius  float64   `json:"radius"`
	Weight  float64   `json:"weight"`
	Margin  float64   `json:"margin"`
}

// TargetConfig is the planning target.
type TargetConfig struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// SolverConfig selects and tunes the configuration solver.
type SolverConfig struct {
	Method           string `json:"method"`
	ik.SolverOptions `json:",squash"`
}

// ViewConfig is the workspace to display transform.
type ViewConfig struct {
	Scale   float64 `json:"scale"`
	OriginX float64 `json:"origin_x"`
	OriginY float64 `json:"origin_y"`
}

// Transform returns the view as an Affine2.
func (v ViewConfig) Transform() spatialmath.Affine2 {
	return spatialmath.NewViewTransform(v.Scale, r2.Point{X: v.OriginX, Y: v.OriginY})
}

// Scene is a complete planning problem.
type Scene struct {
	Robot     RobotConfig               `json:"robot"`
	Start     StartConfig               `json:"start"`
	Obstacles []ObstacleConfig          `json:"obstacles"`
	Target    *TargetConfig             `json:"target"`
	Planner   motionplan.PlannerOptions `json:"planner"`
	Solver    SolverConfig              `json:"solver"`
	View      ViewConfig                `json:"view"`
}

// NewDefaultScene returns a scene with the default robot, a straight start and no taskspace.
func NewDefaultScene() *Scene {
	planner := motionplan.NewDefaultPlannerOptions()
	return &Scene{
		Robot:   RobotConfig{DiskRadius: DefaultDiskRadius, Segments: DefaultSegments},
		Start:   StartConfig{Length: DefaultSegmentLength},
		Planner: *planner,
		Solver:  SolverConfig{Method: ik.MethodKinematic.String(), SolverOptions: *planner.Solver},
		View:    ViewConfig{Scale: DefaultViewScale, OriginX: DefaultViewOriginX, OriginY: DefaultViewOriginY},
	}
}

// Validate returns every problem with the scene.
func (s *Scene) Validate() error {
	var errs error
	if s.Robot.DiskRadius <= 0 {
		errs = multierr.Append(errs, fieldError("robot.disk_radius", "must be positive", s.Robot.DiskRadius))
	}
	if s.Robot.Segments <= 0 {
		errs = multierr.Append(errs, fieldError("robot.segments", "must be positive", s.Robot.Segments))
	}
	if s.Start.Length <= 0 {
		errs = multierr.Append(errs, fieldError("start.length", "must be positive", s.Start.Length))
	}
	if n := len(s.Start.InitialGuess); n != 0 && n != s.Robot.Segments {
		errs = multierr.Append(errs, fieldError("start.initial_guess", "needs one entry per segment", n))
	}
	for i, obs := range s.Obstacles {
		path := fmt.Sprintf("obstacles.%d", i)
		if (obs.Center == nil) == (obs.Display == nil) {
			errs = multierr.Append(errs, errors.Errorf("%s: exactly one of center and display is required", path))
		}
		if obs.Display != nil && len(obs.Display) != 2 {
			errs = multierr.Append(errs, fieldError(path+".display", "needs two coordinates", len(obs.Display)))
		}
		if obs.Radius < 0 || (obs.Radius == 0 && obs.Display == nil) {
			errs = multierr.Append(errs, fieldError(path+".radius", "must be positive", obs.Radius))
		}
		if obs.Weight < 0 {
			errs = multierr.Append(errs, fieldError(path+".weight", "must be non-negative", obs.Weight))
		}
		if obs.Margin < 0 {
			errs = multierr.Append(errs, fieldError(path+".margin", "must be non-negative", obs.Margin))
		}
	}
	if s.Target != nil && s.Target.Radius <= 0 {
		errs = multierr.Append(errs, fieldError("target.radius", "must be positive", s.Target.Radius))
	}
	if _, err := ik.ParseMethod(s.Solver.Method); err != nil {
		errs = multierr.Append(errs, errors.Wrap(err, "solver.method"))
	}
	if err := s.Solver.SolverOptions.Validate(); err != nil {
		errs = multierr.Append(errs, errors.Wrap(err, "solver"))
	}
	planner := s.Planner
	planner.Solver = nil
	if err := planner.Validate(); err != nil {
		errs = multierr.Append(errs, errors.Wrap(err, "planner"))
	}
	if s.View.Scale <= 0 {
		errs = multierr.Append(errs, fieldError("view.scale", "must be positive", s.View.Scale))
	}
	return errs
}

func fieldError(field, problem string, got interface{}) error {
	return errors.Errorf("%s %s, got %v", field, problem, got)
}

// Setup is a built scene, ready to plan.
type Setup struct {
	Robot     *kinematics.Robot
	Start     *kinematics.Configuration
	Taskspace *referenceframe.Taskspace
	Options   *motionplan.PlannerOptions
	View      spatialmath.Affine2
}

// Build validates the scene and constructs its robot, start configuration, taskspace and options.
func (s *Scene) Build() (*Setup, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	robot, err := kinematics.NewRobot(s.Robot.DiskRadius, s.Robot.Segments)
	if err != nil {
		return nil, err
	}
	robot = robot.WithBendPlane(s.Robot.BendPlane)

	start, err := kinematics.NewConfiguration(robot, s.Start.Length, s.Start.Tendon)
	if err != nil {
		return nil, err
	}
	if len(s.Start.InitialGuess) > 0 {
		if err := start.SetInitialGuess(s.Start.InitialGuess); err != nil {
			return nil, err
		}
	}

	view := s.View.Transform()
	ts := referenceframe.NewTaskspace()
	for i, obs := range s.Obstacles {
		center, radius := s.obstacleGeometry(obs, view)
		circle, err := spatialmath.NewCircle(center, radius, obs.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "obstacles.%d", i)
		}
		if obs.ID == "" {
			_, err = ts.AddObstacle(circle, obs.Weight, obs.Margin)
		} else {
			err = ts.AddNamedObstacle(obs.ID, circle, obs.Weight, obs.Margin)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "obstacles.%d", i)
		}
	}
	if s.Target != nil {
		circle, err := spatialmath.NewCircle(s.Target.Center.Vector(), s.Target.Radius, "target")
		if err != nil {
			return nil, errors.Wrap(err, "target")
		}
		if err := ts.SetTarget(circle, nil); err != nil {
			return nil, err
		}
	}

	method, err := ik.ParseMethod(s.Solver.Method)
	if err != nil {
		return nil, err
	}
	opts := s.Planner
	opts.Method = method
	solverOpts := s.Solver.SolverOptions
	opts.Solver = &solverOpts

	return &Setup{Robot: robot, Start: start, Taskspace: ts, Options: &opts, View: view}, nil
}

// obstacleGeometry returns the workspace center and radius of obs. Display placed obstacles
// default to a radius of DefaultDisplayObstacleRadius display units.
func (s *Scene) obstacleGeometry(obs ObstacleConfig, view spatialmath.Affine2) (r3.Vector, float64) {
	if obs.Center != nil {
		return obs.Center.Vector(), obs.Radius
	}
	d := obs.Display
	radius := obs.Radius
	if radius == 0 {
		radius = DefaultDisplayObstacleRadius / s.View.Scale
	}
	return view.ToWorkspace(r2.Point{X: d[0], Y: d[1]}), radius
}
