// Package session owns the state an interactive shell plans against: one robot, its taskspace,
// and the configuration the next solve or plan starts from.
package session

import (
	"context"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/tdcr/kinematics"
	"go.viam.com/tdcr/logging"
	"go.viam.com/tdcr/motionplan"
	"go.viam.com/tdcr/motionplan/ik"
	"go.viam.com/tdcr/referenceframe"
	"go.viam.com/tdcr/spatialmath"
)

// ErrPlanInProgress is returned when Plan is called while another plan on the same session runs.
var ErrPlanInProgress = errors.New("a plan is already running on this session")

// A Session serialises access to a taskspace and current configuration. Obstacles and the target
// may be changed between plans; changes wait for a running plan or solve to finish.
type Session struct {
	mu       sync.RWMutex
	robot    *kinematics.Robot
	ts       *referenceframe.Taskspace
	current  *kinematics.Configuration
	lastPath motionplan.Path
	opts     *motionplan.PlannerOptions
	view     *spatialmath.Affine2

	planning atomic.Bool
	logger   logging.Logger
}

// New makes a new session with an empty taskspace starting from start. A nil opts selects the
// planner defaults.
func New(
	robot *kinematics.Robot,
	start *kinematics.Configuration,
	opts *motionplan.PlannerOptions,
	logger logging.Logger,
) (*Session, error) {
	return NewWithTaskspace(robot, start, referenceframe.NewTaskspace(), opts, logger)
}

// NewWithTaskspace makes a new session that owns ts. The caller must not modify ts afterwards.
func NewWithTaskspace(
	robot *kinematics.Robot,
	start *kinematics.Configuration,
	ts *referenceframe.Taskspace,
	opts *motionplan.PlannerOptions,
	logger logging.Logger,
) (*Session, error) {
	if ts == nil {
		return nil, errors.New("session requires a taskspace")
	}
	if robot == nil || start == nil {
		return nil, errors.New("session requires a robot and a start configuration")
	}
	if err := start.Validate(robot); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = motionplan.NewDefaultPlannerOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewBlankLogger("session")
	}
	return &Session{
		robot:   robot,
		ts:      ts,
		current: start.Clone(),
		opts:    opts,
		logger:  logger,
	}, nil
}

// Robot returns the session's robot.
func (s *Session) Robot() *kinematics.Robot {
	return s.robot
}

// Taskspace returns a copy of the session's taskspace.
func (s *Session) Taskspace() *referenceframe.Taskspace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ts.Clone()
}

// Current returns a copy of the configuration the next solve or plan starts from.
func (s *Session) Current() *kinematics.Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// SetCurrent replaces the current configuration.
func (s *Session) SetCurrent(cfg *kinematics.Configuration) error {
	if err := cfg.Validate(s.robot); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = cfg.Clone()
	return nil
}

// LastPath returns the path of the most recent plan.
func (s *Session) LastPath() motionplan.Path {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPath
}

// SetView installs the transform between workspace and display coordinates.
func (s *Session) SetView(view *spatialmath.Affine2) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = view
}

// AddObstacle adds a circular obstacle in workspace coordinates and returns its id.
func (s *Session) AddObstacle(center r3.Vector, radius, weight, margin float64) (string, error) {
	circle, err := spatialmath.NewCircle(center, radius, "")
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ts.AddObstacle(circle, weight, margin)
}

// SetTarget replaces the target with a circle in workspace coordinates.
func (s *Session) SetTarget(center r3.Vector, radius float64) error {
	circle, err := spatialmath.NewCircle(center, radius, "target")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ts.SetTarget(circle, nil)
}

// Solve runs the forward model on the current configuration. On success the solved
// configuration becomes current.
func (s *Session) Solve(ctx context.Context, enforceConstraints bool) (*ik.Result, error) {
	solver, err := ik.NewSolver(s.opts.Method, s.opts.Solver, s.logger.Sublogger("ik"))
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := ik.Solve(ctx, solver, s.robot, s.current, s.ts, enforceConstraints)
	if err != nil {
		return res, err
	}
	s.current = res.Configuration
	return res, nil
}

// Plan generates a path from the current configuration to the target. Whenever at least one step
// was accepted, the last step becomes the current configuration, solved, so the next plan starts
// where this one stopped.
func (s *Session) Plan(ctx context.Context) (*motionplan.PlanResult, error) {
	if !s.planning.CompareAndSwap(false, true) {
		return nil, ErrPlanInProgress
	}
	defer s.planning.Store(false)

	runID := uuid.New().String()
	s.mu.RLock()
	req := &motionplan.PlanRequest{
		Robot:     s.robot,
		Start:     s.current.Clone(),
		Taskspace: s.ts,
		Options:   s.opts,
		Logger:    s.logger.Sublogger("plan"),
	}
	s.logger.Infow("planning", "run_id", runID, "obstacles", len(s.ts.Obstacles()), "max_iter", s.opts.MaxIter)
	res, err := motionplan.GeneratePath(ctx, req)
	s.mu.RUnlock()
	if res == nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastPath = res.Path
	if res.Final != nil {
		s.current = res.Final
	}
	s.mu.Unlock()
	s.logger.Infow("planning finished", "run_id", runID, "state", res.State.String(), "steps", len(res.Path))
	return res, err
}

// Resume loads a saved path and makes its last step the current configuration, keeping the
// current base pose.
func (s *Session) Resume(file string) (motionplan.PathStep, error) {
	path, err := LoadPath(file)
	if err != nil {
		return motionplan.PathStep{}, err
	}
	if len(path) == 0 {
		return motionplan.PathStep{}, errors.Wrapf(ErrEmptyPath, "%q", file)
	}
	last := path.Last()
	cfg, err := last.Configuration(s.robot)
	if err != nil {
		return motionplan.PathStep{}, errors.Wrapf(err, "cannot resume from %q", file)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg.SetBase(s.current.Base())
	s.current = cfg
	s.lastPath = path
	return last, nil
}

// Backbone2D returns the x/z projection of the current configuration's solved backbone, in
// workspace units.
func (s *Session) Backbone2D() ([]r2.Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coords, err := s.current.Coordinates()
	if err != nil {
		return nil, err
	}
	return Project(coords), nil
}

// DisplayBackbone returns the current backbone in display coordinates. It fails when no view is
// installed.
func (s *Session) DisplayBackbone() ([]r2.Point, error) {
	s.mu.RLock()
	view := s.view
	s.mu.RUnlock()
	if view == nil {
		return nil, errors.New("session has no view transform")
	}
	pts, err := s.Backbone2D()
	if err != nil {
		return nil, err
	}
	for i, pt := range pts {
		pts[i] = view.Apply(pt)
	}
	return pts, nil
}

// Project drops the y coordinate of each point.
func Project(coords []r3.Vector) []r2.Point {
	pts := make([]r2.Point, len(coords))
	for i, c := range coords {
		pts[i] = r2.Point{X: c.X, Y: c.Z}
	}
	return pts
}
