package config

import (
	"errors"
	"go/format"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/tdcr/kinematics"
	"go.viam.com/tdcr/motionplan/ik"
	"go.viam.com/tdcr/referenceframe"
)

func TestReadStraight(t *testing.T) {
	scene, err := ReadFile("testdata/straight.yaml")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scene.Planner.MaxIter, test.ShouldEqual, 10)
	// unset keys keep their defaults
	test.That(t, scene.Planner.MaxLengthStep, test.ShouldEqual, NewDefaultScene().Planner.MaxLengthStep)
	test.That(t, scene.Solver.Method, test.ShouldEqual, "kinematic")

	setup, err := scene.Build()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, setup.Robot.Segments(), test.ShouldEqual, 5)
	test.That(t, setup.Start.Length(), test.ShouldEqual, 0.1)
	test.That(t, setup.Start.Curvature(), test.ShouldResemble, []float64{0, 0, 0, 0, 0})
	test.That(t, setup.Taskspace.Obstacles(), test.ShouldBeEmpty)
	test.That(t, setup.Taskspace.Target().Center(), test.ShouldResemble, r3.Vector{Z: 0.5})
	test.That(t, setup.Options.Method, test.ShouldEqual, ik.MethodKinematic)
	test.That(t, setup.Options.Solver.Tolerance, test.ShouldEqual, ik.NewDefaultSolverOptions().Tolerance)
}

func TestReadObstacles(t *testing.T) {
	scene, err := ReadFile("testdata/obstacles.yaml")
	test.That(t, err, test.ShouldBeNil)
	setup, err := scene.Build()
	test.That(t, err, test.ShouldBeNil)

	test.That(t, setup.Start.Curvature(), test.ShouldResemble, []float64{0, 0, 0, 0.01, 0.01})
	test.That(t, setup.Options.Method, test.ShouldEqual, ik.MethodGradient)
	test.That(t, setup.Options.Solver.Tolerance, test.ShouldEqual, 1e-7)
	test.That(t, setup.Options.Solver.MaxIterations, test.ShouldEqual, ik.NewDefaultSolverOptions().MaxIterations)
	test.That(t, setup.Options.MaxTendonStep, test.ShouldEqual, 0.0002)
	test.That(t, setup.Options.TendonLimit, test.ShouldResemble, referenceframe.Limit{Min: -0.01, Max: 0.01})
	test.That(t, setup.Options.LengthLimit, test.ShouldResemble, NewDefaultScene().Planner.LengthLimit)

	obstacles := setup.Taskspace.Obstacles()
	test.That(t, obstacles, test.ShouldHaveLength, 2)
	test.That(t, obstacles[0].ID, test.ShouldEqual, "pillar")
	test.That(t, obstacles[0].Geometry.Label(), test.ShouldEqual, "pillar")

	// (380, 560) px is 20 px left of and 40 px above the origin
	picked := obstacles[1]
	test.That(t, picked.ID, test.ShouldEqual, "obstacle_1")
	test.That(t, picked.Geometry.Center().X, test.ShouldAlmostEqual, -0.1)
	test.That(t, picked.Geometry.Center().Y, test.ShouldEqual, 0.)
	test.That(t, picked.Geometry.Center().Z, test.ShouldAlmostEqual, 0.2)
	test.That(t, picked.Geometry.Radius(), test.ShouldAlmostEqual, 0.05)
	test.That(t, picked.Weight, test.ShouldEqual, 2.)

	display := setup.View.ToDisplay(picked.Geometry.Center())
	test.That(t, display.X, test.ShouldAlmostEqual, 380)
	test.That(t, display.Y, test.ShouldAlmostEqual, 560)
}

func TestReadJSON(t *testing.T) {
	scene, err := Read(strings.NewReader(`{"robot": {"segments": 3}, "start": {"length": 0.05, "tendon": 0.001}}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scene.Robot.Segments, test.ShouldEqual, 3)
	test.That(t, scene.Robot.DiskRadius, test.ShouldEqual, DefaultDiskRadius)
	test.That(t, scene.Target, test.ShouldBeNil)

	setup, err := scene.Build()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, setup.Taskspace.Target(), test.ShouldBeNil)
	test.That(t, setup.Start.Tendon(), test.ShouldEqual, 0.001)
}

func TestReadErrors(t *testing.T) {
	_, err := ReadFile("testdata/missing.yaml")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = Read(strings.NewReader("robot: [unterminated"))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = Read(strings.NewReader("robot:\n  disks: 5\n"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "robot.disks")

	_, err = Read(strings.NewReader("planner:\n  solver:\n    tolerance: 1\n"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "planner.solver")
}

func TestValidate(t *testing.T) {
	test.That(t, NewDefaultScene().Validate(), test.ShouldBeNil)

	scene := NewDefaultScene()
	scene.Robot.DiskRadius = 0
	scene.Start.Length = -1
	scene.Start.InitialGuess = []float64{1}
	scene.Obstacles = []ObstacleConfig{
		{Radius: 0.01},
		{Center: &Point{}, Display: []float64{1, 2}, Radius: 0.01},
		{Display: []float64{1}, Weight: -1, Margin: -1},
	}
	scene.Target = &TargetConfig{}
	scene.Solver.Method = "newton"
	scene.Solver.Tolerance = 0
	scene.Planner.MaxIter = 0
	scene.View.Scale = 0

	err := scene.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	for _, want := range []string{
		"robot.disk_radius",
		"start.length",
		"start.initial_guess",
		"obstacles.0: exactly one",
		"obstacles.1: exactly one",
		"obstacles.2.display",
		"obstacles.2.weight",
		"obstacles.2.margin",
		"target.radius",
		"solver.method",
		"solver: tolerance",
		"planner: max_iter",
		"view.scale",
	} {
		test.That(t, err.Error(), test.ShouldContainSubstring, want)
	}
	test.That(t, errors.Is(err, ik.ErrUnknownMethod), test.ShouldBeTrue)

	_, err = scene.Build()
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBuildPreconditions(t *testing.T) {
	scene := NewDefaultScene()
	scene.Obstacles = []ObstacleConfig{
		{ID: "a", Center: &Point{X: 1}, Radius: 0.01},
		{ID: "a", Center: &Point{X: 2}, Radius: 0.01},
	}
	_, err := scene.Build()
	test.That(t, errors.Is(err, referenceframe.ErrDuplicateObstacle), test.ShouldBeTrue)

	scene = NewDefaultScene()
	scene.Robot.BendPlane = math.Pi / 2
	setup, err := scene.Build()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, setup.Robot.Layout(), test.ShouldResemble, kinematics.TendonLayout{Offset: DefaultDiskRadius, BendPlane: math.Pi / 2})
}

func TestSourcesFormatted(t *testing.T) {
	files, err := filepath.Glob("*.go")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, files, test.ShouldNotBeEmpty)
	for _, name := range files {
		src, err := os.ReadFile(name)
		test.That(t, err, test.ShouldBeNil)
		formatted, err := format.Source(src)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, string(formatted), test.ShouldEqual, string(src))
	}
}
