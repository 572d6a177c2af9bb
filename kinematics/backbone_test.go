package kinematics

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

var planar = TendonLayout{Offset: 0.006}

func TestStraightBackbone(t *testing.T) {
	pts, err := ComputeBackbone(0.1, 5, make([]float64, 5), planar)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pts, test.ShouldHaveLength, 6)
	test.That(t, pts[0], test.ShouldResemble, r3.Vector{})
	for i, pt := range pts {
		test.That(t, pt.X, test.ShouldAlmostEqual, 0)
		test.That(t, pt.Y, test.ShouldAlmostEqual, 0)
		test.That(t, pt.Z, test.ShouldAlmostEqual, 0.1*float64(i))
	}
}

func TestConstantCurvatureIsCircularArc(t *testing.T) {
	const (
		k = 4.
		s = 0.1
		n = 5
	)
	curvature := []float64{k, k, k, k, k}
	pts, err := ComputeBackbone(s, n, curvature, planar)
	test.That(t, err, test.ShouldBeNil)

	// Every point lies on the circle of radius 1/k centered at (1/k, 0, 0).
	center := r3.Vector{X: 1 / k}
	for _, pt := range pts {
		test.That(t, pt.Sub(center).Norm(), test.ShouldAlmostEqual, 1/k, 1e-12)
	}
	total := k * s * n
	tip := pts[n]
	test.That(t, tip.X, test.ShouldAlmostEqual, (1-math.Cos(total))/k, 1e-12)
	test.That(t, tip.Z, test.ShouldAlmostEqual, math.Sin(total)/k, 1e-12)
}

func TestBendPlane(t *testing.T) {
	layout := TendonLayout{Offset: 0.006, BendPlane: math.Pi / 2}
	pts, err := ComputeBackbone(0.1, 2, []float64{2, 2}, layout)
	test.That(t, err, test.ShouldBeNil)
	tip := pts[2]
	test.That(t, tip.X, test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, tip.Y, test.ShouldBeGreaterThan, 0)

	// Negative curvature bends the other way.
	pts, err = ComputeBackbone(0.1, 2, []float64{-2, -2}, planar)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pts[2].X, test.ShouldBeLessThan, 0)
}

func TestSmallAngleLimit(t *testing.T) {
	straight, err := ComputeBackbone(0.1, 3, []float64{0, 0, 0}, planar)
	test.That(t, err, test.ShouldBeNil)
	for _, k := range []float64{1e-3, 1e-6, 1e-9, 1e-15, -1e-9} {
		pts, err := ComputeBackbone(0.1, 3, []float64{k, 0, k}, planar)
		test.That(t, err, test.ShouldBeNil)
		for i, pt := range pts {
			test.That(t, math.IsNaN(pt.X) || math.IsNaN(pt.Z), test.ShouldBeFalse)
			test.That(t, pt.Sub(straight[i]).Norm(), test.ShouldBeLessThan, math.Abs(k)+1e-12)
		}
	}

	// The series and closed forms agree across the switch-over.
	below, err := ComputeBackbone(1, 1, []float64{0.999e-4}, planar)
	test.That(t, err, test.ShouldBeNil)
	above, err := ComputeBackbone(1, 1, []float64{1.001e-4}, planar)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, below[1].Sub(above[1]).Norm(), test.ShouldBeLessThan, 1e-6)
}

func TestArcsFollowBackbone(t *testing.T) {
	layouts := []TendonLayout{planar, {BendPlane: 0.7}}
	curvatures := [][]float64{{0, 0, 0, 0}, {2, -3, 0.5, 1e-7}, {-8, -8, 4, 12}}
	for _, layout := range layouts {
		for _, k := range curvatures {
			pts, err := ComputeBackbone(0.05, len(k), k, layout)
			test.That(t, err, test.ShouldBeNil)
			arcs, err := ComputeArcs(0.05, len(k), k, layout)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, arcs, test.ShouldHaveLength, len(k))
			for i, a := range arcs {
				test.That(t, a.Start.Sub(pts[i]).Norm(), test.ShouldBeLessThan, 1e-12)
				test.That(t, a.End().Sub(pts[i+1]).Norm(), test.ShouldBeLessThan, 1e-12)
				test.That(t, a.Tangent.Norm(), test.ShouldAlmostEqual, 1, 1e-12)
				test.That(t, a.Tangent.Dot(a.Normal), test.ShouldAlmostEqual, 0, 1e-12)
				test.That(t, a.Distance(pts[i+1]), test.ShouldBeLessThan, 1e-9)
			}
		}
	}

	_, err := ComputeArcs(0.05, 3, []float64{1}, planar)
	var sizeErr *CurvatureSizeError
	test.That(t, errors.As(err, &sizeErr), test.ShouldBeTrue)
}

func TestBackbonePreconditions(t *testing.T) {
	_, err := ComputeBackbone(0, 5, make([]float64, 5), planar)
	test.That(t, errors.Is(err, ErrInvalidSegmentLength), test.ShouldBeTrue)
	test.That(t, IsPreconditionError(err), test.ShouldBeTrue)

	_, err = ComputeBackbone(0.1, 0, nil, planar)
	test.That(t, errors.Is(err, ErrInvalidSegmentCount), test.ShouldBeTrue)

	_, err = ComputeBackbone(0.1, 5, make([]float64, 4), planar)
	var sizeErr *CurvatureSizeError
	test.That(t, errors.As(err, &sizeErr), test.ShouldBeTrue)
	test.That(t, sizeErr.Got, test.ShouldEqual, 4)
	test.That(t, sizeErr.Want, test.ShouldEqual, 5)
}
