package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestPosePoint(t *testing.T) {
	p := NewPoseFromPoint(r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, vecAlmostEqual(p.Point(), r3.Vector{X: 1, Y: 2, Z: 3}), test.ShouldBeTrue)
	test.That(t, vecAlmostEqual(p.Transform(r3.Vector{}), r3.Vector{X: 1, Y: 2, Z: 3}), test.ShouldBeTrue)

	zero := NewZeroPose()
	test.That(t, zero.Point().Norm(), test.ShouldAlmostEqual, 0)
	test.That(t, zero.Orientation().Real, test.ShouldAlmostEqual, 1)
}

func TestPoseRotation(t *testing.T) {
	// A quarter turn about +Y takes +Z onto +X.
	p := NewPose(r3.Vector{X: 0, Y: 0, Z: 1}, &R4AA{Theta: math.Pi / 2, RY: 1})
	got := p.Transform(r3.Vector{Z: 1})
	test.That(t, vecAlmostEqual(got, r3.Vector{X: 1, Y: 0, Z: 1}), test.ShouldBeTrue)
	test.That(t, vecAlmostEqual(p.Point(), r3.Vector{Z: 1}), test.ShouldBeTrue)
}

func TestCompose(t *testing.T) {
	a := NewPose(r3.Vector{X: 1}, &R4AA{Theta: math.Pi / 2, RZ: 1})
	b := NewPose(r3.Vector{X: 2}, &R4AA{Theta: 0.3, RX: 1})
	pt := r3.Vector{X: 0.1, Y: -0.4, Z: 2}

	composed := Compose(a, b)
	want := a.Transform(b.Transform(pt))
	test.That(t, composed.Transform(pt).Sub(want).Norm(), test.ShouldBeLessThan, 1e-12)
	// b's origin lands at a(2,0,0) = (1,2,0).
	test.That(t, composed.Point().Sub(r3.Vector{X: 1, Y: 2}).Norm(), test.ShouldBeLessThan, 1e-12)
}

func TestAxisAngleRoundTrip(t *testing.T) {
	aa := R4AA{Theta: 1.2, RX: 0, RY: 3, RZ: 4}
	back := QuatToR4AA(aa.ToQuat())
	test.That(t, back.Theta, test.ShouldAlmostEqual, 1.2)
	test.That(t, back.RY, test.ShouldAlmostEqual, 0.6)
	test.That(t, back.RZ, test.ShouldAlmostEqual, 0.8)

	test.That(t, NewR4AA().ToQuat().Real, test.ShouldEqual, 1.)
	test.That(t, PoseAlmostEqual(NewPose(r3.Vector{}, &aa), NewPose(r3.Vector{}, &back), 1e-9), test.ShouldBeTrue)
}

func vecAlmostEqual(a, b r3.Vector) bool {
	return a.Sub(b).Norm() < 1e-9
}
