package spatialmath

import (
	"errors"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestCircleDistance(t *testing.T) {
	c, err := NewCircle(r3.Vector{X: 0.2, Z: 0.2}, 0.02, "obstacle")
	test.That(t, err, test.ShouldBeNil)

	test.That(t, c.Distance(r3.Vector{X: 0.2, Z: 0.3}), test.ShouldAlmostEqual, 0.08)
	test.That(t, c.Distance(r3.Vector{X: 0.2, Z: 0.2}), test.ShouldAlmostEqual, -0.02)
	test.That(t, c.Contains(r3.Vector{X: 0.21, Z: 0.2}), test.ShouldBeTrue)

	test.That(t, c.ClearanceViolation(r3.Vector{X: 0.2, Z: 0.3}, 0.1), test.ShouldBeTrue)
	test.That(t, c.ClearanceViolation(r3.Vector{X: 0.2, Z: 0.3}, 0.05), test.ShouldBeFalse)
	// Penetration always violates a non-negative margin.
	test.That(t, c.ClearanceViolation(r3.Vector{X: 0.2, Z: 0.2}, 0), test.ShouldBeTrue)

	d, idx := c.MinDistance([]r3.Vector{{}, {X: 0.2, Z: 0.25}, {X: 0.2, Z: 0.5}})
	test.That(t, idx, test.ShouldEqual, 1)
	test.That(t, d, test.ShouldAlmostEqual, 0.03)
	_, idx = c.MinDistance(nil)
	test.That(t, idx, test.ShouldEqual, -1)
}

func TestCircleConstruction(t *testing.T) {
	_, err := NewCircle(r3.Vector{}, 0, "")
	test.That(t, errors.Is(err, ErrInvalidRadius), test.ShouldBeTrue)
	_, err = NewCircle(r3.Vector{}, -1, "")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestViewTransform(t *testing.T) {
	// 800x600 display, 200 px per workspace unit, workspace origin at bottom center.
	view := NewViewTransform(200, r2.Point{X: 400, Y: 600})

	px := view.ToDisplay(r3.Vector{X: 0.5, Z: 1})
	test.That(t, px.X, test.ShouldAlmostEqual, 500)
	test.That(t, px.Y, test.ShouldAlmostEqual, 400)

	ws := view.ToWorkspace(r2.Point{X: 500, Y: 400})
	test.That(t, vecAlmostEqual(ws, r3.Vector{X: 0.5, Z: 1}), test.ShouldBeTrue)

	ident := view.Mul(view.Invert())
	test.That(t, ident.N0, test.ShouldAlmostEqual, 1)
	test.That(t, ident.N3, test.ShouldAlmostEqual, 1)
	test.That(t, ident.N4, test.ShouldAlmostEqual, 0)
	test.That(t, ident.N5, test.ShouldAlmostEqual, 0)
}
