package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ErrInvalidRadius is returned when a circle is built with a non-positive radius.
var ErrInvalidRadius = errors.New("circle radius must be greater than zero")

// Circle is a circular (spherical in 3D) obstacle or target region, described by a center and a
// radius. Planar scenes hold Y at zero. A Circle is immutable once built.
type Circle struct {
	center r3.Vector
	radius float64
	label  string
}

// NewCircle instantiates a new circle.
func NewCircle(center r3.Vector, radius float64, label string) (*Circle, error) {
	if radius <= 0 {
		return nil, errors.Wrapf(ErrInvalidRadius, "got %v", radius)
	}
	return &Circle{center: center, radius: radius, label: label}, nil
}

// Center returns the center of the circle.
func (c *Circle) Center() r3.Vector {
	return c.center
}

// Radius returns the radius of the circle.
func (c *Circle) Radius() float64 {
	return c.radius
}

// Label returns the label of the circle.
func (c *Circle) Label() string {
	return c.label
}

// Distance returns the signed distance from pt to the circle's boundary. Negative values mean
// the point is inside the circle.
func (c *Circle) Distance(pt r3.Vector) float64 {
	return pt.Sub(c.center).Norm() - c.radius
}

// ClearanceViolation is true when pt is closer than margin to the circle's boundary.
func (c *Circle) ClearanceViolation(pt r3.Vector, margin float64) bool {
	return c.Distance(pt) < margin
}

// Contains returns whether pt lies inside or on the circle.
func (c *Circle) Contains(pt r3.Vector) bool {
	return c.Distance(pt) <= 0
}

// MinDistance returns the smallest signed distance from any of pts to the circle along with the
// index of that point. An empty slice yields +Inf and -1.
func (c *Circle) MinDistance(pts []r3.Vector) (float64, int) {
	best, idx := posInf, -1
	for i, pt := range pts {
		if d := c.Distance(pt); d < best {
			best, idx = d, i
		}
	}
	return best, idx
}

// MinArcDistance returns the smallest signed distance from any point of arcs to the circle along
// with the index of the closest arc. An empty slice yields +Inf and -1.
func (c *Circle) MinArcDistance(arcs []Arc) (float64, int) {
	best, idx := posInf, -1
	for i, a := range arcs {
		if d := a.Distance(c.center) - c.radius; d < best {
			best, idx = d, i
		}
	}
	return best, idx
}

func (c *Circle) String() string {
	return fmt.Sprintf("Type: Circle | Label: %s | Center: X:%.4g, Y:%.4g, Z:%.4g | Radius: %.4g",
		c.label, c.center.X, c.center.Y, c.center.Z, c.radius)
}
