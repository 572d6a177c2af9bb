package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

var posInf = math.Inf(1)

// Affine2 is a 2D affine transform between display coordinates and the workspace's X-Z plane.
//
// If the coefficients are (a, b, c, d, e, f), the transform is the augmented matrix
//
//	| a c e |
//	| b d f |
//	| 0 0 1 |
//
// applied to column vectors (x, z, 1).
type Affine2 struct {
	N0, N1, N2, N3, N4, N5 float64
}

// NewViewTransform returns the workspace to display transform used by a y-down screen: workspace
// units are multiplied by scale and the workspace origin lands at display point origin.
func NewViewTransform(scale float64, origin r2.Point) Affine2 {
	return Affine2{scale, 0, 0, -scale, origin.X, origin.Y}
}

// Mul returns the transform that applies o first, then aff.
func (aff Affine2) Mul(o Affine2) Affine2 {
	return Affine2{
		aff.N0*o.N0 + aff.N2*o.N1,
		aff.N1*o.N0 + aff.N3*o.N1,
		aff.N0*o.N2 + aff.N2*o.N3,
		aff.N1*o.N2 + aff.N3*o.N3,
		aff.N0*o.N4 + aff.N2*o.N5 + aff.N4,
		aff.N1*o.N4 + aff.N3*o.N5 + aff.N5,
	}
}

// Determinant returns the determinant of the linear part.
func (aff Affine2) Determinant() float64 {
	return aff.N0*aff.N3 - aff.N1*aff.N2
}

// Invert computes the inverse transform.
//
// Produces NaN values when the determinant is zero.
func (aff Affine2) Invert() Affine2 {
	invDet := 1 / aff.Determinant()
	return Affine2{
		+invDet * aff.N3,
		-invDet * aff.N1,
		-invDet * aff.N2,
		+invDet * aff.N0,
		+invDet * (aff.N2*aff.N5 - aff.N3*aff.N4),
		+invDet * (aff.N1*aff.N4 - aff.N0*aff.N5),
	}
}

// Apply transforms a 2D point.
func (aff Affine2) Apply(pt r2.Point) r2.Point {
	return r2.Point{
		X: aff.N0*pt.X + aff.N2*pt.Y + aff.N4,
		Y: aff.N1*pt.X + aff.N3*pt.Y + aff.N5,
	}
}

// ToDisplay projects a workspace point onto the X-Z plane and maps it to display coordinates.
func (aff Affine2) ToDisplay(pt r3.Vector) r2.Point {
	return aff.Apply(r2.Point{X: pt.X, Y: pt.Z})
}

// ToWorkspace maps a display point back into the workspace X-Z plane, with Y held at zero.
func (aff Affine2) ToWorkspace(pt r2.Point) r3.Vector {
	ws := aff.Invert().Apply(pt)
	return r3.Vector{X: ws.X, Y: 0, Z: ws.Y}
}
