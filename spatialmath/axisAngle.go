package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// If an axis-angle rotation is smaller than this, it is treated as the identity.
const angleEpsilon = 1e-12

// R4AA represents an R4 axis angle.
type R4AA struct {
	Theta float64 `json:"th"`
	RX    float64 `json:"x"`
	RY    float64 `json:"y"`
	RZ    float64 `json:"z"`
}

// NewR4AA creates an empty R4AA struct.
func NewR4AA() *R4AA {
	return &R4AA{Theta: 0, RX: 0, RY: 0, RZ: 1}
}

// ToQuat converts an R4 axis angle to a unit quaternion.
// See: https://www.euclideanspace.com/maths/geometry/rotations/conversions/angleToQuaternion/index.htm
func (r4 *R4AA) ToQuat() quat.Number {
	norm := math.Sqrt(r4.RX*r4.RX + r4.RY*r4.RY + r4.RZ*r4.RZ)
	if math.Abs(r4.Theta) < angleEpsilon || norm == 0 {
		return quat.Number{Real: 1}
	}
	sinA, cosA := math.Sincos(r4.Theta / 2)
	return quat.Number{
		Real: cosA,
		Imag: r4.RX / norm * sinA,
		Jmag: r4.RY / norm * sinA,
		Kmag: r4.RZ / norm * sinA,
	}
}

// QuatToR4AA converts a quat to an R4 axis angle in the same way the C++ Eigen library does.
// https://eigen.tuxfamily.org/dox/AngleAxis_8h_source.html
func QuatToR4AA(q quat.Number) R4AA {
	denom := math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if denom < angleEpsilon {
		return R4AA{Theta: 0, RX: 0, RY: 0, RZ: 1}
	}
	theta := 2 * math.Atan2(denom, math.Abs(q.Real))
	if q.Real < 0 {
		denom = -denom
	}
	return R4AA{Theta: theta, RX: q.Imag / denom, RY: q.Jmag / denom, RZ: q.Kmag / denom}
}
