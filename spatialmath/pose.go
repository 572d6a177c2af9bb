// Package spatialmath defines spatial mathematical operations: poses, orientations and the
// circular obstacle geometry used by the planner.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a rigid transform: a translation followed by a rotation.
type Pose interface {
	Point() r3.Vector
	Orientation() quat.Number
	// Transform maps a point expressed in the pose's frame into the parent frame.
	Transform(pt r3.Vector) r3.Vector
}

// dualQuaternion defines functions to perform rigid dualQuaternion transformations in 3D.
type dualQuaternion struct {
	dualquat.Number
}

// NewZeroPose returns a pose at (0,0,0) with the identity orientation.
func NewZeroPose() Pose {
	return newDualQuaternion()
}

// NewPoseFromPoint takes in a cartesian (x,y,z) and stores it as a vector.
// It will have the same orientation as the frame it is in.
func NewPoseFromPoint(point r3.Vector) Pose {
	q := newDualQuaternion()
	q.setTranslation(point)
	return q
}

// NewPose takes in a position and an axis-angle orientation and returns a Pose.
func NewPose(point r3.Vector, aa *R4AA) Pose {
	q := &dualQuaternion{dualquat.Number{Real: aa.ToQuat()}}
	q.setTranslation(point)
	return q
}

// NewPoseFromQuat creates a pose from a translation and a unit rotation quaternion.
func NewPoseFromQuat(point r3.Vector, rot quat.Number) Pose {
	q := &dualQuaternion{dualquat.Number{Real: rot}}
	q.setTranslation(point)
	return q
}

// Since the real part of a dual quaternion should be a unit quaternion, not all zeroes, this should
// be used instead of &dualQuaternion{}.
func newDualQuaternion() *dualQuaternion {
	return &dualQuaternion{dualquat.Number{
		Real: quat.Number{Real: 1},
		Dual: quat.Number{},
	}}
}

// setTranslation correctly sets the translation quaternion against the rotation.
func (q *dualQuaternion) setTranslation(pt r3.Vector) {
	q.Dual = quat.Scale(0.5, quat.Mul(quat.Number{Imag: pt.X, Jmag: pt.Y, Kmag: pt.Z}, q.Real))
}

// Point returns the translation of the pose.
func (q *dualQuaternion) Point() r3.Vector {
	t := quat.Scale(2, quat.Mul(q.Dual, quat.Conj(q.Real)))
	return r3.Vector{X: t.Imag, Y: t.Jmag, Z: t.Kmag}
}

// Orientation returns the rotation quaternion.
func (q *dualQuaternion) Orientation() quat.Number {
	return q.Real
}

func (q *dualQuaternion) Transform(pt r3.Vector) r3.Vector {
	return rotate(q.Real, pt).Add(q.Point())
}

func (q *dualQuaternion) String() string {
	pt := q.Point()
	aa := QuatToR4AA(q.Real)
	return fmt.Sprintf("{X:%.6g Y:%.6g Z:%.6g Theta:%.6g RX:%.3g RY:%.3g RZ:%.3g}", pt.X, pt.Y, pt.Z, aa.Theta, aa.RX, aa.RY, aa.RZ)
}

// Compose takes two poses and returns a pose that is the result of applying b in the frame of a.
// Compose(a, b).Transform(p) == a.Transform(b.Transform(p)).
func Compose(a, b Pose) Pose {
	return &dualQuaternion{dualquat.Mul(toDualQuaternion(a).Number, toDualQuaternion(b).Number)}
}

// PoseAlmostEqual returns whether two poses are within epsilon in translation and orientation.
func PoseAlmostEqual(a, b Pose, epsilon float64) bool {
	if a.Point().Sub(b.Point()).Norm() > epsilon {
		return false
	}
	// q and -q are the same rotation.
	qa, qb := a.Orientation(), b.Orientation()
	dot := qa.Real*qb.Real + qa.Imag*qb.Imag + qa.Jmag*qb.Jmag + qa.Kmag*qb.Kmag
	return 1-math.Abs(dot) < epsilon
}

func toDualQuaternion(p Pose) *dualQuaternion {
	if q, ok := p.(*dualQuaternion); ok {
		return q
	}
	return NewPoseFromQuat(p.Point(), p.Orientation()).(*dualQuaternion)
}

func rotate(rot quat.Number, pt r3.Vector) r3.Vector {
	p := quat.Mul(quat.Mul(rot, quat.Number{Imag: pt.X, Jmag: pt.Y, Kmag: pt.Z}), quat.Conj(rot))
	return r3.Vector{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}
