// Package kinematics computes the backbone shape of a tendon-driven continuum robot from its
// per-segment curvature.
package kinematics

import (
	"github.com/pkg/errors"
)

// TendonLayout describes where the actuating tendon is anchored on each disk.
type TendonLayout struct {
	// Offset is the distance from the backbone to the tendon, normally the disk radius.
	Offset float64
	// BendPlane is the angle about the base Z axis of the plane the tendon bends the backbone in.
	// Zero bends in the X-Z plane toward +X.
	BendPlane float64
}

// Robot is the immutable physical description of a continuum robot: a stack of disks of the
// given radius joined by flexible segments.
type Robot struct {
	diskRadius float64
	segments   int
	bendPlane  float64
}

// NewRobot returns a robot with the given disk radius and number of segments, bending in the X-Z
// plane.
func NewRobot(diskRadius float64, segments int) (*Robot, error) {
	if diskRadius <= 0 {
		return nil, errors.Wrapf(ErrInvalidDiskRadius, "got %v", diskRadius)
	}
	if segments <= 0 {
		return nil, errors.Wrapf(ErrInvalidSegmentCount, "got %d", segments)
	}
	return &Robot{diskRadius: diskRadius, segments: segments}, nil
}

// WithBendPlane returns a copy of the robot whose tendon bends the backbone in the plane at angle
// phi about the base Z axis.
func (r *Robot) WithBendPlane(phi float64) *Robot {
	cp := *r
	cp.bendPlane = phi
	return &cp
}

// DiskRadius returns the disk radius, which is also the tendon offset from the backbone.
func (r *Robot) DiskRadius() float64 {
	return r.diskRadius
}

// Segments returns the number of segments (disks).
func (r *Robot) Segments() int {
	return r.segments
}

// Layout returns the tendon layout of the robot.
func (r *Robot) Layout() TendonLayout {
	return TendonLayout{Offset: r.diskRadius, BendPlane: r.bendPlane}
}

// TendonDisplacement returns the tendon pull that produces the given curvature: the tendon at
// offset r shortens by r*s*kappa over each constant-curvature arc of length s.
func (r *Robot) TendonDisplacement(segmentLength float64, curvature []float64) float64 {
	total := 0.
	for _, k := range curvature {
		total += k
	}
	return r.diskRadius * segmentLength * total
}

// UniformCurvature returns the curvature vector that realises the tendon displacement with every
// segment bent equally.
func (r *Robot) UniformCurvature(segmentLength, tendon float64) []float64 {
	k := tendon / (r.diskRadius * segmentLength * float64(r.segments))
	curvature := make([]float64, r.segments)
	for i := range curvature {
		curvature[i] = k
	}
	return curvature
}
