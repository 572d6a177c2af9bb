package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// Below this bend angle an arc's chord comes from its Taylor series.
const smallArcAngle = 1e-4

// Arcs sweeping less than this are measured as their chord, which strays from the curve by at
// most sweep*length/8.
const straightArcSweep = 1e-6

// ArcChord returns the end point of a constant-curvature arc of the given length that leaves the
// origin along +axial, as its offset toward the bend direction (lateral) and along the start
// tangent (axial).
func ArcChord(curvature, length float64) (lateral, axial float64) {
	theta := curvature * length
	if math.Abs(theta) < smallArcAngle {
		t2 := theta * theta
		return length * theta * (0.5 - t2/24 + t2*t2/720), length * (1 - t2/6 + t2*t2/120)
	}
	sinT, cosT := math.Sincos(theta)
	return (1 - cosT) / curvature, sinT / curvature
}

// Arc is one constant-curvature piece of a backbone. It starts at Start heading along the unit
// Tangent and bends toward the unit Normal; a negative Curvature bends away from Normal.
type Arc struct {
	Start     r3.Vector
	Tangent   r3.Vector
	Normal    r3.Vector
	Curvature float64
	Length    float64
}

// PointAt returns the point at arc length t from Start.
func (a Arc) PointAt(t float64) r3.Vector {
	lateral, axial := ArcChord(a.Curvature, t)
	return a.Start.Add(a.Tangent.Mul(axial)).Add(a.Normal.Mul(lateral))
}

// End returns the last point of the arc.
func (a Arc) End() r3.Vector {
	return a.PointAt(a.Length)
}

// Distance returns the distance from pt to the nearest point of the arc.
func (a Arc) Distance(pt r3.Vector) float64 {
	sweep := math.Abs(a.Curvature) * a.Length
	if sweep < straightArcSweep {
		return segmentDistance(a.Start, a.End(), pt)
	}

	radius := 1 / math.Abs(a.Curvature)
	inward := a.Normal
	if a.Curvature < 0 {
		inward = inward.Mul(-1)
	}
	center := a.Start.Add(inward.Mul(radius))

	// polar coordinates of pt in the arc's plane, measured from the start direction
	q := pt.Sub(center)
	u := q.Dot(inward.Mul(-1))
	v := q.Dot(a.Tangent)
	rho := math.Hypot(u, v)
	h2 := math.Max(0, q.Norm2()-u*u-v*v)
	if rho == 0 {
		return math.Sqrt(radius*radius + h2)
	}
	phi := math.Atan2(v, u)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	if phi <= sweep {
		return math.Sqrt((rho-radius)*(rho-radius) + h2)
	}
	return math.Min(pt.Sub(a.Start).Norm(), pt.Sub(a.End()).Norm())
}

// Transform returns the arc expressed in the parent frame of p.
func (a Arc) Transform(p Pose) Arc {
	origin := p.Point()
	return Arc{
		Start:     p.Transform(a.Start),
		Tangent:   p.Transform(a.Tangent).Sub(origin),
		Normal:    p.Transform(a.Normal).Sub(origin),
		Curvature: a.Curvature,
		Length:    a.Length,
	}
}

func segmentDistance(from, to, pt r3.Vector) float64 {
	d := to.Sub(from)
	l2 := d.Norm2()
	if l2 == 0 {
		return pt.Sub(from).Norm()
	}
	t := math.Max(0, math.Min(1, pt.Sub(from).Dot(d)/l2))
	return pt.Sub(from.Add(d.Mul(t))).Norm()
}
