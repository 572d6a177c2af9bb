package kinematics

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/tdcr/spatialmath"
)

// ComputeBackbone integrates piecewise-constant curvature into backbone points. It returns
// segmentCount+1 points in the base frame: point 0 is the origin and the backbone leaves the base
// along +Z. Each segment is an arc of length segmentLength bending in layout.BendPlane.
func ComputeBackbone(segmentLength float64, segmentCount int, curvature []float64, layout TendonLayout) ([]r3.Vector, error) {
	if err := checkSegments(segmentLength, segmentCount, curvature); err != nil {
		return nil, err
	}
	bendDir, bendAxis := bendFrame(layout)

	points := make([]r3.Vector, 0, segmentCount+1)
	points = append(points, r3.Vector{})
	frame := spatialmath.NewZeroPose()
	for _, k := range curvature {
		frame = spatialmath.Compose(frame, arcTransform(k, segmentLength, bendDir, bendAxis))
		points = append(points, frame.Point())
	}
	return points, nil
}

// ComputeArcs splits the backbone into its constant-curvature arcs, expressed in the base frame.
// Arc i runs from backbone point i to point i+1 of ComputeBackbone.
func ComputeArcs(segmentLength float64, segmentCount int, curvature []float64, layout TendonLayout) ([]spatialmath.Arc, error) {
	if err := checkSegments(segmentLength, segmentCount, curvature); err != nil {
		return nil, err
	}
	bendDir, bendAxis := bendFrame(layout)

	arcs := make([]spatialmath.Arc, 0, segmentCount)
	frame := spatialmath.NewZeroPose()
	for _, k := range curvature {
		origin := frame.Point()
		arcs = append(arcs, spatialmath.Arc{
			Start:     origin,
			Tangent:   frame.Transform(r3.Vector{Z: 1}).Sub(origin),
			Normal:    frame.Transform(bendDir).Sub(origin),
			Curvature: k,
			Length:    segmentLength,
		})
		frame = spatialmath.Compose(frame, arcTransform(k, segmentLength, bendDir, bendAxis))
	}
	return arcs, nil
}

func checkSegments(segmentLength float64, segmentCount int, curvature []float64) error {
	if segmentCount <= 0 {
		return errors.Wrapf(ErrInvalidSegmentCount, "got %d", segmentCount)
	}
	if segmentLength <= 0 || math.IsNaN(segmentLength) {
		return errors.Wrapf(ErrInvalidSegmentLength, "got %v", segmentLength)
	}
	if len(curvature) != segmentCount {
		return NewCurvatureSizeError(len(curvature), segmentCount)
	}
	return nil
}

// bendFrame returns the in-plane bend direction and the axis the backbone rotates about.
func bendFrame(layout TendonLayout) (bendDir, bendAxis r3.Vector) {
	sinP, cosP := math.Sincos(layout.BendPlane)
	return r3.Vector{X: cosP, Y: sinP}, r3.Vector{X: -sinP, Y: cosP}
}

// arcTransform returns the pose of the end of a constant-curvature arc relative to its start.
func arcTransform(kappa, length float64, bendDir, bendAxis r3.Vector) spatialmath.Pose {
	theta := kappa * length
	lateral, axial := spatialmath.ArcChord(kappa, length)
	end := bendDir.Mul(lateral).Add(r3.Vector{Z: axial})
	return spatialmath.NewPose(end, &spatialmath.R4AA{Theta: theta, RX: bendAxis.X, RY: bendAxis.Y, RZ: bendAxis.Z})
}
