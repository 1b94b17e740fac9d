package geom

import (
	"math"

	"github.com/san-kum/rigidsim/internal/vmath"
)

// HalfSpaceTolerance is the rounding step applied to signed distances in
// the half-space containment test.
const HalfSpaceTolerance = 1e-3

// Plane is an infinite, zero-thickness surface through the pose position.
// Its normal is the pose's local up axis.
type Plane struct{}

func NewPlane() *Plane { return &Plane{} }

func (pl *Plane) Kind() Kind { return KindPlane }

func (pl *Plane) Normal(pose Pose) vmath.Vec3 {
	return vmath.NormalizeOr(pose.Rotation.Rotate(vmath.Up), vmath.Up)
}

func (pl *Plane) SignedDistance(pose Pose, p vmath.Vec3) float64 {
	return pl.Normal(pose).Dot(p.Sub(pose.Position))
}

func (pl *Plane) ClosestPoint(pose Pose, p vmath.Vec3) SurfacePoint {
	n := pl.Normal(pose)
	return SurfacePoint{
		Position: pose.Position.Add(vmath.ProjectOnPlane(p.Sub(pose.Position), n)),
		Normal:   n,
	}
}

func (pl *Plane) IsPointInside(pose Pose, p vmath.Vec3) bool {
	return math.Abs(pl.SignedDistance(pose, p)) <= vmath.Epsilon
}

func (pl *Plane) HasFarthestPoint() bool { return false }

func (pl *Plane) FarthestPoint(Pose, vmath.Vec3, vmath.Vec3, bool) SurfacePoint {
	return SurfacePoint{}
}

// OppositePoint reflects p across the plane.
func (pl *Plane) OppositePoint(pose Pose, p, _ vmath.Vec3) vmath.Vec3 {
	return pose.Position.Add(vmath.Reflect(p.Sub(pose.Position), pl.Normal(pose)))
}

// IntersectSegment reports whether the segment crosses the surface and
// where.
func (pl *Plane) IntersectSegment(pose Pose, start, end vmath.Vec3) (vmath.Vec3, bool) {
	ds := pl.SignedDistance(pose, start)
	de := pl.SignedDistance(pose, end)
	if ds*de > 0 {
		return vmath.Zero, false
	}
	if ds == de {
		return start, true
	}
	t := ds / (ds - de)
	return start.Add(end.Sub(start).Mul(t)), true
}

func (pl *Plane) sealed() {}

// HalfSpace is the solid region below a Plane.
type HalfSpace struct {
	Plane
}

func NewHalfSpace() *HalfSpace { return &HalfSpace{} }

func (h *HalfSpace) Kind() Kind { return KindHalfSpace }

// IsPointInside rounds the signed distance so that contacts sitting on the
// surface are not lost to float noise.
func (h *HalfSpace) IsPointInside(pose Pose, p vmath.Vec3) bool {
	return vmath.RoundTo(h.SignedDistance(pose, p), HalfSpaceTolerance) <= 0
}
