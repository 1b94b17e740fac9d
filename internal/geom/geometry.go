// Package geom implements the convex surfaces used for collision queries.
//
// Every variant answers the same support-function queries against a world
// Pose: closest surface point, containment, and (for bounded variants) the
// extremal point along a direction. The set of variants is closed; switch on
// Kind to handle them exhaustively.
package geom

import (
	"fmt"

	"github.com/san-kum/rigidsim/internal/vmath"
)

type Kind uint8

const (
	KindSphere Kind = iota
	KindCube
	KindPlane
	KindHalfSpace
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindCube:
		return "cube"
	case KindPlane:
		return "plane"
	case KindHalfSpace:
		return "halfspace"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "sphere":
		return KindSphere, nil
	case "cube", "box":
		return KindCube, nil
	case "plane":
		return KindPlane, nil
	case "halfspace", "half-space":
		return KindHalfSpace, nil
	default:
		return 0, fmt.Errorf("unknown shape kind: %s", s)
	}
}

// Pose places a geometry in world space.
type Pose struct {
	Position vmath.Vec3
	Rotation vmath.Quat
}

func NewPose(position vmath.Vec3) Pose {
	return Pose{Position: position, Rotation: vmath.Identity()}
}

func (p Pose) toLocal(world vmath.Vec3) vmath.Vec3 {
	return p.Rotation.Inverse().Rotate(world.Sub(p.Position))
}

func (p Pose) toWorld(local vmath.Vec3) vmath.Vec3 {
	return p.Position.Add(p.Rotation.Rotate(local))
}

// SurfacePoint is a point on a surface with its outward normal.
type SurfacePoint struct {
	Position vmath.Vec3
	Normal   vmath.Vec3
}

// Geometry is the support-function contract shared by all variants.
type Geometry interface {
	Kind() Kind

	// ClosestPoint returns the surface point nearest to p and the outward
	// normal there. Interior queries still return a surface point.
	ClosestPoint(pose Pose, p vmath.Vec3) SurfacePoint

	// IsPointInside is closed: boundary points are inside.
	IsPointInside(pose Pose, p vmath.Vec3) bool

	// HasFarthestPoint is false for unbounded surfaces.
	HasFarthestPoint() bool

	// FarthestPoint is the support mapping along dir. With bothDirections set
	// it evaluates dir and -dir and keeps the point nearer to origin.
	FarthestPoint(pose Pose, origin, dir vmath.Vec3, bothDirections bool) SurfacePoint

	// OppositePoint mirrors p through the geometry's center. A non-zero dir
	// restricts the mirror to the component of p along dir.
	OppositePoint(pose Pose, p, dir vmath.Vec3) vmath.Vec3

	sealed()
}

// SegmentIntersector is implemented by the plane-type variants.
type SegmentIntersector interface {
	IntersectSegment(pose Pose, start, end vmath.Vec3) (vmath.Vec3, bool)
}

// supportPair picks between the +dir and -dir extremal points.
func supportPair(origin vmath.Vec3, pos, neg SurfacePoint) SurfacePoint {
	if pos.Position.Sub(origin).Len() < neg.Position.Sub(origin).Len() {
		return pos
	}
	return neg
}

func mirror(center, p, dir vmath.Vec3) vmath.Vec3 {
	d := vmath.Normalize(dir)
	if vmath.IsZero(d) {
		return center.Mul(2).Sub(p)
	}
	along := d.Mul(p.Sub(center).Dot(d))
	return p.Sub(along.Mul(2))
}
