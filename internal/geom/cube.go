package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/vmath"
)

// Cube is an oriented box. HalfExtents are measured along the pose's local
// axes.
type Cube struct {
	HalfExtents vmath.Vec3
}

func NewCube(halfExtents vmath.Vec3) *Cube {
	for i := range halfExtents {
		halfExtents[i] = math.Abs(halfExtents[i])
	}
	return &Cube{HalfExtents: halfExtents}
}

func (c *Cube) Kind() Kind { return KindCube }

func (c *Cube) ClosestPoint(pose Pose, p vmath.Vec3) SurfacePoint {
	local := pose.toLocal(p)

	if c.containsLocal(local) {
		return c.nearestFace(pose, local)
	}

	var clamped vmath.Vec3
	for i := 0; i < 3; i++ {
		clamped[i] = mgl64.Clamp(local[i], -c.HalfExtents[i], c.HalfExtents[i])
	}
	point := pose.toWorld(clamped)
	n := vmath.Normalize(p.Sub(point))
	if vmath.IsZero(n) {
		return c.nearestFace(pose, local)
	}
	return SurfacePoint{Position: point, Normal: n}
}

// nearestFace snaps an interior (or boundary) local point onto the face with
// the smallest exit distance.
func (c *Cube) nearestFace(pose Pose, local vmath.Vec3) SurfacePoint {
	axis := 0
	best := math.Inf(1)
	for i := 0; i < 3; i++ {
		d := c.HalfExtents[i] - math.Abs(local[i])
		if d < best {
			best = d
			axis = i
		}
	}

	sign := vmath.Sign(local[axis])
	local[axis] = sign * c.HalfExtents[axis]

	var localNormal vmath.Vec3
	localNormal[axis] = sign

	return SurfacePoint{
		Position: pose.toWorld(local),
		Normal:   pose.Rotation.Rotate(localNormal),
	}
}

func (c *Cube) containsLocal(local vmath.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(local[i]) > c.HalfExtents[i]+vmath.Epsilon {
			return false
		}
	}
	return true
}

func (c *Cube) IsPointInside(pose Pose, p vmath.Vec3) bool {
	return c.containsLocal(pose.toLocal(p))
}

func (c *Cube) HasFarthestPoint() bool { return true }

func (c *Cube) FarthestPoint(pose Pose, origin, dir vmath.Vec3, bothDirections bool) SurfacePoint {
	d := vmath.Normalize(dir)
	pos := c.support(pose, d)
	if !bothDirections {
		return pos
	}
	return supportPair(origin, pos, c.support(pose, d.Mul(-1)))
}

// support returns the extremal point along d. Axes perpendicular to d
// resolve to the face center so that flat contacts stay centered.
func (c *Cube) support(pose Pose, d vmath.Vec3) SurfacePoint {
	ld := pose.Rotation.Inverse().Rotate(d)

	var local vmath.Vec3
	for i := 0; i < 3; i++ {
		if math.Abs(ld[i]) > 1e-6 {
			local[i] = vmath.Sign(ld[i]) * c.HalfExtents[i]
		}
	}
	return SurfacePoint{Position: pose.toWorld(local), Normal: d}
}

func (c *Cube) OppositePoint(pose Pose, p, dir vmath.Vec3) vmath.Vec3 {
	return mirror(pose.Position, p, dir)
}

func (c *Cube) sealed() {}
