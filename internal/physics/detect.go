package physics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/vmath"
)

// AlignToleranceDeg is how far two independently derived contact normals
// may diverge and still be treated as the same contact.
const AlignToleranceDeg = 2.0

func (s *Shape) closest(p vmath.Vec3) geom.SurfacePoint {
	return s.Geometry.ClosestPoint(s.WorldPose(), p)
}

func (s *Shape) contains(p vmath.Vec3) bool {
	return s.Geometry.IsPointInside(s.WorldPose(), p)
}

func (s *Shape) farthest(origin, dir vmath.Vec3, both bool) geom.SurfacePoint {
	return s.Geometry.FarthestPoint(s.WorldPose(), origin, dir, both)
}

func (s *Shape) opposite(p, dir vmath.Vec3) vmath.Vec3 {
	return s.Geometry.OppositePoint(s.WorldPose(), p, dir)
}

// Detect tests a pair of shapes for contact. The result is expressed from
// a's side: Normal points from a toward b. Detect has no side effects.
func Detect(a, b *Shape) (HitResult, bool) {
	if a == nil || b == nil || a.Geometry == nil || b.Geometry == nil {
		return HitResult{}, false
	}

	var point, normal vmath.Vec3
	switch {
	case !a.Bounded() && b.Bounded():
		onSurface, _, n, ok := surfaceContact(a, b)
		if !ok {
			return HitResult{}, false
		}
		point, normal = onSurface, n
	case a.Bounded() && !b.Bounded():
		_, support, n, ok := surfaceContact(b, a)
		if !ok {
			return HitResult{}, false
		}
		point, normal = support, n.Mul(-1)
	default:
		var ok bool
		point, normal, ok = closestContact(a, b)
		if !ok {
			return HitResult{}, false
		}
	}

	return HitResult{
		Point:  point,
		Normal: normal,
		Depth:  penetration(a, b, normal),
		Shape:  a,
		Other:  b,
	}, true
}

// surfaceContact tests a bounded shape against a plane or half-space. The
// normal always comes from the surface and points toward body, so a body
// sunk past its own size is still pushed out on the correct side. It
// returns the contact on the surface and the body's deepest point.
func surfaceContact(surface, body *Shape) (onSurface, support, normal vmath.Vec3, ok bool) {
	pose := surface.WorldPose()
	pl, isPlane := surface.Geometry.(*geom.Plane)
	if !isPlane {
		hs, isHalfSpace := surface.Geometry.(*geom.HalfSpace)
		if !isHalfSpace {
			return vmath.Zero, vmath.Zero, vmath.Zero, false
		}
		n := hs.Normal(pose)
		deepest := body.farthest(pose.Position, n.Mul(-1), false)
		if !hs.IsPointInside(pose, deepest.Position) {
			return vmath.Zero, vmath.Zero, vmath.Zero, false
		}
		return hs.ClosestPoint(pose, deepest.Position).Position, deepest.Position, n, true
	}

	// A plane is two-sided: the body has to straddle it, and is pushed back
	// to whichever side its center is on.
	n := pl.Normal(pose)
	above := body.farthest(pose.Position, n, false).Position
	below := body.farthest(pose.Position, n.Mul(-1), false).Position
	da, db := pl.SignedDistance(pose, above), pl.SignedDistance(pose, below)
	if da*db > 0 {
		return vmath.Zero, vmath.Zero, vmath.Zero, false
	}
	deepest := below
	if pl.SignedDistance(pose, body.Position()) < 0 {
		n, deepest = n.Mul(-1), above
	}
	return pl.ClosestPoint(pose, deepest).Position, deepest, n, true
}

// closestContact classifies a pair by testing each shape's closest point to
// the other's position for containment.
func closestContact(a, b *Shape) (vmath.Vec3, vmath.Vec3, bool) {
	posA, posB := a.Position(), b.Position()
	pa := a.closest(posB)
	pb := b.closest(posA)
	insideA := a.contains(pb.Position)
	insideB := b.contains(pa.Position)

	var point, normal vmath.Vec3
	switch {
	case insideA && insideB:
		point, normal = resolveDeep(a, b, pa, pb)
	case insideA:
		point, normal = pb.Position, pb.Normal.Mul(-1)
	case insideB:
		point, normal = pa.Position, pa.Normal
	default:
		var ok bool
		point, normal, ok = probeSupport(a, b, pa, pb)
		if !ok {
			return vmath.Zero, vmath.Zero, false
		}
	}

	normal = vmath.NormalizeOr(normal, posB.Sub(posA))
	if vmath.IsZero(normal) {
		normal = vmath.Up
	}
	return point, normal, true
}

// resolveDeep picks between the two candidate contacts when each shape's
// closest point lies inside the other.
func resolveDeep(a, b *Shape, pa, pb geom.SurfacePoint) (vmath.Vec3, vmath.Vec3) {
	if qb := b.closest(pa.Position); vmath.Aligned(pa.Normal, qb.Normal, AlignToleranceDeg) {
		return pa.Position, pa.Normal
	}
	if qa := a.closest(pb.Position); vmath.Aligned(pb.Normal, qa.Normal, AlignToleranceDeg) {
		return pb.Position, pb.Normal.Mul(-1)
	}
	return pa.Position, pa.Normal
}

// probeSupport catches overlapping pairs where neither closest point lands
// inside the other shape, such as a tilted box dipping one corner into a
// long slab.
func probeSupport(a, b *Shape, pa, pb geom.SurfacePoint) (vmath.Vec3, vmath.Vec3, bool) {
	if b.Bounded() {
		probe := b.farthest(a.Position(), pa.Normal.Mul(-1), true)
		if a.contains(probe.Position) {
			sp := a.closest(probe.Position)
			return sp.Position, sp.Normal, true
		}
	}
	if a.Bounded() {
		probe := a.farthest(b.Position(), pb.Normal.Mul(-1), true)
		if b.contains(probe.Position) {
			sp := b.closest(probe.Position)
			return sp.Position, sp.Normal.Mul(-1), true
		}
	}
	return vmath.Zero, vmath.Zero, false
}

// supportPoints returns the deepest point of each shape along the contact
// normal n (a toward b). An unbounded side uses its closest point to the
// bounded side's support.
func supportPoints(a, b *Shape, n vmath.Vec3) (sa, sb vmath.Vec3, ok bool) {
	switch {
	case a.Bounded() && b.Bounded():
		sa = a.farthest(a.Position(), n, false).Position
		sb = b.farthest(b.Position(), n.Mul(-1), false).Position
	case a.Bounded():
		sa = a.farthest(a.Position(), n, false).Position
		sb = b.closest(sa).Position
	case b.Bounded():
		sb = b.farthest(b.Position(), n.Mul(-1), false).Position
		sa = a.closest(sb).Position
	default:
		return vmath.Zero, vmath.Zero, false
	}
	return sa, sb, true
}

func penetration(a, b *Shape, n vmath.Vec3) float64 {
	sa, sb, ok := supportPoints(a, b, n)
	if !ok {
		return 0
	}
	return math.Max(0, sa.Sub(sb).Dot(n))
}
