package physics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/vmath"
)

// correctPosition separates an overlapping solid pair along the contact
// normal. Two movable bodies share the translation equally.
func correctPosition(a, b *Shape, n vmath.Vec3) {
	ma, mb := a.movable(), b.movable()
	if !ma && !mb {
		return
	}
	sa, sb, ok := supportPoints(a, b, n)
	if !ok {
		return
	}
	depth := sa.Sub(sb).Dot(n)

	// With a center buried in the other shape the short way out may be
	// through the far side. Unbounded shapes have no far side.
	if a.Bounded() && b.Bounded() && (b.contains(a.Position()) || a.contains(b.Position())) {
		ra := a.opposite(sa, n)
		rb := b.opposite(sb, n)
		if alt := rb.Sub(ra).Dot(n); alt > 0 && (depth <= 0 || alt < depth) {
			n, depth = n.Mul(-1), alt
		}
	}
	if depth <= 0 {
		return
	}

	shareA, shareB := 0.5, 0.5
	switch {
	case !mb:
		shareA, shareB = 1, 0
	case !ma:
		shareA, shareB = 0, 1
	}
	if shareA > 0 {
		a.Body.translate(n.Mul(-depth * shareA))
	}
	if shareB > 0 {
		b.Body.translate(n.Mul(depth * shareB))
	}
}

// resolveContact converts the contact into forces on each movable side and
// records the larger normal force on hit.
func resolveContact(s *Settings, hit *HitResult, dt float64) {
	a, b := hit.Shape, hit.Other
	fa := resolveSide(s, a, b, hit.Point, hit.Normal, dt)
	fb := resolveSide(s, b, a, hit.Point, hit.Normal.Mul(-1), dt)
	hit.NormalForce = math.Max(fa, fb)
}

// resolveSide applies restitution and friction to target, where n points
// from target toward other. It returns the normal force magnitude applied.
func resolveSide(s *Settings, target, other *Shape, point, n vmath.Vec3, dt float64) float64 {
	if !target.movable() {
		return 0
	}
	body := target.Body
	m := body.Mass()
	v := body.Velocity()

	var vo vmath.Vec3
	otherDynamic := other.movable()
	if otherDynamic {
		vo = other.Body.Velocity()
	}

	u1 := v.Dot(n)
	u2 := vo.Dot(n)
	approaching := u1-u2 > 0
	if !otherDynamic {
		approaching = u1 > 0
	}

	var normalForce float64
	if approaching {
		e := s.BounceBlend.Blend(target.Bounce, other.Bounce)

		var v1 float64
		if otherDynamic {
			m2 := other.Body.Mass()
			v1 = (m*u1 + m2*u2 + m2*e*(u2-u1)) / (m + m2)
		} else {
			v1 = -e * u1
		}

		f := n.Mul((v1 - u1) * m / dt)
		body.AddForceAt(f, point)
		normalForce = f.Len()
	}

	applyFriction(s, target, other, n, normalForce, dt)
	return normalForce
}

// applyFriction opposes tangential velocity without letting it reverse
// within the step.
func applyFriction(s *Settings, target, other *Shape, n vmath.Vec3, normalForce, dt float64) {
	if normalForce == 0 {
		return
	}
	body := target.Body
	m := body.Mass()

	vt := vmath.ProjectOnPlane(body.Velocity(), n)
	if vmath.IsZero(vt) {
		return
	}

	mu := s.FrictionBlend.Blend(target.DynamicFriction, other.DynamicFriction)
	if vt.Len()*dt < s.MovementThreshold {
		mu = s.FrictionBlend.Blend(target.StaticFriction, other.StaticFriction)
	}
	if mu <= 0 {
		return
	}

	acc := vmath.ProjectOnPlane(body.Force(), n)
	friction := vmath.Normalize(vt).Mul(-normalForce * mu)

	next := vt.Add(acc.Add(friction).Mul(dt / m))
	if next.Dot(vt) < 0 {
		friction = vt.Mul(-m / dt).Sub(acc)
	}
	body.AddForce(friction)
}
