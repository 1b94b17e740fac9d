package physics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/vmath"
)

const (
	MinMass        = 0.001
	MinAngularDrag = 0.001
)

// Body is the kinematic and dynamic state of one entity.
type Body struct {
	Name string

	// Static bodies never integrate and never receive impulses.
	Static       bool
	Enabled      bool
	LockRotation bool

	position        vmath.Vec3
	orientation     vmath.Quat
	velocity        vmath.Vec3
	angularVelocity vmath.Vec3
	force           vmath.Vec3
	torque          vmath.Vec3

	mass        float64
	drag        float64
	angularDrag float64

	alive bool
}

// NewBody returns an enabled, rotation-locked body with unit angular drag.
func NewBody(name string, position vmath.Vec3, mass float64) *Body {
	b := &Body{
		Name:         name,
		Enabled:      true,
		LockRotation: true,
		position:     position,
		orientation:  vmath.Identity(),
		angularDrag:  1,
		alive:        true,
	}
	b.SetMass(mass)
	return b
}

func (b *Body) Position() vmath.Vec3            { return b.position }
func (b *Body) SetPosition(p vmath.Vec3)        { b.position = p }
func (b *Body) Orientation() vmath.Quat         { return b.orientation }
func (b *Body) Velocity() vmath.Vec3            { return b.velocity }
func (b *Body) SetVelocity(v vmath.Vec3)        { b.velocity = v }
func (b *Body) AngularVelocity() vmath.Vec3     { return b.angularVelocity }
func (b *Body) SetAngularVelocity(w vmath.Vec3) { b.angularVelocity = w }
func (b *Body) Force() vmath.Vec3               { return b.force }
func (b *Body) Torque() vmath.Vec3              { return b.torque }
func (b *Body) Mass() float64                   { return b.mass }
func (b *Body) Drag() float64                   { return b.drag }
func (b *Body) AngularDrag() float64            { return b.angularDrag }

func (b *Body) SetOrientation(q vmath.Quat) { b.orientation = q.Normalize() }

// SetMass clamps non-positive values to MinMass.
func (b *Body) SetMass(m float64) {
	if !(m > 0) || math.IsInf(m, 0) {
		m = MinMass
	}
	b.mass = m
}

// SetDrag clamps negative values to zero.
func (b *Body) SetDrag(d float64) {
	if !(d > 0) || math.IsInf(d, 0) {
		d = 0
	}
	b.drag = d
}

// SetAngularDrag clamps non-positive values to MinAngularDrag.
func (b *Body) SetAngularDrag(d float64) {
	if !(d > 0) || math.IsInf(d, 0) {
		d = MinAngularDrag
	}
	b.angularDrag = d
}

// Alive is false once the body has been destroyed or despawned.
func (b *Body) Alive() bool { return b != nil && b.alive }

// Movable reports whether the body takes part in integration and
// resolution.
func (b *Body) Movable() bool {
	return b.Alive() && b.Enabled && !b.Static
}

func (b *Body) AddForce(f vmath.Vec3) {
	b.force = b.force.Add(f)
}

// AddForceAt accumulates f and, unless rotation is locked, the torque of f
// applied at the world point.
func (b *Body) AddForceAt(f, point vmath.Vec3) {
	b.force = b.force.Add(f)
	if !b.LockRotation {
		b.torque = b.torque.Add(point.Sub(b.position).Cross(f))
	}
}

func (b *Body) AddTorque(t vmath.Vec3) {
	b.torque = b.torque.Add(t)
}

// AddImpulse changes velocity instantly by impulse/mass.
func (b *Body) AddImpulse(impulse vmath.Vec3) {
	b.velocity = b.velocity.Add(impulse.Mul(1 / b.mass))
}

func (b *Body) SetForce(f vmath.Vec3)  { b.force = f }
func (b *Body) SetTorque(t vmath.Vec3) { b.torque = t }

func (b *Body) kill() { b.alive = false }

func (b *Body) translate(d vmath.Vec3) {
	b.position = b.position.Add(d)
}

// integrate advances the body by dt. It is a no-op for bodies that are not
// movable.
func (b *Body) integrate(s *Settings, dt float64) {
	if !b.Movable() {
		return
	}

	b.force = b.force.Add(s.Gravity.Mul(b.mass))

	b.integrateRotation(s, dt)

	b.velocity = b.velocity.Add(b.force.Mul(dt / b.mass))
	b.force = vmath.Zero
	b.velocity = dampQuadratic(b.velocity, b.drag, dt)

	if b.velocity.Len()*dt >= s.MovementThreshold {
		b.position = b.position.Add(b.velocity.Mul(dt))
	}
}

func (b *Body) integrateRotation(s *Settings, dt float64) {
	if !vmath.IsZero(b.torque) {
		b.angularVelocity = b.angularVelocity.Add(b.torque.Mul(dt / b.angularDrag))
		b.torque = vmath.Zero
	} else {
		b.angularVelocity = dampQuadratic(b.angularVelocity, b.angularDrag, dt)
		if b.angularVelocity.Len() < s.RotationThreshold/b.angularDrag {
			b.angularVelocity = vmath.Zero
		}
	}

	speed := b.angularVelocity.Len()
	if speed < vmath.Epsilon {
		return
	}
	step := vmath.AxisAngle(b.angularVelocity, speed*dt)
	b.orientation = step.Mul(b.orientation).Normalize()
}

// dampQuadratic applies drag proportional to |v|² against v. The change is
// capped at |v| so drag can stop a body but never reverse it.
func dampQuadratic(v vmath.Vec3, drag, dt float64) vmath.Vec3 {
	speed := v.Len()
	if speed < vmath.Epsilon || drag == 0 {
		return v
	}
	loss := drag * speed * speed * dt
	if loss >= speed {
		return vmath.Zero
	}
	return v.Sub(v.Mul(loss / speed))
}
