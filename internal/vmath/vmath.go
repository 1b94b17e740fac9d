// Package vmath is the vector and quaternion layer used by the engine.
//
// Vectors and quaternions are the mgl64 types; this package adds the
// epsilon-aware helpers the engine relies on so that no code path
// normalizes a zero vector or compares floats for exact equality.
package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type (
	Vec3 = mgl64.Vec3
	Quat = mgl64.Quat
)

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-9

var (
	Zero    = Vec3{0, 0, 0}
	Up      = Vec3{0, 1, 0}
	Right   = Vec3{1, 0, 0}
	Forward = Vec3{0, 0, 1}
)

func Identity() Quat { return mgl64.QuatIdent() }

// Normalize returns the unit vector of v, or the zero vector when v is
// shorter than Epsilon.
func Normalize(v Vec3) Vec3 {
	return NormalizeOr(v, Zero)
}

// NormalizeOr returns the unit vector of v, or fallback when v is degenerate.
func NormalizeOr(v, fallback Vec3) Vec3 {
	l := v.Len()
	if l < Epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return fallback
	}
	return v.Mul(1 / l)
}

func IsZero(v Vec3) bool { return v.Len() < Epsilon }

// ApproxEqual compares by absolute distance.
func ApproxEqual(a, b Vec3, eps float64) bool {
	return a.Sub(b).Len() <= eps
}

func Distance(a, b Vec3) float64 { return a.Sub(b).Len() }

// AngleDeg returns the unsigned angle between a and b in degrees. Zero-length
// inputs yield 0.
func AngleDeg(a, b Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la < Epsilon || lb < Epsilon {
		return 0
	}
	c := mgl64.Clamp(a.Dot(b)/(la*lb), -1, 1)
	return mgl64.RadToDeg(math.Acos(c))
}

// Aligned reports whether a and b are parallel or anti-parallel within
// toleranceDeg.
func Aligned(a, b Vec3, toleranceDeg float64) bool {
	if IsZero(a) || IsZero(b) {
		return false
	}
	angle := AngleDeg(a, b)
	return angle <= toleranceDeg || angle >= 180-toleranceDeg
}

// Project returns the component of v along n.
func Project(v, n Vec3) Vec3 {
	l2 := n.LenSqr()
	if l2 < Epsilon*Epsilon {
		return Zero
	}
	return n.Mul(v.Dot(n) / l2)
}

// ProjectOnPlane removes the component of v along the plane normal n.
func ProjectOnPlane(v, n Vec3) Vec3 {
	return v.Sub(Project(v, n))
}

// Reflect mirrors v across the plane with normal n.
func Reflect(v, n Vec3) Vec3 {
	return v.Sub(Project(v, n).Mul(2))
}

// AxisAngle builds a rotation of angle radians about axis. A degenerate axis
// yields the identity.
func AxisAngle(axis Vec3, angle float64) Quat {
	a := Normalize(axis)
	if IsZero(a) || angle == 0 {
		return Identity()
	}
	return mgl64.QuatRotate(angle, a)
}

// Euler builds an orientation from XYZ angles in degrees.
func Euler(x, y, z float64) Quat {
	return mgl64.AnglesToQuat(
		mgl64.DegToRad(x), mgl64.DegToRad(y), mgl64.DegToRad(z), mgl64.XYZ,
	).Normalize()
}

// RoundTo rounds x to the given step, e.g. 1e-3 keeps three decimals.
func RoundTo(x, step float64) float64 {
	return math.Round(x/step) * step
}

func Sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
