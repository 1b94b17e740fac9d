package geom

import "github.com/san-kum/rigidsim/internal/vmath"

type Sphere struct {
	Radius float64
}

func NewSphere(radius float64) *Sphere {
	if radius < 0 {
		radius = 0
	}
	return &Sphere{Radius: radius}
}

func (s *Sphere) Kind() Kind { return KindSphere }

func (s *Sphere) ClosestPoint(pose Pose, p vmath.Vec3) SurfacePoint {
	n := vmath.NormalizeOr(p.Sub(pose.Position), vmath.Up)
	return SurfacePoint{
		Position: pose.Position.Add(n.Mul(s.Radius)),
		Normal:   n,
	}
}

func (s *Sphere) IsPointInside(pose Pose, p vmath.Vec3) bool {
	return vmath.Distance(pose.Position, p) <= s.Radius+vmath.Epsilon
}

func (s *Sphere) HasFarthestPoint() bool { return true }

func (s *Sphere) FarthestPoint(pose Pose, origin, dir vmath.Vec3, bothDirections bool) SurfacePoint {
	d := vmath.Normalize(dir)
	pos := SurfacePoint{Position: pose.Position.Add(d.Mul(s.Radius)), Normal: d}
	if !bothDirections {
		return pos
	}
	neg := SurfacePoint{Position: pose.Position.Sub(d.Mul(s.Radius)), Normal: d.Mul(-1)}
	return supportPair(origin, pos, neg)
}

func (s *Sphere) OppositePoint(pose Pose, p, dir vmath.Vec3) vmath.Vec3 {
	return mirror(pose.Position, p, dir)
}

func (s *Sphere) sealed() {}
