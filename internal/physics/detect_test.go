package physics

import (
	"math"
	"testing"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/vmath"
)

func ground() *Shape {
	return NewShape("ground", geom.NewHalfSpace(), nil)
}

func ball(name string, pos vmath.Vec3, radius float64) *Shape {
	return NewShape(name, geom.NewSphere(radius), NewBody(name, pos, 1))
}

func box(name string, pos, half vmath.Vec3, rot vmath.Quat) *Shape {
	b := NewBody(name, pos, 1)
	b.SetOrientation(rot)
	return NewShape(name, geom.NewCube(half), b)
}

func TestDetect(t *testing.T) {
	unit := vmath.Vec3{1, 1, 1}
	slab := vmath.Vec3{5, 0.1, 1}
	tilt := vmath.AxisAngle(vmath.Forward, math.Pi/6)
	// lowest corner of the tilted box sits at y=0.05, inside the slab
	tiltedAt := vmath.Vec3{4, 0.55 + math.Sqrt(3)/2, 0}
	diagonal := vmath.Vec3{5, 2, 0}.Mul(1 / math.Sqrt(29))

	tests := []struct {
		name       string
		a, b       *Shape
		wantHit    bool
		wantPoint  vmath.Vec3
		wantNormal vmath.Vec3
		wantDepth  float64
	}{
		{
			name:       "overlapping spheres",
			a:          ball("a", vmath.Zero, 1),
			b:          ball("b", vmath.Vec3{1.5, 0, 0}, 1),
			wantHit:    true,
			wantPoint:  vmath.Vec3{1, 0, 0},
			wantNormal: vmath.Vec3{1, 0, 0},
			wantDepth:  0.5,
		},
		{
			name:    "separated spheres",
			a:       ball("a", vmath.Zero, 1),
			b:       ball("b", vmath.Vec3{3, 0, 0}, 1),
			wantHit: false,
		},
		{
			name:       "sphere sunk into half-space",
			a:          ground(),
			b:          ball("b", vmath.Vec3{0, 0.9, 0}, 1),
			wantHit:    true,
			wantPoint:  vmath.Zero,
			wantNormal: vmath.Up,
			wantDepth:  0.1,
		},
		{
			name:       "half-space seen from the sphere",
			a:          ball("a", vmath.Vec3{0, 0.9, 0}, 1),
			b:          ground(),
			wantHit:    true,
			wantPoint:  vmath.Vec3{0, -0.1, 0},
			wantNormal: vmath.Vec3{0, -1, 0},
			wantDepth:  0.1,
		},
		{
			name:       "sphere far from the half-space origin",
			a:          ground(),
			b:          ball("b", vmath.Vec3{8, 0.5, -3}, 0.75),
			wantHit:    true,
			wantPoint:  vmath.Vec3{8, 0, -3},
			wantNormal: vmath.Up,
			wantDepth:  0.25,
		},
		{
			name:       "sphere sunk past its radius",
			a:          ground(),
			b:          ball("b", vmath.Vec3{10, -0.25, 0}, 0.2),
			wantHit:    true,
			wantPoint:  vmath.Vec3{10, 0, 0},
			wantNormal: vmath.Up,
			wantDepth:  0.45,
		},
		{
			name:       "half-space seen from a sunk sphere",
			a:          ball("a", vmath.Vec3{10, -0.25, 0}, 0.2),
			b:          ground(),
			wantHit:    true,
			wantPoint:  vmath.Vec3{10, -0.45, 0},
			wantNormal: vmath.Vec3{0, -1, 0},
			wantDepth:  0.45,
		},
		{
			name:    "sphere above the half-space",
			a:       ground(),
			b:       ball("b", vmath.Vec3{0, 2, 0}, 1),
			wantHit: false,
		},
		{
			name:       "cube resting in half-space",
			a:          ground(),
			b:          NewShape("box", geom.NewCube(vmath.Vec3{0.5, 0.5, 0.5}), NewBody("box", vmath.Vec3{0, 0.4, 0}, 1)),
			wantHit:    true,
			wantPoint:  vmath.Zero,
			wantNormal: vmath.Up,
			wantDepth:  0.1,
		},
		{
			name:       "sphere crossing a plane",
			a:          NewShape("sheet", geom.NewPlane(), nil),
			b:          ball("b", vmath.Vec3{0, 0.5, 0}, 1),
			wantHit:    true,
			wantPoint:  vmath.Zero,
			wantNormal: vmath.Up,
		},
		{
			name:       "sphere mostly below a plane",
			a:          NewShape("sheet", geom.NewPlane(), nil),
			b:          ball("b", vmath.Vec3{0, -0.5, 0}, 1),
			wantHit:    true,
			wantPoint:  vmath.Zero,
			wantNormal: vmath.Vec3{0, -1, 0},
			wantDepth:  0.5,
		},
		{
			name:    "sphere clear of a plane",
			a:       NewShape("sheet", geom.NewPlane(), nil),
			b:       ball("b", vmath.Vec3{0, 1.5, 0}, 1),
			wantHit: false,
		},
		{
			name:       "slab corner inside a sphere",
			a:          ball("a", vmath.Zero, 1),
			b:          box("slab", vmath.Vec3{9, 1.2, 0}, vmath.Vec3{10, 0.5, 10}, vmath.Identity()),
			wantHit:    true,
			wantPoint:  vmath.Vec3{0, 0.7, 0},
			wantNormal: vmath.Up,
			wantDepth:  0.3,
		},
		{
			name:       "sphere top inside a slab",
			a:          box("slab", vmath.Vec3{9, 1.2, 0}, vmath.Vec3{10, 0.5, 10}, vmath.Identity()),
			b:          ball("b", vmath.Zero, 1),
			wantHit:    true,
			wantPoint:  vmath.Vec3{0, 0.7, 0},
			wantNormal: vmath.Vec3{0, -1, 0},
			wantDepth:  0.3,
		},
		{
			name:       "tilted box dipping a corner into a slab",
			a:          box("slab", vmath.Zero, slab, vmath.Identity()),
			b:          box("tilted", tiltedAt, unit, tilt),
			wantHit:    true,
			wantPoint:  vmath.Vec3{4 - math.Sqrt(3)/2 + 0.5, 0.1, 0},
			wantNormal: vmath.Up,
			wantDepth:  0.05,
		},
		{
			name:    "tilted box above a slab",
			a:       box("slab", vmath.Zero, slab, vmath.Identity()),
			b:       box("tilted", tiltedAt.Add(vmath.Vec3{0, 0.1, 0}), unit, tilt),
			wantHit: false,
		},
		{
			name:       "deep contact taken from the box face",
			a:          ball("a", vmath.Zero, 1),
			b:          box("box", vmath.Vec3{1.5, 0.6, 0}, unit, vmath.Identity()),
			wantHit:    true,
			wantPoint:  vmath.Vec3{0.5, 0, 0},
			wantNormal: vmath.Right,
			wantDepth:  0.5,
		},
		{
			name:       "deep contact between boxes with diverging normals",
			a:          box("a", vmath.Zero, unit, vmath.Identity()),
			b:          box("b", vmath.Vec3{1.5, 1.2, 0}, unit, vmath.Identity()),
			wantHit:    true,
			wantPoint:  vmath.Vec3{1, 1, 0},
			wantNormal: diagonal,
			wantDepth:  4.1 / math.Sqrt(29),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := Detect(tt.a, tt.b)
			if ok != tt.wantHit {
				t.Fatalf("expected hit=%v, got %v", tt.wantHit, ok)
			}
			if !ok {
				return
			}
			if hit.Shape != tt.a || hit.Other != tt.b {
				t.Errorf("expected hit between %s and %s", tt.a.Name, tt.b.Name)
			}
			if !vmath.ApproxEqual(hit.Normal, tt.wantNormal, 1e-6) {
				t.Errorf("expected normal %v, got %v", tt.wantNormal, hit.Normal)
			}
			if !vmath.ApproxEqual(hit.Point, tt.wantPoint, 1e-6) {
				t.Errorf("expected point %v, got %v", tt.wantPoint, hit.Point)
			}
			if tt.wantDepth > 0 && math.Abs(hit.Depth-tt.wantDepth) > 1e-6 {
				t.Errorf("expected depth %.3f, got %.3f", tt.wantDepth, hit.Depth)
			}
		})
	}
}

func TestDetectIsConsistentBothWays(t *testing.T) {
	a := ball("a", vmath.Vec3{0, 0, 0}, 1)
	b := ball("b", vmath.Vec3{1.2, 0.9, 0}, 1)

	ab, ok1 := Detect(a, b)
	ba, ok2 := Detect(b, a)
	if !ok1 || !ok2 {
		t.Fatalf("expected contact both ways, got %v and %v", ok1, ok2)
	}
	if !vmath.ApproxEqual(ab.Normal, ba.Normal.Mul(-1), 1e-6) {
		t.Errorf("expected opposite normals, got %v and %v", ab.Normal, ba.Normal)
	}
	if math.Abs(ab.Depth-ba.Depth) > 1e-9 {
		t.Errorf("expected equal depth, got %v and %v", ab.Depth, ba.Depth)
	}
}

func TestDetectNilGeometry(t *testing.T) {
	a := ball("a", vmath.Zero, 1)
	b := NewShape("empty", nil, nil)
	if _, ok := Detect(a, b); ok {
		t.Error("expected no contact for a shape without geometry")
	}
}

func TestHitResultFlip(t *testing.T) {
	a, b := ball("a", vmath.Zero, 1), ball("b", vmath.Vec3{1, 0, 0}, 1)
	h := HitResult{Normal: vmath.Right, Shape: a, Other: b, NormalForce: 3}

	f := h.Flip()
	if f.Shape != b || f.Other != a {
		t.Error("expected shapes swapped")
	}
	if f.Normal != (vmath.Vec3{-1, 0, 0}) {
		t.Errorf("expected reversed normal, got %v", f.Normal)
	}
	if f.NormalForce != 3 {
		t.Errorf("expected force kept, got %v", f.NormalForce)
	}
}
