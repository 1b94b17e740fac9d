package viz

import (
	"math"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/vmath"
)

type Projection int

const (
	// SideView looks along -z: screen x is world x, screen up is world y.
	SideView Projection = iota
	// TopView looks down -y: screen x is world x, screen up is world -z.
	TopView
)

func (p Projection) String() string {
	if p == TopView {
		return "top"
	}
	return "side"
}

// Axes returns the world coordinates shown horizontally and vertically.
func (p Projection) Axes(v vmath.Vec3) (float64, float64) {
	if p == TopView {
		return v.X(), -v.Z()
	}
	return v.X(), v.Y()
}

// Viewport maps world coordinates to canvas dots with a uniform scale.
type Viewport struct {
	Proj       Projection
	MinU, MaxV float64
	Scale      float64
}

// ToScreen returns dot coordinates for a world point.
func (v Viewport) ToScreen(p vmath.Vec3) (int, int) {
	u, w := v.Proj.Axes(p)
	return int(math.Round((u - v.MinU) * v.Scale)), int(math.Round((v.MaxV - w) * v.Scale))
}

// FitViewport frames every bounded shape of sc, plus the origin, with a
// margin of one unit.
func FitViewport(sc *scene.Scene, c *Canvas, proj Projection) Viewport {
	minU, minV := math.Inf(1), math.Inf(1)
	maxU, maxV := math.Inf(-1), math.Inf(-1)
	grow := func(p vmath.Vec3, r float64) {
		u, w := proj.Axes(p)
		minU, maxU = math.Min(minU, u-r), math.Max(maxU, u+r)
		minV, maxV = math.Min(minV, w-r), math.Max(maxV, w+r)
	}

	grow(vmath.Zero, 0)
	for _, sh := range sc.World.Shapes() {
		if sh.Bounded() {
			grow(sh.Position(), extent(sh))
		}
	}

	minU, maxU, minV, maxV = minU-1, maxU+1, minV-1, maxV+1
	scale := math.Min(float64(c.SubWidth()-1)/(maxU-minU), float64(c.SubHeight()-1)/(maxV-minV))
	return Viewport{Proj: proj, MinU: minU, MaxV: maxV, Scale: scale}
}

func extent(sh *physics.Shape) float64 {
	switch g := sh.Geometry.(type) {
	case *geom.Sphere:
		return g.Radius
	case *geom.Cube:
		return g.HalfExtents.Len()
	}
	return 0
}

// DrawScene renders every enabled shape of sc. Highlighted shapes are drawn
// with the highlight pen.
func DrawScene(c *Canvas, v Viewport, sc *scene.Scene) {
	now := sc.World.Time()
	for _, sh := range sc.World.Shapes() {
		if !sh.Alive() || !sh.Enabled {
			continue
		}
		c.Highlight(sh.Highlighted(now))
		drawShape(c, v, sh)
	}
	c.Highlight(false)
}

func drawShape(c *Canvas, v Viewport, sh *physics.Shape) {
	pose := sh.WorldPose()
	switch g := sh.Geometry.(type) {
	case *geom.Sphere:
		x, y := v.ToScreen(pose.Position)
		r := int(math.Round(g.Radius * v.Scale))
		if sh.Trigger {
			circle(c, x, y, r)
		} else {
			c.FillCircle(x, y, r)
		}
	case *geom.Cube:
		drawBox(c, v, pose, g.HalfExtents)
	case *geom.HalfSpace:
		drawPlane(c, v, pose, &g.Plane)
	case *geom.Plane:
		drawPlane(c, v, pose, g)
	}
}

func circle(c *Canvas, cx, cy, r int) {
	steps := max(8, r*6)
	prevX, prevY := cx+r, cy
	for i := 1; i <= steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x, y := cx+int(math.Round(float64(r)*math.Cos(a))), cy+int(math.Round(float64(r)*math.Sin(a)))
		c.DrawLine(prevX, prevY, x, y)
		prevX, prevY = x, y
	}
}

// drawBox draws the twelve edges of the box as a wireframe.
func drawBox(c *Canvas, v Viewport, pose geom.Pose, half vmath.Vec3) {
	var pts [8][2]int
	for i := 0; i < 8; i++ {
		local := vmath.Vec3{half.X(), half.Y(), half.Z()}
		for a := 0; a < 3; a++ {
			if i&(1<<a) != 0 {
				local[a] = -local[a]
			}
		}
		x, y := v.ToScreen(pose.Position.Add(pose.Rotation.Rotate(local)))
		pts[i] = [2]int{x, y}
	}
	for i := 0; i < 8; i++ {
		for a := 0; a < 3; a++ {
			if j := i | 1<<a; j != i {
				c.DrawLine(pts[i][0], pts[i][1], pts[j][0], pts[j][1])
			}
		}
	}
}

// drawPlane draws the trace of the plane across the whole canvas. Planes
// parallel to the view are skipped.
func drawPlane(c *Canvas, v Viewport, pose geom.Pose, pl *geom.Plane) {
	n := pl.Normal(pose)
	nu, nv := v.Proj.Axes(n)
	l := math.Hypot(nu, nv)
	if l < 1e-6 {
		return
	}
	// Direction along the trace, perpendicular to the projected normal.
	du, dv := -nv/l, nu/l
	span := float64(c.SubWidth()+c.SubHeight()) / v.Scale
	x0, y0 := v.ToScreen(pose.Position)
	ex := int(math.Round(du * span * v.Scale))
	ey := int(math.Round(-dv * span * v.Scale))
	c.DrawLine(x0-ex, y0-ey, x0+ex, y0+ey)
}
