package export

import (
	"strings"
	"testing"

	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/viz"
	"github.com/san-kum/rigidsim/internal/vmath"
)

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Highlight(true)
	c.Set(2, 0)

	svg := CanvasToSVG(c, 10)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("expected an svg document, got %q", svg)
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(svg, `cx="5.0" cy="5.0"`) {
		t.Error("expected the first dot centred in its sub-cell")
	}
	if strings.Count(svg, hitColor) != 1 {
		t.Error("expected exactly one highlighted dot")
	}

	if CanvasToSVG(nil, 1) != "" {
		t.Error("expected empty output for a nil canvas")
	}
}

func TestTrajectoriesToSVG(t *testing.T) {
	result := &sim.Result{
		Bodies: []string{"ball", "crate"},
		Samples: []sim.Sample{
			{Positions: []vmath.Vec3{{0, 5, 0}, {2, 8, 0}}},
			{Positions: []vmath.Vec3{{1, 3, 0}, {2, 6, 0}}},
			{Positions: []vmath.Vec3{{2, 0.5, 0}, {2, 0.5, 0}}},
		},
	}

	svg := TrajectoriesToSVG(result, viz.SideView, 400, 300)
	if n := strings.Count(svg, "<path"); n != 2 {
		t.Fatalf("expected 2 paths, got %d", n)
	}
	if !strings.Contains(svg, `id="ball"`) || !strings.Contains(svg, Palette[1]) {
		t.Error("expected named paths in palette colors")
	}
	if strings.Count(svg, " L") != 4 {
		t.Errorf("expected 2 segments per body, got %d", strings.Count(svg, " L"))
	}

	if TrajectoriesToSVG(&sim.Result{Bodies: []string{"a"}}, viz.TopView, 10, 10) != "" {
		t.Error("expected empty output without samples")
	}
}
