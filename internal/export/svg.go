// Package export renders saved runs and live canvases as SVG.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/viz"
)

// Palette colors successive bodies in a trajectory plot.
var Palette = []string{"#00d7ff", "#ff5fd7", "#ffd700", "#5fff87", "#ff5f5f", "#5f87ff"}

const (
	background = "#0a0a0a"
	dotColor   = "#00ff00"
	hitColor   = "#ff5f5f"
)

// braille dot bits by sub-row and sub-column
var dots = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// CanvasToSVG draws every set braille dot as a circle. Cells drawn with
// the highlight pen get the hit color.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	var sb strings.Builder
	header(&sb, float64(canvas.SubWidth())*scale, float64(canvas.SubHeight())*scale)

	r := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			pattern := canvas.Grid[row][col] - 0x2800
			if pattern <= 0 {
				continue
			}
			fill := dotColor
			if canvas.Marked(row, col) {
				fill = hitColor
			}
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&dots[dy][dx] == 0 {
						continue
					}
					cx := (float64(col*2+dx) + 0.5) * scale
					cy := (float64(row*4+dy) + 0.5) * scale
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", cx, cy, r, fill)
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

type bounds struct {
	minU, maxU, minV, maxV float64
}

func (b *bounds) grow(u, v float64) {
	b.minU, b.maxU = math.Min(b.minU, u), math.Max(b.maxU, u)
	b.minV, b.maxV = math.Min(b.minV, v), math.Max(b.maxV, v)
}

// TrajectoriesToSVG draws one polyline per body of result, projected with
// proj. Axes share one scale so paths keep their shape. Returns "" when
// there is nothing to draw.
func TrajectoriesToSVG(result *sim.Result, proj viz.Projection, width, height int) string {
	if result == nil || len(result.Bodies) == 0 || len(result.Samples) < 2 {
		return ""
	}

	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, s := range result.Samples {
		for _, p := range s.Positions {
			b.grow(proj.Axes(p))
		}
	}

	pad := 0.1 * math.Max(math.Max(b.maxU-b.minU, b.maxV-b.minV), 1)
	b.minU, b.maxU = b.minU-pad, b.maxU+pad
	b.minV, b.maxV = b.minV-pad, b.maxV+pad
	scale := math.Min(float64(width)/(b.maxU-b.minU), float64(height)/(b.maxV-b.minV))

	var sb strings.Builder
	header(&sb, float64(width), float64(height))

	for i, name := range result.Bodies {
		color := Palette[i%len(Palette)]
		fmt.Fprintf(&sb, `<path id="%s" fill="none" stroke="%s" stroke-width="1.5" d="`, name, color)
		for j, s := range result.Samples {
			if i >= len(s.Positions) {
				break
			}
			u, v := proj.Axes(s.Positions[i])
			x := (u - b.minU) * scale
			y := (b.maxV - v) * scale
			if j == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
