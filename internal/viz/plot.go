package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/sim"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan,
	asciigraph.Magenta,
	asciigraph.Yellow,
	asciigraph.Green,
	asciigraph.Red,
	asciigraph.Blue,
}

// PlotHeights draws the height of up to six bodies over time on one chart.
// It returns an empty string when there is nothing to plot.
func PlotHeights(result *sim.Result, width, height int) string {
	n := min(len(result.Bodies), len(seriesColors))
	if n == 0 || len(result.Samples) < 2 {
		return ""
	}

	series := make([][]float64, n)
	for i := range series {
		series[i] = result.Heights(i)
	}

	caption := "height vs time:"
	for i := 0; i < n; i++ {
		caption += " " + result.Bodies[i]
	}

	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(seriesColors[:n]...),
		asciigraph.Caption(caption),
	)
}

// PlotSeries draws a single named series.
func PlotSeries(data []float64, caption string, width, height int) string {
	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// FormatEvent renders one contact log entry on a single line.
func FormatEvent(e scene.Event) string {
	if e.Kind == scene.Despawn {
		return fmt.Sprintf("%6d %8.3fs  %-13s %s at (%.2f, %.2f, %.2f)",
			e.Tick, e.Time, e.Kind, e.Shape, e.Point.X(), e.Point.Y(), e.Point.Z())
	}
	return fmt.Sprintf("%6d %8.3fs  %-13s %s -> %s  n=(%.2f, %.2f, %.2f) f=%.2f d=%.4f",
		e.Tick, e.Time, e.Kind, e.Shape, e.Other,
		e.Normal.X(), e.Normal.Y(), e.Normal.Z(), e.Force, e.Depth)
}

// EventStyle picks the colour for an event kind.
func EventStyle(k scene.EventKind) func(...string) string {
	switch k {
	case scene.BeginHit, scene.BeginOverlap:
		return EventBegin.Render
	case scene.EndHit, scene.EndOverlap, scene.Despawn:
		return EventEnd.Render
	}
	return EventOther.Render
}
