// Package viz draws scenes in the terminal.
//
// Shapes are projected onto a braille [Canvas] through a [Viewport] (side or
// top view). The live view is a Bubble Tea [Model] that steps a scene in
// real time and colours shapes that were hit recently; [RunInteractive]
// adds a preset picker in front of it. [PlotHeights] renders saved runs
// with asciigraph.
package viz
