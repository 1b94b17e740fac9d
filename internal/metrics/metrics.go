// Package metrics provides the per-run measurements recorded alongside a
// saved simulation.
package metrics

import "github.com/san-kum/rigidsim/internal/sim"

// Default returns the metrics recorded for every saved run.
func Default() []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewPeakNormalForce(),
		NewContactCount(),
		NewDespawns(),
		NewResting(),
	}
}
