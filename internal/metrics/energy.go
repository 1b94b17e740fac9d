package metrics

import (
	"github.com/san-kum/rigidsim/internal/sim"
)

// KineticEnergy tracks the total translational kinetic energy of the live
// bodies in a scene. Value reports the energy at the last observed step.
type KineticEnergy struct {
	name    string
	current float64
	peak    float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(f sim.Frame) {
	var total float64
	for _, ent := range f.Scene.Movers() {
		b := ent.Body
		if !b.Alive() {
			continue
		}
		v := b.Velocity()
		total += 0.5 * b.Mass() * v.Dot(v)
	}
	e.current = total
	e.peak = max(e.peak, total)
}

func (e *KineticEnergy) Value() float64 { return e.current }

// Peak is the largest total seen since the last Reset.
func (e *KineticEnergy) Peak() float64 { return e.peak }

func (e *KineticEnergy) Reset() {
	e.current = 0
	e.peak = 0
}
