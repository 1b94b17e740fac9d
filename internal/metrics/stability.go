package metrics

import (
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/vmath"
)

// Resting is the fraction of steps in which no live mover travelled further
// than the world's movement threshold. Below that distance the engine
// leaves a body where it is, so a settled body reads as resting even though
// gravity keeps its velocity non-zero. The first observation only records
// positions.
type Resting struct {
	name    string
	last    map[*physics.Body]vmath.Vec3
	primed  bool
	resting int
	samples int
}

func NewResting() *Resting {
	return &Resting{
		name: "resting",
		last: make(map[*physics.Body]vmath.Vec3),
	}
}

func (r *Resting) Name() string {
	return r.name
}

func (r *Resting) Observe(f sim.Frame) {
	var threshold float64
	if s := f.Scene.World.Settings(); s != nil {
		threshold = s.MovementThreshold
	}

	still := true
	for _, ent := range f.Scene.Movers() {
		b := ent.Body
		if !b.Alive() {
			delete(r.last, b)
			continue
		}
		p := b.Position()
		if prev, ok := r.last[b]; !ok || vmath.Distance(p, prev) > threshold {
			still = false
		}
		r.last[b] = p
	}

	if !r.primed {
		r.primed = true
		return
	}
	r.samples++
	if still {
		r.resting++
	}
}

func (r *Resting) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return float64(r.resting) / float64(r.samples)
}

func (r *Resting) Reset() {
	clear(r.last)
	r.primed = false
	r.resting = 0
	r.samples = 0
}

// Despawns counts bodies removed by the dead zone.
type Despawns struct {
	name  string
	count int
}

func NewDespawns() *Despawns {
	return &Despawns{name: "despawns"}
}

func (d *Despawns) Name() string        { return d.name }
func (d *Despawns) Observe(f sim.Frame) { d.count = f.Stats.Despawned }
func (d *Despawns) Value() float64      { return float64(d.count) }
func (d *Despawns) Reset()              { d.count = 0 }
