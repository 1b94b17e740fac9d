package scene

import (
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/vmath"
)

type EventKind string

const (
	BeginHit     EventKind = "begin_hit"
	Hit          EventKind = "hit"
	EndHit       EventKind = "end_hit"
	BeginOverlap EventKind = "begin_overlap"
	Overlap      EventKind = "overlap"
	EndOverlap   EventKind = "end_overlap"
	Despawn      EventKind = "despawn"
)

// Event is one entry of the contact log. Shape is the reporting side.
type Event struct {
	Tick   uint64     `msgpack:"tick" json:"tick"`
	Time   float64    `msgpack:"time" json:"time"`
	Kind   EventKind  `msgpack:"kind" json:"kind"`
	Shape  string     `msgpack:"shape" json:"shape"`
	Other  string     `msgpack:"other,omitempty" json:"other,omitempty"`
	Point  vmath.Vec3 `msgpack:"point" json:"point"`
	Normal vmath.Vec3 `msgpack:"normal" json:"normal"`
	Force  float64    `msgpack:"force" json:"force"`
	Depth  float64    `msgpack:"depth" json:"depth"`
}

// Recorder is attached to every shape in a scene and logs the contact
// lifecycle. Steady-state events are only kept when Steady is set.
type Recorder struct {
	Steady bool

	world  *physics.World
	events []Event
}

func NewRecorder(w *physics.World) *Recorder {
	return &Recorder{world: w}
}

func (r *Recorder) OnBeginHit(_ *physics.Shape, h physics.HitResult) { r.add(BeginHit, h) }
func (r *Recorder) OnEndHit(_ *physics.Shape, h physics.HitResult)   { r.add(EndHit, h) }

func (r *Recorder) OnHit(_ *physics.Shape, h physics.HitResult) {
	if r.Steady {
		r.add(Hit, h)
	}
}

func (r *Recorder) OnBeginOverlap(_ *physics.Shape, h physics.HitResult) { r.add(BeginOverlap, h) }
func (r *Recorder) OnEndOverlap(_ *physics.Shape, h physics.HitResult)   { r.add(EndOverlap, h) }

func (r *Recorder) OnOverlap(_ *physics.Shape, h physics.HitResult) {
	if r.Steady {
		r.add(Overlap, h)
	}
}

func (r *Recorder) add(kind EventKind, h physics.HitResult) {
	e := Event{
		Tick:   r.world.Tick(),
		Time:   r.world.Time(),
		Kind:   kind,
		Point:  h.Point,
		Normal: h.Normal,
		Force:  h.NormalForce,
		Depth:  h.Depth,
	}
	if h.Shape != nil {
		e.Shape = h.Shape.Name
	}
	if h.Other != nil {
		e.Other = h.Other.Name
	}
	r.events = append(r.events, e)
}

func (r *Recorder) despawned(b *physics.Body) {
	r.events = append(r.events, Event{
		Tick:  r.world.Tick(),
		Time:  r.world.Time(),
		Kind:  Despawn,
		Shape: b.Name,
		Point: b.Position(),
	})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Drain returns the recorded events and starts a new log.
func (r *Recorder) Drain() []Event {
	out := r.events
	r.events = nil
	return out
}
