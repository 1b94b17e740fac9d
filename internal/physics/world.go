package physics

import (
	"log"
	"math"
	"slices"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/vmath"
)

// Logger receives engine warnings.
type Logger interface {
	Printf(format string, v ...any)
}

type Option func(*World)

func WithLogger(l Logger) Option {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// Stats summarizes the most recent tick.
type Stats struct {
	Tick           uint64
	Time           float64
	Bodies         int
	Shapes         int
	Contacts       int
	MaxNormalForce float64
	Despawned      int
	Paused         bool
}

// World owns the body and shape registries and advances them in fixed
// steps. It is not safe for concurrent use.
type World struct {
	settings *Settings
	bodies   []*Body
	shapes   []*Shape
	log      Logger

	tick     uint64
	time     float64
	stats    Stats
	contacts []HitResult

	despawnHooks []func(*Body)
}

func NewWorld(settings *Settings, opts ...Option) *World {
	w := &World{
		settings: settings,
		log:      log.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) Settings() *Settings { return w.settings }

// SetSettings replaces the active settings. A nil value pauses the world.
func (w *World) SetSettings(s *Settings) { w.settings = s }

func (w *World) Tick() uint64  { return w.tick }
func (w *World) Time() float64 { return w.time }
func (w *World) Stats() Stats  { return w.stats }

func (w *World) Bodies() []*Body       { return slices.Clone(w.bodies) }
func (w *World) Shapes() []*Shape      { return slices.Clone(w.shapes) }
func (w *World) Contacts() []HitResult { return slices.Clone(w.contacts) }

// OnDespawn registers fn to run when a body falls into the dead zone.
func (w *World) OnDespawn(fn func(*Body)) {
	w.despawnHooks = append(w.despawnHooks, fn)
}

// RegisterBody appends b unless it is already registered.
func (w *World) RegisterBody(b *Body) {
	if b == nil || slices.Contains(w.bodies, b) {
		return
	}
	w.bodies = append(w.bodies, b)
}

// RegisterShape appends s unless it is already registered.
func (w *World) RegisterShape(s *Shape) error {
	if s == nil || s.Geometry == nil {
		return ErrNilGeometry
	}
	if !slices.Contains(w.shapes, s) {
		w.shapes = append(w.shapes, s)
	}
	return nil
}

func (w *World) UnregisterBody(b *Body) error {
	i := slices.Index(w.bodies, b)
	if i < 0 {
		return ErrNotRegistered
	}
	w.bodies = slices.Delete(w.bodies, i, i+1)
	return nil
}

func (w *World) UnregisterShape(s *Shape) error {
	i := slices.Index(w.shapes, s)
	if i < 0 {
		return ErrNotRegistered
	}
	w.shapes = slices.Delete(w.shapes, i, i+1)
	return nil
}

// AddBody creates and registers a body.
func (w *World) AddBody(name string, position vmath.Vec3, mass float64) *Body {
	b := NewBody(name, position, mass)
	w.RegisterBody(b)
	return b
}

// AddShape creates and registers a shape on body, which may be nil.
func (w *World) AddShape(name string, g geom.Geometry, body *Body) (*Shape, error) {
	if g == nil {
		return nil, ErrNilGeometry
	}
	s := NewShape(name, g, body)
	if err := w.RegisterShape(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Destroy kills b and removes it and its shapes from the world.
func (w *World) Destroy(b *Body) {
	if b == nil {
		return
	}
	b.kill()
	w.bodies = slices.DeleteFunc(w.bodies, func(x *Body) bool { return x == b })
	w.shapes = slices.DeleteFunc(w.shapes, func(s *Shape) bool {
		if s.Body == b {
			s.alive = false
			return true
		}
		return false
	})
}

func (w *World) DestroyShape(s *Shape) {
	if s == nil {
		return
	}
	s.alive = false
	_ = w.UnregisterShape(s)
}

// Clear drops every registered body and shape.
func (w *World) Clear() {
	w.log.Printf("Physics: registries cleared (%d bodies, %d shapes)", len(w.bodies), len(w.shapes))
	w.bodies = nil
	w.shapes = nil
	w.contacts = nil
}

// Step advances the world by dt: integration, then pairwise detection, then
// correction, resolution and event dispatch per contact. Without settings
// the world stays paused and Step returns nil.
func (w *World) Step(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return &StepError{Tick: w.tick, Time: w.time, Wrapped: ErrInvalidTimestep}
	}

	s := w.settings
	if s == nil {
		w.log.Printf("Physics: %v", ErrNoSettings)
		w.stats.Paused = true
		return nil
	}

	w.tick++
	w.time += dt
	w.stats = Stats{Tick: w.tick, Time: w.time, Despawned: w.stats.Despawned}

	w.integrate(s, dt)

	w.contacts = w.detectAll()
	for i := range w.contacts {
		w.handleContact(s, &w.contacts[i], dt)
	}

	for _, sh := range slices.Clone(w.shapes) {
		sh.expireContacts(w.tick)
	}

	w.stats.Bodies = len(w.bodies)
	w.stats.Shapes = len(w.shapes)
	w.stats.Contacts = len(w.contacts)
	return nil
}

func (w *World) integrate(s *Settings, dt float64) {
	for _, b := range slices.Clone(w.bodies) {
		if !b.Movable() {
			continue
		}
		b.integrate(s, dt)
		if b.Position().Y() <= s.DeadZone {
			w.despawn(b)
		}
	}
}

func (w *World) despawn(b *Body) {
	w.Destroy(b)
	w.stats.Despawned++
	w.log.Printf("Physics: body %q despawned at y=%.3f", b.Name, b.Position().Y())
	for _, fn := range w.despawnHooks {
		fn(b)
	}
}

func (w *World) detectAll() []HitResult {
	var live []*Shape
	for _, s := range w.shapes {
		if s.active() {
			live = append(live, s)
		}
	}

	var out []HitResult
	for i := 0; i < len(live); i++ {
		for j := i + 1; j < len(live); j++ {
			a, b := live[i], live[j]
			if a.Body != nil && a.Body == b.Body {
				continue
			}
			if hit, ok := Detect(a, b); ok {
				out = append(out, hit)
			}
		}
	}
	return out
}

func (w *World) handleContact(s *Settings, hit *HitResult, dt float64) {
	a, b := hit.Shape, hit.Other
	// A listener earlier in this tick may have destroyed either side.
	if !a.Alive() || !b.Alive() {
		return
	}

	until := w.time + s.HighlightDuration
	a.Highlight(until)
	b.Highlight(until)

	if a.Trigger || b.Trigger {
		a.recordOverlap(*hit, w.tick, s.OverlapEventsOnBegin)
		if b.Alive() {
			b.recordOverlap(hit.Flip(), w.tick, s.OverlapEventsOnBegin)
		}
		return
	}

	correctPosition(a, b, hit.Normal)
	resolveContact(s, hit, dt)
	if hit.NormalForce > w.stats.MaxNormalForce {
		w.stats.MaxNormalForce = hit.NormalForce
	}

	a.recordHit(*hit, w.tick, s.HitEventsOnBegin)
	if b.Alive() {
		b.recordHit(hit.Flip(), w.tick, s.HitEventsOnBegin)
	}
}
