// Package scene turns a config.Config into a populated physics.World with
// named entities, scheduled launches and a contact log.
package scene

import (
	"fmt"
	"sort"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/vmath"
)

// Entity groups a body with its shapes. Body is nil for static colliders.
type Entity struct {
	Name   string
	Body   *physics.Body
	Shapes []*physics.Shape
}

func (e *Entity) Alive() bool {
	if e.Body != nil {
		return e.Body.Alive()
	}
	for _, s := range e.Shapes {
		if s.Alive() {
			return true
		}
	}
	return false
}

type Scene struct {
	Name  string
	World *physics.World

	entities []*Entity
	byName   map[string]*Entity
	pending  []config.LaunchConfig
	recorder *Recorder
}

type options struct {
	worldOpts []physics.Option
	steady    bool
}

type Option func(*options)

func WithLogger(l physics.Logger) Option {
	return func(o *options) { o.worldOpts = append(o.worldOpts, physics.WithLogger(l)) }
}

// WithSteadyEvents records per-tick hit and overlap events as well as
// begin and end.
func WithSteadyEvents() Option {
	return func(o *options) { o.steady = true }
}

func Build(cfg *config.Config, opts ...Option) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	w := physics.NewWorld(settings, o.worldOpts...)
	s := &Scene{
		Name:     cfg.Scene,
		World:    w,
		byName:   make(map[string]*Entity, len(cfg.Entities)),
		recorder: NewRecorder(w),
	}
	s.recorder.Steady = o.steady
	w.OnDespawn(s.recorder.despawned)

	for _, ec := range cfg.Entities {
		if err := s.addEntity(ec); err != nil {
			return nil, fmt.Errorf("entity %q: %w", ec.Name, err)
		}
	}

	s.pending = append(s.pending, cfg.Launches...)
	sort.SliceStable(s.pending, func(i, j int) bool { return s.pending[i].At < s.pending[j].At })
	return s, nil
}

func (s *Scene) addEntity(ec config.EntityConfig) error {
	rot := vmath.Euler(ec.Rotation[0], ec.Rotation[1], ec.Rotation[2])
	ent := &Entity{Name: ec.Name}

	if bc := ec.Body; bc != nil {
		b := physics.NewBody(ec.Name, ec.Position, bc.Mass)
		b.SetOrientation(rot)
		b.SetDrag(bc.Drag)
		b.SetAngularDrag(bc.AngularDrag)
		b.Static = bc.Static
		b.LockRotation = bc.LockRotation
		b.SetVelocity(bc.Velocity)
		b.SetAngularVelocity(bc.AngularVelocity)
		s.World.RegisterBody(b)
		ent.Body = b
	}

	for i, sc := range ec.Shapes {
		g, err := sc.Geometry()
		if err != nil {
			return err
		}
		name := sc.Name
		if name == "" {
			name = ec.Name
			if len(ec.Shapes) > 1 {
				name = fmt.Sprintf("%s#%d", ec.Name, i)
			}
		}

		sh, err := s.World.AddShape(name, g, ent.Body)
		if err != nil {
			return err
		}
		if ent.Body == nil {
			sh.SetPose(geom.Pose{Position: ec.Position.Add(rot.Rotate(sc.Offset)), Rotation: rot})
		} else {
			sh.Offset = sc.Offset
		}
		sh.Trigger = sc.Trigger
		sh.Enabled = !sc.Disabled
		sh.StaticFriction = sc.StaticFriction
		sh.DynamicFriction = sc.DynamicFriction
		sh.SetBounce(sc.Bounce)
		sh.AddListener(s.recorder)
		ent.Shapes = append(ent.Shapes, sh)
	}

	s.entities = append(s.entities, ent)
	s.byName[ent.Name] = ent
	return nil
}

func (s *Scene) Entity(name string) (*Entity, bool) {
	e, ok := s.byName[name]
	return e, ok
}

// Entities returns the entities in declaration order.
func (s *Scene) Entities() []*Entity {
	out := make([]*Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// Movers returns the entities with a non-static body, alive or not.
func (s *Scene) Movers() []*Entity {
	var out []*Entity
	for _, e := range s.entities {
		if e.Body != nil && !e.Body.Static {
			out = append(out, e)
		}
	}
	return out
}

// Launch applies an impulse to the named entity's body.
func (s *Scene) Launch(name string, impulse vmath.Vec3) error {
	e, ok := s.byName[name]
	if !ok || e.Body == nil || !e.Body.Alive() {
		return fmt.Errorf("launch %s: %w", name, physics.ErrNotRegistered)
	}
	e.Body.AddImpulse(impulse)
	return nil
}

// Step fires due launches and advances the world by dt.
func (s *Scene) Step(dt float64) error {
	now := s.World.Time()
	for len(s.pending) > 0 && s.pending[0].At <= now+dt/2 {
		l := s.pending[0]
		s.pending = s.pending[1:]
		// Bodies that despawned before their launch are skipped.
		_ = s.Launch(l.Entity, l.Impulse)
	}
	return s.World.Step(dt)
}

func (s *Scene) Recorder() *Recorder { return s.recorder }

func (s *Scene) Events() []Event { return s.recorder.Events() }

// PendingLaunches reports how many scheduled launches have not fired yet.
func (s *Scene) PendingLaunches() int { return len(s.pending) }
