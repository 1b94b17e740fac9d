package physics

import (
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/vmath"
)

// HitResult describes one contact as seen from a reference shape.
type HitResult struct {
	Point vmath.Vec3
	// Normal points away from Shape toward Other.
	Normal vmath.Vec3
	Depth  float64
	// NormalForce is filled in by the resolver.
	NormalForce float64

	Shape *Shape
	Other *Shape
}

// Flip returns the same contact seen from the other shape.
func (h HitResult) Flip() HitResult {
	h.Normal = h.Normal.Mul(-1)
	h.Shape, h.Other = h.Other, h.Shape
	return h
}

type contactEntry struct {
	hit  HitResult
	tick uint64
}

// Shape attaches a geometry to an optional body and tracks its contacts.
type Shape struct {
	Name     string
	Geometry geom.Geometry

	// Body is nil for standalone static colliders, which use Pose instead.
	Body   *Body
	Offset vmath.Vec3
	Pose   geom.Pose

	Trigger         bool
	Enabled         bool
	StaticFriction  float64
	DynamicFriction float64
	Bounce          float64

	overlaps map[*Shape]contactEntry
	hits     map[*Shape]contactEntry

	listeners      listenerSet
	highlightUntil float64
	alive          bool
}

// NewShape attaches g to body. Pass a nil body for a static collider placed
// with SetPose.
func NewShape(name string, g geom.Geometry, body *Body) *Shape {
	return &Shape{
		Name:            name,
		Geometry:        g,
		Body:            body,
		Pose:            geom.NewPose(vmath.Zero),
		Enabled:         true,
		StaticFriction:  0.6,
		DynamicFriction: 0.4,
		overlaps:        make(map[*Shape]contactEntry),
		hits:            make(map[*Shape]contactEntry),
		alive:           true,
	}
}

func (s *Shape) SetPose(p geom.Pose) { s.Pose = p }

// SetBounce clamps restitution to [0,1].
func (s *Shape) SetBounce(b float64) {
	switch {
	case b < 0:
		b = 0
	case b > 1:
		b = 1
	}
	s.Bounce = b
}

// WorldPose is the body transform plus offset, or the standalone pose.
func (s *Shape) WorldPose() geom.Pose {
	if s.Body == nil {
		return s.Pose
	}
	rot := s.Body.Orientation()
	return geom.Pose{
		Position: s.Body.Position().Add(rot.Rotate(s.Offset)),
		Rotation: rot,
	}
}

func (s *Shape) Position() vmath.Vec3 { return s.WorldPose().Position }

// Alive is false once the shape or its body has been destroyed.
func (s *Shape) Alive() bool {
	if s == nil || !s.alive {
		return false
	}
	return s.Body == nil || s.Body.Alive()
}

func (s *Shape) active() bool {
	return s.Alive() && s.Enabled && s.Geometry != nil
}

func (s *Shape) movable() bool {
	return s.Body != nil && s.Body.Movable()
}

func (s *Shape) Bounded() bool {
	return s.Geometry != nil && s.Geometry.HasFarthestPoint()
}

// Highlight marks the shape as recently in contact until the given
// simulated time.
func (s *Shape) Highlight(until float64) {
	if until > s.highlightUntil {
		s.highlightUntil = until
	}
}

func (s *Shape) Highlighted(now float64) bool { return now < s.highlightUntil }

// Hits returns the peers currently in solid contact.
func (s *Shape) Hits() []*Shape { return peers(s.hits) }

// Overlaps returns the peers currently in trigger contact.
func (s *Shape) Overlaps() []*Shape { return peers(s.overlaps) }

func (s *Shape) IsHitting(other *Shape) bool {
	_, ok := s.hits[other]
	return ok
}

func (s *Shape) IsOverlapping(other *Shape) bool {
	_, ok := s.overlaps[other]
	return ok
}

func peers(m map[*Shape]contactEntry) []*Shape {
	out := make([]*Shape, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	return out
}

// recordHit moves the pair into the solid state for this tick and fires the
// matching event.
func (s *Shape) recordHit(hit HitResult, tick uint64, fireOnBegin bool) {
	if prev, ok := s.overlaps[hit.Other]; ok {
		delete(s.overlaps, hit.Other)
		s.listeners.endOverlap(hit.Other, prev.hit)
	}

	_, known := s.hits[hit.Other]
	s.hits[hit.Other] = contactEntry{hit: hit, tick: tick}
	if !known {
		s.listeners.beginHit(hit.Other, hit)
		if !fireOnBegin {
			return
		}
	}
	s.listeners.hit(hit.Other, hit)
}

func (s *Shape) recordOverlap(hit HitResult, tick uint64, fireOnBegin bool) {
	if prev, ok := s.hits[hit.Other]; ok {
		delete(s.hits, hit.Other)
		s.listeners.endHit(hit.Other, prev.hit)
	}

	_, known := s.overlaps[hit.Other]
	s.overlaps[hit.Other] = contactEntry{hit: hit, tick: tick}
	if !known {
		s.listeners.beginOverlap(hit.Other, hit)
		if !fireOnBegin {
			return
		}
	}
	s.listeners.overlap(hit.Other, hit)
}

// expireContacts ends every contact not refreshed on the given tick.
func (s *Shape) expireContacts(tick uint64) {
	for other, e := range s.hits {
		if e.tick != tick {
			delete(s.hits, other)
			s.listeners.endHit(other, e.hit)
		}
	}
	for other, e := range s.overlaps {
		if e.tick != tick {
			delete(s.overlaps, other)
			s.listeners.endOverlap(other, e.hit)
		}
	}
}
