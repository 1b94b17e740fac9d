package physics

import "github.com/san-kum/rigidsim/internal/vmath"

// PredictPath integrates a ghost copy of probe launched from start with the
// given velocity and returns the sampled positions. It stops after the first
// sample that touches a solid shape not belonging to probe's body. A nil
// probe is traced as a unit-mass point. The world is not modified.
func (w *World) PredictPath(start, velocity vmath.Vec3, probe *Shape, steps int, dt float64) []vmath.Vec3 {
	s := w.settings
	if s == nil || steps <= 0 || !(dt > 0) {
		return nil
	}

	// Ghosts move every step so short samples still trace the arc.
	ghostSettings := *s
	ghostSettings.MovementThreshold = 0

	ghost := NewBody("ghost", start, 1)
	var ghostShape *Shape
	var owner *Body
	if probe != nil {
		owner = probe.Body
		if owner != nil {
			ghost.SetMass(owner.Mass())
			ghost.SetDrag(owner.Drag())
		}
		if probe.Geometry != nil {
			ghostShape = NewShape("ghost", probe.Geometry, ghost)
			ghostShape.Offset = probe.Offset
		}
	}
	ghost.SetVelocity(velocity)

	path := make([]vmath.Vec3, 0, steps+1)
	path = append(path, start)
	for i := 0; i < steps; i++ {
		ghost.integrate(&ghostSettings, dt)
		p := ghost.Position()
		path = append(path, p)
		if p.Y() <= s.DeadZone || w.ghostTouches(ghostShape, p, probe, owner) {
			break
		}
	}
	return path
}

func (w *World) ghostTouches(ghost *Shape, p vmath.Vec3, probe *Shape, owner *Body) bool {
	for _, other := range w.shapes {
		if other == probe || !other.active() || other.Trigger {
			continue
		}
		if owner != nil && other.Body == owner {
			continue
		}
		if ghost == nil {
			if other.contains(p) {
				return true
			}
			continue
		}
		if _, ok := Detect(ghost, other); ok {
			return true
		}
	}
	return false
}
