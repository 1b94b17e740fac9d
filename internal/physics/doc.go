// Package physics is a small deterministic rigid body engine.
//
// A [World] owns registered [Body] and [Shape] values and advances them
// with fixed timesteps:
//
//	w := physics.NewWorld(physics.DefaultSettings())
//	ball := w.AddBody("ball", vmath.Vec3{0, 5, 0}, 1)
//	w.AddShape("ball", &geom.Sphere{Radius: 0.5}, ball)
//	w.AddShape("ground", &geom.HalfSpace{}, nil)
//	for range 100 {
//	    w.Step(0.02)
//	}
//
// Each step integrates forces and drag, detects contacts between every
// pair of active shapes in registration order, and resolves them with
// restitution and Coulomb friction. Shapes without a body are static.
//
// # Events
//
// Values passed to [Shape.AddListener] receive hit and overlap callbacks.
// Begin and End fire when a pair starts or stops touching; the steady
// callbacks fire on every step in between. Trigger shapes only overlap.
//
// Identical inputs produce identical results, so runs can be replayed
// and compared bit for bit.
package physics
