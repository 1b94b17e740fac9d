package physics_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/vmath"
)

const dt = 0.02

type captureLogger struct {
	lines []string
}

func (l *captureLogger) Printf(format string, v ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

// eventLog counts lifecycle callbacks and the ticks they arrived on.
type eventLog struct {
	world *physics.World

	beginHit, hit, endHit             []uint64
	beginOverlap, overlap, endOverlap []uint64
	lastEnd                           physics.HitResult
}

func (e *eventLog) OnBeginHit(_ *physics.Shape, _ physics.HitResult) {
	e.beginHit = append(e.beginHit, e.world.Tick())
}

func (e *eventLog) OnHit(_ *physics.Shape, _ physics.HitResult) {
	e.hit = append(e.hit, e.world.Tick())
}

func (e *eventLog) OnEndHit(_ *physics.Shape, h physics.HitResult) {
	e.endHit = append(e.endHit, e.world.Tick())
	e.lastEnd = h
}

func (e *eventLog) OnBeginOverlap(_ *physics.Shape, _ physics.HitResult) {
	e.beginOverlap = append(e.beginOverlap, e.world.Tick())
}

func (e *eventLog) OnOverlap(_ *physics.Shape, _ physics.HitResult) {
	e.overlap = append(e.overlap, e.world.Tick())
}

func (e *eventLog) OnEndOverlap(_ *physics.Shape, h physics.HitResult) {
	e.endOverlap = append(e.endOverlap, e.world.Tick())
	e.lastEnd = h
}

func stepN(w *physics.World, n int) {
	for i := 0; i < n; i++ {
		Expect(w.Step(dt)).To(Succeed())
	}
}

var _ = Describe("World", func() {
	var (
		settings *physics.Settings
		logger   *captureLogger
		world    *physics.World
	)

	BeforeEach(func() {
		settings = physics.DefaultSettings()
		logger = &captureLogger{}
		world = physics.NewWorld(settings, physics.WithLogger(logger))
	})

	Describe("registration", func() {
		It("ignores duplicate registrations", func() {
			b := physics.NewBody("b", vmath.Zero, 1)
			world.RegisterBody(b)
			world.RegisterBody(b)
			Expect(world.Bodies()).To(HaveLen(1))

			s := physics.NewShape("s", geom.NewSphere(1), b)
			Expect(world.RegisterShape(s)).To(Succeed())
			Expect(world.RegisterShape(s)).To(Succeed())
			Expect(world.Shapes()).To(HaveLen(1))
		})

		It("rejects shapes without geometry", func() {
			Expect(world.RegisterShape(physics.NewShape("s", nil, nil))).To(MatchError(physics.ErrNilGeometry))
			_, err := world.AddShape("s", nil, nil)
			Expect(err).To(MatchError(physics.ErrNilGeometry))
		})

		It("reports unknown entities on unregister", func() {
			Expect(world.UnregisterBody(physics.NewBody("x", vmath.Zero, 1))).To(MatchError(physics.ErrNotRegistered))
			Expect(world.UnregisterShape(physics.NewShape("x", geom.NewSphere(1), nil))).To(MatchError(physics.ErrNotRegistered))
		})

		It("clears both registries", func() {
			b := world.AddBody("b", vmath.Zero, 1)
			_, err := world.AddShape("s", geom.NewSphere(1), b)
			Expect(err).NotTo(HaveOccurred())

			world.Clear()
			Expect(world.Bodies()).To(BeEmpty())
			Expect(world.Shapes()).To(BeEmpty())
			Expect(logger.lines).To(ContainElement(ContainSubstring("registries cleared")))
		})

		It("removes a destroyed body together with its shapes", func() {
			b := world.AddBody("b", vmath.Zero, 1)
			s, _ := world.AddShape("s", geom.NewSphere(1), b)
			world.Destroy(b)

			Expect(b.Alive()).To(BeFalse())
			Expect(s.Alive()).To(BeFalse())
			Expect(world.Bodies()).To(BeEmpty())
			Expect(world.Shapes()).To(BeEmpty())
		})
	})

	Describe("Step", func() {
		It("rejects invalid timesteps", func() {
			for _, bad := range []float64{0, -0.01} {
				err := world.Step(bad)
				Expect(err).To(MatchError(physics.ErrInvalidTimestep))
				var stepErr *physics.StepError
				Expect(err).To(BeAssignableToTypeOf(stepErr))
			}
			Expect(world.Tick()).To(BeZero())
		})

		It("pauses without settings and resumes when they return", func() {
			b := world.AddBody("b", vmath.Vec3{0, 10, 0}, 1)
			world.SetSettings(nil)

			for i := 0; i < 3; i++ {
				Expect(world.Step(dt)).To(Succeed())
			}
			Expect(b.Position()).To(Equal(vmath.Vec3{0, 10, 0}))
			Expect(world.Stats().Paused).To(BeTrue())
			Expect(world.Tick()).To(BeZero())
			Expect(logger.lines).To(HaveLen(3))
			Expect(logger.lines[0]).To(ContainSubstring("no active settings"))

			world.SetSettings(settings)
			stepN(world, 5)
			Expect(b.Position().Y()).To(BeNumerically("<", 10))
			Expect(world.Stats().Paused).To(BeFalse())
			Expect(world.Tick()).To(BeEquivalentTo(5))
		})
	})

	Describe("resting contact", func() {
		It("keeps a sphere on a half-space in equilibrium", func() {
			_, err := world.AddShape("ground", geom.NewHalfSpace(), nil)
			Expect(err).NotTo(HaveOccurred())

			start := vmath.Vec3{2, 0.5, -1}
			b := world.AddBody("ball", start, 1)
			ball, err := world.AddShape("ball", geom.NewSphere(0.5), b)
			Expect(err).NotTo(HaveOccurred())
			ball.Bounce = 0

			stepN(world, 300)
			Expect(b.Position()).To(Equal(start))
			Expect(world.Stats().Contacts).To(Equal(1))
			Expect(world.Stats().MaxNormalForce).To(BeNumerically("~", 9.8, 1e-6))
		})

		It("brings a dropped sphere to rest above the ground", func() {
			_, _ = world.AddShape("ground", geom.NewHalfSpace(), nil)
			b := world.AddBody("ball", vmath.Vec3{0, 3, 0}, 1)
			_, _ = world.AddShape("ball", geom.NewSphere(0.5), b)

			stepN(world, 500)
			Expect(b.Position().Y()).To(BeNumerically("~", 0.5, 0.02))
			Expect(b.Alive()).To(BeTrue())
		})

		It("stops a fast sphere that sinks past its radius in one step", func() {
			_, _ = world.AddShape("ground", geom.NewHalfSpace(), nil)

			for _, x := range []float64{0, 5} {
				b := world.AddBody(fmt.Sprintf("pellet%.0f", x), vmath.Vec3{x, 0.15, 0}, 1)
				_, err := world.AddShape(b.Name, geom.NewSphere(0.1), b)
				Expect(err).NotTo(HaveOccurred())
				b.SetVelocity(vmath.Vec3{0, -20, 0})
			}

			for i := 0; i < 100; i++ {
				Expect(world.Step(dt)).To(Succeed())
				for _, b := range world.Bodies() {
					Expect(b.Position().Y()).To(BeNumerically(">=", 0.1-1e-6), "%s at tick %d", b.Name, world.Tick())
				}
			}
			Expect(world.Bodies()).To(HaveLen(2))
			Expect(world.Stats().Despawned).To(BeZero())
		})
	})

	Describe("elastic exchange", func() {
		It("swaps the velocities of equal spheres", func() {
			settings.Gravity = vmath.Zero

			a := world.AddBody("a", vmath.Vec3{-1, 0, 0}, 1)
			b := world.AddBody("b", vmath.Vec3{1, 0, 0}, 1)
			a.SetVelocity(vmath.Vec3{1, 0, 0})
			b.SetVelocity(vmath.Vec3{-1, 0, 0})
			for _, body := range []*physics.Body{a, b} {
				s, err := world.AddShape(body.Name, geom.NewSphere(0.5), body)
				Expect(err).NotTo(HaveOccurred())
				s.Bounce = 1
				s.StaticFriction = 0
				s.DynamicFriction = 0
			}

			for i := 0; i < 200 && a.Velocity().X() > 0; i++ {
				Expect(world.Step(dt)).To(Succeed())
			}

			Expect(a.Velocity().X()).To(BeNumerically("~", -1, 1e-6))
			Expect(b.Velocity().X()).To(BeNumerically("~", 1, 1e-6))
			Expect(a.Velocity().X() + b.Velocity().X()).To(BeNumerically("~", 0, 1e-9))
		})
	})

	Describe("contact lifecycle", func() {
		var (
			a, b   *physics.Body
			sa, sb *physics.Shape
			events *eventLog
		)

		apart := vmath.Vec3{5, 0, 0}
		overlapping := vmath.Vec3{1, 0, 0}

		BeforeEach(func() {
			a = world.AddBody("a", vmath.Zero, 1)
			b = world.AddBody("b", apart, 1)
			a.Static, b.Static = true, true

			var err error
			sa, err = world.AddShape("a", geom.NewSphere(1), a)
			Expect(err).NotTo(HaveOccurred())
			sb, err = world.AddShape("b", geom.NewSphere(1), b)
			Expect(err).NotTo(HaveOccurred())

			events = &eventLog{world: world}
			Expect(sa.AddListener(events)).To(BeTrue())
		})

		// Ticks 1-2 apart, 3-6 overlapping, 7-8 apart.
		run := func() {
			stepN(world, 2)
			b.SetPosition(overlapping)
			stepN(world, 4)
			b.SetPosition(apart)
			stepN(world, 2)
		}

		It("fires begin, hit and end exactly once per phase", func() {
			run()
			Expect(events.beginHit).To(Equal([]uint64{3}))
			Expect(events.hit).To(Equal([]uint64{4, 5, 6}))
			Expect(events.endHit).To(Equal([]uint64{7}))
			Expect(events.lastEnd.Other).To(BeIdenticalTo(sb))
			Expect(events.beginOverlap).To(BeEmpty())
			Expect(sa.IsHitting(sb)).To(BeFalse())
		})

		It("also fires the steady event on the first tick when configured", func() {
			settings.HitEventsOnBegin = true
			run()
			Expect(events.beginHit).To(Equal([]uint64{3}))
			Expect(events.hit).To(Equal([]uint64{3, 4, 5, 6}))
			Expect(events.endHit).To(Equal([]uint64{7}))
		})

		It("reports trigger contacts as overlaps", func() {
			sb.Trigger = true
			run()
			Expect(events.beginOverlap).To(Equal([]uint64{3}))
			Expect(events.overlap).To(Equal([]uint64{4, 5, 6}))
			Expect(events.endOverlap).To(Equal([]uint64{7}))
			Expect(events.beginHit).To(BeEmpty())
			Expect(events.hit).To(BeEmpty())
		})

		It("moves a pair from overlap to hit when the trigger flag clears", func() {
			sb.Trigger = true
			b.SetPosition(overlapping)
			stepN(world, 2)
			Expect(sa.IsOverlapping(sb)).To(BeTrue())

			sb.Trigger = false
			stepN(world, 1)
			Expect(events.endOverlap).To(Equal([]uint64{3}))
			Expect(events.beginHit).To(Equal([]uint64{3}))
			Expect(sa.IsOverlapping(sb)).To(BeFalse())
			Expect(sa.IsHitting(sb)).To(BeTrue())
		})

		It("ends the contact when the peer is destroyed", func() {
			b.SetPosition(overlapping)
			stepN(world, 2)
			world.Destroy(b)
			stepN(world, 1)
			Expect(events.endHit).To(Equal([]uint64{3}))
		})

		It("gives each side its own view of the contact", func() {
			var seen physics.HitResult
			sb.AddListener(physics.ListenerFuncs{
				BeginHit: func(_ *physics.Shape, h physics.HitResult) { seen = h },
			})
			b.SetPosition(overlapping)
			stepN(world, 1)

			Expect(seen.Shape).To(BeIdenticalTo(sb))
			Expect(seen.Other).To(BeIdenticalTo(sa))
			Expect(seen.Normal.X()).To(BeNumerically("~", -1, 1e-9))
		})

		It("highlights shapes for the configured duration", func() {
			settings.HighlightDuration = 0.1
			b.SetPosition(overlapping)
			stepN(world, 1)
			Expect(sa.Highlighted(world.Time())).To(BeTrue())

			b.SetPosition(apart)
			stepN(world, 10)
			Expect(sa.Highlighted(world.Time())).To(BeFalse())
			Expect(sb.Highlighted(world.Time())).To(BeFalse())
		})
	})

	Describe("dead zone", func() {
		It("despawns bodies that fall through it", func() {
			b := world.AddBody("rock", vmath.Vec3{0, settings.DeadZone + 0.1, 0}, 1)
			s, _ := world.AddShape("rock", geom.NewSphere(0.2), b)
			b.SetVelocity(vmath.Vec3{0, -10, 0})

			var despawned []*physics.Body
			world.OnDespawn(func(x *physics.Body) { despawned = append(despawned, x) })

			stepN(world, 1)
			Expect(world.Bodies()).NotTo(ContainElement(b))
			Expect(world.Shapes()).NotTo(ContainElement(s))
			Expect(despawned).To(ConsistOf(b))
			Expect(world.Stats().Despawned).To(Equal(1))

			last := b.Position()
			stepN(world, 5)
			Expect(b.Position()).To(Equal(last))
			Expect(despawned).To(HaveLen(1))
		})
	})

	Describe("PredictPath", func() {
		It("traces a parabola until it reaches the ground", func() {
			_, _ = world.AddShape("ground", geom.NewHalfSpace(), nil)
			start := vmath.Vec3{0, 5, 0}

			path := world.PredictPath(start, vmath.Vec3{4, 0, 0}, nil, 500, dt)
			Expect(path[0]).To(Equal(start))
			Expect(len(path)).To(BeNumerically("<", 501))

			end := path[len(path)-1]
			Expect(end.Y()).To(BeNumerically("<=", 0.001))
			Expect(end.X()).To(BeNumerically(">", 3.5))
			for i := 1; i < len(path); i++ {
				Expect(path[i].X()).To(BeNumerically(">", path[i-1].X()))
			}
			Expect(world.Tick()).To(BeZero())
		})

		It("ignores shapes on the probe's own body", func() {
			b := world.AddBody("sling", vmath.Zero, 1)
			probe, _ := world.AddShape("stone", geom.NewSphere(0.1), b)
			_, _ = world.AddShape("cradle", geom.NewSphere(0.5), b)

			path := world.PredictPath(vmath.Zero, vmath.Vec3{1, 1, 0}, probe, 20, dt)
			Expect(path).To(HaveLen(21))
		})

		It("returns nothing while paused", func() {
			world.SetSettings(nil)
			Expect(world.PredictPath(vmath.Zero, vmath.Right, nil, 10, dt)).To(BeNil())
		})
	})
})
