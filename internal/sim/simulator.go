package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/vmath"
)

type Simulator struct {
	metrics   []Metric
	observers []Observer
}

func New() *Simulator {
	return &Simulator{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run steps sc for cfg.Duration and records the movable bodies every
// cfg.SampleEvery ticks. On cancellation or a step error the partial
// result is returned with the error.
func (s *Simulator) Run(ctx context.Context, sc *scene.Scene, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := stepCount(cfg)
	every := max(cfg.SampleEvery, 1)
	movers := sc.Movers()

	result := &Result{
		Scene:   sc.Name,
		Bodies:  make([]string, len(movers)),
		Samples: make([]Sample, 0, steps/every+1),
		Metrics: make(map[string]float64),
	}
	for i, e := range movers {
		result.Bodies[i] = e.Name
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result.Samples = append(result.Samples, sample(sc, movers))

	var runErr error
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		if err := sc.Step(cfg.Dt); err != nil {
			runErr = fmt.Errorf("step %d: %w", i, err)
			break
		}
		result.StepsTaken++

		f := Frame{Step: i, Time: sc.World.Time(), Scene: sc, Stats: sc.World.Stats()}
		for _, m := range s.metrics {
			m.Observe(f)
		}
		for _, obs := range s.observers {
			obs.OnStep(f)
		}

		if (i+1)%every == 0 {
			result.Samples = append(result.Samples, sample(sc, movers))
		}
	}

	result.Events = sc.Events()
	result.Stats = sc.World.Stats()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, runErr
}

// RunWithCallback steps sc until the duration is reached or callback
// returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, sc *scene.Scene, cfg Config, callback func(Frame) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	steps := stepCount(cfg)
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := sc.Step(cfg.Dt); err != nil {
			return err
		}

		f := Frame{Step: i, Time: sc.World.Time(), Scene: sc, Stats: sc.World.Stats()}
		for _, obs := range s.observers {
			obs.OnStep(f)
		}
		if !callback(f) {
			return nil
		}
	}

	return nil
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 || math.IsNaN(cfg.Dt) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("sample_every must not be negative, got %d", cfg.SampleEvery)
	}
	return nil
}

func stepCount(cfg Config) int {
	return int(math.Round(cfg.Duration / cfg.Dt))
}

func sample(sc *scene.Scene, movers []*scene.Entity) Sample {
	pos := make([]vmath.Vec3, len(movers))
	for i, e := range movers {
		pos[i] = e.Body.Position()
	}
	return Sample{Tick: sc.World.Tick(), Time: sc.World.Time(), Positions: pos}
}
