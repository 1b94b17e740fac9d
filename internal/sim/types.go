package sim

import (
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/vmath"
)

// Frame is what metrics and observers see after each step.
type Frame struct {
	Step  int
	Time  float64
	Scene *scene.Scene
	Stats physics.Stats
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f Frame)
}

type Config struct {
	Dt          float64
	Duration    float64
	SampleEvery int
}

// ConfigFrom takes the run parameters out of a scene file.
func ConfigFrom(c *config.Config) Config {
	return Config{Dt: c.Dt, Duration: c.Duration, SampleEvery: c.SampleEvery}
}

// Sample holds the positions of every tracked body at one recorded tick.
// Bodies that despawned keep their last position.
type Sample struct {
	Tick      uint64
	Time      float64
	Positions []vmath.Vec3
}

type Result struct {
	Scene      string
	Bodies     []string
	Samples    []Sample
	Events     []scene.Event
	Metrics    map[string]float64
	Stats      physics.Stats
	StepsTaken int
}

// Heights returns the y coordinate of body i for every sample.
func (r *Result) Heights(i int) []float64 {
	out := make([]float64, 0, len(r.Samples))
	for _, s := range r.Samples {
		if i < len(s.Positions) {
			out = append(out, s.Positions[i].Y())
		}
	}
	return out
}

func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Time
	}
	return out
}
