package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/rigidsim/internal/scene"
)

// Ensemble runs the same scene several times in parallel. Each run gets a
// freshly built scene, so identical inputs must give identical results.
type Ensemble struct {
	build   func() (*scene.Scene, error)
	metrics func() []Metric
	numRuns int
}

// NewEnsemble takes a scene constructor and an optional metric constructor;
// metrics hold per-run state and cannot be shared between goroutines.
func NewEnsemble(build func() (*scene.Scene, error), metrics func() []Metric, numRuns int) *Ensemble {
	return &Ensemble{build: build, metrics: metrics, numRuns: numRuns}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			sc, err := e.build()
			if err != nil {
				errs[idx] = err
				return
			}

			sim := New()
			if e.metrics != nil {
				for _, m := range e.metrics() {
					sim.AddMetric(m)
				}
			}

			results[idx], errs[idx] = sim.Run(ctx, sc, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// Diverged compares every result with the first one and reports the first
// run, sample and body whose position differs, or -1 when all agree.
func Diverged(results []*Result) (run, sample, body int) {
	if len(results) < 2 {
		return -1, -1, -1
	}
	ref := results[0]
	for r := 1; r < len(results); r++ {
		got := results[r]
		if len(got.Samples) != len(ref.Samples) {
			return r, min(len(got.Samples), len(ref.Samples)), -1
		}
		for i := range ref.Samples {
			a, b := ref.Samples[i].Positions, got.Samples[i].Positions
			for j := range a {
				if j >= len(b) || a[j] != b[j] {
					return r, i, j
				}
			}
		}
	}
	return -1, -1, -1
}

// CheckDeterminism runs the ensemble and returns an error describing the
// first divergence.
func (e *Ensemble) CheckDeterminism(ctx context.Context, cfg Config) error {
	results, err := e.Run(ctx, cfg)
	if err != nil {
		return err
	}
	run, sample, body := Diverged(results)
	if run < 0 {
		return nil
	}
	ref := results[0]
	name := "?"
	if body >= 0 && body < len(ref.Bodies) {
		name = ref.Bodies[body]
	}
	return fmt.Errorf("run %d diverged at sample %d (body %s)", run, sample, name)
}
