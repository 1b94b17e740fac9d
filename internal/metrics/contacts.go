package metrics

import (
	"github.com/san-kum/rigidsim/internal/sim"
)

// PeakNormalForce is the largest contact normal force of the run.
type PeakNormalForce struct {
	name string
	peak float64
}

func NewPeakNormalForce() *PeakNormalForce {
	return &PeakNormalForce{name: "peak_normal_force"}
}

func (p *PeakNormalForce) Name() string { return p.name }

func (p *PeakNormalForce) Observe(f sim.Frame) {
	p.peak = max(p.peak, f.Stats.MaxNormalForce)
}

func (p *PeakNormalForce) Value() float64 { return p.peak }
func (p *PeakNormalForce) Reset()         { p.peak = 0 }

// ContactCount reports the mean number of contacts per step.
type ContactCount struct {
	name    string
	sum     int
	peak    int
	samples int
}

func NewContactCount() *ContactCount {
	return &ContactCount{name: "contacts"}
}

func (c *ContactCount) Name() string {
	return c.name
}

func (c *ContactCount) Observe(f sim.Frame) {
	c.sum += f.Stats.Contacts
	c.peak = max(c.peak, f.Stats.Contacts)
	c.samples++
}

func (c *ContactCount) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.sum) / float64(c.samples)
}

func (c *ContactCount) Peak() int { return c.peak }

func (c *ContactCount) Reset() {
	c.sum = 0
	c.peak = 0
	c.samples = 0
}
