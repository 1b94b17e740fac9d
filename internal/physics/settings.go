package physics

import (
	"fmt"
	"strings"

	"github.com/san-kum/rigidsim/internal/vmath"
)

// BlendMode combines the material coefficients of two shapes.
type BlendMode uint8

const (
	BlendAverage BlendMode = iota
	BlendAdd
	BlendMultiply
)

func (m BlendMode) Blend(a, b float64) float64 {
	switch m {
	case BlendAdd:
		return a + b
	case BlendMultiply:
		return a * b
	default:
		return (a + b) / 2
	}
}

func (m BlendMode) String() string {
	switch m {
	case BlendAdd:
		return "add"
	case BlendMultiply:
		return "multiply"
	default:
		return "average"
	}
}

func ParseBlendMode(s string) (BlendMode, error) {
	switch strings.ToLower(s) {
	case "", "average", "avg":
		return BlendAverage, nil
	case "add", "sum":
		return BlendAdd, nil
	case "multiply", "mul":
		return BlendMultiply, nil
	default:
		return BlendAverage, fmt.Errorf("unknown blend mode: %s", s)
	}
}

const (
	DefaultDeadZone          = -25.0
	DefaultMovementThreshold = 0.005
	DefaultRotationThreshold = 0.01
	DefaultHighlightDuration = 0.25
)

// Settings is the configuration the engine consumes each tick.
type Settings struct {
	Gravity  vmath.Vec3
	DeadZone float64

	// Per-tick displacement below which a body's position is not advanced.
	MovementThreshold float64
	RotationThreshold float64

	FrictionBlend BlendMode
	BounceBlend   BlendMode

	// When set, the first tick of a contact fires the persisting event in
	// addition to the begin event.
	HitEventsOnBegin     bool
	OverlapEventsOnBegin bool

	// Simulated seconds a shape stays highlighted after a contact.
	HighlightDuration float64
}

func DefaultSettings() *Settings {
	return &Settings{
		Gravity:           vmath.Vec3{0, -9.8, 0},
		DeadZone:          DefaultDeadZone,
		MovementThreshold: DefaultMovementThreshold,
		RotationThreshold: DefaultRotationThreshold,
		FrictionBlend:     BlendAverage,
		BounceBlend:       BlendAverage,
		HighlightDuration: DefaultHighlightDuration,
	}
}
