package config

import (
	"fmt"
	"os"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/vmath"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt              = 0.02
	DefaultDuration        = 10.0
	DefaultSampleEvery     = 1
	DefaultMass            = 1.0
	DefaultStaticFriction  = 0.6
	DefaultDynamicFriction = 0.4
)

type Config struct {
	Scene       string           `yaml:"scene"`
	Dt          float64          `yaml:"dt"`
	Duration    float64          `yaml:"duration"`
	SampleEvery int              `yaml:"sample_every"`
	Profiles    []SettingsConfig `yaml:"settings"`
	Entities    []EntityConfig   `yaml:"entities"`
	Launches    []LaunchConfig   `yaml:"launches,omitempty"`
}

// SettingsConfig is one named physics profile. The first enabled profile
// is the current one.
type SettingsConfig struct {
	Name                 string     `yaml:"name"`
	Enabled              bool       `yaml:"enabled"`
	Gravity              vmath.Vec3 `yaml:"gravity,flow"`
	DeadZone             float64    `yaml:"dead_zone"`
	MovementThreshold    float64    `yaml:"movement_threshold"`
	RotationThreshold    float64    `yaml:"rotation_threshold"`
	FrictionBlend        string     `yaml:"friction_blend"`
	BounceBlend          string     `yaml:"bounce_blend"`
	HitEventsOnBegin     bool       `yaml:"hit_events_on_begin"`
	OverlapEventsOnBegin bool       `yaml:"overlap_events_on_begin"`
	HighlightDuration    float64    `yaml:"highlight_duration"`
}

// EntityConfig places one named entity. Entities without a body are static
// colliders posed by Position and Rotation.
type EntityConfig struct {
	Name     string        `yaml:"name"`
	Position vmath.Vec3    `yaml:"position,flow"`
	Rotation vmath.Vec3    `yaml:"rotation,flow"`
	Body     *BodyConfig   `yaml:"body,omitempty"`
	Shapes   []ShapeConfig `yaml:"shapes"`
}

type BodyConfig struct {
	Mass            float64    `yaml:"mass"`
	Drag            float64    `yaml:"drag"`
	AngularDrag     float64    `yaml:"angular_drag"`
	Static          bool       `yaml:"static"`
	LockRotation    bool       `yaml:"lock_rotation"`
	Velocity        vmath.Vec3 `yaml:"velocity,flow"`
	AngularVelocity vmath.Vec3 `yaml:"angular_velocity,flow"`
}

type ShapeConfig struct {
	Name            string     `yaml:"name,omitempty"`
	Kind            string     `yaml:"kind"`
	Radius          float64    `yaml:"radius,omitempty"`
	HalfExtents     vmath.Vec3 `yaml:"half_extents,flow,omitempty"`
	Offset          vmath.Vec3 `yaml:"offset,flow,omitempty"`
	Trigger         bool       `yaml:"trigger,omitempty"`
	Disabled        bool       `yaml:"disabled,omitempty"`
	StaticFriction  float64    `yaml:"static_friction"`
	DynamicFriction float64    `yaml:"dynamic_friction"`
	Bounce          float64    `yaml:"bounce"`
}

// LaunchConfig applies an impulse to an entity's body at a given time.
type LaunchConfig struct {
	Entity  string     `yaml:"entity"`
	At      float64    `yaml:"at"`
	Impulse vmath.Vec3 `yaml:"impulse,flow"`
}

func DefaultProfile() SettingsConfig {
	s := physics.DefaultSettings()
	return SettingsConfig{
		Name:              "default",
		Enabled:           true,
		Gravity:           s.Gravity,
		DeadZone:          s.DeadZone,
		MovementThreshold: s.MovementThreshold,
		RotationThreshold: s.RotationThreshold,
		FrictionBlend:     s.FrictionBlend.String(),
		BounceBlend:       s.BounceBlend.String(),
		HighlightDuration: s.HighlightDuration,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Scene:       "custom",
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		SampleEvery: DefaultSampleEvery,
		Profiles:    []SettingsConfig{DefaultProfile()},
	}
}

// UnmarshalYAML fills omitted profile fields from DefaultProfile.
func (p *SettingsConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain SettingsConfig
	v := plain(DefaultProfile())
	if err := node.Decode(&v); err != nil {
		return err
	}
	*p = SettingsConfig(v)
	return nil
}

func (b *BodyConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain BodyConfig
	v := plain{Mass: DefaultMass, AngularDrag: 1, LockRotation: true}
	if err := node.Decode(&v); err != nil {
		return err
	}
	*b = BodyConfig(v)
	return nil
}

func (s *ShapeConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain ShapeConfig
	v := plain{StaticFriction: DefaultStaticFriction, DynamicFriction: DefaultDynamicFriction}
	if err := node.Decode(&v); err != nil {
		return err
	}
	*s = ShapeConfig(v)
	return nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %v", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", c.Duration)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("sample_every must not be negative, got %d", c.SampleEvery)
	}

	names := make(map[string]bool, len(c.Entities))
	for _, e := range c.Entities {
		if e.Name == "" {
			return fmt.Errorf("entity without a name")
		}
		if names[e.Name] {
			return fmt.Errorf("duplicate entity %q", e.Name)
		}
		names[e.Name] = true
		for _, s := range e.Shapes {
			if _, err := s.Geometry(); err != nil {
				return fmt.Errorf("entity %q: %w", e.Name, err)
			}
		}
	}
	for _, l := range c.Launches {
		if !names[l.Entity] {
			return fmt.Errorf("launch targets unknown entity %q", l.Entity)
		}
	}
	for _, p := range c.Profiles {
		if _, err := p.ToSettings(); err != nil {
			return fmt.Errorf("settings %q: %w", p.Name, err)
		}
	}
	return nil
}

// Current returns the first enabled profile, or nil if none is enabled.
func (c *Config) Current() *SettingsConfig {
	for i := range c.Profiles {
		if c.Profiles[i].Enabled {
			return &c.Profiles[i]
		}
	}
	return nil
}

// Settings converts the current profile. It returns nil settings and no
// error when every profile is disabled.
func (c *Config) Settings() (*physics.Settings, error) {
	p := c.Current()
	if p == nil {
		return nil, nil
	}
	return p.ToSettings()
}

func (p SettingsConfig) ToSettings() (*physics.Settings, error) {
	friction, err := physics.ParseBlendMode(p.FrictionBlend)
	if err != nil {
		return nil, err
	}
	bounce, err := physics.ParseBlendMode(p.BounceBlend)
	if err != nil {
		return nil, err
	}
	return &physics.Settings{
		Gravity:              p.Gravity,
		DeadZone:             p.DeadZone,
		MovementThreshold:    p.MovementThreshold,
		RotationThreshold:    p.RotationThreshold,
		FrictionBlend:        friction,
		BounceBlend:          bounce,
		HitEventsOnBegin:     p.HitEventsOnBegin,
		OverlapEventsOnBegin: p.OverlapEventsOnBegin,
		HighlightDuration:    p.HighlightDuration,
	}, nil
}

// Geometry builds the collision geometry described by s.
func (s ShapeConfig) Geometry() (geom.Geometry, error) {
	kind, err := geom.ParseKind(s.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", physics.ErrUnknownShape, s.Kind)
	}
	switch kind {
	case geom.KindSphere:
		return geom.NewSphere(s.Radius), nil
	case geom.KindCube:
		return geom.NewCube(s.HalfExtents), nil
	case geom.KindPlane:
		return geom.NewPlane(), nil
	case geom.KindHalfSpace:
		return geom.NewHalfSpace(), nil
	default:
		return nil, fmt.Errorf("%w: %q", physics.ErrUnknownShape, s.Kind)
	}
}

// Entity looks up an entity by name.
func (c *Config) Entity(name string) (*EntityConfig, bool) {
	for i := range c.Entities {
		if c.Entities[i].Name == name {
			return &c.Entities[i], true
		}
	}
	return nil, false
}
