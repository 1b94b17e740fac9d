package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/vmath"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}

	s, err := cfg.Settings()
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if s.Gravity != (vmath.Vec3{0, -9.8, 0}) {
		t.Errorf("expected default gravity, got %v", s.Gravity)
	}
}

func TestCurrentProfile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profiles = []SettingsConfig{
		{Name: "moon", Enabled: false, Gravity: vmath.Vec3{0, -1.6, 0}},
		{Name: "earth", Enabled: true, Gravity: vmath.Vec3{0, -9.8, 0}},
		{Name: "mars", Enabled: true, Gravity: vmath.Vec3{0, -3.7, 0}},
	}

	if cur := cfg.Current(); cur == nil || cur.Name != "earth" {
		t.Fatalf("expected earth to be current, got %+v", cur)
	}

	for i := range cfg.Profiles {
		cfg.Profiles[i].Enabled = false
	}
	s, err := cfg.Settings()
	if err != nil || s != nil {
		t.Errorf("expected nil settings without error, got %v, %v", s, err)
	}
}

func TestToSettingsBlendModes(t *testing.T) {
	tests := []struct {
		friction, bounce string
		wantF, wantB     physics.BlendMode
		wantErr          bool
	}{
		{"average", "average", physics.BlendAverage, physics.BlendAverage, false},
		{"multiply", "add", physics.BlendMultiply, physics.BlendAdd, false},
		{"", "mul", physics.BlendAverage, physics.BlendMultiply, false},
		{"max", "add", 0, 0, true},
	}

	for _, tt := range tests {
		p := DefaultProfile()
		p.FrictionBlend = tt.friction
		p.BounceBlend = tt.bounce

		s, err := p.ToSettings()
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s/%s: expected error", tt.friction, tt.bounce)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s/%s: %v", tt.friction, tt.bounce, err)
		}
		if s.FrictionBlend != tt.wantF || s.BounceBlend != tt.wantB {
			t.Errorf("expected %v/%v, got %v/%v", tt.wantF, tt.wantB, s.FrictionBlend, s.BounceBlend)
		}
	}
}

func TestShapeGeometry(t *testing.T) {
	tests := []struct {
		kind string
		want geom.Kind
	}{
		{"sphere", geom.KindSphere},
		{"cube", geom.KindCube},
		{"box", geom.KindCube},
		{"plane", geom.KindPlane},
		{"halfspace", geom.KindHalfSpace},
	}

	for _, tt := range tests {
		g, err := ShapeConfig{Kind: tt.kind, Radius: 1, HalfExtents: vmath.Vec3{1, 1, 1}}.Geometry()
		if err != nil {
			t.Fatalf("%s: %v", tt.kind, err)
		}
		if g.Kind() != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.kind, tt.want, g.Kind())
		}
	}

	_, err := ShapeConfig{Kind: "torus"}.Geometry()
	if !errors.Is(err, physics.ErrUnknownShape) {
		t.Errorf("expected ErrUnknownShape, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"unnamed entity", func(c *Config) { c.Entities = append(c.Entities, EntityConfig{}) }},
		{"duplicate entity", func(c *Config) { c.Entities = append(c.Entities, c.Entities[0]) }},
		{"bad shape kind", func(c *Config) { c.Entities[0].Shapes[0].Kind = "torus" }},
		{"unknown launch target", func(c *Config) {
			c.Launches = append(c.Launches, LaunchConfig{Entity: "nobody"})
		}},
		{"bad blend mode", func(c *Config) { c.Profiles[0].BounceBlend = "max" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetPreset("drop")
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	data := `
dt: 0.01
settings:
  - name: low-g
    enabled: true
    gravity: [0, -2, 0]
entities:
  - name: floor
    shapes:
      - kind: halfspace
  - name: ball
    position: [0, 3, 0]
    body:
      drag: 0.1
    shapes:
      - kind: sphere
        radius: 0.5
launches:
  - entity: ball
    at: 0.5
    impulse: [1, 0, 0]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dt != 0.01 {
		t.Errorf("expected dt 0.01, got %v", cfg.Dt)
	}
	if cfg.Duration != DefaultDuration {
		t.Errorf("expected default duration, got %v", cfg.Duration)
	}

	p := cfg.Current()
	if p == nil || p.Gravity != (vmath.Vec3{0, -2, 0}) {
		t.Fatalf("expected low-g profile, got %+v", p)
	}
	if p.MovementThreshold != physics.DefaultMovementThreshold || p.DeadZone != physics.DefaultDeadZone {
		t.Errorf("expected omitted profile fields to default, got %+v", p)
	}

	ball, ok := cfg.Entity("ball")
	if !ok || ball.Body == nil {
		t.Fatal("expected ball with a body")
	}
	if ball.Body.Mass != DefaultMass || !ball.Body.LockRotation || ball.Body.Drag != 0.1 {
		t.Errorf("unexpected body defaults: %+v", ball.Body)
	}
	if ball.Shapes[0].DynamicFriction != DefaultDynamicFriction {
		t.Errorf("expected default friction, got %v", ball.Shapes[0].DynamicFriction)
	}
	if len(cfg.Launches) != 1 || cfg.Launches[0].Impulse != (vmath.Vec3{1, 0, 0}) {
		t.Errorf("unexpected launches: %+v", cfg.Launches)
	}
}

func TestSaveLoadPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stack.yaml")
	orig := GetPreset("stack")
	if err := Save(path, orig); err != nil {
		t.Fatalf("save: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scene != "stack" || len(cfg.Entities) != len(orig.Entities) {
		t.Errorf("expected %d entities in stack, got %s with %d", len(orig.Entities), cfg.Scene, len(cfg.Entities))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("slingshot")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Scene != "slingshot" {
		t.Errorf("expected scene slingshot, got %s", cfg.Scene)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected preset to validate, got %v", err)
	}

	cfg.Entities = nil
	if again := GetPreset("slingshot"); len(again.Entities) == 0 {
		t.Error("expected presets to be independent copies")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for _, name := range presets {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}
