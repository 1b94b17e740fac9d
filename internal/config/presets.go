package config

import (
	"fmt"
	"slices"

	"github.com/san-kum/rigidsim/internal/vmath"
)

// Presets holds the built-in scenes. Each entry builds a fresh Config so
// callers may modify the result.
var Presets = map[string]func() *Config{
	"drop":      dropScene,
	"stack":     stackScene,
	"slingshot": slingshotScene,
	"billiards": billiardsScene,
	"range":     rangeScene,
}

func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := build()
	cfg.Scene = name
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func scene(duration float64, entities ...EntityConfig) *Config {
	cfg := DefaultConfig()
	cfg.Duration = duration
	cfg.Entities = entities
	return cfg
}

func groundEntity() EntityConfig {
	return EntityConfig{
		Name:   "ground",
		Shapes: []ShapeConfig{solid("halfspace")},
	}
}

func solid(kind string) ShapeConfig {
	return ShapeConfig{Kind: kind, StaticFriction: DefaultStaticFriction, DynamicFriction: DefaultDynamicFriction}
}

func ballEntity(name string, pos vmath.Vec3, radius, mass, bounce float64) EntityConfig {
	s := solid("sphere")
	s.Radius = radius
	s.Bounce = bounce
	return EntityConfig{
		Name:     name,
		Position: pos,
		Body:     &BodyConfig{Mass: mass, AngularDrag: 1, LockRotation: true},
		Shapes:   []ShapeConfig{s},
	}
}

func cubeShape(half vmath.Vec3) ShapeConfig {
	s := solid("cube")
	s.HalfExtents = half
	return s
}

func boxEntity(name string, pos, half vmath.Vec3, mass float64) EntityConfig {
	return EntityConfig{
		Name:     name,
		Position: pos,
		Body:     &BodyConfig{Mass: mass, AngularDrag: 1, LockRotation: true},
		Shapes:   []ShapeConfig{cubeShape(half)},
	}
}

func dropScene() *Config {
	return scene(6,
		groundEntity(),
		ballEntity("ball", vmath.Vec3{0, 5, 0}, 0.5, 1, 0.6),
		boxEntity("crate", vmath.Vec3{3, 8, 0}, vmath.Vec3{0.5, 0.5, 0.5}, 2),
	)
}

func stackScene() *Config {
	half := vmath.Vec3{0.5, 0.5, 0.5}
	cfg := scene(8,
		groundEntity(),
		boxEntity("block-1", vmath.Vec3{6, 0.5, 0}, half, 1),
		boxEntity("block-2", vmath.Vec3{6, 1.5, 0}, half, 1),
		boxEntity("block-3", vmath.Vec3{6, 2.5, 0}, half, 1),
		ballEntity("ball", vmath.Vec3{0, 1.5, 0}, 0.4, 3, 0.2),
	)
	cfg.Launches = []LaunchConfig{{Entity: "ball", At: 0.5, Impulse: vmath.Vec3{24, 6, 0}}}
	return cfg
}

func slingshotScene() *Config {
	half := vmath.Vec3{0.4, 1, 0.4}
	goal := EntityConfig{
		Name:     "goal",
		Position: vmath.Vec3{14, 1, 0},
		Shapes: []ShapeConfig{{
			Kind:        "cube",
			HalfExtents: vmath.Vec3{1, 1, 1},
			Trigger:     true,
		}},
	}
	bird := ballEntity("bird", vmath.Vec3{0, 1, 0}, 0.3, 1, 0.4)
	bird.Body.Drag = 0.01

	cfg := scene(6,
		groundEntity(),
		bird,
		boxEntity("tower-left", vmath.Vec3{10, 1, 0}, half, 2),
		boxEntity("tower-right", vmath.Vec3{11.5, 1, 0}, half, 2),
		boxEntity("roof", vmath.Vec3{10.75, 2.3, 0}, vmath.Vec3{1.2, 0.25, 0.5}, 1),
		goal,
	)
	cfg.Launches = []LaunchConfig{{Entity: "bird", At: 0, Impulse: vmath.Vec3{9, 7, 0}}}
	return cfg
}

func billiardsScene() *Config {
	cfg := scene(5, groundEntity())
	cfg.Profiles[0].FrictionBlend = "multiply"
	cfg.Profiles[0].BounceBlend = "multiply"

	r := 0.25
	cfg.Entities = append(cfg.Entities, ballEntity("cue", vmath.Vec3{0, r, 0}, r, 1, 0.95))
	rack := []vmath.Vec3{
		{4, r, 0},
		{4.45, r, -0.26}, {4.45, r, 0.26},
		{4.9, r, -0.52}, {4.9, r, 0}, {4.9, r, 0.52},
	}
	for i, p := range rack {
		cfg.Entities = append(cfg.Entities, ballEntity(fmt.Sprintf("ball-%d", i+1), p, r, 1, 0.95))
	}
	cfg.Launches = []LaunchConfig{{Entity: "cue", At: 0, Impulse: vmath.Vec3{6, 0, 0}}}
	return cfg
}

func rangeScene() *Config {
	finish := EntityConfig{
		Name:     "finish",
		Position: vmath.Vec3{20, 0, 0},
		// A plane's normal is its local up; roll it to face back along -x.
		Rotation: vmath.Vec3{0, 0, 90},
		Shapes:   []ShapeConfig{{Kind: "plane", Trigger: true}},
	}
	wall := EntityConfig{
		Name:     "wall",
		Position: vmath.Vec3{12, 2, 0},
		Body:     &BodyConfig{Mass: 1, AngularDrag: 1, LockRotation: true, Static: true},
		Shapes:   []ShapeConfig{cubeShape(vmath.Vec3{0.25, 2, 2})},
	}

	cfg := scene(8, groundEntity(), wall, finish)
	for i, h := range []float64{1, 3, 5} {
		name := fmt.Sprintf("shot-%d", i+1)
		cfg.Entities = append(cfg.Entities, ballEntity(name, vmath.Vec3{0, h, float64(i) - 1}, 0.2, 0.5, 0.5))
		cfg.Launches = append(cfg.Launches, LaunchConfig{Entity: name, At: float64(i) * 0.5, Impulse: vmath.Vec3{7, 2, 0}})
	}
	return cfg
}
