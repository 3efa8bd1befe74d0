package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/ddrfluid/internal/dynamo"
	"github.com/san-kum/ddrfluid/internal/fluid"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scene != "random" {
		t.Errorf("expected scene random, got %s", cfg.Scene)
	}
	if cfg.Particles != 100 {
		t.Errorf("expected 100 particles, got %d", cfg.Particles)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.MaxDt != 0.01 {
		t.Errorf("expected max_dt 0.01, got %f", cfg.MaxDt)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("pair", "default")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Particles != 2 {
		t.Errorf("expected 2 particles, got %d", cfg.Particles)
	}
	if cfg.Solver.Gravity != 0 {
		t.Errorf("expected zero gravity, got %f", cfg.Solver.Gravity)
	}

	cfg.Particles = 50
	if again := GetPreset("pair", "default"); again.Particles != 2 {
		t.Error("presets must not share state between callers")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("random", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "default"); cfg != nil {
		t.Error("expected nil for nonexistent scene")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("dam_break")
	want := []string{"default", "reference", "viscous"}
	if len(presets) != len(want) {
		t.Fatalf("expected %v, got %v", want, presets)
	}
	for i := range want {
		if presets[i] != want[i] {
			t.Errorf("expected %v, got %v", want, presets)
		}
	}

	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent scene")
	}
}

func TestAllPresetsValidate(t *testing.T) {
	for _, sceneName := range ListScenes() {
		for _, name := range ListPresets(sceneName) {
			if err := GetPreset(sceneName, name).Validate(); err != nil {
				t.Errorf("%s/%s: %v", sceneName, name, err)
			}
		}
	}
}

func TestReferencePresetOptions(t *testing.T) {
	p, err := GetPreset("random", "reference").SolverParams()
	if err != nil {
		t.Fatal(err)
	}
	if p.Options != fluid.ReferenceOptions() {
		t.Errorf("expected reference options, got %+v", p.Options)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := GetPreset("dam_break", "reference")
	cfg.Seed = 7
	cfg.Solver.Stiffness = 35
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Scene != "dam_break" || loaded.Seed != 7 {
		t.Errorf("unexpected config: %+v", loaded)
	}
	if loaded.Solver.Stiffness != 35 || loaded.Solver.Pairs != "double_visit" {
		t.Errorf("solver block not preserved: %+v", loaded.Solver)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "scene: drop\nsolver:\n  stiffness: 12\n  walls: first_match\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	p, err := cfg.SolverParams()
	if err != nil {
		t.Fatal(err)
	}
	if p.Stiffness != 12 || p.InteractionRadius != fluid.InteractionRadius {
		t.Errorf("expected overlay on defaults, got %+v", p)
	}
	if p.Options.Walls != fluid.WallsFirstMatch {
		t.Errorf("expected first_match walls, got %v", p.Options.Walls)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		target error
	}{
		{"empty scene", func(c *Config) { c.Scene = "" }, ErrInvalidConfig},
		{"negative particles", func(c *Config) { c.Particles = -1 }, ErrInvalidConfig},
		{"zero dt", func(c *Config) { c.Dt = 0 }, ErrInvalidConfig},
		{"NaN duration", func(c *Config) { c.Duration = math.NaN() }, ErrInvalidConfig},
		{"sub-step without max dt", func(c *Config) { c.MaxDt = 0 }, ErrInvalidConfig},
		{"unknown policy", func(c *Config) { c.Policy = "adaptive" }, dynamo.ErrInvalidConfig},
		{"unknown neighborhood", func(c *Config) { c.Solver.Neighborhood = "hex" }, fluid.ErrInvalidParams},
		{"bad solver params", func(c *Config) { c.Solver.InteractionRadius = -1 }, fluid.ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestDriverConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = "single"
	dc, err := cfg.DriverConfig()
	if err != nil {
		t.Fatal(err)
	}
	if dc.Policy != dynamo.Single || dc.Dt != cfg.Dt || !dc.ValidateState {
		t.Errorf("unexpected driver config: %+v", dc)
	}
}
