package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/ddrfluid/internal/experiment"
	"github.com/san-kum/ddrfluid/internal/storage"
)

const scenarioYAML = `name: smoke
description: two short runs
steps:
  - scene: pair
    duration: 0.2
    save_as: pair_run
  - scene: dam_break
    particles: 60
    duration: 0.2
    reference: true
    params:
      stiffness: 15
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "smoke" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}
	if sc.Steps[1].Params["stiffness"] != 15 || !sc.Steps[1].Reference {
		t.Errorf("step 2 not parsed: %+v", sc.Steps[1])
	}

	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestStepConfig(t *testing.T) {
	cfg, err := ScenarioStep{Scene: "dam_break", Particles: 50, Reference: true, Params: map[string]float64{"gravity": 4}}.Config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Particles != 50 || cfg.Solver.Gravity != 4 || cfg.Solver.Walls != "first_match" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Duration != 15 {
		t.Errorf("expected preset duration 15, got %v", cfg.Duration)
	}

	if _, err := (ScenarioStep{Scene: "dam_break", Preset: "nope"}).Config(); err == nil {
		t.Error("expected error for unknown preset")
	}
	if _, err := (ScenarioStep{Scene: "pair", Params: map[string]float64{"warp": 1}}).Config(); err == nil {
		t.Error("expected error for unknown parameter")
	}
	if _, err := (ScenarioStep{Scene: "pair", Params: map[string]float64{"stiffness": -1}}).Config(); err == nil {
		t.Error("expected error for invalid parameter")
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	store := storage.New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), store, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].RunID != "pair_run" || results[1].RunID != "" {
		t.Errorf("unexpected run ids %q %q", results[0].RunID, results[1].RunID)
	}
	meta, err := store.Load("pair_run")
	if err != nil {
		t.Fatal(err)
	}
	if meta.Scene != "pair" || meta.Particles != 2 {
		t.Errorf("unexpected metadata %+v", meta)
	}
}

func TestRunSweep(t *testing.T) {
	results, err := RunSweep(context.Background(), &ParameterSweep{
		Scene:     "random",
		ParamName: "gravity",
		ParamMin:  0,
		ParamMax:  10,
		NumSteps:  3,
		Duration:  0.1,
	}, experiment.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[1].ParamValue != 5 {
		t.Errorf("expected midpoint 5, got %v", results[1].ParamValue)
	}
	if results[0].Metrics["potential_energy"] != 0 {
		t.Errorf("expected zero potential without gravity, got %v", results[0].Metrics["potential_energy"])
	}
	if results[2].Metrics["potential_energy"] <= results[1].Metrics["potential_energy"] {
		t.Error("expected potential energy to grow with gravity")
	}

	if _, err := RunSweep(context.Background(), &ParameterSweep{Scene: "random", NumSteps: 0}, experiment.NewRegistry()); err == nil {
		t.Error("expected error for empty sweep")
	}
}

func TestRunMonteCarlo(t *testing.T) {
	results, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{
		Scene:    "dam_break",
		Trials:   3,
		Seed:     7,
		Duration: 0.3,
	}, experiment.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Seed != 7+int64(i) {
			t.Errorf("trial %d: expected seed %d, got %d", i, 7+i, r.Seed)
		}
	}
	stableCount, unstableCount := MonteCarloStats(results)
	if stableCount+unstableCount != 3 {
		t.Errorf("stats do not add up: %d + %d", stableCount, unstableCount)
	}
	if stableCount != 3 {
		t.Errorf("expected all trials stable, got %d", stableCount)
	}
}
