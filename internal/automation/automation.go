package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ddrfluid/internal/config"
	"github.com/san-kum/ddrfluid/internal/dynamo"
	"github.com/san-kum/ddrfluid/internal/experiment"
	"github.com/san-kum/ddrfluid/internal/optim"
	"github.com/san-kum/ddrfluid/internal/storage"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Zero values keep the preset's settings.
type ScenarioStep struct {
	Scene     string             `yaml:"scene"`
	Preset    string             `yaml:"preset"`
	Particles int                `yaml:"particles"`
	Seed      int64              `yaml:"seed"`
	Duration  float64            `yaml:"duration"`
	Dt        float64            `yaml:"dt"`
	MaxDt     float64            `yaml:"max_dt"`
	Policy    string             `yaml:"policy"`
	Reference bool               `yaml:"reference"`
	Params    map[string]float64 `yaml:"params"`
	SaveAs    string             `yaml:"save_as"`
}

type StepResult struct {
	Step   ScenarioStep
	RunID  string
	Result *dynamo.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Config resolves the step against its preset.
func (s ScenarioStep) Config() (*config.Config, error) {
	name := s.Preset
	if name == "" {
		name = "default"
	}
	cfg := config.GetPreset(s.Scene, name)
	if cfg == nil {
		if s.Preset != "" {
			return nil, fmt.Errorf("preset %s/%s not found", s.Scene, s.Preset)
		}
		cfg = config.DefaultConfig()
		cfg.Scene = s.Scene
	}

	if s.Particles > 0 {
		cfg.Particles = s.Particles
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.MaxDt > 0 {
		cfg.MaxDt = s.MaxDt
	}
	if s.Policy != "" {
		cfg.Policy = s.Policy
	}
	if s.Reference {
		cfg.UseReferenceOptions()
	}
	for k, v := range s.Params {
		if err := cfg.Solver.Set(k, v); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// RunScenario executes all steps in order. Steps with SaveAs are written to
// store when it is not nil. Progress lines go to out, which may be nil.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store *storage.Store, out io.Writer) ([]StepResult, error) {
	if out == nil {
		out = io.Discard
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		fmt.Fprintf(out, "step %d/%d: %s\n", i+1, len(scenario.Steps), step.Scene)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		exp := experiment.New(cfg, registry)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: step, Result: result}
		if store != nil && step.SaveAs != "" {
			meta := storage.RunMetadata{
				ID:        step.SaveAs,
				Scene:     cfg.Scene,
				Preset:    step.Preset,
				Seed:      cfg.Seed,
				Particles: exp.World().Len(),
				Dt:        cfg.Dt,
				Duration:  cfg.Duration,
				MaxDt:     cfg.MaxDt,
				Policy:    cfg.Policy,
			}
			if sr.RunID, err = store.Save(meta, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// ParameterSweep varies one tunable solver parameter across a preset.
type ParameterSweep struct {
	Scene     string
	Preset    string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Duration  float64
	Seed      int64
}

type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
	Stable     bool
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step")
	}
	results := make([]SweepResult, 0, sweep.NumSteps)

	for _, v := range optim.Linspace(sweep.ParamMin, sweep.ParamMax, sweep.NumSteps) {
		step := ScenarioStep{
			Scene:    sweep.Scene,
			Preset:   sweep.Preset,
			Duration: sweep.Duration,
			Seed:     sweep.Seed,
			Params:   map[string]float64{sweep.ParamName: v},
		}
		cfg, err := step.Config()
		if err != nil {
			return results, err
		}
		exp := experiment.New(cfg, registry)
		if err := exp.Setup(); err != nil {
			return results, err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, err
		}
		results = append(results, SweepResult{
			ParamValue: v,
			Metrics:    result.Metrics,
			Stable:     stable(result),
		})
	}

	return results, nil
}

// MonteCarloConfig runs one preset over consecutive seeds.
type MonteCarloConfig struct {
	Scene    string
	Preset   string
	Trials   int
	Seed     int64
	Duration float64
}

type MonteCarloResult struct {
	TrialID int
	Seed    int64
	Metrics map[string]float64
	Stable  bool // no invalid state and every particle stayed inside
}

// RunMonteCarlo runs the trials concurrently through a dynamo.Ensemble.
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, registry *experiment.Registry) ([]MonteCarloResult, error) {
	if mc.Trials < 1 {
		return nil, fmt.Errorf("monte carlo needs at least one trial")
	}
	cfg, err := ScenarioStep{Scene: mc.Scene, Preset: mc.Preset, Duration: mc.Duration}.Config()
	if err != nil {
		return nil, err
	}
	dc, err := cfg.DriverConfig()
	if err != nil {
		return nil, err
	}

	exp := experiment.New(cfg, registry)
	runs, err := dynamo.NewEnsemble(exp.Factory(), mc.Trials, mc.Seed).Run(ctx, dc)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, r := range runs {
		results[i] = MonteCarloResult{
			TrialID: i,
			Seed:    mc.Seed + int64(i),
			Metrics: r.Metrics,
			Stable:  stable(r),
		}
	}
	return results, nil
}

func stable(r *dynamo.Result) bool {
	c, ok := r.Metrics["containment"]
	return len(r.Errors) == 0 && (!ok || c == 1)
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
