package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/ddrfluid/internal/automation"
	"github.com/san-kum/ddrfluid/internal/experiment"
	"github.com/san-kum/ddrfluid/internal/fluid"
	"github.com/san-kum/ddrfluid/internal/optim"
	"github.com/san-kum/ddrfluid/internal/storage"
	"github.com/san-kum/ddrfluid/internal/viz"
)

func runScenario(cmd *cobra.Command, registry *experiment.Registry, path string) error {
	sc, err := automation.LoadScenario(path)
	if err != nil {
		return err
	}
	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("%s  %s\n", viz.GradientText(strings.ToUpper(sc.Name), "#00cccc", "#ff88ff"), viz.Subtle.Render(sc.Description))
	results, err := automation.RunScenario(ctx, sc, registry, store, os.Stdout)
	for _, r := range results {
		line := fmt.Sprintf("  %-12s kinetic %.4g  drift %.4g  containment %.4g",
			r.Step.Scene, r.Result.Metrics["kinetic_energy"], r.Result.Metrics["energy_drift"], r.Result.Metrics["containment"])
		if r.RunID != "" {
			line += "  -> " + r.RunID
		}
		fmt.Println(line)
	}
	return err
}

func runSweep(cmd *cobra.Command, registry *experiment.Registry, scene string) error {
	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Scene:     scene,
		Preset:    preset,
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  steps,
		Duration:  changedFloat(cmd, "time", duration),
		Seed:      changedInt(cmd, "seed", seed),
	}, registry)
	if err != nil {
		return err
	}

	drift := make([]float64, len(results))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tKINETIC\tDRIFT\tMAX SPEED\tSTABLE\n", strings.ToUpper(paramName))
	for i, r := range results {
		drift[i] = r.Metrics["energy_drift"]
		fmt.Fprintf(w, "%.4g\t%.4g\t%.4g\t%.4g\t%v\n",
			r.ParamValue, r.Metrics["kinetic_energy"], r.Metrics["energy_drift"], r.Metrics["max_speed"], r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n  drift %s\n", viz.SparklineChart(drift, len(drift)))
	return nil
}

func runTune(cmd *cobra.Command, registry *experiment.Registry, scene string) error {
	if len(axes) == 0 {
		return fmt.Errorf("at least one --axis is required (parameters: %s)", strings.Join(fluid.TunableNames(), ", "))
	}
	base, err := resolveConfig(cmd, registry, scene)
	if err != nil {
		return err
	}

	var names []string
	var ranges [][]float64
	for _, a := range axes {
		name, vals, err := optim.ParseAxis(a)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		for k, v := range params {
			if err := cfg.Solver.Set(k, v); err != nil {
				return nil, err
			}
		}
		return experiment.New(&cfg, registry), nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	g := optim.NewGridSearch(names, ranges)
	g.Maximize = maximize
	out, err := g.Search(ctx, build, objective)

	if out != nil {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(objective))
		for _, tr := range out.Trials {
			cols := make([]string, len(names))
			for i, n := range names {
				cols[i] = fmt.Sprintf("%.4g", tr.Params[n])
			}
			val := fmt.Sprintf("%.6g", tr.Value)
			if tr.Err != nil {
				val = "error: " + tr.Err.Error()
			}
			fmt.Fprintf(w, "%s\t%s\n", strings.Join(cols, "\t"), val)
		}
		if ferr := w.Flush(); ferr != nil {
			return ferr
		}
	}
	if err != nil {
		return err
	}

	fmt.Println()
	for _, n := range names {
		fmt.Printf("  %s %s\n", viz.MetricLabel.Render(fmt.Sprintf("%-18s", n)), viz.MetricValue.Render(fmt.Sprintf("%.4g", out.Best[n])))
	}
	fmt.Printf("  %s %s\n", viz.MetricLabel.Render(fmt.Sprintf("%-18s", objective)), viz.MetricValue.Render(fmt.Sprintf("%.6g", out.Value)))
	return nil
}

func runEnsemble(cmd *cobra.Command, registry *experiment.Registry, scene string) error {
	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Scene:    scene,
		Preset:   preset,
		Trials:   trials,
		Seed:     changedInt(cmd, "seed", seed),
		Duration: changedFloat(cmd, "time", duration),
	}, registry)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tKINETIC\tDRIFT\tMAX SPEED\tCONTAINMENT\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.4g\t%.4g\t%.4g\t%.4g\t%v\n",
			r.Seed, r.Metrics["kinetic_energy"], r.Metrics["energy_drift"], r.Metrics["max_speed"], r.Metrics["containment"], r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nstable %d  unstable %d\n", stable, unstable)
	return nil
}

// changedFloat and changedInt return the flag value only when it was set on
// this command; flag variables are shared between commands.
func changedFloat(cmd *cobra.Command, name string, v float64) float64 {
	if cmd.Flags().Changed(name) {
		return v
	}
	return 0
}

func changedInt(cmd *cobra.Command, name string, v int64) int64 {
	if cmd.Flags().Changed(name) {
		return v
	}
	return 0
}
