package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/san-kum/ddrfluid/internal/experiment"
	"github.com/san-kum/ddrfluid/internal/viz"
)

var (
	dataDir     string
	configFile  string
	preset      string
	particles   int
	seed        int64
	dt          float64
	duration    float64
	maxDt       float64
	policy      string
	reference   bool
	sampleEvery int
	saveConfig  string
	// live view
	metaballs bool
	gifPath   string
	// plots and exports
	metric    string
	frameIdx  int
	outPath   string
	svgPath   string
	particle  int
	benchDur  float64
	benchSize []int
	// batch
	axes      []string
	objective string
	maximize  bool
	steps     int
	paramName string
	paramMin  float64
	paramMax  float64
	trials    int
)

// diagnostics turns a panic anywhere on the main goroutine into a stack
// dump and exit status 2.
func diagnostics() {
	if r := recover(); r != nil {
		fmt.Fprintf(os.Stderr, "ddrfluid: internal error: %v\n\n%s", r, debug.Stack())
		os.Exit(2)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "default", "scene preset")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().IntVar(&particles, "particles", 0, "particle count")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().Float64Var(&dt, "dt", 1.0/60, "frame delta")
	cmd.Flags().Float64Var(&duration, "time", 10.0, "duration")
	cmd.Flags().Float64Var(&maxDt, "max-dt", 0.01, "largest solver step when sub-stepping")
	cmd.Flags().StringVar(&policy, "policy", "substep", "step policy (substep|single)")
	cmd.Flags().BoolVar(&reference, "reference", false, "use the reference solver behaviour")
}

func main() {
	defer diagnostics()

	registry := experiment.NewRegistry()

	rootCmd := &cobra.Command{
		Use:   "ddrfluid",
		Short: "double density relaxation fluid lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(registry)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ddrfluid", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene and store the frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, registry, args[0])
		},
	}
	addSceneFlags(runCmd)
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", 1, "store every n-th frame")
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the resolved config to this path")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot per-frame series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&metric, "metric", "all", "series to plot (height|energy|potential|speed|momentum|all)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run frames to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a stored frame or a particle path to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&frameIdx, "frame", -1, "frame to render (default last)")
	exportSVGCmd.Flags().IntVar(&particle, "trajectory", -2, "render the path of this particle instead (-1 for centre of mass)")
	exportSVGCmd.Flags().StringVarP(&svgPath, "out", "o", "frame.svg", "output file")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, registry, args[0])
		},
	}
	addSceneFlags(liveCmd)
	liveCmd.Flags().BoolVar(&metaballs, "metaballs", false, "start in metaball render mode")
	liveCmd.Flags().StringVar(&gifPath, "gif", "simulation.gif", "gif recording path")

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list available scenes and presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listPresets(cmd, registry, args)
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "measure solver throughput",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return benchScene(cmd, registry, args[0])
		},
	}
	benchCmd.Flags().Float64Var(&benchDur, "time", 2.0, "simulated seconds per case")
	benchCmd.Flags().IntSliceVar(&benchSize, "particles", []int{100, 400, 1000}, "particle counts")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "sloshing frequency and summary statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [scene] [preset1] [preset2] ...",
		Short: "compare presets of a scene",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return comparePresets(cmd, registry, args[0], args[1:])
		},
	}
	compareCmd.Flags().Float64Var(&duration, "time", 0, "duration (default: preset duration)")
	compareCmd.Flags().Int64Var(&seed, "seed", 0, "random seed")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario of scripted runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd, registry, args[0])
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "sweep one solver parameter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, registry, args[0])
		},
	}
	sweepCmd.Flags().StringVar(&preset, "preset", "default", "scene preset")
	sweepCmd.Flags().StringVar(&paramName, "param", "stiffness", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&paramMin, "min", 5, "first value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 40, "last value")
	sweepCmd.Flags().IntVar(&steps, "steps", 8, "number of values")
	sweepCmd.Flags().Float64Var(&duration, "time", 0, "duration (default: preset duration)")
	sweepCmd.Flags().Int64Var(&seed, "seed", 0, "random seed")

	tuneCmd := &cobra.Command{
		Use:   "tune [scene]",
		Short: "grid search solver parameters against a metric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTune(cmd, registry, args[0])
		},
	}
	addSceneFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&axes, "axis", nil, "parameter axis, name=v1,v2 or name=lo:hi:n (repeatable)")
	tuneCmd.Flags().StringVar(&objective, "metric", "energy_drift", "metric to optimise")
	tuneCmd.Flags().BoolVar(&maximize, "maximize", false, "keep the largest metric value")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [scene]",
		Short: "run a preset over consecutive seeds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnsemble(cmd, registry, args[0])
		},
	}
	ensembleCmd.Flags().StringVar(&preset, "preset", "default", "scene preset")
	ensembleCmd.Flags().IntVar(&trials, "trials", 8, "number of seeds")
	ensembleCmd.Flags().Int64Var(&seed, "seed", 0, "first seed")
	ensembleCmd.Flags().Float64Var(&duration, "time", 0, "duration (default: preset duration)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, liveCmd, presetsCmd, benchCmd, analyzeCmd, compareCmd, scenarioCmd, sweepCmd, tuneCmd, ensembleCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
