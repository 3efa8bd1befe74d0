package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/ddrfluid/internal/analysis"
	"github.com/san-kum/ddrfluid/internal/config"
	"github.com/san-kum/ddrfluid/internal/dynamo"
	"github.com/san-kum/ddrfluid/internal/experiment"
	"github.com/san-kum/ddrfluid/internal/export"
	"github.com/san-kum/ddrfluid/internal/fluid"
	"github.com/san-kum/ddrfluid/internal/metrics"
	"github.com/san-kum/ddrfluid/internal/storage"
	"github.com/san-kum/ddrfluid/internal/viz"
)

// resolveConfig applies preset, then config file, then explicit flags.
func resolveConfig(cmd *cobra.Command, registry *experiment.Registry, scene string) (*config.Config, error) {
	if _, err := registry.GetScene(scene); err != nil {
		return nil, err
	}

	cfg := config.GetPreset(scene, preset)
	if cfg == nil {
		if cmd.Flags().Changed("preset") {
			return nil, fmt.Errorf("preset %s/%s not found (available: %s)", scene, preset, strings.Join(config.ListPresets(scene), ", "))
		}
		cfg = config.DefaultConfig()
		cfg.Scene = scene
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		cfg.Scene = scene
	}

	if cmd.Flags().Changed("particles") {
		cfg.Particles = particles
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("max-dt") {
		cfg.MaxDt = maxDt
	}
	if cmd.Flags().Changed("policy") {
		cfg.Policy = policy
	}
	if f := cmd.Flags().Lookup("sample-every"); f != nil && f.Changed {
		cfg.SampleEvery = sampleEvery
	}
	if cmd.Flags().Changed("reference") && reference {
		cfg.UseReferenceOptions()
	}

	return cfg, cfg.Validate()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// progress draws a bar on stderr as frames arrive.
type progress struct {
	total, seen, last int
}

func (p *progress) OnFrame(f dynamo.Frame) {
	p.seen++
	pct := float64(p.seen) / float64(p.total)
	if step := int(pct * 50); step != p.last || p.seen == p.total {
		p.last = step
		fmt.Fprintf(os.Stderr, "\r  %s %3.0f%%", viz.ProgressBar(pct, 40), math.Min(pct, 1)*100)
	}
}

func paramsMap(p fluid.Params) map[string]float64 {
	return map[string]float64{
		"gravity":            p.Gravity,
		"boundary_cor":       p.BoundaryCOR,
		"boundary_min_dv":    p.BoundaryMinDV,
		"particle_radius":    p.ParticleRadius,
		"interaction_radius": p.InteractionRadius,
		"stiffness":          p.Stiffness,
		"stiffness_near":     p.StiffnessNear,
		"rest_density":       p.RestDensity,
		"viscosity_linear":   p.ViscosityLinear,
		"viscosity_quad":     p.ViscosityQuad,
		"cell_size":          p.CellSize,
		"world_width":        p.WorldWidth,
		"world_height":       p.WorldHeight,
	}
}

func optionsMap(p fluid.Params) map[string]string {
	o := p.Options
	return map[string]string{
		"neighborhood": o.Neighborhood.String(),
		"rebuild":      o.Rebuild.String(),
		"pairs":        o.Pairs.String(),
		"viscosity":    o.Viscosity.String(),
		"walls":        o.Walls.String(),
	}
}

func runSimulation(cmd *cobra.Command, registry *experiment.Registry, scene string) error {
	cfg, err := resolveConfig(cmd, registry, scene)
	if err != nil {
		return err
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return err
		}
	}

	exp := experiment.New(cfg, registry)
	if err := exp.Setup(); err != nil {
		return err
	}
	total := int(math.Ceil(cfg.Duration/cfg.Dt-1e-9)) + 1
	exp.GetSimulator().AddObserver(&progress{total: total, last: -1})

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s/%s: %d particles, %.3gs\n", scene, preset, exp.World().Len(), cfg.Duration)
	start := time.Now()
	result, runErr := exp.Run(ctx)
	fmt.Fprintln(os.Stderr)
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)

	params := exp.World().Params()
	meta := storage.RunMetadata{
		Scene:     scene,
		Preset:    preset,
		Seed:      cfg.Seed,
		Particles: exp.World().Len(),
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		MaxDt:     cfg.MaxDt,
		Policy:    cfg.Policy,
		Params:    paramsMap(params),
		Options:   optionsMap(params),
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID, err := store.Save(meta, result)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("steps: %d (%d solver steps) in %v\n", result.StepsTaken, result.Substeps, elapsed.Round(time.Millisecond))
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s %s\n", viz.MetricLabel.Render(fmt.Sprintf("%-14s", name)), viz.MetricValue.Render(fmt.Sprintf("%.6g", result.Metrics[name])))
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", e)
	}
	return runErr
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tPRESET\tPARTICLES\tDURATION\tDT\tPOLICY\tTIMESTAMP")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%.4f\t%s\t%s\n",
			run.ID, run.Scene, run.Preset, run.Particles, run.Duration, run.Dt, run.Policy,
			run.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

type series struct {
	name   string
	reduce analysis.Reducer
}

func plotSeries(meta *storage.RunMetadata) []series {
	g := meta.Params["gravity"]
	return []series{
		{"height", analysis.CenterOfMassHeight},
		{"energy", metrics.Kinetic},
		{"potential", func(ps []fluid.ParticleState) float64 { return metrics.Potential(ps, g) }},
		{"speed", analysis.MeanSpeed},
		{"momentum", analysis.Momentum},
	}
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := store.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("run %s has no frames", args[0])
	}

	plotted := 0
	for _, s := range plotSeries(meta) {
		if metric != "all" && metric != s.name {
			continue
		}
		data := analysis.Extract(frames, s.reduce)
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s (%s)", s.name, meta.ID)))
		fmt.Println(graph)
		fmt.Println()
		plotted++
	}
	if plotted == 0 {
		return fmt.Errorf("unknown metric %q", metric)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	frames, err := store.LoadFrames(args[0])
	if err != nil {
		return err
	}
	return storage.WriteFrames(os.Stdout, frames)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := store.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if outPath != "" {
		if err := storage.ExportJSON(outPath, *meta, frames); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outPath)
		return nil
	}
	return storage.WriteJSON(os.Stdout, *meta, frames)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := store.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("run %s has no frames", args[0])
	}

	opts := export.DefaultSVGOptions(meta.Params["world_width"], meta.Params["world_height"], meta.Params["particle_radius"])

	var svg string
	if particle >= -1 {
		var traj *analysis.Trajectory
		if particle == -1 {
			traj = analysis.CenterOfMassPath(frames)
		} else {
			traj = analysis.ParticleTrajectory(frames, particle)
		}
		if len(traj.Points) == 0 {
			return fmt.Errorf("particle %d not found in run %s", particle, args[0])
		}
		svg = export.TrajectoryToSVG(traj, opts, "#00a8cc")
	} else {
		idx := frameIdx
		if idx < 0 {
			idx = len(frames) - 1
		}
		if idx >= len(frames) {
			return fmt.Errorf("frame %d out of range (run has %d frames)", idx, len(frames))
		}
		svg = export.FrameToSVG(frames[idx], opts)
	}

	if err := export.WriteSVG(svgPath, svg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgPath)
	return nil
}

func runLive(cmd *cobra.Command, registry *experiment.Registry, scene string) error {
	cfg, err := resolveConfig(cmd, registry, scene)
	if err != nil {
		return err
	}
	lc := viz.LiveConfigFor(cfg)
	lc.Title = scene + "/" + preset
	lc.GIFPath = gifPath
	if metaballs {
		lc.Mode = viz.RenderMetaballs
	}
	return viz.RunLive(viz.BuilderFor(cfg, registry), lc)
}

func listPresets(cmd *cobra.Command, registry *experiment.Registry, args []string) error {
	scenes := registry.ListScenes()
	if len(args) == 1 {
		if _, err := registry.GetScene(args[0]); err != nil {
			return err
		}
		scenes = args
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENE\tPRESET\tPARTICLES\tDURATION\tDESCRIPTION")
	for _, scene := range scenes {
		names := config.ListPresets(scene)
		if len(names) == 0 {
			fmt.Fprintf(w, "%s\t-\t-\t-\t%s\n", scene, registry.Describe(scene))
			continue
		}
		for _, name := range names {
			p := config.GetPreset(scene, name)
			fmt.Fprintf(w, "%s\t%s\t%d\t%.1f\t%s\n", scene, name, p.Particles, p.Duration, registry.Describe(scene))
		}
	}
	return w.Flush()
}

func benchScene(cmd *cobra.Command, registry *experiment.Registry, scene string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tOPTIONS\tSTEPS\tSOLVER STEPS\tTIME\tSTEPS/SEC\tREALTIME")

	for _, n := range benchSize {
		for _, ref := range []bool{false, true} {
			cfg := config.GetPreset(scene, "default")
			if cfg == nil {
				cfg = config.DefaultConfig()
				cfg.Scene = scene
			}
			cfg.Particles = n
			cfg.Duration = benchDur
			label := "default"
			if ref {
				cfg.UseReferenceOptions()
				label = "reference"
			}

			world, err := experiment.BuildWorld(cfg, registry, cfg.Seed)
			if err != nil {
				return err
			}
			dc, err := cfg.DriverConfig()
			if err != nil {
				return err
			}
			sim := dynamo.New(world)
			if err := sim.SetPolicy(dc.Policy, dc.MaxDt); err != nil {
				return err
			}

			steps := int(math.Ceil(cfg.Duration/cfg.Dt - 1e-9))
			substeps := 0
			start := time.Now()
			for i := 0; i < steps; i++ {
				k, err := sim.Advance(cfg.Dt)
				if err != nil {
					return err
				}
				substeps += k
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%v\t%.0f\t%.2fx\n",
				n, label, steps, substeps, elapsed.Round(time.Millisecond),
				float64(steps)/elapsed.Seconds(), cfg.Duration/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := store.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) < 4 {
		return fmt.Errorf("run %s has too few frames to analyze", args[0])
	}

	times := analysis.Times(frames)
	span := times[len(times)-1] - times[0]
	if span <= 0 {
		return fmt.Errorf("run %s has no time span", args[0])
	}
	sampleRate := float64(len(times)-1) / span

	fmt.Printf("%s  %s\n\n", viz.GradientText("ANALYSIS", "#00cccc", "#ff88ff"), meta.ID)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES\tMEAN\tSTD\tMIN\tMAX")
	for _, s := range plotSeries(meta) {
		sum := analysis.Summarize(analysis.Extract(frames, s.reduce))
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%.4g\n", s.name, sum.Mean, sum.Std, sum.Min, sum.Max)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()

	heights := analysis.Extract(frames, analysis.CenterOfMassHeight)
	spectrum := analysis.PowerSpectrum(heights)
	if len(spectrum) > 2 {
		shown := spectrum[1:min(len(spectrum), 81)]
		fmt.Println(asciigraph.Plot(shown,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("centre of mass height power spectrum")))
		fmt.Println()
	}

	freq, power := analysis.DominantFrequency(heights, sampleRate)
	fmt.Printf("sample rate:        %.4g Hz\n", sampleRate)
	fmt.Printf("dominant frequency: %.4g Hz (power %.4g)\n", freq, power)
	if freq > 0 {
		fmt.Printf("sloshing period:    %.4g s\n", 1/freq)
	}
	fmt.Println()

	worldW, worldH := meta.Params["world_width"], meta.Params["world_height"]
	if worldW > 0 && worldH > 0 {
		fmt.Println(viz.Separator(60))
		fmt.Print(analysis.TrajectoryToASCII(analysis.CenterOfMassPath(frames), worldW, worldH, 60, 20))
		fmt.Println(viz.Subtle.Render("centre of mass path"))
	}
	return nil
}

func comparePresets(cmd *cobra.Command, registry *experiment.Registry, scene string, presets []string) error {
	type outcome struct {
		name    string
		energy  []float64
		metrics map[string]float64
		elapsed time.Duration
	}

	ctx, cancel := signalContext()
	defer cancel()

	var outcomes []outcome
	for _, name := range presets {
		cfg := config.GetPreset(scene, name)
		if cfg == nil {
			return fmt.Errorf("preset %s/%s not found (available: %s)", scene, name, strings.Join(config.ListPresets(scene), ", "))
		}
		if cmd.Flags().Changed("time") {
			cfg.Duration = duration
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = seed
		}

		exp := experiment.New(cfg, registry)
		if err := exp.Setup(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		start := time.Now()
		result, err := exp.Run(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		outcomes = append(outcomes, outcome{
			name:    name,
			energy:  analysis.Extract(result.Frames, metrics.Kinetic),
			metrics: result.Metrics,
			elapsed: time.Since(start),
		})
	}

	fmt.Printf("%s  %s\n\n", viz.GradientText("COMPARE", "#00cccc", "#ff88ff"), scene)
	for _, o := range outcomes {
		fmt.Printf("  %-12s %s\n", o.name, viz.SparklineChart(o.energy, 50))
	}
	fmt.Println()

	names := sortedKeys(outcomes[0].metrics)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "PRESET\tTIME")
	for _, n := range names {
		fmt.Fprintf(w, "\t%s", strings.ToUpper(n))
	}
	fmt.Fprintln(w)
	for _, o := range outcomes {
		fmt.Fprintf(w, "%s\t%v", o.name, o.elapsed.Round(time.Millisecond))
		for _, n := range names {
			fmt.Fprintf(w, "\t%.4g", o.metrics[n])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
