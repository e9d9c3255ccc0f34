package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"

	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
	"github.com/san-kum/gravsim/internal/world"
)

var (
	dataDir    string
	configFile string
	logFile    string

	ticks       int
	dt          float64
	seed        int64
	integrator  string
	workers     int
	preset      string
	save        bool
	plot        bool
	metricsAddr string
	ensemble    int
	fromRun     string

	showJSON bool
	svgPath  string
)

var klogFlags = flag.NewFlagSet("klog", flag.ExitOnError)

func main() {
	klog.InitFlags(klogFlags)
	pflag.CommandLine.AddGoFlagSet(klogFlags)
	defer klog.Flush()

	rootCmd := &cobra.Command{
		Use:   "gravsim",
		Short: "interactive n-body gravity sandbox",
		Args:  cobra.NoArgs,
		RunE:  runInteractive,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "snapshot directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write logs here while the TUI owns the terminal")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene headless",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "number of ticks")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "wall time per tick")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "scene random seed")
	runCmd.Flags().StringVar(&integrator, "integrator", "", "integrator (symplectic, euler)")
	runCmd.Flags().IntVar(&workers, "workers", 0, "force accumulation workers (0 = all CPUs, 1 = serial)")
	runCmd.Flags().StringVar(&preset, "preset", "", "preset as group/name")
	runCmd.Flags().BoolVar(&save, "save", false, "save the final bodies")
	runCmd.Flags().BoolVar(&plot, "plot", true, "plot total energy")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	runCmd.Flags().IntVar(&ensemble, "ensemble", 0, "run N copies with consecutive seeds")
	runCmd.Flags().StringVar(&fromRun, "from", "", "start from a saved snapshot")

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list scenes and their parameters",
		Args:  cobra.NoArgs,
		RunE:  listScenes,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [group]",
		Short: "list configuration presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(out)
			return err
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved snapshots",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "show a saved snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print as JSON")
	showCmd.Flags().StringVar(&svgPath, "svg", "", "also render the bodies to this SVG file")

	rootCmd.AddCommand(runCmd, scenesCmd, presetsCmd, configCmd, listCmd, showCmd)

	if err := rootCmd.Execute(); err != nil {
		klog.ErrorS(err, "command failed")
		klog.Flush()
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(configFile)
}

// quietLogs keeps klog off the terminal while bubbletea draws on it.
func quietLogs() {
	must := func(name, value string) {
		if err := klogFlags.Set(name, value); err != nil {
			klog.ErrorS(err, "set klog flag", "flag", name)
		}
	}
	must("logtostderr", "false")
	must("alsologtostderr", "false")
	must("stderrthreshold", "FATAL")
	if logFile != "" {
		must("log_file", logFile)
		return
	}
	klog.SetOutput(io.Discard)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	quietLogs()

	s, err := sim.New(cfg)
	if err != nil {
		return err
	}
	return viz.Run(s, cfg.Dt)
}

// buildConfig layers configuration: preset, then config file, then scene
// argument and explicit flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		group, name, ok := strings.Cut(preset, "/")
		p := config.GetPreset(group, name)
		if !ok || p == nil {
			return nil, fmt.Errorf("unknown preset %q (groups: %v)", preset, config.ListGroups())
		}
		cfg = p
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	if len(args) > 0 && !strings.EqualFold(args[0], cfg.Scene) {
		cfg.Scene = args[0]
		cfg.SceneParams = nil
	}
	flags := cmd.Flags()
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = metricsAddr
	}
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	} else if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	return cfg, cfg.Validate()
}

func runMetrics(cfg *config.Config) []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergyDrift(cfg.G, cfg.Softening),
		metrics.NewStability(1e4),
		metrics.NewMeanAcceleration(),
	}
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	rc := sim.RunConfig{Ticks: cfg.Ticks, Dt: cfg.Dt, SampleEvery: max(1, cfg.Ticks/100)}

	if ensemble > 1 {
		return runEnsemble(ctx, cfg, rc)
	}

	s, err := sim.New(cfg)
	if err != nil {
		return err
	}
	for _, m := range runMetrics(cfg) {
		s.AddMetric(m)
	}

	if fromRun != "" {
		st := storage.New(cfg.DataDir)
		meta, err := st.Load(fromRun)
		if err != nil {
			return fmt.Errorf("load snapshot %s: %w", fromRun, err)
		}
		bodies, err := st.LoadBodies(fromRun)
		if err != nil {
			return fmt.Errorf("load snapshot %s: %w", fromRun, err)
		}
		s.Commit(scene.NewSnapshot(meta.Scene, bodies))
	}

	if cfg.MetricsAddr != "" {
		c := metrics.NewCollectors()
		s.SetCollectors(c)
		metrics.Listen(ctx, cfg.MetricsAddr, c.Registry)
	}

	fmt.Printf("running %s for %d ticks (dt=%.4f, %s)...\n", cfg.Scene, cfg.Ticks, cfg.Dt, cfg.Integrator)
	start := time.Now()
	res, err := s.Run(ctx, rc)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	wall := time.Since(start)

	printResult(res, wall)
	if period, ok := analysis.DominantPeriod(res.Energy, cfg.Dt*float64(rc.SampleEvery)); ok {
		fmt.Printf("energy period: %.3gs\n", period)
	}
	if plot && len(res.Energy) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(res.Energy,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("total energy")))
	}

	if save {
		st := storage.New(cfg.DataDir)
		id, err := st.Save(storage.Metadata{
			Scene:      res.Scene,
			Params:     sceneParams(s),
			Seed:       cfg.Seed,
			Dt:         cfg.Dt,
			Ticks:      res.Ticks,
			Elapsed:    res.Elapsed,
			Integrator: cfg.Integrator,
			G:          cfg.G,
			Softening:  cfg.Softening,
			Metrics:    res.Metrics,
		}, s.Bodies())
		if err != nil {
			return fmt.Errorf("save: %w", err)
		}
		fmt.Printf("\nsaved: %s\n", id)
	}
	return nil
}

func sceneParams(s *sim.Simulation) map[string]float64 {
	params := s.Loaded().Params()
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]float64, len(params))
	for _, p := range params {
		out[p.Name] = p.Value
	}
	return out
}

func printResult(res *sim.Result, wall time.Duration) {
	fmt.Printf("\nscene:    %s\n", res.Scene)
	fmt.Printf("ticks:    %d (%.2fs simulated, %s wall)\n", res.Ticks, res.Elapsed, wall.Round(time.Millisecond))
	fmt.Printf("bodies:   %d\n", res.Bodies)
	if res.StaleTotal > 0 {
		fmt.Printf("stale:    %d\n", res.StaleTotal)
	}
	for _, name := range slices.Sorted(maps.Keys(res.Metrics)) {
		fmt.Printf("%-9s %.6g\n", name+":", res.Metrics[name])
	}
}

func runEnsemble(ctx context.Context, cfg *config.Config, rc sim.RunConfig) error {
	fmt.Printf("running %d x %s for %d ticks...\n", ensemble, cfg.Scene, cfg.Ticks)
	results, err := sim.NewEnsemble(cfg, ensemble, runMetrics).Run(ctx, rc)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tTICKS\tBODIES\tENERGY_DRIFT\tSTABILITY")
	for i, r := range results {
		if r == nil {
			continue
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%.3e\t%.2f\n",
			cfg.Seed+int64(i),
			r.Ticks,
			r.Bodies,
			r.Metrics["energy_drift"],
			r.Metrics["stability"],
		)
	}
	return w.Flush()
}

func listScenes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat := scene.DefaultCatalog(cfg.G)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for i := 0; i < cat.Len(); i++ {
		d := cat.At(i)
		sp := d.Spawnable()
		placement := "test bodies"
		if sp.Kind == scene.Massive {
			placement = fmt.Sprintf("mass %.3g..%.3g", sp.MinMass, sp.MaxSpawnableMass())
		}
		fmt.Fprintf(w, "%s\t\t\t(%s)\n", d.Name(), placement)
		for _, p := range d.Params() {
			fmt.Fprintf(w, "  %s\t%.6g\t[%.6g, %.6g]\t%s\n", p.Name, p.Value, p.Min, p.Max, paramFlags(p.Log, p.Integer))
		}
	}
	return w.Flush()
}

func paramFlags(log, integer bool) string {
	var f []string
	if log {
		f = append(f, "log")
	}
	if integer {
		f = append(f, "int")
	}
	return strings.Join(f, ",")
}

func listPresets(cmd *cobra.Command, args []string) error {
	groups := config.ListGroups()
	if len(args) > 0 {
		groups = args
	}
	for _, g := range groups {
		names := config.ListPresets(g)
		if len(names) == 0 {
			fmt.Printf("no presets for group: %s\n", g)
			continue
		}
		fmt.Printf("%s:\n", g)
		for _, n := range names {
			p := config.GetPreset(g, n)
			fmt.Printf("  %s/%s\t%s dt=%.4f\n", g, n, p.Scene, p.Dt)
		}
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no snapshots found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tTICKS\tELAPSED\tBODIES\tINTEG")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\t%d\t%s\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Elapsed,
			run.Bodies,
			run.Integrator,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	bodies, err := st.LoadBodies(runID)
	if err != nil {
		return err
	}

	if svgPath != "" {
		if err := writeSVG(svgPath, bodies); err != nil {
			return err
		}
	}
	if showJSON {
		return storage.ExportJSON(os.Stdout, *meta, bodies)
	}

	fmt.Printf("id:         %s\n", meta.ID)
	fmt.Printf("scene:      %s\n", meta.Scene)
	for _, name := range slices.Sorted(maps.Keys(meta.Params)) {
		fmt.Printf("  %s = %g\n", name, meta.Params[name])
	}
	fmt.Printf("saved:      %s\n", meta.Timestamp.Format(time.RFC3339))
	fmt.Printf("integrator: %s (dt=%.4f, G=%g, softening=%g)\n", meta.Integrator, meta.Dt, meta.G, meta.Softening)
	fmt.Printf("ticks:      %d (%.2fs)\n", meta.Ticks, meta.Elapsed)
	fmt.Printf("bodies:     %d\n", len(bodies))

	const maxRows = 20
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nX\tY\tVX\tVY\tKIND\tMASS")
	for i, b := range bodies {
		if i == maxRows {
			fmt.Fprintf(w, "... %d more\n", len(bodies)-maxRows)
			break
		}
		fmt.Fprintf(w, "%.3f\t%.3f\t%.3f\t%.3f\t%s\t%.4g\n",
			b.Position.X(), b.Position.Y(), b.Velocity.X(), b.Velocity.Y(), b.Mass.Kind, b.Mass.Mass)
	}
	return w.Flush()
}

func writeSVG(path string, bodies []world.BodySpec) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.SnapshotSVG(f, bodies, 800); err != nil {
		f.Close()
		return err
	}
	klog.V(1).InfoS("wrote svg", "path", path, "bodies", len(bodies))
	return f.Close()
}
