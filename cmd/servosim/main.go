package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/servolab/servosim/internal/charts"
	"github.com/servolab/servosim/internal/config"
	"github.com/servolab/servosim/internal/encoder"
	"github.com/servolab/servosim/internal/export"
	"github.com/servolab/servosim/internal/fuzzy"
	"github.com/servolab/servosim/internal/metrics"
	"github.com/servolab/servosim/internal/pid"
	"github.com/servolab/servosim/internal/sim"
	"github.com/servolab/servosim/internal/viz"
)

var (
	controllerName string
	initial        float64
	target         float64
	configFile     string
	preset         string

	dt       float64
	substeps int
	maxSteps int

	ppr      int
	noiseStd float64
	seed     int64

	fuzzyKi float64
	kp      float64
	ki      float64
	kd      float64

	// run output
	interval  int
	showChart bool
	csvPath   string
	jsonPath  string
	plotDir   string

	// sweep
	targetList string

	// membership / surface
	outDir  string
	outPath string
	cols    int
	rows    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "servosim",
		Short: "closed-loop dc motor position control simulator",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a positioning simulation",
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().IntVar(&interval, "interval", 20, "progress print interval in steps (0 silences)")
	runCmd.Flags().BoolVar(&showChart, "chart", false, "print ascii charts after the run")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "write the trace as CSV (- for stdout)")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "write the run as JSON (- for stdout)")
	runCmd.Flags().StringVar(&plotDir, "plots", "", "write PNG charts into this directory")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run fuzzy and pid on the same task",
		RunE:  compareControllers,
	}
	addConfigFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one controller against several targets in parallel",
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&targetList, "targets", "30,60,90,120", "comma separated target angles")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the control loop over a dt and substep grid",
		RunE:  runBench,
	}
	addConfigFlags(benchCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation and replay it in the terminal",
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	membershipCmd := &cobra.Command{
		Use:   "membership",
		Short: "plot the fuzzy membership functions",
		RunE:  plotMembership,
	}
	membershipCmd.Flags().StringVar(&outDir, "out", "plots", "output directory")

	surfaceCmd := &cobra.Command{
		Use:   "surface",
		Short: "plot the fuzzy control surface",
		RunE:  plotSurface,
	}
	surfaceCmd.Flags().StringVar(&outPath, "out", "plots/surface.png", "output file")
	surfaceCmd.Flags().IntVar(&cols, "cols", 0, "error axis samples (0 for default)")
	surfaceCmd.Flags().IntVar(&rows, "rows", 0, "delta axis samples (0 for default)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, compareCmd, sweepCmd, benchCmd, liveCmd, membershipCmd, surfaceCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&controllerName, "controller", config.ControllerFuzzy, "controller (fuzzy or pid)")
	f.Float64Var(&initial, "initial", 0, "initial shaft position (deg)")
	f.Float64Var(&target, "target", 90, "target shaft position (deg)")
	f.StringVar(&configFile, "config", "", "config file (yaml)")
	f.StringVar(&preset, "preset", "", "preset configuration")
	f.Float64Var(&dt, "dt", sim.DefaultDt, "control period (s)")
	f.IntVar(&substeps, "substeps", sim.DefaultSubsteps, "plant substeps per control period")
	f.IntVar(&maxSteps, "max-steps", sim.DefaultMaxSteps, "step limit")
	f.IntVar(&ppr, "ppr", encoder.DefaultPPR, "encoder pulses per revolution")
	f.Float64Var(&noiseStd, "noise", encoder.DefaultNoiseStd, "encoder noise sigma (deg)")
	f.Int64Var(&seed, "seed", 0, "noise seed (0 seeds from the clock)")
	f.Float64Var(&fuzzyKi, "fuzzy-ki", fuzzy.DefaultKi, "fuzzy integral trim gain")
	f.Float64Var(&kp, "kp", pid.DefaultKp, "pid proportional gain")
	f.Float64Var(&ki, "ki", pid.DefaultKi, "pid integral gain")
	f.Float64Var(&kd, "kd", pid.DefaultKd, "pid derivative gain")
}

// loadConfig resolves the effective configuration: defaults, then the
// preset, then the config file, then any flag set explicitly on the
// command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)",
				preset, strings.Join(config.ListPresets(), ", "))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("controller") {
		cfg.Controller = controllerName
	}
	if flags.Changed("initial") {
		cfg.Initial = initial
	}
	if flags.Changed("target") {
		cfg.Target = target
	}
	if flags.Changed("dt") {
		cfg.Sim.Dt = dt
	}
	if flags.Changed("substeps") {
		cfg.Sim.Substeps = substeps
	}
	if flags.Changed("max-steps") {
		cfg.Sim.MaxSteps = maxSteps
	}
	if flags.Changed("ppr") {
		cfg.Encoder.PPR = ppr
	}
	if flags.Changed("noise") {
		cfg.Encoder.NoiseStd = noiseStd
	}
	if flags.Changed("seed") {
		cfg.Encoder.Seed = seed
	}
	if flags.Changed("fuzzy-ki") {
		cfg.Fuzzy.Ki = fuzzyKi
	}
	if flags.Changed("kp") {
		cfg.PID.Kp = kp
	}
	if flags.Changed("ki") {
		cfg.PID.Ki = ki
	}
	if flags.Changed("kd") {
		cfg.PID.Kd = kd
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultMetrics(cfg *config.Config) []sim.Metric {
	return []sim.Metric{
		&metrics.ControlEffort{},
		&metrics.Overshoot{},
		metrics.NewSettling(cfg.Sim.PositionThreshold),
		&metrics.Quantization{},
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctrl, err := cfg.BuildController()
	if err != nil {
		return err
	}

	simCfg := cfg.SimConfig()
	drv, err := sim.New(simCfg, ctrl, cfg.Initial, cfg.Target)
	if err != nil {
		return err
	}
	for _, m := range defaultMetrics(cfg) {
		drv.AddMetric(m)
	}

	fmt.Printf("%s control: %.2f° to %.2f°\n", cfg.Controller, cfg.Initial, cfg.Target)
	fmt.Printf("encoder: %d ppr (%.3f°/count), noise sigma %.2f°\n",
		cfg.Encoder.PPR, 360.0/float64(cfg.Encoder.PPR), cfg.Encoder.NoiseStd)
	fmt.Printf("control period %.1f ms, %d substeps (plant dt %.3f ms)\n",
		simCfg.Dt*1000, simCfg.Substeps, simCfg.SubstepDt()*1000)
	if tau := simCfg.Motor.ElectricalTimeConstant(); simCfg.SubstepDt() > tau {
		fmt.Printf("warning: plant dt %.3g s exceeds the electrical time constant %.3g s, current trace may be inaccurate\n",
			simCfg.SubstepDt(), tau)
	}
	fmt.Println()

	if interval > 0 {
		n := 0
		drv.AddObserver(sim.ObserverFunc(func(rec sim.TraceRecord) {
			n++
			if n%interval == 0 {
				fmt.Printf("step %4d (%.3fs): actual %7.2f° measured %7.2f° err %7.2f° v %6.2fV count %d\n",
					n, rec.Time, rec.Actual, rec.Measured, rec.Error, rec.Voltage, rec.Count)
			}
		}))
	}

	start := time.Now()
	res := drv.Run()
	elapsed := time.Since(start)

	final := res.Final()
	fmt.Printf("\n%s after %d steps (%.3f s simulated, %v wall)\n",
		res.Status, res.Steps, final.Time, elapsed.Round(time.Microsecond))
	fmt.Printf("final: actual %.3f° measured %.3f° error %.3f°\n",
		final.Actual, final.Measured, final.Error)
	fmt.Printf("       velocity %.2f°/s current %.4f A count %d\n",
		final.Velocity, final.Current, final.Count)

	fmt.Println("\nmetrics:")
	printMetrics(os.Stdout, res.Metrics)

	if showChart {
		fmt.Println()
		fmt.Println(viz.Chart(res.Series(func(r sim.TraceRecord) float64 { return r.Actual }), "position (deg)"))
		fmt.Println()
		fmt.Println(viz.Chart(res.Series(func(r sim.TraceRecord) float64 { return r.Error }), "error (deg)"))
		fmt.Println()
		fmt.Println(viz.Chart(res.Series(func(r sim.TraceRecord) float64 { return r.Control }), "control output"))
	}

	if csvPath != "" {
		if csvPath == "-" {
			if err := export.WriteCSV(os.Stdout, res); err != nil {
				return err
			}
		} else {
			if err := export.SaveCSV(csvPath, res); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", csvPath)
		}
	}
	if jsonPath != "" {
		if jsonPath == "-" {
			if err := export.WriteJSON(os.Stdout, cfg.Controller, res); err != nil {
				return err
			}
		} else {
			if err := export.SaveJSON(jsonPath, cfg.Controller, res); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", jsonPath)
		}
	}
	if plotDir != "" {
		if err := charts.SaveRun(plotDir, res); err != nil {
			return err
		}
		if err := charts.SaveSummary(filepath.Join(plotDir, "summary.png"), res); err != nil {
			return err
		}
		fmt.Printf("wrote plots to %s\n", plotDir)
	}

	return nil
}

func printMetrics(w io.Writer, vals map[string]float64) {
	names := make([]string, 0, len(vals))
	for name := range vals {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%.6g\n", name, vals[name])
	}
	tw.Flush()
}

func compareControllers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("comparing controllers: %.2f° to %.2f° (dt %.4fs, limit %d steps)\n\n",
		cfg.Initial, cfg.Target, cfg.Sim.Dt, cfg.Sim.MaxSteps)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONTROLLER\tSTATUS\tSTEPS\tFINAL ERR\tOVERSHOOT\tSETTLE\tEFFORT\tWALL")

	for _, name := range []string{config.ControllerFuzzy, config.ControllerPID} {
		runCfg := *cfg
		runCfg.Controller = name

		ctrl, err := runCfg.BuildController()
		if err != nil {
			return err
		}
		drv, err := sim.New(runCfg.SimConfig(), ctrl, runCfg.Initial, runCfg.Target)
		if err != nil {
			return err
		}
		for _, m := range defaultMetrics(&runCfg) {
			drv.AddMetric(m)
		}

		start := time.Now()
		res := drv.Run()
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%s\t%s\t%d\t%.3f\t%.3f\t%.0f\t%.2f\t%v\n",
			name, res.Status, res.Steps, res.Final().Error,
			res.Metrics["overshoot"], res.Metrics["settling_steps"],
			res.Metrics["control_effort"], elapsed.Round(time.Microsecond))
	}

	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	targets, err := parseTargets(targetList)
	if err != nil {
		return err
	}

	// Controller name was validated above, so the builder cannot fail.
	build := func() sim.Controller {
		ctrl, _ := cfg.BuildController()
		return ctrl
	}

	start := time.Now()
	results, err := sim.Sweep(cfg.SimConfig(), build, cfg.Initial, targets)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TARGET\tSTATUS\tSTEPS\tFINAL\tERR")
	for _, r := range results {
		final := r.Result.Final()
		fmt.Fprintf(w, "%.1f\t%s\t%d\t%.3f\t%.3f\n",
			r.Target, r.Result.Status, r.Result.Steps, final.Actual, final.Error)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d runs with %s in %v\n", len(results), cfg.Controller, elapsed.Round(time.Microsecond))
	return nil
}

func parseTargets(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	targets := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("bad target %q: %w", p, err)
		}
		targets = append(targets, v)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets given")
	}
	return targets, nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dts := []float64{0.0005, 0.001, 0.002}
	substepCounts := []int{5, 10, 20}

	fmt.Printf("benchmarking %s controller, %.0f° to %.0f° (noise off, limit 2000 steps)\n\n",
		cfg.Controller, cfg.Initial, cfg.Target)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSUBSTEPS\tSTATUS\tSTEPS\tWALL\tSTEPS/SEC")

	for _, benchDt := range dts {
		for _, n := range substepCounts {
			runCfg := *cfg
			runCfg.Sim.Dt = benchDt
			runCfg.Sim.Substeps = n
			runCfg.Sim.MaxSteps = 2000
			runCfg.Encoder.NoiseStd = 0
			runCfg.Encoder.Seed = 1

			ctrl, err := runCfg.BuildController()
			if err != nil {
				return err
			}

			start := time.Now()
			res, err := sim.Simulate(runCfg.SimConfig(), ctrl, runCfg.Initial, runCfg.Target)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%.4fs\t%d\t%s\t%d\t%v\t%.0f\n",
				benchDt, n, res.Status, res.Steps,
				elapsed.Round(time.Microsecond), float64(res.Steps)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctrl, err := cfg.BuildController()
	if err != nil {
		return err
	}

	res, err := sim.Simulate(cfg.SimConfig(), ctrl, cfg.Initial, cfg.Target)
	if err != nil {
		return err
	}

	return viz.Run(res)
}

func plotMembership(cmd *cobra.Command, args []string) error {
	ctrl := fuzzy.NewController(fuzzy.DefaultKi)
	if err := charts.SaveMembership(outDir, ctrl); err != nil {
		return err
	}
	fmt.Printf("wrote membership plots to %s\n", outDir)
	return nil
}

func plotSurface(cmd *cobra.Command, args []string) error {
	ctrl := fuzzy.NewController(fuzzy.DefaultKi)
	if err := charts.SaveSurface(outPath, ctrl, cols, rows); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCONTROLLER\tINITIAL\tTARGET\tDT\tMAX STEPS\tNOISE")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\t%.4f\t%d\t%.2f\n",
			name, p.Controller, p.Initial, p.Target, p.Sim.Dt, p.Sim.MaxSteps, p.Encoder.NoiseStd)
	}
	return w.Flush()
}
