package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/san-kum/trajprop/internal/automation"
	"github.com/san-kum/trajprop/internal/config"
	"github.com/san-kum/trajprop/internal/dynamo"
	"github.com/san-kum/trajprop/internal/experiment"
	"github.com/san-kum/trajprop/internal/models"
	"github.com/san-kum/trajprop/internal/optim"
	"github.com/san-kum/trajprop/internal/tui"
	"github.com/san-kum/trajprop/internal/viz"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	logger = log.NewNopLogger()
	v      = newViper()
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TRAJPROP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "trajprop",
		Short: "two-body trajectory propagation with thrust",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			logger = newLogger(v.GetString("log-level"))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("log-level", "info", "debug, info, warn or error")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "propagate a scenario",
		Args:  cobra.NoArgs,
		RunE:  runScenario,
	}
	scenarioFlags(runCmd)
	runCmd.Flags().Bool("plot", false, "plot radius and energy drift")
	runCmd.Flags().String("save", "", "write the resolved scenario config to this path")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "run one scenario through several integrators",
		RunE:  compareIntegrators,
	}
	scenarioFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time each integrator on a scenario",
		Args:  cobra.NoArgs,
		RunE:  benchIntegrators,
	}
	scenarioFlags(benchCmd)
	benchCmd.Flags().Int("repeat", 3, "runs per integrator")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	bodiesCmd := &cobra.Command{
		Use:   "bodies",
		Short: "list central bodies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "BODY\tMU (km³/s²)\tORBIT (km)")
			for _, name := range models.ListBodies() {
				b, _ := models.LookupBody(name)
				fmt.Fprintf(w, "%s\t%.6e\t%.0f\n", b.Name, b.Mu, b.OrbitRadius)
			}
			return w.Flush()
		},
	}

	batchCmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "run a YAML batch of scenarios",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().Bool("progress", false, "show a live progress view on stderr")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "work-precision sweep over step size or tolerances",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	scenarioFlags(sweepCmd)
	sweepCmd.Flags().StringArray("param", nil, "sweep parameter as name=v1,v2,... (step, rtol, atol, max_step, accel)")
	sweepCmd.Flags().String("metric", "energy_drift_final", "metric to score each point by")
	sweepCmd.Flags().Float64("target", 1e-9, "largest acceptable metric value")
	sweepCmd.Flags().Bool("progress", false, "show a live progress view on stderr")

	rootCmd.AddCommand(runCmd, compareCmd, benchCmd, presetsCmd, bodiesCmd, batchCmd, sweepCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		level.Error(logger).Log("err", err)
		stop()
		os.Exit(1)
	}
}

func newLogger(lvl string) log.Logger {
	l := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	l = log.With(l, "ts", log.DefaultTimestampUTC)

	var opt level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		opt = level.AllowDebug()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowInfo()
	}
	return level.NewFilter(l, opt)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if path := v.GetString("save"); path != "" {
		if err := config.Save(path, cfg); err != nil {
			return err
		}
	}
	sc, err := cfg.Resolve()
	if err != nil {
		return err
	}

	slogger := log.With(logger, "scenario", sc.Name, "integrator", sc.Integrator)
	level.Info(slogger).Log("msg", "propagating", "duration", sc.Duration, "thrust", sc.Thrust)

	exp, err := experiment.New(sc, experiment.NewRegistry(), "")
	if err != nil {
		return err
	}
	res, err := exp.Run(cmd.Context())
	var simErr *dynamo.SimulationError
	if errors.As(err, &simErr) {
		level.Warn(slogger).Log("msg", "propagation diverged", "step", simErr.Step, "t", simErr.Time)
	} else if err != nil {
		return err
	}
	level.Info(slogger).Log("msg", "done", "evaluations", res.Stats.Evaluations, "elapsed", res.Elapsed)

	printResult(res)
	if res.UnderCovered() {
		level.Warn(slogger).Log("msg", "step limit reached", "covered", res.Covered, "requested", res.Requested)
	}

	if v.GetBool("plot") {
		if res.States == nil {
			level.Warn(slogger).Log("msg", "no trajectory to plot in final-only mode")
		} else {
			fmt.Println()
			fmt.Println(viz.Plot(viz.RadiusSeries(res.States), "radius (km)", 80, 10))
			fmt.Println()
			fmt.Println(viz.Plot(viz.EnergyDriftSeries(res.States, sc.Mu), "relative energy drift", 80, 10))
		}
	}
	return err
}

func printResult(res *experiment.Result) {
	fmt.Println(viz.Title.Render(fmt.Sprintf("%s / %s", res.Scenario, res.Integrator)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	row := func(label, format string, a ...any) {
		fmt.Fprintf(w, "%s\t%s\n", viz.MetricLabel.Render(label), viz.MetricValue.Render(fmt.Sprintf(format, a...)))
	}
	row("final r (km)", "%.6f %.6f %.6f", res.Final.Pos.X, res.Final.Pos.Y, res.Final.Pos.Z)
	row("final v (km/s)", "%.9f %.9f %.9f", res.Final.Vel.X, res.Final.Vel.Y, res.Final.Vel.Z)
	row("time (s)", "%.3f of %.3f", res.Covered, res.Requested)
	row("steps", "%d accepted, %d rejected", res.Stats.Accepted, res.Stats.Rejected)
	row("evaluations", "%d", res.Stats.Evaluations)
	row("energy drift", "%.3e max, %.3e final", res.Metrics["energy_drift"], res.Metrics["energy_drift_final"])
	row("momentum drift", "%.3e", res.Metrics["momentum_drift"])
	row("min radius (km)", "%.3f", res.Metrics["min_radius"])
	row("delta-v (km/s)", "%.6f", res.Metrics["delta_v"])
	row("wall time", "%v", res.Elapsed)
	w.Flush()

	frac := 1.0
	if res.Requested > 0 {
		frac = res.Covered / res.Requested
	}
	fmt.Printf("coverage %s\n", viz.CoverageBar(frac, 40))
	if steps := viz.StepSizes(res.States); len(steps) > 0 && res.Integrator == "rk45" {
		fmt.Printf("step size %s\n", viz.Sparkline(steps, 60))
	}
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.FinalOnly = true
	sc, err := cfg.Resolve()
	if err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	names := args
	if len(names) == 0 {
		names = []string{sc.Integrator}
		for _, n := range reg.ListIntegrators() {
			if n != sc.Integrator {
				names = append(names, n)
			}
		}
	}

	level.Info(logger).Log("msg", "comparing", "scenario", sc.Name, "integrators", strings.Join(names, ","))
	results, diffs, err := experiment.Compare(cmd.Context(), sc, reg, names)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s (%.0f s)", sc.Name, sc.Duration)))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tRADIUS (km)\tSPEED (km/s)\tENERGY DRIFT\tEVALS\tTIME")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%.3f\t%.6f\t%.3e\t%d\t%v\n",
			r.Integrator, r.Final.Radius(), r.Final.Speed(), r.Metrics["energy_drift_final"], r.Stats.Evaluations, r.Elapsed)
	}
	w.Flush()

	if len(diffs) > 0 {
		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VS\tΔPOSITION (km)\tΔSPEED (km/s)\tΔRADIUS (km)")
		for _, d := range diffs {
			fmt.Fprintf(w, "%s-%s\t%.3f\t%.6f\t%.3f\n", d.Reference, d.Integrator, d.Position, d.Speed, d.Radius)
		}
		w.Flush()
	}
	return nil
}

func benchIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.FinalOnly = true
	sc, err := cfg.Resolve()
	if err != nil {
		return err
	}
	repeat := max(1, v.GetInt("repeat"))

	reg := experiment.NewRegistry()
	fmt.Printf("benchmarking %s (%d runs each)\n\n", sc.Name, repeat)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tEVALS\tBEST\tEVALS/SEC\tENERGY DRIFT")

	for _, name := range reg.ListIntegrators() {
		exp, err := experiment.New(sc, reg, name)
		if err != nil {
			level.Warn(logger).Log("integrator", name, "err", err)
			continue
		}

		var best *experiment.Result
		for i := 0; i < repeat; i++ {
			res, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}
			if best == nil || res.Elapsed < best.Elapsed {
				best = res
			}
		}

		rate := float64(best.Stats.Evaluations) / best.Elapsed.Seconds()
		fmt.Fprintf(w, "%s\t%d\t%v\t%.0f\t%.3e\n",
			name, best.Stats.Evaluations, best.Elapsed, rate, best.Metrics["energy_drift_final"])
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tBODY\tINTEGRATOR\tDURATION (s)\tTHRUST")
	for _, name := range config.ListPresets() {
		cfg, _ := config.GetPreset(name)
		sc, err := cfg.Resolve()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\t%s\n", name, cfg.Body, sc.Integrator, sc.Duration, sc.Thrust)
	}
	return w.Flush()
}

func runBatch(cmd *cobra.Command, args []string) error {
	b, err := automation.LoadBatch(args[0])
	if err != nil {
		return err
	}
	if b.Name != "" {
		fmt.Println(viz.Title.Render(b.Name))
	}
	if b.Description != "" {
		fmt.Println(viz.Subtle.Render(b.Description))
	}

	reg := experiment.NewRegistry()
	var results []*experiment.Result
	if v.GetBool("progress") {
		title := b.Name
		if title == "" {
			title = filepath.Base(args[0])
		}
		err = tui.Run(cmd.Context(), title, b.Size(), func(ctx context.Context, send func(tui.StepMsg)) error {
			var err error
			results, err = automation.RunBatch(ctx, b, reg, log.NewNopLogger(), func(res *experiment.Result) {
				send(tui.StepMsg{
					Label:  res.Scenario + " / " + res.Integrator,
					Detail: fmt.Sprintf("drift %.2e, %d evals", res.Metrics["energy_drift_final"], res.Stats.Evaluations),
				})
			})
			return err
		}, tea.WithOutput(os.Stderr))
	} else {
		results, err = automation.RunBatch(cmd.Context(), b, reg, logger, nil)
	}
	for _, res := range results {
		fmt.Println()
		printResult(res)
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	params, err := cmd.Flags().GetStringArray("param")
	if err != nil {
		return err
	}
	var names []string
	var ranges [][]float64
	for _, p := range params {
		name, vals, err := parseSweepParam(p)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	if len(names) == 0 {
		return fmt.Errorf("%w: at least one --param is required", dynamo.ErrParameterBounds)
	}

	metric := v.GetString("metric")
	target := v.GetFloat64("target")
	level.Info(logger).Log("msg", "sweeping", "scenario", cfg.Name, "params", strings.Join(names, ","), "metric", metric)

	g := optim.NewGridSearch(names, ranges)
	build := optim.Builder(cfg, experiment.NewRegistry(), "")
	var points []optim.Point
	var best int
	if v.GetBool("progress") {
		err = tui.Run(cmd.Context(), "sweep "+cfg.Name, g.Size(), func(ctx context.Context, send func(tui.StepMsg)) error {
			g.OnPoint(func(p optim.Point) {
				send(tui.StepMsg{Label: formatParams(names, p.Params), Detail: fmt.Sprintf("%s %.2e, %d evals", metric, p.Metric, p.Evaluations)})
			})
			var err error
			points, best, err = g.Search(ctx, build, metric, target)
			return err
		}, tea.WithOutput(os.Stderr))
	} else {
		points, best, err = g.Search(cmd.Context(), build, metric, target)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tEVALS\t\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(metric))
	for i, p := range points {
		for _, n := range names {
			fmt.Fprintf(w, "%g\t", p.Params[n])
		}
		mark := ""
		if i == best {
			mark = viz.SparkHigh.Render("best")
		}
		fmt.Fprintf(w, "%.3e\t%d\t%s\n", p.Metric, p.Evaluations, mark)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if best < 0 {
		fmt.Println(viz.Warning.Render(fmt.Sprintf("no point reaches %s <= %g", metric, target)))
	}
	return nil
}

func parseSweepParam(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("%w: sweep parameter %q is not name=v1,v2", dynamo.ErrParameterBounds, s)
	}
	var vals []float64
	for _, f := range strings.Split(list, ",") {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w: sweep parameter %s: %v", dynamo.ErrParameterBounds, name, err)
		}
		vals = append(vals, x)
	}
	return name, vals, nil
}

func formatParams(names []string, params map[string]float64) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s=%g", n, params[n])
	}
	return strings.Join(parts, " ")
}
