package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/mechsim/internal/config"
	"github.com/san-kum/mechsim/internal/experiment"
	"github.com/san-kum/mechsim/internal/logging"
	"github.com/san-kum/mechsim/internal/storage"
)

var (
	dataDir  string
	logLevel string
	logFile  string

	logger  zerolog.Logger
	logSink io.Closer

	keepPartial bool
	noSave      bool

	sweepOpts    angleFlags
	optimizeOpts angleFlags
	separation   float64
	speeds       []float64
	spins        []float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "mechsim",
		Short:         "projectile and double pendulum simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var file io.Writer
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					return err
				}
				file, logSink = f, f
			}
			logger = logging.New(os.Stderr, file, logLevel)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logSink != nil {
				logSink.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mechsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().BoolVar(&keepPartial, "keep-partial", false, "save the samples computed before a numerical failure")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "print the summary without storing the run")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep projectile launch angles",
		Args:  cobra.NoArgs,
		RunE:  sweepAngles,
	}
	addModelFlags(sweepCmd)
	sweepOpts.register(sweepCmd, 5)

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "grid search for the launch with the longest range",
		Args:  cobra.NoArgs,
		RunE:  optimizeLaunch,
	}
	addModelFlags(optimizeCmd)
	optimizeOpts.register(optimizeCmd, 1)
	optimizeCmd.Flags().Float64SliceVar(&speeds, "speeds", nil, "launch speeds to try (default: configured speed)")
	optimizeCmd.Flags().Float64SliceVar(&spins, "spins", nil, "spin rates to try (default: configured spin)")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate the largest Lyapunov exponent of the double pendulum",
		Args:  cobra.NoArgs,
		RunE:  lyapunovExponent,
	}
	addModelFlags(lyapunovCmd)
	lyapunovCmd.Flags().Float64Var(&separation, "separation", 1e-8, "initial theta1 offset of the shadow trajectory")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and summary",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			models := experiment.Default.ListModels()
			if len(args) == 1 {
				models = args
			}
			for _, model := range models {
				presets := config.ListPresets(model)
				if len(presets) == 0 {
					fmt.Printf("no presets for model: %s\n", model)
					continue
				}
				fmt.Printf("presets for %s:\n", model)
				for _, p := range presets {
					fmt.Printf("  %s\n", p)
				}
			}
			return nil
		},
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default configuration as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "mechsim.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, sweepCmd, optimizeCmd, lyapunovCmd, listCmd, showCmd,
		exportCSVCmd, exportJSONCmd, presetsCmd, initConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	model := ""
	if len(args) == 1 {
		model = args[0]
	}
	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info().Str("model", cfg.Model).Str("integrator", cfg.Integrator).Msg("running simulation")
	start := time.Now()

	result, runErr := experiment.Run(ctx, cfg, logger)
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)

	if runErr != nil {
		logger.Warn().Err(runErr).Int("samples", len(result.Times)).Msg("run stopped early")
		if !keepPartial {
			return runErr
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("samples: %d (steps %d, rejected %d)\n", len(result.Times), result.StepsTaken, result.StepsRejected)
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	printValues("summary", result.Summary)
	printValues("metrics", result.Metrics)

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	return runErr
}

func sweepAngles(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, "projectile")
	if err != nil {
		return err
	}
	angles, err := sweepOpts.angles()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info().Int("angles", len(angles)).Int("workers", sweepOpts.workers).Msg("sweeping launch angle")
	points, err := experiment.SweepAngles(ctx, cfg, angles, sweepOpts.workers, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ANGLE\tMAX HEIGHT\tRANGE\tFLIGHT TIME\tFINAL X")
	for _, p := range points {
		rng, flight := "-", "-"
		if p.Flight.Landed {
			rng = fmt.Sprintf("%.3f", p.Flight.Range)
			flight = fmt.Sprintf("%.3f", p.Flight.FlightTime)
		}
		fmt.Fprintf(w, "%.2f\t%.3f\t%s\t%s\t%.3f\n",
			p.Angle, p.Flight.MaxHeight, rng, flight, p.Flight.FinalDistance)
	}
	return w.Flush()
}

func optimizeLaunch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, "projectile")
	if err != nil {
		return err
	}

	angles, err := optimizeOpts.angles()
	if err != nil {
		return err
	}

	grid := map[string][]float64{"angle": angles}
	if len(speeds) > 0 {
		grid["speed"] = speeds
	}
	if len(spins) > 0 {
		grid["spin_rate"] = spins
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, flight, err := experiment.OptimizeLaunch(ctx, cfg, grid, optimizeOpts.workers, logger)
	if err != nil {
		return err
	}

	printValues("best launch", best)
	printValues("flight", flight.Values())
	return nil
}

func lyapunovExponent(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, "double_pendulum")
	if err != nil {
		return err
	}

	logger.Info().Float64("separation", separation).Float64("duration", cfg.Duration).Msg("estimating lyapunov exponent")
	lambda, err := experiment.Lyapunov(cfg, separation)
	if err != nil {
		return err
	}
	fmt.Printf("largest lyapunov exponent: %.6f 1/s\n", lambda)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tINTEG\tSAMPLES")

	for _, run := range runs {
		integ := run.Integrator
		if run.Adaptive {
			integ += " (adaptive)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			integ,
			run.Samples,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no such run: %s", args[0])
		}
		return err
	}

	fmt.Printf("id:          %s\n", meta.ID)
	fmt.Printf("model:       %s\n", meta.Model)
	fmt.Printf("integrator:  %s (adaptive %t)\n", meta.Integrator, meta.Adaptive)
	fmt.Printf("time:        %s\n", meta.Timestamp.Format(time.RFC3339))
	fmt.Printf("dt:          %g\n", meta.Dt)
	fmt.Printf("duration:    %g\n", meta.Duration)
	fmt.Printf("samples:     %d\n", meta.Samples)
	fmt.Printf("columns:     %v\n", meta.Columns)
	fmt.Printf("energy drift %.3e\n", meta.EnergyDrift)
	printValues("summary", meta.Summary)
	printValues("metrics", meta.Metrics)
	return nil
}

func printValues(title string, values map[string]float64) {
	if len(values) == 0 {
		return
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("\n%s:\n", title)
	for _, k := range keys {
		fmt.Printf("  %s: %.6f\n", k, values[k])
	}
}
