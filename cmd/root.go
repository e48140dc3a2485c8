package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jaemoore/class-simulation/sim"
	"github.com/jaemoore/class-simulation/sim/report"
	"github.com/jaemoore/class-simulation/sim/store"
	"github.com/jaemoore/class-simulation/sim/trace"
)

var (
	// CLI flags for the run command
	configPath     string // YAML parameter file
	presetName     string // Built-in schedule preset
	seed           int64  // Seed for every random stream of the run
	iterations     int    // Number of independent trials
	cohortSwitches int    // Number of simulated days per trial
	workers        int    // Trials run concurrently
	outputDir      string // Directory for CSV reports
	dbPath         string // Optional SQLite run history
	traceLevel     string // Decision trace verbosity
	logLevel       string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "cohortsim",
	Short: "Contact-network simulator for cohort-based school schedules",
}

// runOptions are the resolved non-parameter settings of one run.
type runOptions struct {
	Workers   int
	OutputDir string
	DBPath    string
	Trace     trace.TraceLevel
}

// runCmd executes the simulation using parameters from a file or preset plus CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the cohort rotation simulation",
	Run: func(cmd *cobra.Command, args []string) {
		envCfg, err := LoadEnvConfig(nil)
		if err != nil {
			logrus.Fatalf("Invalid environment: %v", err)
		}

		// Set up logging
		level := envCfg.LogLevel
		if cmd.Flags().Changed("log") {
			level = logLevel
		}
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", level)
		}
		logrus.SetLevel(parsed)

		params, err := resolveParams(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		opts, err := resolveRunOptions(cmd, envCfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := runSimulation(ctx, os.Stdout, params, opts); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// resolveParams builds validated params from --config (or --preset) and
// applies explicitly changed flags on top.
func resolveParams(cmd *cobra.Command) (*sim.SimulationParams, error) {
	var params sim.SimulationParams
	if configPath != "" {
		if cmd.Flags().Changed("preset") {
			return nil, fmt.Errorf("--config and --preset are mutually exclusive")
		}
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading simulation params: %w", err)
		}
		decoded, err := sim.DecodeSimulationParams(data)
		if err != nil {
			return nil, err
		}
		params = *decoded
	} else {
		cfg, err := builtinConfig()
		if err != nil {
			return nil, err
		}
		if params, err = cfg.ParamsForPreset(presetName); err != nil {
			return nil, err
		}
	}

	// Flags override file values only when the user set them
	if cmd.Flags().Changed("seed") {
		params.Seed = seed
	}
	if cmd.Flags().Changed("iterations") {
		params.Iterations = iterations
	}
	if cmd.Flags().Changed("cohort-switches") {
		params.CohortSwitches = cohortSwitches
	}
	return sim.NewSimulationParams(params)
}

// resolveRunOptions merges flags over environment defaults.
func resolveRunOptions(cmd *cobra.Command, envCfg *EnvConfig) (runOptions, error) {
	opts := runOptions{
		Workers:   envCfg.Workers,
		OutputDir: envCfg.OutputDir,
		DBPath:    envCfg.DB,
		Trace:     trace.TraceLevel(traceLevel),
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = workers
	}
	if cmd.Flags().Changed("output-dir") {
		opts.OutputDir = outputDir
	}
	if cmd.Flags().Changed("db") {
		opts.DBPath = dbPath
	}
	if !trace.IsValidTraceLevel(traceLevel) {
		return runOptions{}, fmt.Errorf("unknown trace level %q; valid: none, decisions", traceLevel)
	}
	if opts.Workers < 1 {
		return runOptions{}, fmt.Errorf("workers must be at least 1, got %d", opts.Workers)
	}
	return opts, nil
}

// runSimulation runs every trial, writes the reports and optionally stores the run.
func runSimulation(ctx context.Context, w io.Writer, params *sim.SimulationParams, opts runOptions) error {
	logrus.Infof("Starting simulation: %d students (%d attending), %d classes per cohort, %d iterations, %d switches, seed %d",
		params.TotalStudents, params.Students(), params.ClassesPerCohort(), params.Iterations, params.CohortSwitches, params.Seed)
	startTime := time.Now()

	s := sim.NewSimulation(params,
		sim.WithWorkers(opts.Workers),
		sim.WithTrace(trace.TraceConfig{Level: opts.Trace}),
	)
	results, err := s.Simulate(ctx)
	if err != nil {
		return err
	}

	if err := report.WriteAll(w, opts.OutputDir, results); err != nil {
		return err
	}

	if opts.DBPath != "" {
		rs, err := store.OpenResultStore(ctx, opts.DBPath)
		if err != nil {
			return err
		}
		defer rs.Close()
		id, err := rs.SaveRun(ctx, results)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Stored run %s in %s\n", id, opts.DBPath)
	}

	printSummary(w, results.Summary(), time.Since(startTime))
	return nil
}

// printSummary writes the run footer.
func printSummary(w io.Writer, summary sim.RunSummary, elapsed time.Duration) {
	fmt.Fprintf(w, "=== Run Summary ===\n")
	fmt.Fprintf(w, "Trials: %d, Days: %d, Elapsed: %s\n", summary.Trials, summary.Days, elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "Final contacts: mean %.2f, p50 %.2f, p90 %.2f\n",
		summary.MeanFinalContacts, summary.P50FinalContacts, summary.P90FinalContacts)
	fmt.Fprintf(w, "Over-capacity placements: %d\n", summary.Overflows)
	if ts := summary.Trace; ts != nil {
		fmt.Fprintf(w, "=== Decision Trace ===\n")
		fmt.Fprintf(w, "Placements: %d (cross-grade %d, over capacity %d)\n",
			ts.TotalPlacements, ts.CrossGradeCount, ts.OverCapacityCount)
		for _, name := range []string{sim.StrategyRandomProbe, sim.StrategySameGradeScan, sim.StrategyAnyGradeScan, sim.StrategyOverflow} {
			fmt.Fprintf(w, "  %s: %d\n", name, ts.StrategyDistribution[name])
		}
		fmt.Fprintf(w, "Switches: %d, peak average contacts %.2f\n", ts.TotalSwitches, ts.PeakAverageContacts)
	}
}

// presetsCmd lists the built-in schedules
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in schedule presets",
	Run: func(cmd *cobra.Command, args []string) {
		if err := printPresets(cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func printPresets(w io.Writer) error {
	cfg, err := builtinConfig()
	if err != nil {
		return err
	}
	for _, name := range cfg.PresetNames() {
		p := cfg.Presets[name]
		fmt.Fprintf(w, "%-10s %2d days  %s\n", name, len(p.Schedule), p.Description)
	}
	return nil
}

// historyCmd lists runs stored in a results database
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List runs stored in the results database",
	Run: func(cmd *cobra.Command, args []string) {
		envCfg, err := LoadEnvConfig(nil)
		if err != nil {
			logrus.Fatalf("Invalid environment: %v", err)
		}
		path := envCfg.DB
		if cmd.Flags().Changed("db") {
			path = dbPath
		}
		if path == "" {
			logrus.Fatalf("No results database: pass --db or set %sDB", envPrefix)
		}
		if err := printHistory(cmd.Context(), cmd.OutOrStdout(), path); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func printHistory(ctx context.Context, w io.Writer, path string) error {
	rs, err := store.OpenResultStore(ctx, path)
	if err != nil {
		return err
	}
	defer rs.Close()
	runs, err := rs.ListRuns(ctx)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  seed=%d iterations=%d days=%d students=%d\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Seed, r.Iterations, r.Days, r.Params.TotalStudents)
	}
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addRunFlags registers the run flags on cmd.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configPath, "config", "", "YAML simulation parameter file")
	cmd.Flags().StringVar(&presetName, "preset", DefaultPreset, "Built-in schedule preset (see cohortsim presets)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for all random streams")
	cmd.Flags().IntVar(&iterations, "iterations", 20, "Number of independent trials")
	cmd.Flags().IntVar(&cohortSwitches, "cohort-switches", 20, "Number of cohort switches (days) per trial")
	cmd.Flags().IntVar(&workers, "workers", 1, "Trials run concurrently (env COHORTSIM_WORKERS)")
	cmd.Flags().StringVar(&outputDir, "output-dir", ".", "Directory for CSV reports (env COHORTSIM_OUTPUT_DIR)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite file to record the run in (env COHORTSIM_DB)")
	cmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Decision trace level (none, decisions)")
	cmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic) (env COHORTSIM_LOG_LEVEL)")
}

// init sets up CLI flags and subcommands
func init() {
	addRunFlags(runCmd)
	historyCmd.Flags().StringVar(&dbPath, "db", "", "SQLite results file (env COHORTSIM_DB)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(historyCmd)
}
