package cmd

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/planner-sim/planner-sim/sim/trace"
)

var (
	planPath   string // Path to the YAML plan
	logLevel   string // Log verbosity level
	noColor    bool   // Disable styled output
	verbose    bool   // Emit start Key-Dates
	traceLevel string // Which Key-Dates the run trace keeps
	dbPath     string // SQLite file for finished runs

	envCfg envConfig
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "planner-sim",
	Short: "Day-by-day feasibility simulator for study plans",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg, err := loadEnv()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		envCfg = cfg
		if !cmd.Flags().Changed("log") {
			logLevel = cfg.LogLevel
		}
		if !cmd.Flags().Changed("db") {
			dbPath = cfg.DBPath
		}

		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

func requirePlan() {
	if planPath == "" {
		logrus.Fatalf("Plan file not provided (--plan). Exiting.")
	}
}

// runCmd simulates the plan and prints its Key-Dates
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate the plan and report whether it is feasible",
	Run: func(cmd *cobra.Command, args []string) {
		requirePlan()
		cfg := runConfig{
			PlanPath:   planPath,
			Verbose:    verbose,
			TraceLevel: trace.TraceLevel(traceLevel),
			Color:      colorEnabled(os.Stdout, noColor, envCfg),
			DBPath:     dbPath,
		}
		feasible, err := runPlan(context.Background(), os.Stdout, cfg)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		if !feasible {
			os.Exit(2)
		}
	},
}

// intervalsCmd prints the mode table per interval without simulating
var intervalsCmd = &cobra.Command{
	Use:   "intervals",
	Short: "Describe the training modes of every interval",
	Run: func(cmd *cobra.Command, args []string) {
		requirePlan()
		if err := describeIntervals(os.Stdout, planPath, colorEnabled(os.Stdout, noColor, envCfg)); err != nil {
			logrus.Fatalf("Describing intervals failed: %v", err)
		}
	},
}

// totalsCmd prints the plan's length in days and its total work
var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Print the number of days and the total work of the plan",
	Run: func(cmd *cobra.Command, args []string) {
		requirePlan()
		if err := printTotals(os.Stdout, planPath); err != nil {
			logrus.Fatalf("Computing totals failed: %v", err)
		}
	},
}

// ganttCmd runs the plan verbosely and prints a mermaid gantt diagram
var ganttCmd = &cobra.Command{
	Use:   "gantt",
	Short: "Print a mermaid gantt diagram of the simulated plan",
	Run: func(cmd *cobra.Command, args []string) {
		requirePlan()
		if err := renderGantt(os.Stdout, planPath); err != nil {
			logrus.Fatalf("Rendering gantt failed: %v", err)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&planPath, "plan", "", "Path to the YAML plan file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic); env PLANNER_SIM_LOG")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output; env NO_COLOR")

	runCmd.Flags().BoolVar(&verbose, "verbose", false, "Also report Subject and Source start dates")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", string(trace.TraceLevelCompletions), "Key-Dates kept in the run trace (completions, boundaries)")
	runCmd.Flags().StringVar(&dbPath, "db", "", "Store the run in this SQLite file; env PLANNER_SIM_DB")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(intervalsCmd)
	rootCmd.AddCommand(totalsCmd)
	rootCmd.AddCommand(ganttCmd)
}
