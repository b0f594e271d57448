package cmd

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/planner-sim/planner-sim/sim"
	"github.com/planner-sim/planner-sim/sim/plan"
	"github.com/planner-sim/planner-sim/sim/report"
	"github.com/planner-sim/planner-sim/sim/store"
	"github.com/planner-sim/planner-sim/sim/trace"
)

// runConfig collects everything `run` needs once flags and env are resolved.
type runConfig struct {
	PlanPath   string
	Verbose    bool
	TraceLevel trace.TraceLevel
	Color      bool
	DBPath     string // empty disables storage
}

func loadEngine(path string) (*plan.PlanSpec, *sim.Engine, error) {
	spec, err := plan.LoadPlanSpec(path)
	if err != nil {
		return nil, nil, err
	}
	engine, err := spec.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("building plan %s: %w", path, err)
	}
	return spec, engine, nil
}

// runPlan simulates the plan, writes the Key-Dates and a verdict to w and
// optionally stores the run. It returns the feasibility verdict.
func runPlan(ctx context.Context, w io.Writer, cfg runConfig) (bool, error) {
	if !trace.IsValidTraceLevel(string(cfg.TraceLevel)) {
		return false, fmt.Errorf("unknown trace level %q; valid: completions, boundaries", cfg.TraceLevel)
	}
	spec, engine, err := loadEngine(cfg.PlanPath)
	if err != nil {
		return false, err
	}

	st := trace.NewSimulationTrace(trace.TraceConfig{Level: cfg.TraceLevel, PlanName: spec.Name})
	engine.Subscribe(report.NewView(w, cfg.Color))
	engine.Subscribe(st)

	startTime := time.Now()
	feasible, err := engine.Run(sim.RunOptions{Verbose: cfg.Verbose || cfg.TraceLevel.Verbose()})
	if err != nil {
		return false, err
	}
	logrus.Infof("Simulation of %q took %s", spec.Name, time.Since(startTime))

	printVerdict(w, spec.Name, feasible, trace.Summarize(st))
	fmt.Fprintf(w, "Run ID: %s\n", st.RunID)

	if cfg.DBPath != "" {
		if err := saveRun(ctx, cfg.DBPath, store.RunFromTrace(st, feasible)); err != nil {
			return feasible, err
		}
		logrus.Infof("Run %s saved to %s", st.RunID, cfg.DBPath)
	}
	return feasible, nil
}

func printVerdict(w io.Writer, name string, feasible bool, summary *trace.TraceSummary) {
	if feasible {
		fmt.Fprintf(w, "Plan %q is feasible.\n", name)
	} else {
		fmt.Fprintf(w, "Plan %q is NOT feasible.\n", name)
	}
	for _, subj := range slices.Sorted(maps.Keys(summary.SubjectCompletedOn)) {
		fmt.Fprintf(w, "  %s completed on %s\n", subj, summary.SubjectCompletedOn[subj].Format(time.DateOnly))
	}
}

func saveRun(ctx context.Context, path string, run store.Run) error {
	s, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.SaveRun(ctx, run)
}

// describeIntervals prints the resolved mode table of every interval.
func describeIntervals(w io.Writer, path string, color bool) error {
	_, engine, err := loadEngine(path)
	if err != nil {
		return err
	}
	engine.Subscribe(report.NewView(w, color))
	_, err = engine.DescribeIntervals()
	return err
}

// printTotals prints the plan's timeline, its span in days and its total work.
func printTotals(w io.Writer, path string) error {
	_, engine, err := loadEngine(path)
	if err != nil {
		return err
	}
	days, err := engine.Days()
	if err != nil {
		return err
	}
	total, err := engine.TotalWork()
	if err != nil {
		return err
	}
	milestones := engine.Milestones()
	fmt.Fprintf(w, "Milestones: %d (%s .. %s)\n", len(milestones),
		milestones[0].Date().Format(time.DateOnly), milestones[len(milestones)-1].Date().Format(time.DateOnly))
	fmt.Fprintf(w, "Days: %d\n", days)
	fmt.Fprintf(w, "Total work: %s\n", formatQuantity(total))
	return nil
}

// renderGantt runs the plan verbosely and writes a mermaid gantt diagram.
func renderGantt(w io.Writer, path string) error {
	spec, engine, err := loadEngine(path)
	if err != nil {
		return err
	}
	g := report.NewGantt(spec.Name)
	engine.Subscribe(g)
	if _, err := engine.Run(sim.RunOptions{Verbose: true}); err != nil {
		return err
	}
	return g.Render(w)
}

func formatQuantity(v float64) string {
	return fmt.Sprintf("%g", v)
}
