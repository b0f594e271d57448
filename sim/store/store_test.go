package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planner-sim/planner-sim/sim"
	"github.com/planner-sim/planner-sim/sim/internal/testutil"
	"github.com/planner-sim/planner-sim/sim/plan"
	"github.com/planner-sim/planner-sim/sim/trace"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesDirectoryAndIsReopenable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "runs.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.SaveRun(ctx, Run{ID: "r1", Plan: "p"}))
	require.NoError(t, s.Close())

	// Migrations run again on reopen without error and data survives.
	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	run, err := s.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "p", run.Plan)
}

func TestSaveRun_RoundTripsExampleTrace(t *testing.T) {
	// GIVEN a traced run of the example plan
	spec, err := plan.ParsePlanSpec(testutil.LoadPlanFixture(t, "example.yaml"))
	require.NoError(t, err)
	engine, err := spec.Build()
	require.NoError(t, err)
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelBoundaries, PlanName: spec.Name})
	engine.Subscribe(st)
	feasible, err := engine.Run(sim.RunOptions{Verbose: true})
	require.NoError(t, err)

	// WHEN saved and read back
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveRun(ctx, RunFromTrace(st, feasible)))
	got, err := s.ListKeyDates(ctx, st.RunID)
	require.NoError(t, err)

	// THEN every Key-Date is returned in emission order
	require.Len(t, got, len(st.KeyDates))
	for i := range got {
		want := st.KeyDates[i]
		want.Line = ""
		assert.Equal(t, want, got[i], "key date %d", i)
	}
	run, err := s.GetRun(ctx, st.RunID)
	require.NoError(t, err)
	assert.True(t, run.Feasible)
	assert.True(t, run.Verbose)
	assert.Equal(t, "example", run.Plan)
	assert.WithinDuration(t, time.Now(), run.CreatedAt, time.Minute)
}

func TestSaveRun_DuplicateIDRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	first := Run{ID: "dup", Plan: "a", KeyDates: []trace.KeyDateRecord{
		{Date: sim.Day(2024, time.January, 1), Type: "MILESTONE", Milestone: "Start"},
	}}
	require.NoError(t, s.SaveRun(ctx, first))

	err := s.SaveRun(ctx, Run{ID: "dup", Plan: "b", KeyDates: []trace.KeyDateRecord{
		{Date: sim.Day(2024, time.January, 2), Type: "SUBJECT", Boundary: "END", Subject: "S"},
	}})

	require.Error(t, err)
	got, err := s.ListKeyDates(ctx, "dup")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSaveRun_RejectsUnknownDateType(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.SaveRun(ctx, Run{ID: "bad", KeyDates: []trace.KeyDateRecord{{Type: "HOLIDAY"}}})

	require.Error(t, err)
	_, err = s.GetRun(ctx, "bad")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSaveRun_EmptyID(t *testing.T) {
	assert.Error(t, openTestStore(t).SaveRun(context.Background(), Run{}))
}

func TestGetRun_NotFound(t *testing.T) {
	_, err := openTestStore(t).GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
