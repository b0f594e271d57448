package plan

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planner-sim/planner-sim/sim"
	"github.com/planner-sim/planner-sim/sim/internal/testutil"
)

func TestLoadPlanSpec_ExampleFixture(t *testing.T) {
	// GIVEN the example plan file
	spec, err := LoadPlanSpec(testutil.PlanFixturePath(t, "example.yaml"))
	require.NoError(t, err)

	// THEN it parses with fractions and dates resolved
	require.NoError(t, spec.Validate())
	assert.Equal(t, "example", spec.Name)
	require.Len(t, spec.Milestones, 3)
	assert.Equal(t, time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC), spec.Milestones[1].Date.Time)
	require.Len(t, spec.Subjects, 3)
	assert.InDelta(t, 1.0/7, float64(spec.Subjects[2].Modes[0].Rate), 1e-12)
	assert.Equal(t, 7, spec.Subjects[0].Sources[2].Days)
}

func TestLoadPlanSpec_NameDefaultsToFileName(t *testing.T) {
	path := testutil.WritePlan(t, "milestones: []\nsubjects: []\n")

	spec, err := LoadPlanSpec(path)

	require.NoError(t, err)
	assert.Equal(t, "plan", spec.Name)
	assert.Equal(t, "1", spec.Version)
}

func TestLoadPlanSpec_MissingFile(t *testing.T) {
	_, err := LoadPlanSpec("/nonexistent/plan.yaml")
	assert.Error(t, err)
}

func TestParsePlanSpec_RejectsUnknownKeys(t *testing.T) {
	// GIVEN a typo in a nested key
	data := []byte(`
subjects:
  - name: S
    sources:
      - {kind: book, title: B, totl: 10}
`)

	// WHEN parsed
	_, err := ParsePlanSpec(data)

	// THEN strict parsing rejects it
	require.Error(t, err)
	assert.Contains(t, err.Error(), "totl")
}

func TestParsePlanSpec_RejectsBadDate(t *testing.T) {
	_, err := ParsePlanSpec([]byte("milestones:\n  - {date: 05.09.2023, description: x}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"5", 5, false},
		{"2.5", 2.5, false},
		{"1/7", 1.0 / 7, false},
		{" 3 / 4 ", 0.75, false},
		{"1/0", 0, true},
		{"a/2", 0, true},
		{"2/b", 0, true},
		{"fast", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRate(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-12)
		})
	}
}

func TestPlanSpec_Validate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown version",
			yaml:    "version: \"7\"\n",
			wantErr: "unknown version",
		},
		{
			name: "unknown source kind",
			yaml: `
subjects:
  - name: S
    sources: [{kind: podcast, title: P, total: 3}]
`,
			wantErr: "subjects[0].sources[0]: unknown kind",
		},
		{
			name: "non-positive total",
			yaml: `
subjects:
  - name: S
    sources: [{kind: book, title: B, total: 0}]
`,
			wantErr: "total must be positive",
		},
		{
			name: "fixed-time without days",
			yaml: `
subjects:
  - name: S
    sources: [{kind: fixed-time, title: R}]
`,
			wantErr: "days must be positive",
		},
		{
			name: "days on a book",
			yaml: `
subjects:
  - name: S
    sources: [{kind: book, title: B, total: 3, days: 2}]
`,
			wantErr: "days is only valid",
		},
		{
			name: "no sources",
			yaml: `
subjects:
  - name: S
`,
			wantErr: "at least one source",
		},
		{
			name: "duplicate subject",
			yaml: `
subjects:
  - {name: S, sources: [{kind: book, title: B, total: 1}]}
  - {name: S, sources: [{kind: book, title: B, total: 1}]}
`,
			wantErr: "duplicate subject name",
		},
		{
			name: "duplicate source title",
			yaml: `
subjects:
  - {name: S, sources: [{kind: book, title: B, total: 1}, {kind: video, title: B, total: 1}]}
`,
			wantErr: "duplicate source title",
		},
		{
			name: "after names a later subject",
			yaml: `
subjects:
  - {name: A, after: B, sources: [{kind: book, title: a, total: 1}]}
  - {name: B, sources: [{kind: book, title: b, total: 1}]}
`,
			wantErr: "must name a subject listed earlier",
		},
		{
			name: "after itself",
			yaml: `
subjects:
  - {name: A, after: A, sources: [{kind: book, title: a, total: 1}]}
`,
			wantErr: "cannot start after itself",
		},
		{
			name: "unknown mode",
			yaml: `
subjects:
  - name: S
    sources: [{kind: book, title: B, total: 1}]
    modes: [{mode: turbo, rate: 1}]
`,
			wantErr: "unknown mode",
		},
		{
			name: "group on fixed mode",
			yaml: `
subjects:
  - name: S
    sources: [{kind: book, title: B, total: 1}]
    modes: [{mode: fixed, rate: 1, group: g}]
`,
			wantErr: "group is only valid",
		},
		{
			name: "negative rate",
			yaml: `
subjects:
  - name: S
    sources: [{kind: book, title: B, total: 1}]
    modes: [{mode: shared, rate: -2}]
`,
			wantErr: "rate must be a finite non-negative",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec, err := ParsePlanSpec([]byte(tc.yaml))
			require.NoError(t, err)

			err = spec.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestPlanSpec_Build_ExampleRunsFeasible(t *testing.T) {
	// GIVEN the example plan built into an engine
	spec, err := ParsePlanSpec(testutil.LoadPlanFixture(t, "example.yaml"))
	require.NoError(t, err)
	engine, err := spec.Build()
	require.NoError(t, err)

	// THEN totals round-trip through the built subjects
	total, err := engine.TotalWork()
	require.NoError(t, err)
	assert.Equal(t, 800.0+567+7+688+289+22+28, total)
	days, err := engine.Days()
	require.NoError(t, err)
	assert.Equal(t, 196, days)

	// WHEN simulated
	ok, err := engine.Run(sim.RunOptions{})

	// THEN the plan is feasible
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPlanSpec_Build_WiresPrerequisitesAndGroups(t *testing.T) {
	spec, err := LoadPlanSpec(testutil.PlanFixturePath(t, "prerequisite.yaml"))
	require.NoError(t, err)

	engine, err := spec.Build()
	require.NoError(t, err)

	subjects := engine.Subjects()
	require.Len(t, subjects, 2)
	after, ok := subjects[1].Prerequisite()
	require.True(t, ok)
	assert.Equal(t, subjects[0].ID(), after)
	assert.True(t, subjects[1].Locked())
	src := subjects[0].Sources()[0]
	assert.Equal(t, "Euler", src.Author())
	assert.Equal(t, "exercises", src.Unit())
	assert.Equal(t, sim.KindVideo, subjects[1].Sources()[0].Kind())

	ivs, err := engine.DescribeIntervals()
	require.NoError(t, err)
	require.Len(t, ivs, 1)
	require.Len(t, ivs[0].Shared, 1)
	assert.Equal(t, "evening", ivs[0].Shared[0].Group)
	assert.Equal(t, "Algebra", ivs[0].Shared[0].Records[0].Prerequisite)

	ok, err = engine.Run(sim.RunOptions{})
	require.NoError(t, err)
	assert.False(t, ok, "15 of 100 videos in three days")
	assert.InDelta(t, 15.0, subjects[1].Sources()[0].Progressed(), 1e-9)
}

func TestPlanSpec_Build_PropagatesEngineValidation(t *testing.T) {
	// GIVEN a plan whose mode count does not match its milestones
	spec, err := ParsePlanSpec([]byte(strings.TrimSpace(`
milestones:
  - {date: 2024-01-01, description: a}
  - {date: 2024-01-02, description: b}
subjects:
  - name: S
    sources: [{kind: book, title: B, total: 1}]
    modes: [{mode: fixed, rate: 1}, {mode: fixed, rate: 1}]
`)))
	require.NoError(t, err)
	engine, err := spec.Build()
	require.NoError(t, err)

	// WHEN run
	_, err = engine.Run(sim.RunOptions{})

	// THEN the engine reports a validation error
	var verr *sim.ValidationError
	assert.ErrorAs(t, err, &verr)
}
