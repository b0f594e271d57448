// Package testutil provides shared test infrastructure for planner-sim.
// It resolves and writes the plan fixtures used by the sim/ test packages.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// PlanFixturePath returns the path of testdata/plans/<name> at the repo root.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func PlanFixturePath(t *testing.T, name string) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "plans", name)
}

// LoadPlanFixture reads testdata/plans/<name>.
func LoadPlanFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(PlanFixturePath(t, name))
	if err != nil {
		t.Fatalf("Failed to read plan fixture %s: %v", name, err)
	}
	return data
}

// WritePlan writes body to a plan file in a fresh temp dir and returns its path.
func WritePlan(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write plan: %v", err)
	}
	return path
}
