package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/planner-sim/planner-sim/sim/trace"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// Run is one finished simulation.
type Run struct {
	ID        string
	Plan      string
	Feasible  bool
	Verbose   bool
	CreatedAt time.Time
	KeyDates  []trace.KeyDateRecord
}

// RunFromTrace builds a Run from a recorded trace.
func RunFromTrace(st *trace.SimulationTrace, feasible bool) Run {
	return Run{
		ID:       st.RunID,
		Plan:     st.Config.PlanName,
		Feasible: feasible,
		Verbose:  st.Verbose,
		KeyDates: st.KeyDates,
	}
}

// SaveRun stores the run and its Key-Dates in one transaction.
func (s *Store) SaveRun(ctx context.Context, run Run) (err error) {
	if run.ID == "" {
		return errors.New("saving run: empty run ID")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, plan, feasible, verbose, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Plan, run.Feasible, run.Verbose, run.CreatedAt.Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO key_dates (run_id, seq, date, date_type, boundary, subject, source, milestone)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing key date insert: %w", err)
	}
	defer stmt.Close()

	for i, kd := range run.KeyDates {
		if _, err = stmt.ExecContext(ctx, run.ID, i, kd.Date.Format(time.DateOnly),
			kd.Type, kd.Boundary, kd.Subject, kd.Source, kd.Milestone); err != nil {
			return fmt.Errorf("inserting key date %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetRun loads a run header without its Key-Dates.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	var (
		run     Run
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, plan, feasible, verbose, created_at FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Plan, &run.Feasible, &run.Verbose, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("loading run %s: %w", id, err)
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return Run{}, fmt.Errorf("run %s: parsing created_at: %w", id, err)
	}
	return run, nil
}

// ListKeyDates returns the run's Key-Dates in emission order. The Line field
// is not stored and is left empty.
func (s *Store) ListKeyDates(ctx context.Context, runID string) ([]trace.KeyDateRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, date_type, boundary, subject, source, milestone
		 FROM key_dates WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing key dates: %w", err)
	}
	defer rows.Close()

	var out []trace.KeyDateRecord
	for rows.Next() {
		var (
			rec  trace.KeyDateRecord
			date string
		)
		if err := rows.Scan(&date, &rec.Type, &rec.Boundary, &rec.Subject, &rec.Source, &rec.Milestone); err != nil {
			return nil, fmt.Errorf("scanning key date: %w", err)
		}
		if rec.Date, err = time.Parse(time.DateOnly, date); err != nil {
			return nil, fmt.Errorf("parsing key date %q: %w", date, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
