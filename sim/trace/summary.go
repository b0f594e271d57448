package trace

import "time"

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalKeyDates      int
	Milestones         int
	SubjectCompletions int
	SourceCompletions  int
	Starts             int
	LastCompletion     time.Time            // zero if nothing completed
	SubjectCompletedOn map[string]time.Time // subject name → completion date
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		SubjectCompletedOn: make(map[string]time.Time),
	}
	if st == nil {
		return summary
	}

	summary.TotalKeyDates = len(st.KeyDates)
	for _, r := range st.KeyDates {
		switch {
		case r.Type == "MILESTONE":
			summary.Milestones++
		case r.Boundary == "START":
			summary.Starts++
		case r.Type == "SUBJECT":
			summary.SubjectCompletions++
			summary.SubjectCompletedOn[r.Subject] = r.Date
		default:
			summary.SourceCompletions++
		}
		if r.IsCompletion() && r.Date.After(summary.LastCompletion) {
			summary.LastCompletion = r.Date
		}
	}
	return summary
}
