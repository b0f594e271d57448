// Package trace records the Key-Dates of one simulation run for summaries,
// reports and storage. Records are flat data and hold no references into the
// simulation state.
package trace

import "time"

// KeyDateRecord captures a single Key-Date.
type KeyDateRecord struct {
	Date      time.Time
	Type      string // MILESTONE, SUBJECT or ED_SOURCE
	Boundary  string // START, END or empty for milestones
	Subject   string // empty for milestones
	Source    string // Describe() of the Source; empty unless Type is ED_SOURCE
	Milestone string // milestone description; empty unless Type is MILESTONE
	Line      string // the Key-Date as rendered by the simulator
}

// IsCompletion reports whether the record is a Subject or Source end.
func (r KeyDateRecord) IsCompletion() bool {
	return r.Boundary == "END"
}

// IntervalRecord captures the resolved mode table of one interval.
type IntervalRecord struct {
	Index        int
	Start        time.Time
	End          time.Time
	SharedGroups int
	SharedPool   float64 // sum over all shared groups
	FixedRate    float64 // sum over all fixed Subjects
}
