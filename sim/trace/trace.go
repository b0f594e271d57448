package trace

import (
	"github.com/google/uuid"

	"github.com/planner-sim/planner-sim/sim"
)

// TraceLevel controls which Key-Dates are recorded.
type TraceLevel string

const (
	// TraceLevelCompletions records milestones and completions only.
	TraceLevelCompletions TraceLevel = "completions"
	// TraceLevelBoundaries also records Subject and Source starts. Requires a
	// verbose run.
	TraceLevelBoundaries TraceLevel = "boundaries"
)

var validTraceLevels = map[TraceLevel]bool{
	TraceLevelCompletions: true,
	TraceLevelBoundaries:  true,
	"":                    true, // empty defaults to completions
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// Verbose reports whether the level needs start events from the Engine.
func (l TraceLevel) Verbose() bool {
	return l == TraceLevelBoundaries
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level    TraceLevel
	PlanName string
}

// SimulationTrace collects Key-Dates and interval descriptions during a run.
// It implements sim.Listener.
type SimulationTrace struct {
	RunID     string
	Config    TraceConfig
	Verbose   bool
	KeyDates  []KeyDateRecord
	Intervals []IntervalRecord
}

// NewSimulationTrace creates a SimulationTrace with a fresh run ID.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		RunID:     uuid.NewString(),
		Config:    config,
		KeyDates:  make([]KeyDateRecord, 0),
		Intervals: make([]IntervalRecord, 0),
	}
}

// RecordKeyDate appends a Key-Date record. Start records are dropped unless
// the level is TraceLevelBoundaries.
func (st *SimulationTrace) RecordKeyDate(record KeyDateRecord) {
	if record.Boundary == "START" && !st.Config.Level.Verbose() {
		return
	}
	st.KeyDates = append(st.KeyDates, record)
}

// RecordInterval appends an interval record.
func (st *SimulationTrace) RecordInterval(record IntervalRecord) {
	st.Intervals = append(st.Intervals, record)
}

// OnMessage implements sim.Listener.
func (st *SimulationTrace) OnMessage(msg sim.Message) {
	switch m := msg.(type) {
	case sim.VerboseModeFlagMessage:
		st.Verbose = m.Verbose
	case sim.KeyDateMessage:
		st.RecordKeyDate(FromKeyDate(m.KeyDate))
	case sim.IntervalDescriptionMessage:
		st.RecordInterval(FromInterval(m.Interval))
	}
}

// FromKeyDate flattens a sim.KeyDate into a record.
func FromKeyDate(kd sim.KeyDate) KeyDateRecord {
	rec := KeyDateRecord{
		Date: kd.Date(),
		Type: kd.Type().String(),
		Line: kd.String(),
	}
	if kd.Boundary() != sim.BoundaryNone {
		rec.Boundary = kd.Boundary().String()
	}
	if m, ok := kd.Milestone(); ok {
		rec.Milestone = m.Description()
	}
	if s := kd.Subject(); s != nil {
		rec.Subject = s.Name()
	}
	if src := kd.Source(); src != nil {
		rec.Source = src.Describe()
	}
	return rec
}

// FromInterval condenses an interval description into a record.
func FromInterval(iv sim.IntervalDescription) IntervalRecord {
	rec := IntervalRecord{
		Index:        iv.Index,
		Start:        iv.Start,
		End:          iv.End,
		SharedGroups: len(iv.Shared),
	}
	for _, g := range iv.Shared {
		rec.SharedPool += g.Pool
	}
	for _, f := range iv.Fixed {
		rec.FixedRate += f.Performance
	}
	return rec
}
