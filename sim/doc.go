// Package sim provides the study-plan simulation engine for planner-sim.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - source.go: Learning Source lifecycle (fresh → in_progress → completed)
//   - subject.go: Subject cursor, spillover and the prerequisite lock
//   - modes.go: the Training Mode Table (Fixed vs Shared performance per interval)
//   - engine.go: the day-stepping loop, redistribution and Key-Date re-emission
//
// # Architecture
//
// The sim package holds the core state machines and the Engine. Collaborators
// live in sub-packages and only consume the Engine's message stream or build
// its inputs:
//   - sim/plan/: YAML plan files → Subjects, Sources, Milestones, TrainingModes
//   - sim/trace/: Key-Date recording and run summaries
//   - sim/report/: console view and Gantt diagram backend
//   - sim/store/: SQLite export of finished runs
//
// # Events
//
// Producers expose narrow observer interfaces instead of a generic dispatch:
//   - SourceObserver: implemented by Subject for the Sources it owns
//   - SubjectObserver: implemented by the Engine for registered Subjects
//
// The Engine republishes everything as a closed set of Message variants
// (KeyDateMessage, IntervalDescriptionMessage, VerboseModeFlagMessage) on a
// synchronous Channel. Delivery is inline and in subscription order.
package sim
