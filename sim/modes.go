package sim

import (
	"fmt"
	"math"
)

// DefaultGroup is the shared group of Subjects that did not name one.
const DefaultGroup = "default"

// Mode is a Subject's allocation policy for one interval: Fixed or Shared.
type Mode interface {
	// Rate is the configured performance in work units per simulated day.
	Rate() float64
	isMode()
}

// Fixed gives a Subject its configured performance directly. When the Subject
// finishes, the rate is not handed to anyone else.
type Fixed struct {
	Performance float64
}

// Shared puts the Subject's rate into its group's pool. The pool is split
// evenly between the group's unfinished, unlocked Subjects.
type Shared struct {
	Performance float64
	Group       string
}

func (f Fixed) Rate() float64  { return f.Performance }
func (s Shared) Rate() float64 { return s.Performance }
func (Fixed) isMode()          {}
func (Shared) isMode()         {}

func (f Fixed) String() string { return fmt.Sprintf("fixed(%v)", f.Performance) }
func (s Shared) String() string {
	return fmt.Sprintf("shared(%v, %s)", s.Performance, s.Group)
}

// NewFixed returns a Fixed mode.
func NewFixed(rate float64) Fixed { return Fixed{Performance: rate} }

// NewShared returns a Shared mode in DefaultGroup.
func NewShared(rate float64) Shared { return NewSharedIn(rate, DefaultGroup) }

// NewSharedIn returns a Shared mode in the given group; empty means DefaultGroup.
func NewSharedIn(rate float64, group string) Shared {
	if group == "" {
		group = DefaultGroup
	}
	return Shared{Performance: rate, Group: group}
}

// TrainingModes maps each Subject to its Modes, one per interval.
type TrainingModes map[*Subject][]Mode

// At returns the Subject's mode for interval k with the shared group defaulted.
func (tm TrainingModes) At(subj *Subject, k int) Mode {
	m := tm[subj][k]
	if sh, ok := m.(Shared); ok && sh.Group == "" {
		sh.Group = DefaultGroup
		return sh
	}
	return m
}

func validateRate(subj *Subject, k int, m Mode) error {
	if m == nil {
		return validationErrorf("subject %q interval %d: missing training mode", subj.Name(), k)
	}
	r := m.Rate()
	if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return validationErrorf("subject %q interval %d: performance must be a finite non-negative number, got %v", subj.Name(), k, r)
	}
	return nil
}

// sharedGroup is one redistribution pool for a single interval.
type sharedGroup struct {
	name    string
	pool    float64
	members []*Subject
}

// sharedGroups partitions the Shared-mode Subjects of interval k by group id,
// in order of first appearance in subjects. The pool sums every member's rate,
// finished and locked members included.
func (tm TrainingModes) sharedGroups(subjects []*Subject, k int) []*sharedGroup {
	var groups []*sharedGroup
	index := make(map[string]*sharedGroup)
	for _, subj := range subjects {
		sh, ok := tm.At(subj, k).(Shared)
		if !ok {
			continue
		}
		g, found := index[sh.Group]
		if !found {
			g = &sharedGroup{name: sh.Group}
			index[sh.Group] = g
			groups = append(groups, g)
		}
		g.pool += sh.Performance
		g.members = append(g.members, subj)
	}
	return groups
}

// eligible returns the members that can receive performance today.
func (g *sharedGroup) eligible() []*Subject {
	var out []*Subject
	for _, subj := range g.members {
		if !subj.Completed() && !subj.Locked() {
			out = append(out, subj)
		}
	}
	return out
}
