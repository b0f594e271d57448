package sim

import (
	"fmt"
)

// SubjectID is a Subject's handle in the Engine registry, assigned at registration.
type SubjectID int

// NoSubject is the handle of an unregistered Subject and the "no prerequisite" value.
const NoSubject SubjectID = -1

// Status is the non-error outcome of Subject.Progress.
type Status int

const (
	StatusProgressed Status = iota
	StatusLocked            // prerequisite not processed yet; nothing was mutated
)

func (s Status) String() string {
	if s == StatusLocked {
		return "locked"
	}
	return "progressed"
}

// CompletionLookup reports whether a registered Subject has completed.
type CompletionLookup interface {
	Completed(id SubjectID) bool
}

// SubjectObserver is notified of a Subject's transitions, including the
// Source transitions it wraps with itself.
type SubjectObserver interface {
	SubjectStarted(subj *Subject)
	SubjectCompleted(subj *Subject)
	SourceStarted(subj *Subject, src *Source)
	SourceCompleted(subj *Subject, src *Source)
}

type nopSubjectObserver struct{}

func (nopSubjectObserver) SubjectStarted(*Subject)           {}
func (nopSubjectObserver) SubjectCompleted(*Subject)         {}
func (nopSubjectObserver) SourceStarted(*Subject, *Source)   {}
func (nopSubjectObserver) SourceCompleted(*Subject, *Source) {}

// spillEpsilon is the smallest leftover carried into the next Source.
// Smaller overflows are float noise from summing fractional rates.
const spillEpsilon = 1e-9

// Subject is an ordered list of Sources studied one after another.
// All Sources before the cursor are complete; the Subject is complete once the
// cursor has moved past the last Source.
type Subject struct {
	name    string
	sources []*Source
	cursor  int

	started   bool
	completed bool
	locked    bool
	after     SubjectID // prerequisite, or NoSubject

	id       SubjectID
	observer SubjectObserver
}

// NewSubject creates an unregistered Subject with no Sources.
func NewSubject(name string) *Subject {
	return &Subject{
		name:     name,
		after:    NoSubject,
		id:       NoSubject,
		observer: nopSubjectObserver{},
	}
}

func (s *Subject) Name() string    { return s.name }
func (s *Subject) ID() SubjectID   { return s.id }
func (s *Subject) Completed() bool { return s.completed }
func (s *Subject) Locked() bool    { return s.locked }
func (s *Subject) Started() bool   { return s.started }

// Sources returns the Sources in study order.
func (s *Subject) Sources() []*Source {
	out := make([]*Source, len(s.sources))
	copy(out, s.sources)
	return out
}

// Current returns the Source under the cursor, or nil once the Subject is complete.
func (s *Subject) Current() *Source {
	if s.cursor >= len(s.sources) {
		return nil
	}
	return s.sources[s.cursor]
}

// AddSource appends src to the study order. A Source belongs to exactly one Subject.
func (s *Subject) AddSource(src *Source) error {
	if src == nil {
		return fmt.Errorf("subject %q: nil source", s.name)
	}
	if src.owner != nil {
		return fmt.Errorf("subject %q: source %q is already attached to a subject", s.name, src.Title())
	}
	if s.started {
		return fmt.Errorf("subject %q: cannot add source %q after study has started", s.name, src.Title())
	}
	src.owner = s
	s.sources = append(s.sources, src)
	return nil
}

// StartAfter makes the Subject wait for the prerequisite to complete.
// The Subject starts locked and is released by Unlock.
func (s *Subject) StartAfter(prerequisite SubjectID) {
	s.after = prerequisite
	s.locked = prerequisite != NoSubject
}

// Prerequisite returns the handle of the Subject this one waits for.
func (s *Subject) Prerequisite() (SubjectID, bool) {
	return s.after, s.after != NoSubject
}

// TotalWork is the sum of the Sources' work quantities.
func (s *Subject) TotalWork() float64 {
	total := 0.0
	for _, src := range s.sources {
		total += src.Total()
	}
	return total
}

// Unlock releases the Subject if its prerequisite has completed and reports
// whether the Subject is unlocked afterwards. It never fails.
func (s *Subject) Unlock(lookup CompletionLookup) bool {
	if !s.locked {
		return true
	}
	if s.after == NoSubject || lookup.Completed(s.after) {
		s.locked = false
	}
	return !s.locked
}

// Progress applies a day's performance to the Source under the cursor. Whatever
// the Source could not absorb is re-applied to the next Source the same day.
// A locked Subject returns StatusLocked without changing anything.
func (s *Subject) Progress(amount float64) (Status, error) {
	if s.locked {
		return StatusLocked, nil
	}
	if s.completed {
		return StatusProgressed, fmt.Errorf("subject %q: %w", s.name, ErrAlreadyCompleted)
	}
	if len(s.sources) == 0 {
		return StatusProgressed, validationErrorf("subject %q has no sources", s.name)
	}

	overflow, err := s.sources[s.cursor].Progress(amount)
	for err == nil && overflow > spillEpsilon && !s.completed {
		overflow, err = s.sources[s.cursor].Progress(overflow)
	}
	if err != nil {
		return StatusProgressed, fmt.Errorf("subject %q: %w", s.name, err)
	}
	return StatusProgressed, nil
}

// SourceStarted implements SourceObserver.
func (s *Subject) SourceStarted(src *Source) error {
	if !s.started {
		s.started = true
		s.observer.SubjectStarted(s)
	}
	s.observer.SourceStarted(s, src)
	return nil
}

// SourceCompleted implements SourceObserver: it advances the cursor and
// completes the Subject after its last Source.
func (s *Subject) SourceCompleted(src *Source) error {
	if s.completed {
		return fmt.Errorf("subject %q: %w", s.name, ErrAlreadyCompleted)
	}
	s.observer.SourceCompleted(s, src)
	s.cursor++
	if s.cursor == len(s.sources) {
		s.completed = true
		s.observer.SubjectCompleted(s)
	}
	return nil
}

func (s *Subject) String() string {
	return fmt.Sprintf("Subject: (Name: %s, Sources: %d/%d, Locked: %v, Completed: %v)", s.name, s.cursor, len(s.sources), s.locked, s.completed)
}
