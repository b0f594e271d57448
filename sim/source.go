// Defines the Source struct that models one unit of study material in the simulation.
// Tracks accumulated work against a total and fires lifecycle notifications to its Subject.

package sim

import (
	"fmt"
	"math"
)

// SourceKind selects how a Source measures progress.
type SourceKind string

const (
	KindBook      SourceKind = "book"
	KindVideo     SourceKind = "video"
	KindFixedTime SourceKind = "fixed-time" // counts days, ignores the amount
)

var sourceKindLabels = map[SourceKind]string{
	KindBook:      "BOOK",
	KindVideo:     "YT VIDEO",
	KindFixedTime: "Fixed Time Task",
}

// IsValidSourceKind reports whether name is a recognized source kind.
func IsValidSourceKind(name string) bool {
	_, ok := sourceKindLabels[SourceKind(name)]
	return ok
}

// SourceState represents the lifecycle state of a Source.
type SourceState string

const (
	SourceFresh      SourceState = "fresh"
	SourceInProgress SourceState = "in_progress"
	SourceCompleted  SourceState = "completed"
)

// SourceObserver is notified of a Source's lifecycle transitions.
// A Source has at most one observer: the Subject that owns it.
type SourceObserver interface {
	SourceStarted(src *Source) error
	SourceCompleted(src *Source) error
}

// Source is a book, a video or a fixed-duration task.
type Source struct {
	title  string
	author string // optional
	unit   string // exercises, pages, days, ...
	kind   SourceKind

	total    float64 // work quantity, or days for KindFixedTime
	progress float64
	state    SourceState
	owner    SourceObserver
}

func newSource(kind SourceKind, title string, total float64, author, unit string) *Source {
	return &Source{
		title:  title,
		author: author,
		unit:   unit,
		kind:   kind,
		total:  total,
		state:  SourceFresh,
	}
}

// NewBook creates a quantity-based source measured in unit (tasks by default).
func NewBook(title string, total float64, author, unit string) *Source {
	if unit == "" {
		unit = "tasks"
	}
	return newSource(KindBook, title, total, author, unit)
}

// NewVideo creates a quantity-based video source.
func NewVideo(title string, total float64, author, unit string) *Source {
	if unit == "" {
		unit = "videos"
	}
	return newSource(KindVideo, title, total, author, unit)
}

// NewFixedTimeTask creates a source that completes after the given number of
// Progress calls, one per simulated day, regardless of the performance it gets.
func NewFixedTimeTask(title string, days int) *Source {
	return newSource(KindFixedTime, title, float64(days), "", "days")
}

func (s *Source) Title() string       { return s.title }
func (s *Source) Author() string      { return s.author }
func (s *Source) Unit() string        { return s.unit }
func (s *Source) Kind() SourceKind    { return s.kind }
func (s *Source) Total() float64      { return s.total }
func (s *Source) Progressed() float64 { return s.progress }
func (s *Source) State() SourceState  { return s.state }
func (s *Source) Completed() bool     { return s.state == SourceCompleted }

func (s *Source) countsDays() bool { return s.kind == KindFixedTime }

// Describe returns e.g. "(BOOK) Author, Title".
func (s *Source) Describe() string {
	label, ok := sourceKindLabels[s.kind]
	if !ok {
		label = string(s.kind)
	}
	if s.author != "" {
		return fmt.Sprintf("(%s) %s, %s", label, s.author, s.title)
	}
	return fmt.Sprintf("(%s) %s", label, s.title)
}

func (s *Source) String() string {
	return fmt.Sprintf("Source: (Title: %s, State: %s, Progress: %v/%v %s)", s.title, s.state, s.progress, s.total, s.unit)
}

// Progress applies amount of work and returns the part of it that exceeded the
// remaining quantity, so the caller can spill it into the next Source.
// Fixed-time sources count one day per call and never overflow.
// A zero amount is a no-op for quantity-based sources.
func (s *Source) Progress(amount float64) (float64, error) {
	if s.state == SourceCompleted {
		return 0, fmt.Errorf("source %q: %w", s.title, ErrAlreadyCompleted)
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("source %q: %w: %v", s.title, ErrInvalidAmount, amount)
	}

	step := amount
	if s.countsDays() {
		step = 1
	} else if amount == 0 {
		return 0, nil
	}

	if s.state == SourceFresh {
		s.state = SourceInProgress
		if s.owner != nil {
			if err := s.owner.SourceStarted(s); err != nil {
				return 0, err
			}
		}
	}

	s.progress += step
	if s.progress < s.total {
		return 0, nil
	}

	overflow := s.progress - s.total
	if s.countsDays() {
		overflow = 0
	}
	s.progress = s.total
	s.state = SourceCompleted
	if s.owner != nil {
		if err := s.owner.SourceCompleted(s); err != nil {
			return 0, err
		}
	}
	return overflow, nil
}
