package sim

import (
	"fmt"
	"strings"
	"time"
)

// Milestone is an immutable (date, description) marker on the plan timeline.
// Consecutive Milestones bound the intervals of the Training Mode Table.
type Milestone struct {
	date  time.Time
	descr string
}

// NewMilestone truncates date to its civil day (UTC midnight).
func NewMilestone(date time.Time, descr string) Milestone {
	return Milestone{date: civilDay(date), descr: descr}
}

// Date returns the milestone's civil day.
func (m Milestone) Date() time.Time { return m.date }

// Description returns the milestone label.
func (m Milestone) Description() string { return m.descr }

// Day returns the civil day y-m-d at UTC midnight.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return Day(y, m, d)
}

// DateType tags what a KeyDate refers to.
type DateType int

const (
	DateMilestone DateType = iota
	DateSubject
	DateSource
)

func (t DateType) String() string {
	switch t {
	case DateMilestone:
		return "MILESTONE"
	case DateSubject:
		return "SUBJECT"
	case DateSource:
		return "ED_SOURCE"
	default:
		return fmt.Sprintf("DateType(%d)", int(t))
	}
}

// Boundary marks a KeyDate as the start or the end of a Subject or Source.
// Milestones carry BoundaryNone.
type Boundary int

const (
	BoundaryNone Boundary = iota
	BoundaryStart
	BoundaryEnd
)

func (b Boundary) String() string {
	switch b {
	case BoundaryStart:
		return "START"
	case BoundaryEnd:
		return "END"
	default:
		return ""
	}
}

// SubjectView is what listeners see of a Subject. Views of the same Subject
// compare equal.
type SubjectView interface {
	Name() string
	Started() bool
	Completed() bool
	Locked() bool
}

// SourceView is what listeners see of a Source. Views of the same Source
// compare equal.
type SourceView interface {
	Title() string
	Author() string
	Unit() string
	Kind() SourceKind
	Describe() string
	Total() float64
	Progressed() float64
	Completed() bool
}

type subjectView struct{ s *Subject }

func (v subjectView) Name() string    { return v.s.Name() }
func (v subjectView) Started() bool   { return v.s.Started() }
func (v subjectView) Completed() bool { return v.s.Completed() }
func (v subjectView) Locked() bool    { return v.s.Locked() }

type sourceView struct{ s *Source }

func (v sourceView) Title() string       { return v.s.Title() }
func (v sourceView) Author() string      { return v.s.Author() }
func (v sourceView) Unit() string        { return v.s.Unit() }
func (v sourceView) Kind() SourceKind    { return v.s.Kind() }
func (v sourceView) Describe() string    { return v.s.Describe() }
func (v sourceView) Total() float64      { return v.s.Total() }
func (v sourceView) Progressed() float64 { return v.s.Progressed() }
func (v sourceView) Completed() bool     { return v.s.Completed() }

// KeyDate is a dated record produced by the Engine. It is a value type; the
// Subject and Source it refers to are exposed through read-only views.
type KeyDate struct {
	date      time.Time
	dateType  DateType
	boundary  Boundary
	milestone *Milestone
	subject   *Subject
	source    *Source
}

func (k KeyDate) Date() time.Time     { return k.date }
func (k KeyDate) Type() DateType      { return k.dateType }
func (k KeyDate) Boundary() Boundary  { return k.boundary }

// Subject returns a read-only view of the Subject, or nil for milestones.
func (k KeyDate) Subject() SubjectView {
	if k.subject == nil {
		return nil
	}
	return subjectView{k.subject}
}

// Source returns a read-only view of the Source, or nil unless the Key-Date
// is an ED_SOURCE boundary.
func (k KeyDate) Source() SourceView {
	if k.source == nil {
		return nil
	}
	return sourceView{k.source}
}
func (k KeyDate) IsEnd() bool         { return k.boundary == BoundaryEnd }
func (k KeyDate) IsStart() bool       { return k.boundary == BoundaryStart }
func (k KeyDate) IsMilestone() bool   { return k.dateType == DateMilestone }
func (k KeyDate) Milestone() (Milestone, bool) {
	if k.milestone == nil {
		return Milestone{}, false
	}
	return *k.milestone, true
}

// String renders e.g. "(ED_SOURCE) (Subject1) (BOOK) Book1 (END): 2024-01-02".
func (k KeyDate) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "(%s) ", k.dateType)
	switch k.dateType {
	case DateMilestone:
		b.WriteString(k.milestone.Description())
	case DateSubject:
		b.WriteString(k.subject.Name())
	case DateSource:
		fmt.Fprintf(&b, "(%s) %s", k.subject.Name(), k.source.Describe())
	}
	if k.boundary != BoundaryNone {
		fmt.Fprintf(&b, " (%s)", k.boundary)
	}
	fmt.Fprintf(&b, ": %s", k.date.Format(time.DateOnly))
	return b.String()
}
