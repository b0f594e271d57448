// sim/engine.go
package sim

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// RunOptions configures a single Engine.Run.
type RunOptions struct {
	// Verbose also publishes Subject and Source start Key-Dates, not only ends.
	Verbose bool
}

// Engine is the core object that holds the simulation clock, the registered
// Subjects and Milestones, and the day-stepping loop.
type Engine struct {
	modes      TrainingModes
	subjects   []*Subject
	milestones []Milestone
	channel    Channel

	// Clock is the simulated civil day being processed.
	clock   time.Time
	verbose bool
	// unlockQueue holds Subjects whose prerequisite completed on an earlier day.
	unlockQueue []SubjectID
	ran         bool
}

// NewEngine creates an Engine reading performance from modes.
func NewEngine(modes TrainingModes) *Engine {
	return &Engine{modes: modes}
}

// AddSubject registers s and returns its handle. A prerequisite declared with
// StartAfter must already be registered, which keeps the dependency graph acyclic.
func (e *Engine) AddSubject(s *Subject) (SubjectID, error) {
	if s == nil {
		return NoSubject, fmt.Errorf("nil subject")
	}
	if s.id != NoSubject {
		return NoSubject, fmt.Errorf("subject %q is already registered", s.Name())
	}
	if after, ok := s.Prerequisite(); ok && (after < 0 || int(after) >= len(e.subjects)) {
		return NoSubject, validationErrorf("subject %q: prerequisite %d must be registered before it", s.Name(), after)
	}
	s.id = SubjectID(len(e.subjects))
	s.observer = subjectEvents{e}
	e.subjects = append(e.subjects, s)
	return s.id, nil
}

// AddMilestone appends m to the timeline. Milestones must be added in date order.
func (e *Engine) AddMilestone(m Milestone) {
	e.milestones = append(e.milestones, m)
}

// Subscribe registers l on the Engine's message channel.
func (e *Engine) Subscribe(l Listener) {
	e.channel.Subscribe(l)
}

// Subjects returns the registered Subjects in registration order.
func (e *Engine) Subjects() []*Subject {
	out := make([]*Subject, len(e.subjects))
	copy(out, e.subjects)
	return out
}

// Subject returns the Subject registered under id, or nil.
func (e *Engine) Subject(id SubjectID) *Subject {
	if id < 0 || int(id) >= len(e.subjects) {
		return nil
	}
	return e.subjects[id]
}

// Milestones returns the timeline in insertion order.
func (e *Engine) Milestones() []Milestone {
	out := make([]Milestone, len(e.milestones))
	copy(out, e.milestones)
	return out
}

// Completed implements CompletionLookup.
func (e *Engine) Completed(id SubjectID) bool {
	s := e.Subject(id)
	return s != nil && s.Completed()
}

// Days returns the number of days between the first and the last Milestone.
func (e *Engine) Days() (int, error) {
	if err := e.checkMilestoneCount(); err != nil {
		return 0, err
	}
	first := e.milestones[0].Date()
	last := e.milestones[len(e.milestones)-1].Date()
	return int(last.Sub(first) / (24 * time.Hour)), nil
}

// TotalWork returns the work quantity of all registered Subjects.
func (e *Engine) TotalWork() (float64, error) {
	if err := e.checkSubjectCount(); err != nil {
		return 0, err
	}
	total := 0.0
	for _, s := range e.subjects {
		total += s.TotalWork()
	}
	return total, nil
}

func (e *Engine) checkMilestoneCount() error {
	if len(e.milestones) < 2 {
		return validationErrorf("calculation requires at least 2 milestones, got %d", len(e.milestones))
	}
	return nil
}

func (e *Engine) checkSubjectCount() error {
	if len(e.subjects) == 0 {
		return validationErrorf("no subjects registered")
	}
	return nil
}

// validate checks the configuration before any simulated day.
func (e *Engine) validate() error {
	if err := e.checkMilestoneCount(); err != nil {
		return err
	}
	for i := 1; i < len(e.milestones); i++ {
		prev, cur := e.milestones[i-1], e.milestones[i]
		if !cur.Date().After(prev.Date()) {
			return validationErrorf("milestone %d (%s) must be after milestone %d (%s)",
				i, cur.Date().Format(time.DateOnly), i-1, prev.Date().Format(time.DateOnly))
		}
	}
	if err := e.checkSubjectCount(); err != nil {
		return err
	}
	if len(e.modes) == 0 {
		return validationErrorf("training mode table is empty")
	}

	registered := make(map[*Subject]bool, len(e.subjects))
	nIntervals := -1
	for _, s := range e.subjects {
		registered[s] = true
		if len(s.sources) == 0 {
			return validationErrorf("subject %q has no sources", s.Name())
		}
		for _, src := range s.sources {
			if !(src.Total() > 0) {
				return validationErrorf("subject %q: source %q must have a positive total, got %v", s.Name(), src.Title(), src.Total())
			}
		}
		if after, ok := s.Prerequisite(); ok && (after < 0 || after >= s.ID()) {
			return validationErrorf("subject %q: prerequisite %d must be registered before it", s.Name(), after)
		}
		modes, ok := e.modes[s]
		if !ok {
			return validationErrorf("subject %q is missing from the training mode table", s.Name())
		}
		if nIntervals < 0 {
			nIntervals = len(modes)
		} else if len(modes) != nIntervals {
			return validationErrorf("each subject should have the same number of training modes: %q has %d, expected %d",
				s.Name(), len(modes), nIntervals)
		}
		for k, m := range modes {
			if err := validateRate(s, k, m); err != nil {
				return err
			}
		}
	}
	for s := range e.modes {
		if !registered[s] {
			return validationErrorf("training mode table references unregistered subject %q", s.Name())
		}
	}
	if nIntervals < 1 {
		return validationErrorf("the number of training modes must be at least 1")
	}
	if len(e.milestones) != nIntervals+1 {
		return validationErrorf("the number of training modes (%d) must be 1 less than the number of milestones (%d)",
			nIntervals, len(e.milestones))
	}
	return nil
}

// Run simulates the plan one day at a time from the first to the last
// Milestone and reports whether every Subject completed. Within a day the
// order is: milestone, unlock pass, fixed allocations, shared redistribution.
// Run is single-shot; the Subjects keep their final state afterwards.
func (e *Engine) Run(opts RunOptions) (bool, error) {
	if e.ran {
		return false, ErrAlreadyRun
	}
	if err := e.validate(); err != nil {
		return false, err
	}
	e.ran = true
	e.verbose = opts.Verbose
	e.channel.Publish(VerboseModeFlagMessage{Verbose: opts.Verbose})

	end := e.milestones[len(e.milestones)-1].Date()
	e.clock = e.milestones[0].Date()
	nextMilestone := 0
	logrus.Infof("Starting simulation with %d subjects, %d milestones, verbose=%v",
		len(e.subjects), len(e.milestones), opts.Verbose)

	for !e.clock.After(end) {
		if e.clock.Equal(e.milestones[nextMilestone].Date()) {
			m := e.milestones[nextMilestone]
			nextMilestone++
			e.publishKeyDate(KeyDate{date: e.clock, dateType: DateMilestone, milestone: &m})
			if nextMilestone == len(e.milestones) {
				break
			}
		}
		interval := nextMilestone - 1
		logrus.Debugf("[day %s] interval %d", e.clock.Format(time.DateOnly), interval)

		e.processUnlocks()
		if err := e.allocate(interval); err != nil {
			return false, fmt.Errorf("simulating %s: %w", e.clock.Format(time.DateOnly), err)
		}

		e.clock = e.clock.AddDate(0, 0, 1)
	}

	feasible := true
	for _, s := range e.subjects {
		if !s.Completed() {
			feasible = false
			logrus.Infof("Subject %q not completed by %s", s.Name(), end.Format(time.DateOnly))
		}
	}
	logrus.Infof("[day %s] Simulation ended, feasible=%v", e.clock.Format(time.DateOnly), feasible)
	return feasible, nil
}

// processUnlocks releases every queued Subject whose prerequisite has completed.
func (e *Engine) processUnlocks() {
	if len(e.unlockQueue) == 0 {
		return
	}
	var pending []SubjectID
	for _, id := range e.unlockQueue {
		s := e.subjects[id]
		if s.Unlock(e) {
			logrus.Infof("[day %s] Subject %q unlocked", e.clock.Format(time.DateOnly), s.Name())
			continue
		}
		pending = append(pending, id)
	}
	e.unlockQueue = pending
}

// allocate distributes interval k's performance for the current day.
// Fixed-mode Subjects go first; then each shared group splits its pool between
// its unfinished, unlocked members. Groups with no eligible member are skipped.
func (e *Engine) allocate(k int) error {
	for _, s := range e.subjects {
		f, ok := e.modes.At(s, k).(Fixed)
		if !ok || s.Completed() {
			continue
		}
		if _, err := s.Progress(f.Performance); err != nil {
			return err
		}
	}

	for _, g := range e.modes.sharedGroups(e.subjects, k) {
		eligible := g.eligible()
		if len(eligible) == 0 {
			continue
		}
		share := g.pool / float64(len(eligible))
		for _, s := range eligible {
			if _, err := s.Progress(share); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) publishKeyDate(kd KeyDate) {
	logrus.Infof("[day %s] %s", kd.Date().Format(time.DateOnly), kd)
	e.channel.Publish(KeyDateMessage{KeyDate: kd})
}

// enqueueDependents queues every Subject waiting for the completed one. They
// are unlocked at the start of the next simulated day.
func (e *Engine) enqueueDependents(completed *Subject) {
	for _, s := range e.subjects {
		if after, ok := s.Prerequisite(); ok && after == completed.ID() {
			e.unlockQueue = append(e.unlockQueue, s.ID())
		}
	}
}

// subjectEvents turns Subject notifications into dated Key-Dates.
type subjectEvents struct {
	e *Engine
}

func (ev subjectEvents) SubjectStarted(subj *Subject) {
	if ev.e.verbose {
		ev.e.publishKeyDate(KeyDate{date: ev.e.clock, dateType: DateSubject, boundary: BoundaryStart, subject: subj})
	}
}

func (ev subjectEvents) SubjectCompleted(subj *Subject) {
	ev.e.publishKeyDate(KeyDate{date: ev.e.clock, dateType: DateSubject, boundary: BoundaryEnd, subject: subj})
	ev.e.enqueueDependents(subj)
}

func (ev subjectEvents) SourceStarted(subj *Subject, src *Source) {
	if ev.e.verbose {
		ev.e.publishKeyDate(KeyDate{date: ev.e.clock, dateType: DateSource, boundary: BoundaryStart, subject: subj, source: src})
	}
}

func (ev subjectEvents) SourceCompleted(subj *Subject, src *Source) {
	ev.e.publishKeyDate(KeyDate{date: ev.e.clock, dateType: DateSource, boundary: BoundaryEnd, subject: subj, source: src})
}
