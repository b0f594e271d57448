package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/planner-sim/planner-sim/sim"
)

// ErrVerboseRequired is returned by Gantt.Render when the run did not emit
// start events.
var ErrVerboseRequired = errors.New("gantt diagram requires a verbose run")

type bar struct {
	label string
	start time.Time
	end   time.Time
	done  bool
}

type section struct {
	name string
	bars []*bar
	open map[sim.SourceView]*bar
}

// Gantt builds a mermaid gantt description from Source start/end pairs.
// Sources still open when the run ends are drawn up to the last milestone and
// marked crit. It implements sim.Listener.
type Gantt struct {
	title      string
	sawFlag    bool
	err        error
	milestones []sim.Milestone
	sections   []*section
	bySubject  map[sim.SubjectView]*section
}

// NewGantt returns an empty diagram titled title.
func NewGantt(title string) *Gantt {
	return &Gantt{
		title:     title,
		bySubject: make(map[sim.SubjectView]*section),
	}
}

// OnMessage implements sim.Listener.
func (g *Gantt) OnMessage(msg sim.Message) {
	switch m := msg.(type) {
	case sim.VerboseModeFlagMessage:
		g.sawFlag = true
		if !m.Verbose {
			g.err = ErrVerboseRequired
		}
	case sim.KeyDateMessage:
		g.keyDate(m.KeyDate)
	}
}

func (g *Gantt) keyDate(kd sim.KeyDate) {
	if ms, ok := kd.Milestone(); ok {
		g.milestones = append(g.milestones, ms)
		return
	}
	if kd.Type() != sim.DateSource {
		return
	}
	sec := g.section(kd.Subject())
	src := kd.Source()
	switch {
	case kd.IsStart():
		b := &bar{label: src.Title(), start: kd.Date()}
		sec.bars = append(sec.bars, b)
		sec.open[src] = b
	case kd.IsEnd():
		b, ok := sec.open[src]
		if !ok {
			b = &bar{label: src.Title(), start: kd.Date()}
			sec.bars = append(sec.bars, b)
		}
		b.end = kd.Date()
		b.done = true
		delete(sec.open, src)
	}
}

func (g *Gantt) section(subj sim.SubjectView) *section {
	sec, ok := g.bySubject[subj]
	if !ok {
		sec = &section{name: subj.Name(), open: make(map[sim.SourceView]*bar)}
		g.bySubject[subj] = sec
		g.sections = append(g.sections, sec)
	}
	return sec
}

var labelReplacer = strings.NewReplacer(":", " ", "#", " ", ";", " ")

// Render writes the diagram to w.
func (g *Gantt) Render(w io.Writer) error {
	if g.err != nil {
		return g.err
	}
	if !g.sawFlag {
		return ErrVerboseRequired
	}

	var last time.Time
	if n := len(g.milestones); n > 0 {
		last = g.milestones[n-1].Date()
	}

	var b strings.Builder
	b.WriteString("gantt\n")
	if g.title != "" {
		fmt.Fprintf(&b, "    title %s\n", labelReplacer.Replace(g.title))
	}
	b.WriteString("    dateFormat YYYY-MM-DD\n")
	if len(g.milestones) > 0 {
		b.WriteString("    section Milestones\n")
		for _, m := range g.milestones {
			fmt.Fprintf(&b, "    %s :milestone, %s, 0d\n", labelReplacer.Replace(m.Description()), day(m.Date()))
		}
	}
	for _, sec := range g.sections {
		fmt.Fprintf(&b, "    section %s\n", labelReplacer.Replace(sec.name))
		for _, br := range sec.bars {
			tag, end := "done", br.end
			if !br.done {
				tag, end = "crit", last
			}
			span := day(end)
			if !end.After(br.start) {
				span = "1d"
			}
			fmt.Fprintf(&b, "    %s :%s, %s, %s\n", labelReplacer.Replace(br.label), tag, day(br.start), span)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func day(t time.Time) string { return t.Format(time.DateOnly) }
