package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/planner-sim/planner-sim/sim"
)

// View prints every Key-Date on its own line and a block per interval
// description. It implements sim.Listener.
type View struct {
	w      io.Writer
	styles styles
}

// NewView returns a View writing to w. Color is applied only when color is true.
func NewView(w io.Writer, color bool) *View {
	return &View{w: w, styles: newStyles(w, color)}
}

// OnMessage implements sim.Listener.
func (v *View) OnMessage(msg sim.Message) {
	switch m := msg.(type) {
	case sim.KeyDateMessage:
		v.keyDate(m.KeyDate)
	case sim.IntervalDescriptionMessage:
		v.interval(m.Interval)
	}
}

func (v *View) keyDate(kd sim.KeyDate) {
	line := kd.String()
	switch {
	case kd.IsMilestone():
		line = v.styles.render(v.styles.milestone, line)
	case kd.IsEnd():
		line = v.styles.render(v.styles.end, line)
	case kd.IsStart():
		line = v.styles.render(v.styles.start, line)
	}
	fmt.Fprintln(v.w, line)
}

func (v *View) interval(iv sim.IntervalDescription) {
	header := fmt.Sprintf("*** %s - %s ***", iv.Start.Format(time.DateOnly), iv.End.Format(time.DateOnly))
	fmt.Fprintln(v.w, v.styles.render(v.styles.header, header))

	fmt.Fprintln(v.w, "Subjects with shared training performance:")
	for _, g := range iv.Shared {
		if len(iv.Shared) > 1 || g.Group != sim.DefaultGroup {
			label := fmt.Sprintf("  group %s (pool %s elem. task/day)", g.Group, formatRate(g.Pool))
			fmt.Fprintln(v.w, v.styles.render(v.styles.group, label))
		}
		v.records(g.Records)
	}
	fmt.Fprintln(v.w, "Subjects with fixed training performance:")
	v.records(iv.Fixed)
}

func (v *View) records(records []sim.SubjectRecord) {
	for _, r := range records {
		line := fmt.Sprintf("\t%s: %s elem. task/day", r.Subject, formatRate(r.Performance))
		if r.Prerequisite != "" {
			line += " " + v.styles.render(v.styles.warn, "(after "+r.Prerequisite+")")
		}
		fmt.Fprintln(v.w, line)
	}
}

// formatRate prints the shortest representation, e.g. "5" or "0.14285714285714285".
func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
