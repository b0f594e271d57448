package sim

import "time"

// SubjectRecord is one Subject's configured performance in an interval.
type SubjectRecord struct {
	Subject      string
	Performance  float64
	Prerequisite string // empty when the Subject has none
}

// GroupDescription lists the Subjects sharing one pool.
type GroupDescription struct {
	Group   string
	Pool    float64
	Records []SubjectRecord
}

// IntervalDescription is the resolved Training Mode Table for one interval.
// Shared groups appear in order of first appearance among registered Subjects.
type IntervalDescription struct {
	Index  int
	Start  time.Time
	End    time.Time
	Shared []GroupDescription
	Fixed  []SubjectRecord
}

// DescribeIntervals walks the milestones and the Training Mode Table once and
// publishes an IntervalDescriptionMessage per interval. It does not touch the
// simulation state, so it is safe to call before or after Run.
func (e *Engine) DescribeIntervals() ([]IntervalDescription, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	out := make([]IntervalDescription, 0, len(e.milestones)-1)
	for k := 0; k < len(e.milestones)-1; k++ {
		desc := IntervalDescription{
			Index: k,
			Start: e.milestones[k].Date(),
			End:   e.milestones[k+1].Date(),
		}
		groupIdx := make(map[string]int)
		for _, subj := range e.subjects {
			mode := e.modes.At(subj, k)
			rec := SubjectRecord{
				Subject:      subj.Name(),
				Performance:  mode.Rate(),
				Prerequisite: e.prerequisiteName(subj),
			}
			switch m := mode.(type) {
			case Fixed:
				desc.Fixed = append(desc.Fixed, rec)
			case Shared:
				i, ok := groupIdx[m.Group]
				if !ok {
					i = len(desc.Shared)
					groupIdx[m.Group] = i
					desc.Shared = append(desc.Shared, GroupDescription{Group: m.Group})
				}
				desc.Shared[i].Pool += m.Performance
				desc.Shared[i].Records = append(desc.Shared[i].Records, rec)
			}
		}
		out = append(out, desc)
		e.channel.Publish(IntervalDescriptionMessage{Interval: desc})
	}
	return out, nil
}

func (e *Engine) prerequisiteName(subj *Subject) string {
	after, ok := subj.Prerequisite()
	if !ok || int(after) >= len(e.subjects) || after < 0 {
		return ""
	}
	return e.subjects[after].Name()
}
