// Package plan loads study plans from YAML and builds a ready-to-run sim.Engine.
// It holds no scheduling logic of its own.
package plan

import (
	"fmt"

	"github.com/planner-sim/planner-sim/sim"
)

// Build validates the plan and returns an Engine with every Subject registered
// in file order and every Milestone added. Prerequisites are wired by name.
func (s *PlanSpec) Build() (*sim.Engine, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	modes := make(sim.TrainingModes, len(s.Subjects))
	subjects := make([]*sim.Subject, 0, len(s.Subjects))
	for i := range s.Subjects {
		subj, err := buildSubject(&s.Subjects[i])
		if err != nil {
			return nil, fmt.Errorf("subjects[%d]: %w", i, err)
		}
		modes[subj] = buildModes(s.Subjects[i].Modes)
		subjects = append(subjects, subj)
	}

	engine := sim.NewEngine(modes)
	for _, m := range s.Milestones {
		engine.AddMilestone(sim.NewMilestone(m.Date.Time, m.Description))
	}

	ids := make(map[string]sim.SubjectID, len(subjects))
	for i, subj := range subjects {
		if after := s.Subjects[i].After; after != "" {
			subj.StartAfter(ids[after])
		}
		id, err := engine.AddSubject(subj)
		if err != nil {
			return nil, fmt.Errorf("subjects[%d]: %w", i, err)
		}
		ids[subj.Name()] = id
	}
	return engine, nil
}

func buildSubject(spec *SubjectSpec) (*sim.Subject, error) {
	subj := sim.NewSubject(spec.Name)
	for _, src := range spec.Sources {
		if err := subj.AddSource(buildSource(src)); err != nil {
			return nil, err
		}
	}
	return subj, nil
}

func buildSource(spec SourceSpec) *sim.Source {
	switch sim.SourceKind(spec.Kind) {
	case sim.KindVideo:
		return sim.NewVideo(spec.Title, spec.Total, spec.Author, spec.Unit)
	case sim.KindFixedTime:
		return sim.NewFixedTimeTask(spec.Title, spec.Days)
	default:
		return sim.NewBook(spec.Title, spec.Total, spec.Author, spec.Unit)
	}
}

func buildModes(specs []ModeSpec) []sim.Mode {
	modes := make([]sim.Mode, 0, len(specs))
	for _, m := range specs {
		if m.Mode == ModeFixed {
			modes = append(modes, sim.NewFixed(float64(m.Rate)))
			continue
		}
		modes = append(modes, sim.NewSharedIn(float64(m.Rate), m.Group))
	}
	return modes
}
