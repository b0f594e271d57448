package plan

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/planner-sim/planner-sim/sim"
)

// PlanSpec is the top-level plan configuration.
// Loaded from YAML via LoadPlanSpec(path).
type PlanSpec struct {
	Version    string          `yaml:"version"`
	Name       string          `yaml:"name,omitempty"`
	Milestones []MilestoneSpec `yaml:"milestones"`
	Subjects   []SubjectSpec   `yaml:"subjects"`
}

// MilestoneSpec is one dated marker of the timeline.
type MilestoneSpec struct {
	Date        Date   `yaml:"date"`
	Description string `yaml:"description"`
}

// SubjectSpec defines a Subject, its Sources in study order and one mode per interval.
type SubjectSpec struct {
	Name    string       `yaml:"name"`
	After   string       `yaml:"after,omitempty"` // prerequisite subject name
	Sources []SourceSpec `yaml:"sources"`
	Modes   []ModeSpec   `yaml:"modes"`
}

// SourceSpec defines a book, a video or a fixed-time task.
type SourceSpec struct {
	Kind   string  `yaml:"kind"`
	Title  string  `yaml:"title"`
	Author string  `yaml:"author,omitempty"`
	Unit   string  `yaml:"unit,omitempty"`
	Total  float64 `yaml:"total,omitempty"` // book and video only
	Days   int     `yaml:"days,omitempty"`  // fixed-time only
}

// ModeSpec is a Subject's allocation policy for one interval.
type ModeSpec struct {
	Mode  string `yaml:"mode"`
	Rate  Rate   `yaml:"rate"`
	Group string `yaml:"group,omitempty"` // shared only; empty = default group
}

// Rate is a performance in units per day. YAML accepts plain numbers and
// fractions such as "1/7".
type Rate float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Rate) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: rate must be a number or a fraction", node.Line)
	}
	v, err := ParseRate(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*r = Rate(v)
	return nil
}

// ParseRate parses "2.5" or "1/7".
func ParseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	num, den, isFraction := strings.Cut(s, "/")
	if !isFraction {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid rate %q", s)
		}
		return v, nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rate numerator in %q", s)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rate denominator in %q", s)
	}
	if d == 0 {
		return 0, fmt.Errorf("rate %q divides by zero", s)
	}
	return n / d, nil
}

// Date is a civil day written as YYYY-MM-DD.
type Date struct {
	time.Time
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(node.Value))
	if err != nil {
		return fmt.Errorf("line %d: date must be YYYY-MM-DD, got %q", node.Line, node.Value)
	}
	d.Time = t
	return nil
}

// Mode names.
const (
	ModeShared = "shared"
	ModeFixed  = "fixed"
)

// Valid value registries.
var (
	validModes = map[string]bool{
		ModeShared: true, ModeFixed: true,
	}
	validVersions = map[string]bool{
		"": true, "1": true,
	}
)

// LoadPlanSpec reads and parses a YAML plan file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadPlanSpec(path string) (*PlanSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	spec, err := ParsePlanSpec(data)
	if err != nil {
		return nil, err
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return spec, nil
}

// ParsePlanSpec parses a YAML plan from memory with strict field checking.
func ParsePlanSpec(data []byte) (*PlanSpec, error) {
	var spec PlanSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	if spec.Version == "" {
		logrus.Debugf("plan has no version; assuming \"1\"")
		spec.Version = "1"
	}
	return &spec, nil
}

// Validate checks that all fields in the plan are valid. Cross-checks that
// need the built Engine (interval counts against milestones) are left to the
// Engine's own validation.
func (s *PlanSpec) Validate() error {
	if !validVersions[s.Version] {
		return fmt.Errorf("unknown version %q; valid: 1", s.Version)
	}
	for i, m := range s.Milestones {
		if m.Date.IsZero() {
			return fmt.Errorf("milestones[%d]: date is required", i)
		}
	}
	seen := make(map[string]int, len(s.Subjects))
	for i, subj := range s.Subjects {
		prefix := fmt.Sprintf("subjects[%d]", i)
		if subj.Name == "" {
			return fmt.Errorf("%s: name is required", prefix)
		}
		if j, dup := seen[subj.Name]; dup {
			return fmt.Errorf("%s: duplicate subject name %q (also subjects[%d])", prefix, subj.Name, j)
		}
		if subj.After != "" {
			if subj.After == subj.Name {
				return fmt.Errorf("%s: subject %q cannot start after itself", prefix, subj.Name)
			}
			if _, ok := seen[subj.After]; !ok {
				return fmt.Errorf("%s: after %q must name a subject listed earlier", prefix, subj.After)
			}
		}
		seen[subj.Name] = i
		if err := validateSubject(&subj, prefix); err != nil {
			return err
		}
	}
	return nil
}

func validateSubject(subj *SubjectSpec, prefix string) error {
	if len(subj.Sources) == 0 {
		return fmt.Errorf("%s: at least one source required", prefix)
	}
	titles := make(map[string]bool, len(subj.Sources))
	for j, src := range subj.Sources {
		p := fmt.Sprintf("%s.sources[%d]", prefix, j)
		if err := validateSource(&src, p); err != nil {
			return err
		}
		if titles[src.Title] {
			return fmt.Errorf("%s: duplicate source title %q", p, src.Title)
		}
		titles[src.Title] = true
	}
	for k, m := range subj.Modes {
		if err := validateMode(&m, fmt.Sprintf("%s.modes[%d]", prefix, k)); err != nil {
			return err
		}
	}
	return nil
}

func validateSource(src *SourceSpec, prefix string) error {
	if !sim.IsValidSourceKind(src.Kind) {
		return fmt.Errorf("%s: unknown kind %q; valid: book, video, fixed-time", prefix, src.Kind)
	}
	if src.Title == "" {
		return fmt.Errorf("%s: title is required", prefix)
	}
	if sim.SourceKind(src.Kind) == sim.KindFixedTime {
		if src.Days <= 0 {
			return fmt.Errorf("%s: days must be positive, got %d", prefix, src.Days)
		}
		if src.Total != 0 {
			return fmt.Errorf("%s: fixed-time sources use days, not total", prefix)
		}
		return nil
	}
	if src.Days != 0 {
		return fmt.Errorf("%s: days is only valid for fixed-time sources", prefix)
	}
	if err := validateFinitePositive(prefix+".total", src.Total); err != nil {
		return err
	}
	return nil
}

func validateMode(m *ModeSpec, prefix string) error {
	if !validModes[m.Mode] {
		return fmt.Errorf("%s: unknown mode %q; valid: shared, fixed", prefix, m.Mode)
	}
	if m.Mode == ModeFixed && m.Group != "" {
		return fmt.Errorf("%s: group is only valid for shared mode", prefix)
	}
	r := float64(m.Rate)
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return fmt.Errorf("%s.rate must be a finite non-negative number, got %f", prefix, r)
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}
