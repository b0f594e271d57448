package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel_Publish_DeliversInSubscriptionOrder(t *testing.T) {
	// GIVEN two listeners subscribed in order
	var ch Channel
	var got []string
	ch.Subscribe(ListenerFunc(func(Message) { got = append(got, "first") }))
	ch.Subscribe(ListenerFunc(func(Message) { got = append(got, "second") }))

	// WHEN a message is published
	ch.Publish(VerboseModeFlagMessage{Verbose: true})

	// THEN both received it synchronously, in order
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestChannel_Publish_WithoutListeners_IsNoOp(t *testing.T) {
	var ch Channel
	assert.NotPanics(t, func() { ch.Publish(KeyDateMessage{}) })
}

func TestKeyDate_String(t *testing.T) {
	subj := NewSubject("Subject1")
	book := NewBook("Book1", 10, "", "")
	require.NoError(t, subj.AddSource(book))
	ms := NewMilestone(Day(2023, time.September, 5), "Start date")

	tests := []struct {
		name string
		kd   KeyDate
		want string
	}{
		{
			name: "milestone",
			kd:   KeyDate{date: ms.Date(), dateType: DateMilestone, milestone: &ms},
			want: "(MILESTONE) Start date: 2023-09-05",
		},
		{
			name: "subject end",
			kd:   KeyDate{date: Day(2024, time.March, 1), dateType: DateSubject, boundary: BoundaryEnd, subject: subj},
			want: "(SUBJECT) Subject1 (END): 2024-03-01",
		},
		{
			name: "source start",
			kd:   KeyDate{date: Day(2024, time.January, 2), dateType: DateSource, boundary: BoundaryStart, subject: subj, source: book},
			want: "(ED_SOURCE) (Subject1) (BOOK) Book1 (START): 2024-01-02",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.kd.String())
		})
	}
}

func TestKeyDate_Milestone_OnlyForMilestones(t *testing.T) {
	ms := NewMilestone(Day(2024, time.January, 1), "M")
	m, ok := KeyDate{dateType: DateMilestone, milestone: &ms}.Milestone()
	assert.True(t, ok)
	assert.Equal(t, "M", m.Description())

	_, ok = KeyDate{dateType: DateSubject}.Milestone()
	assert.False(t, ok)
}

func TestNewMilestone_TruncatesToCivilDay(t *testing.T) {
	at := time.Date(2024, time.May, 3, 17, 45, 0, 0, time.UTC)
	assert.Equal(t, Day(2024, time.May, 3), NewMilestone(at, "x").Date())
}

func TestDateType_String(t *testing.T) {
	assert.Equal(t, "MILESTONE", DateMilestone.String())
	assert.Equal(t, "SUBJECT", DateSubject.String())
	assert.Equal(t, "ED_SOURCE", DateSource.String())
}

func TestModes_SharedGroupDefaults(t *testing.T) {
	assert.Equal(t, DefaultGroup, NewShared(3).Group)
	assert.Equal(t, DefaultGroup, NewSharedIn(3, "").Group)
	assert.Equal(t, "evening", NewSharedIn(3, "evening").Group)

	// A zero-value Shared in the table is read back with the default group.
	s := NewSubject("S")
	tm := TrainingModes{s: {Shared{Performance: 2}}}
	got, ok := tm.At(s, 0).(Shared)
	require.True(t, ok)
	assert.Equal(t, DefaultGroup, got.Group)
	assert.Equal(t, 2.0, got.Rate())
}

func TestModes_SharedGroups_PoolIncludesFinishedMembers(t *testing.T) {
	a := NewSubject("A")
	b := NewSubject("B")
	c := NewSubject("C")
	a.completed = true
	tm := TrainingModes{
		a: {NewShared(5)},
		b: {NewShared(5)},
		c: {NewFixed(10)},
	}

	groups := tm.sharedGroups([]*Subject{a, b, c}, 0)

	require.Len(t, groups, 1)
	assert.Equal(t, 10.0, groups[0].pool)
	assert.Equal(t, []*Subject{b}, groups[0].eligible())
}

// twoBookPlan is a 10 + 2 unit subject at a fixed 10/day over two days.
func twoBookPlan(t *testing.T) *Engine {
	t.Helper()
	s := subjectWith(t, "S", NewBook("B1", 10, "", ""), NewBook("B2", 2, "", ""))
	e := NewEngine(TrainingModes{s: {NewFixed(10)}})
	addMilestones(e, Day(2024, time.January, 1), Day(2024, time.January, 3))
	register(t, e, s)
	return e
}

func TestEngine_Run_ListenerCannotReachLiveState(t *testing.T) {
	// GIVEN a listener that tries to turn the second book into a fixed-time task
	e := twoBookPlan(t)
	var sawSubject, sawSource bool
	e.Subscribe(ListenerFunc(func(m Message) {
		kd, ok := m.(KeyDateMessage)
		if !ok || kd.KeyDate.Type() != DateSource {
			return
		}
		if s, ok := kd.KeyDate.Subject().(*Subject); ok {
			sawSubject = true
			s.Sources()[1].kind = KindFixedTime
		}
		if src, ok := kd.KeyDate.Source().(*Source); ok {
			sawSource = true
			src.kind = KindFixedTime
		}
	}))

	// WHEN simulated
	ok, err := e.Run(RunOptions{Verbose: true})

	// THEN the payloads are views and the outcome is unchanged
	require.NoError(t, err)
	assert.False(t, sawSubject)
	assert.False(t, sawSource)
	assert.True(t, ok)
	assert.Equal(t, KindBook, e.Subjects()[0].Sources()[1].Kind())
}

func TestKeyDate_Views_ReflectStateAndCompareEqual(t *testing.T) {
	e := twoBookPlan(t)
	c := &collector{}
	e.Subscribe(c)
	_, err := e.Run(RunOptions{Verbose: true})
	require.NoError(t, err)

	var starts, ends []KeyDate
	for _, kd := range c.keyDates() {
		if kd.Type() != DateSource {
			continue
		}
		if kd.IsStart() {
			starts = append(starts, kd)
		} else {
			ends = append(ends, kd)
		}
	}
	require.Len(t, starts, 2)
	require.Len(t, ends, 2)

	// The same Source yields equal views, so listeners can key maps by them.
	assert.Equal(t, starts[0].Source(), ends[0].Source())
	assert.NotEqual(t, starts[0].Source(), starts[1].Source())
	assert.Equal(t, starts[0].Subject(), ends[1].Subject())

	src := ends[1].Source()
	assert.Equal(t, "B2", src.Title())
	assert.Equal(t, "tasks", src.Unit())
	assert.Equal(t, "(BOOK) B2", src.Describe())
	assert.True(t, src.Completed())
	assert.Equal(t, 2.0, src.Progressed())
	subj := ends[1].Subject()
	assert.True(t, subj.Started())
	assert.True(t, subj.Completed())
	assert.False(t, subj.Locked())

	ms := c.keyDates()[0]
	assert.Nil(t, ms.Subject())
	assert.Nil(t, ms.Source())
}
