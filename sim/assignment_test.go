package sim

import (
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaemoore/class-simulation/sim/trace"
)

// newTestGroups builds both cohort groups of a period with one class per listed grade.
func newTestGroups(period int, gradesA, gradesB []int) [2]*CohortGroup {
	f := NewClassFactory(rand.New(rand.NewSource(1)))
	build := func(cohort Cohort, grades []int) *CohortGroup {
		classes := make([]*Class, 0, len(grades))
		for _, g := range grades {
			grade := g
			classes = append(classes, f.Build(cohort, period, &grade))
		}
		return NewCohortGroup(period, cohort, classes)
	}
	return [2]*CohortGroup{build(CohortA, gradesA), build(CohortB, gradesB)}
}

// fill enrolls n placeholder students into the class.
func fill(c *Class, n int) {
	for i := 0; i < n; i++ {
		c.Assign(NewStudent(1000+i, "filler", c.Grade))
	}
}

func TestRandomProbe_FindsRoomInTargetGrade(t *testing.T) {
	// GIVEN cohort A with a full and an empty grade 10 class
	groups := newTestGroups(1, []int{10, 10, 11}, []int{10})
	full := groups[0].Classes[0]
	fill(full, 2)
	probe := NewRandomProbe(50, 2, rand.New(rand.NewSource(4)))

	// WHEN a grade 10 student is probed into cohort A
	c := probe.Place(&PlacementRequest{Student: NewStudent(0, "s", 10), Groups: groups, Chosen: 0, TargetGrade: 10})

	// THEN the open grade 10 class is chosen
	require.NotNil(t, c)
	assert.Same(t, groups[0].Classes[1], c)
}

func TestRandomProbe_DefersWhenNoAttempts(t *testing.T) {
	groups := newTestGroups(1, []int{10}, []int{10})
	probe := NewRandomProbe(0, 5, rand.New(rand.NewSource(4)))
	assert.Nil(t, probe.Place(&PlacementRequest{Groups: groups, TargetGrade: 10}))
}

func TestRandomProbe_DefersWhenGradeMissing(t *testing.T) {
	groups := newTestGroups(1, []int{9}, []int{9})
	probe := NewRandomProbe(10, 5, rand.New(rand.NewSource(4)))
	assert.Nil(t, probe.Place(&PlacementRequest{Groups: groups, TargetGrade: 12}))
}

func TestSameGradeScan_CohortOrderThenListOrder(t *testing.T) {
	// GIVEN every grade 11 class in cohort A is full
	groups := newTestGroups(2, []int{11, 9}, []int{9, 11, 11})
	fill(groups[0].Classes[0], 1)
	scan := &SameGradeScan{Capacity: 1}

	// WHEN scanning for grade 11 from cohort A
	c := scan.Place(&PlacementRequest{Groups: groups, Chosen: 0, TargetGrade: 11})

	// THEN the first grade 11 class of cohort B is returned
	require.NotNil(t, c)
	assert.Same(t, groups[1].Classes[1], c)
}

func TestSameGradeScan_AllFull(t *testing.T) {
	groups := newTestGroups(1, []int{12}, []int{12})
	fill(groups[0].Classes[0], 1)
	fill(groups[1].Classes[0], 1)
	scan := &SameGradeScan{Capacity: 1}
	assert.Nil(t, scan.Place(&PlacementRequest{Groups: groups, TargetGrade: 12}))
}

func TestAnyGradeScan_FirstOpenClassOfAnyGrade(t *testing.T) {
	// GIVEN only a grade 9 class in cohort B has room
	groups := newTestGroups(1, []int{10, 12}, []int{11, 9})
	for _, g := range groups {
		for _, c := range g.Classes {
			if c.Grade != 9 {
				fill(c, 1)
			}
		}
	}
	scan := &AnyGradeScan{Capacity: 1}

	// WHEN a grade 12 student needs a seat
	c := scan.Place(&PlacementRequest{Groups: groups, TargetGrade: 12})

	// THEN the grade 9 class is used
	require.NotNil(t, c)
	assert.Equal(t, 9, c.Grade)
}

func TestOverflow_UsesTargetGradeInChosenCohort(t *testing.T) {
	// GIVEN every class is full
	groups := newTestGroups(1, []int{9, 10, 10}, []int{10})
	for _, g := range groups {
		for _, c := range g.Classes {
			fill(c, 1)
		}
	}
	o := NewOverflow(rand.New(rand.NewSource(2)))

	// WHEN a student shifted to grade 10 overflows in cohort A
	c := o.Place(&PlacementRequest{Groups: groups, Chosen: 0, TargetGrade: 10})

	// THEN a cohort A grade 10 class is returned
	require.NotNil(t, c)
	assert.Equal(t, 10, c.Grade)
	assert.Equal(t, CohortA, c.Cohort)
}

func TestOverflow_FallsBackToAnyClassOfCohort(t *testing.T) {
	groups := newTestGroups(1, []int{9}, []int{12})
	o := NewOverflow(rand.New(rand.NewSource(2)))
	c := o.Place(&PlacementRequest{Groups: groups, Chosen: 1, TargetGrade: 10})
	require.NotNil(t, c)
	assert.Same(t, groups[1].Classes[0], c)
}

func TestAssigner_NoCrossingKeepsGrade(t *testing.T) {
	// GIVEN no grade crossing and plenty of room
	p := newTestParams(t)
	p.OutsideGradeProbability = map[int]float64{9: 0, 10: 0, 11: 0, 12: 0}
	groups := newTestGroups(1, []int{9, 10, 11, 12}, []int{9, 10, 11, 12})
	a := NewAssigner(p, rand.New(rand.NewSource(11)))

	// WHEN students of every grade are assigned
	for i, g := range []int{9, 10, 11, 12, 9, 10, 11, 12} {
		s := NewStudent(i, "s", g)
		placement := a.Assign(s, groups)

		// THEN each sits in a class of its own grade, found by the probe
		assert.Equal(t, g, placement.Class.Grade)
		assert.Equal(t, StrategyRandomProbe, placement.Strategy)
		assert.False(t, placement.OverCapacity)
		assert.Equal(t, []int{placement.Class.ID}, s.Classes)
	}
	assert.Zero(t, a.Overflows())
}

func TestAssigner_CertainCrossingMovesToNeighbourGrade(t *testing.T) {
	p := newTestParams(t)
	p.OutsideGradeProbability = map[int]float64{9: 1, 10: 1, 11: 1, 12: 1}
	groups := newTestGroups(1, []int{9, 10, 11, 12}, []int{9, 10, 11, 12})
	a := NewAssigner(p, rand.New(rand.NewSource(5)))

	assert.Equal(t, 10, a.Assign(NewStudent(0, "s", 9), groups).TargetGrade)
	assert.Equal(t, 11, a.Assign(NewStudent(1, "s", 12), groups).TargetGrade)
	for i := 0; i < 20; i++ {
		target := a.Assign(NewStudent(2+i, "s", 11), groups).TargetGrade
		assert.Contains(t, []int{10, 12}, target)
	}
}

func TestAssigner_OverflowCountedAndTraced(t *testing.T) {
	// GIVEN capacity 1 and a single class per cohort
	p := newTestParams(t)
	p.StudentsPerClass = 1
	p.OutsideGradeProbability = map[int]float64{9: 0, 10: 0, 11: 0, 12: 0}
	groups := newTestGroups(1, []int{9}, []int{9})
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	a := NewAssigner(p, rand.New(rand.NewSource(1))).WithTrace(st, 4)
	hook := logtest.NewGlobal()
	defer logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))

	// WHEN three grade 9 students are assigned
	var placements []Placement
	for i := 0; i < 3; i++ {
		placements = append(placements, a.Assign(NewStudent(i, "s", 9), groups))
	}

	// THEN the third overflows, and the trace records every decision
	assert.False(t, placements[0].OverCapacity)
	assert.False(t, placements[1].OverCapacity)
	assert.True(t, placements[2].OverCapacity)
	assert.Equal(t, StrategyOverflow, placements[2].Strategy)
	assert.Equal(t, 1, a.Overflows())
	require.Len(t, st.Placements, 3)
	assert.Equal(t, 4, st.Placements[0].Trial)
	assert.True(t, st.Placements[2].OverCapacity)

	// AND the overflow is logged as a single warning
	var warnings []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings = append(warnings, e)
		}
	}
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "over capacity")
}

type refuseAll struct{}

func (refuseAll) Name() string { return "refuse" }
func (refuseAll) Place(*PlacementRequest) *Class { return nil }

func TestAssigner_PanicsWhenChainNeverPlaces(t *testing.T) {
	p := newTestParams(t)
	groups := newTestGroups(1, []int{9}, []int{9})
	a := NewAssignerWithChain(p, rand.New(rand.NewSource(1)), []PlacementStrategy{refuseAll{}})
	assert.Panics(t, func() { a.Assign(NewStudent(0, "s", 9), groups) })
}
