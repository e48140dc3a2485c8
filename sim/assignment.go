package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/jaemoore/class-simulation/sim/trace"
)

// Placement strategy names, as recorded in traces.
const (
	StrategyRandomProbe   = "random-probe"
	StrategySameGradeScan = "same-grade-scan"
	StrategyAnyGradeScan  = "any-grade-scan"
	StrategyOverflow      = "overflow"
)

// PlacementRequest describes one student being placed in one period.
type PlacementRequest struct {
	Student     *Student
	Groups      [2]*CohortGroup // the two cohort groups of the period, in cohort order
	Chosen      int             // index into Groups picked for this student
	TargetGrade int             // student grade after any cross-grade shift
}

// ChosenGroup returns the cohort group the student was randomly sent to.
func (r *PlacementRequest) ChosenGroup() *CohortGroup {
	return r.Groups[r.Chosen]
}

// PlacementStrategy proposes a class for a request, or nil to defer to the
// next strategy in the chain. Strategies never mutate classes.
type PlacementStrategy interface {
	Name() string
	Place(req *PlacementRequest) *Class
}

// RandomProbe samples classes of the target grade in the chosen cohort,
// accepting the first one with room.
type RandomProbe struct {
	Attempts int
	Capacity int
	rng      *rand.Rand
}

// NewRandomProbe creates a probe making up to attempts random draws.
func NewRandomProbe(attempts, capacity int, rng *rand.Rand) *RandomProbe {
	return &RandomProbe{Attempts: attempts, Capacity: capacity, rng: rng}
}

func (p *RandomProbe) Name() string { return StrategyRandomProbe }

func (p *RandomProbe) Place(req *PlacementRequest) *Class {
	classes := req.ChosenGroup().Index.Grade(req.TargetGrade)
	if len(classes) == 0 {
		return nil
	}
	for i := 0; i < p.Attempts; i++ {
		c := classes[p.rng.Intn(len(classes))]
		if c.HasRoom(p.Capacity) {
			return c
		}
	}
	return nil
}

// SameGradeScan walks the target grade's classes in both cohorts of the
// period, in cohort order then list order.
type SameGradeScan struct {
	Capacity int
}

func (s *SameGradeScan) Name() string { return StrategySameGradeScan }

func (s *SameGradeScan) Place(req *PlacementRequest) *Class {
	for _, g := range req.Groups {
		for _, c := range g.Index.Grade(req.TargetGrade) {
			if c.HasRoom(s.Capacity) {
				return c
			}
		}
	}
	return nil
}

// AnyGradeScan walks every class of the period: cohort order, then grade
// first-seen order, then list order.
type AnyGradeScan struct {
	Capacity int
}

func (s *AnyGradeScan) Name() string { return StrategyAnyGradeScan }

func (s *AnyGradeScan) Place(req *PlacementRequest) *Class {
	for _, g := range req.Groups {
		for _, grade := range g.Index.Grades() {
			for _, c := range g.Index.Grade(grade) {
				if c.HasRoom(s.Capacity) {
					return c
				}
			}
		}
	}
	return nil
}

// Overflow places the student in a random class of the target grade in the
// chosen cohort regardless of capacity. It uses the shifted target grade,
// so a cross-grade decision is honored even here.
type Overflow struct {
	rng *rand.Rand
}

// NewOverflow creates the last-resort strategy.
func NewOverflow(rng *rand.Rand) *Overflow {
	return &Overflow{rng: rng}
}

func (o *Overflow) Name() string { return StrategyOverflow }

func (o *Overflow) Place(req *PlacementRequest) *Class {
	classes := req.ChosenGroup().Index.Grade(req.TargetGrade)
	if len(classes) == 0 {
		classes = req.ChosenGroup().Classes
	}
	if len(classes) == 0 {
		return nil
	}
	return classes[o.rng.Intn(len(classes))]
}

// DefaultPlacementChain returns the strategies tried for every placement, in order.
func DefaultPlacementChain(p *SimulationParams, rng *rand.Rand) []PlacementStrategy {
	return []PlacementStrategy{
		NewRandomProbe(p.ClassAssignmentRetry, p.StudentsPerClass, rng),
		&SameGradeScan{Capacity: p.StudentsPerClass},
		&AnyGradeScan{Capacity: p.StudentsPerClass},
		NewOverflow(rng),
	}
}

// Placement is the outcome of assigning one student in one period.
type Placement struct {
	Class        *Class
	Strategy     string
	TargetGrade  int
	OverCapacity bool
}

// Assigner places students into classes for one trial.
//
// Thread-safety: NOT thread-safe; owned by a single trial.
type Assigner struct {
	params    *SimulationParams
	rng       *rand.Rand
	chain     []PlacementStrategy
	trace     *trace.SimulationTrace
	trial     int
	overflows int
}

// NewAssigner creates an assigner using DefaultPlacementChain.
func NewAssigner(params *SimulationParams, rng *rand.Rand) *Assigner {
	return NewAssignerWithChain(params, rng, DefaultPlacementChain(params, rng))
}

// NewAssignerWithChain creates an assigner with a custom strategy chain.
// The chain should end with a strategy that always places (Overflow).
func NewAssignerWithChain(params *SimulationParams, rng *rand.Rand, chain []PlacementStrategy) *Assigner {
	return &Assigner{params: params, rng: rng, chain: chain}
}

// WithTrace records every placement into st under the given trial index.
func (a *Assigner) WithTrace(st *trace.SimulationTrace, trial int) *Assigner {
	a.trace = st
	a.trial = trial
	return a
}

// Overflows returns how many placements exceeded class capacity so far.
func (a *Assigner) Overflows() int {
	return a.overflows
}

// Assign places the student into exactly one class of the period described by groups.
func (a *Assigner) Assign(s *Student, groups [2]*CohortGroup) Placement {
	chosen := 1
	if a.rng.Float64() < 0.5 {
		chosen = 0
	}
	req := &PlacementRequest{
		Student:     s,
		Groups:      groups,
		Chosen:      chosen,
		TargetGrade: a.targetGrade(s.Grade),
	}

	for _, strategy := range a.chain {
		c := strategy.Place(req)
		if c == nil {
			continue
		}
		over := !c.HasRoom(a.params.StudentsPerClass)
		if over {
			a.overflows++
			logrus.Warnf("class %d (grade %d, %s) will be over capacity: %d students, capacity %d",
				c.ID, c.Grade, NewCohortKey(c.Period, c.Cohort), c.Size()+1, a.params.StudentsPerClass)
		}
		c.Assign(s)
		a.record(req, c, strategy.Name(), over)
		return Placement{Class: c, Strategy: strategy.Name(), TargetGrade: req.TargetGrade, OverCapacity: over}
	}
	panic(fmt.Sprintf("no placement strategy placed student %d; chain must end with %q", s.ID, StrategyOverflow))
}

// targetGrade applies the cross-grade draw. Grade 9 can only move up and
// grade 12 only down; others move either way with equal odds.
func (a *Assigner) targetGrade(grade int) int {
	if a.rng.Float64() >= a.params.OutsideGradeProbability[grade] {
		return grade
	}
	switch grade {
	case lowestGrade:
		return grade + 1
	case highestGrade:
		return grade - 1
	default:
		if a.rng.Float64() <= 0.5 {
			return grade - 1
		}
		return grade + 1
	}
}

func (a *Assigner) record(req *PlacementRequest, c *Class, strategy string, over bool) {
	if a.trace == nil {
		return
	}
	a.trace.RecordPlacement(trace.PlacementRecord{
		Trial:        a.trial,
		StudentID:    req.Student.ID,
		StudentGrade: req.Student.Grade,
		TargetGrade:  req.TargetGrade,
		Period:       c.Period,
		ClassID:      c.ID,
		ClassGrade:   c.Grade,
		Cohort:       string(c.Cohort),
		Strategy:     strategy,
		OverCapacity: over,
	})
}
