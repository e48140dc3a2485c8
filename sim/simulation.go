package sim

import (
	"context"
	"math/rand"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jaemoore/class-simulation/sim/trace"
)

// Simulation runs independent trials of class assignment and cohort rotation.
type Simulation struct {
	Params *SimulationParams
	RNG    *PartitionedRNG

	workers     int
	retain      bool
	traceConfig trace.TraceConfig
	newNames    func(*rand.Rand) NameSource
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithWorkers runs up to n trials concurrently. Values below 1 mean 1.
// Results do not depend on n.
func WithWorkers(n int) Option {
	return func(s *Simulation) {
		if n < 1 {
			n = 1
		}
		s.workers = n
	}
}

// WithRetainSnapshots keeps every daily snapshot of every trial instead of
// only the final one. Memory grows with trials × days × students × contacts.
func WithRetainSnapshots(retain bool) Option {
	return func(s *Simulation) { s.retain = retain }
}

// WithTrace records placement and rotation decisions.
func WithTrace(config trace.TraceConfig) Option {
	return func(s *Simulation) { s.traceConfig = config }
}

// WithNameSource overrides how student names are generated.
func WithNameSource(newNames func(*rand.Rand) NameSource) Option {
	return func(s *Simulation) { s.newNames = newNames }
}

// NewSimulation creates a simulation over already-validated params.
// All randomness derives from params.Seed.
func NewSimulation(params *SimulationParams, opts ...Option) *Simulation {
	s := &Simulation{
		Params:   params,
		RNG:      NewPartitionedRNG(NewSimulationKey(params.Seed)),
		workers:  1,
		newNames: func(rng *rand.Rand) NameSource { return NewFakerNames(rng) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Trial holds the fully set-up state of one trial, ready to drain.
type Trial struct {
	Index     int
	Students  []*Student
	Groups    map[CohortKey]*CohortGroup
	Plan      []CohortKey
	Assigner  *Assigner
	Scheduler *Scheduler
	Trace     *trace.SimulationTrace // nil unless tracing is enabled
}

// Setup builds a fresh population and class structure for the given trial,
// assigns every student to one class per period and queues the switches.
func (s *Simulation) Setup(index int) *Trial {
	rng := s.RNG.ForTrial(index)
	p := s.Params

	popRNG := rng.ForSubsystem(SubsystemPopulation)
	students := NewStudentFactory(popRNG, s.newNames(popRNG))
	classes := NewClassFactory(rng.ForSubsystem(SubsystemClasses))
	students.Reset()
	classes.Reset()

	t := &Trial{
		Index:    index,
		Students: make([]*Student, 0, p.Students()),
		Groups:   make(map[CohortKey]*CohortGroup, 4),
		Plan:     p.SwitchPlan(),
	}
	for i := 0; i < p.Students(); i++ {
		t.Students = append(t.Students, students.Build())
	}

	for _, period := range []int{1, 2} {
		for _, cohort := range []Cohort{CohortA, CohortB} {
			group := NewCohortGroup(period, cohort, s.buildClasses(classes, cohort, period))
			t.Groups[group.Key] = group
		}
	}

	t.Assigner = NewAssigner(p, rng.ForSubsystem(SubsystemAssignment))
	if s.traceConfig.Enabled() {
		t.Trace = trace.NewSimulationTrace(s.traceConfig)
		t.Assigner.WithTrace(t.Trace, index)
	}
	for _, period := range []int{1, 2} {
		groups := [2]*CohortGroup{t.Groups[NewCohortKey(period, CohortA)], t.Groups[NewCohortKey(period, CohortB)]}
		for _, student := range t.Students {
			t.Assigner.Assign(student, groups)
		}
	}

	queue := make([]*CohortGroup, len(t.Plan))
	for i, key := range t.Plan {
		queue[i] = t.Groups[key]
	}
	t.Scheduler = NewScheduler(t.Students, queue)

	logrus.Debugf("trial %d setup done: %d students, %d classes per cohort, %d switches, %d overflows",
		index, len(t.Students), p.ClassesPerCohort(), len(queue), t.Assigner.Overflows())
	return t
}

// buildClasses creates one class per grade followed by grade-unconstrained
// classes up to the per-cohort target.
func (s *Simulation) buildClasses(f *ClassFactory, cohort Cohort, period int) []*Class {
	classes := make([]*Class, 0, max(s.Params.ClassesPerCohort(), len(Grades)))
	for _, g := range Grades {
		grade := g
		classes = append(classes, f.Build(cohort, period, &grade))
	}
	for i := 0; i < s.Params.ClassesPerCohort()-len(Grades); i++ {
		classes = append(classes, f.Build(cohort, period, nil))
	}
	return classes
}

// TrialResult is what a finished trial contributes to the reports.
type TrialResult struct {
	Trial         int
	DailyAverages []float64  // average contact count after each day
	Final         *Snapshot  // population after the last day; nil when no switches ran
	Snapshots     []Snapshot // every day, only with WithRetainSnapshots
	Overflows     int        // over-capacity placements during setup
	Trace         *trace.SimulationTrace
}

// RunTrial sets up and drains one trial.
func (s *Simulation) RunTrial(index int) *TrialResult {
	t := s.Setup(index)
	result := &TrialResult{
		Trial:         index,
		DailyAverages: make([]float64, 0, len(t.Plan)),
		Overflows:     t.Assigner.Overflows(),
		Trace:         t.Trace,
	}

	t.Scheduler.Drain(func(day int, group *CohortGroup, students []*Student) {
		avg := AverageContacts(students)
		result.DailyAverages = append(result.DailyAverages, avg)
		if s.retain {
			result.Snapshots = append(result.Snapshots, TakeSnapshot(day, students))
		}
		if t.Trace != nil {
			attendees := 0
			for _, c := range group.Classes {
				attendees += c.Size()
			}
			t.Trace.RecordSwitch(trace.SwitchRecord{
				Trial:           index,
				Day:             day,
				Cohort:          string(group.Key),
				Classes:         len(group.Classes),
				Attendees:       attendees,
				AverageContacts: avg,
			})
		}
	})

	if t.Scheduler.Day() > 0 {
		if s.retain {
			result.Final = &result.Snapshots[len(result.Snapshots)-1]
		} else {
			final := TakeSnapshot(t.Scheduler.Day(), t.Students)
			result.Final = &final
		}
	}
	return result
}

// Results holds every trial of a run in trial order.
type Results struct {
	Params *SimulationParams
	Trials []*TrialResult
	Trace  *trace.SimulationTrace // merged in trial order; nil unless tracing is enabled
}

// Simulate runs Params.Iterations independent trials. Cancelling ctx stops
// further trials from starting and returns ctx.Err().
func (s *Simulation) Simulate(ctx context.Context) (*Results, error) {
	n := s.Params.Iterations
	trials := make([]*TrialResult, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trials[i] = s.RunTrial(i)
			logrus.Infof("Finished iteration %d", i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := &Results{Params: s.Params, Trials: trials}
	if s.traceConfig.Enabled() {
		results.Trace = trace.NewSimulationTrace(s.traceConfig)
		for _, t := range trials {
			results.Trace.Merge(t.Trace)
		}
	}
	return results, nil
}
