package sim

import "github.com/sirupsen/logrus"

// SchedulerState tracks a Scheduler through one trial.
type SchedulerState int

const (
	SchedulerPending  SchedulerState = iota // built, no switch taken yet
	SchedulerDraining                       // at least one switch taken, queue not empty
	SchedulerDone                           // queue empty
)

func (s SchedulerState) String() string {
	switch s {
	case SchedulerPending:
		return "pending"
	case SchedulerDraining:
		return "draining"
	case SchedulerDone:
		return "done"
	default:
		return "unknown"
	}
}

// DayObserver is called after every switch with the 1-based day, the group
// that convened and the live population. It must not retain students.
type DayObserver func(day int, group *CohortGroup, students []*Student)

// Scheduler drains a FIFO queue of cohort groups, one group per simulated day.
type Scheduler struct {
	queue    []*CohortGroup
	students []*Student
	state    SchedulerState
	day      int
}

// NewScheduler creates a scheduler over the population and switch queue.
// An empty queue starts (and stays) Done.
func NewScheduler(students []*Student, queue []*CohortGroup) *Scheduler {
	s := &Scheduler{
		queue:    append([]*CohortGroup(nil), queue...),
		students: students,
		state:    SchedulerPending,
	}
	if len(s.queue) == 0 {
		s.state = SchedulerDone
	}
	return s
}

// State returns the current state.
func (s *Scheduler) State() SchedulerState {
	return s.state
}

// Day returns how many switches have been taken.
func (s *Scheduler) Day() int {
	return s.day
}

// Remaining returns how many switches are left in the queue.
func (s *Scheduler) Remaining() int {
	return len(s.queue)
}

// Switch convenes the next cohort group: every student in every class
// gains every classmate as a contact. Returns the group, or nil once the
// queue is empty.
func (s *Scheduler) Switch() *CohortGroup {
	if len(s.queue) == 0 {
		s.state = SchedulerDone
		return nil
	}
	group := s.queue[0]
	s.queue = s.queue[1:]
	s.day++

	logrus.Debugf("switching to cohort %s (day %d)", group.Key, s.day)
	for _, c := range group.Classes {
		for _, student := range c.Students {
			// AddContacts skips the student itself.
			student.AddContacts(c.Students)
		}
	}

	if len(s.queue) == 0 {
		s.state = SchedulerDone
	} else {
		s.state = SchedulerDraining
	}
	return group
}

// Drain takes switches until the queue is empty, calling observe (if non-nil)
// after each one.
func (s *Scheduler) Drain(observe DayObserver) {
	for {
		group := s.Switch()
		if group == nil {
			return
		}
		if observe != nil {
			observe(s.day, group, s.students)
		}
	}
}

// Iterate drains the queue and returns a deep snapshot of the population
// taken after every switch, in day order.
func (s *Scheduler) Iterate() []Snapshot {
	snapshots := make([]Snapshot, 0, len(s.queue))
	s.Drain(func(day int, _ *CohortGroup, students []*Student) {
		snapshots = append(snapshots, TakeSnapshot(day, students))
	})
	return snapshots
}
