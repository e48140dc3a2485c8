package sim

// Cohort labels one of the two alternating groups of classes.
type Cohort string

const (
	CohortA Cohort = "A"
	CohortB Cohort = "B"
)

// Class is a single section taught in one period to one cohort.
// Its intended capacity is SimulationParams.StudentsPerClass; only the
// overflow placement strategy may exceed it.
type Class struct {
	ID       int
	Grade    int
	Cohort   Cohort
	Period   int
	Students []*Student
}

// Size returns the current enrollment.
func (c *Class) Size() int {
	return len(c.Students)
}

// HasRoom reports whether the class is below the given capacity.
func (c *Class) HasRoom(capacity int) bool {
	return c.Size() < capacity
}

// Assign enrolls the student and records the class on the student.
func (c *Class) Assign(s *Student) {
	s.Classes = append(s.Classes, c.ID)
	c.Students = append(c.Students, s)
}
