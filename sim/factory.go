package sim

import "math/rand"

// StudentFactory builds students with ids unique within one trial.
// Each trial owns its own factory; Reset restarts the id sequence at 0.
type StudentFactory struct {
	next  int
	rng   *rand.Rand
	names NameSource
}

// NewStudentFactory creates a factory drawing grades from rng and names from names.
func NewStudentFactory(rng *rand.Rand, names NameSource) *StudentFactory {
	return &StudentFactory{rng: rng, names: names}
}

// Build returns the next student with a uniformly random grade.
func (f *StudentFactory) Build() *Student {
	id := f.next
	f.next++
	return NewStudent(id, f.names.Name(), Grades[f.rng.Intn(len(Grades))])
}

// Reset restarts the id counter.
func (f *StudentFactory) Reset() {
	f.next = 0
}

// ClassFactory builds classes with ids unique within one trial.
type ClassFactory struct {
	next int
	rng  *rand.Rand
}

// NewClassFactory creates a factory drawing unconstrained grades from rng.
func NewClassFactory(rng *rand.Rand) *ClassFactory {
	return &ClassFactory{rng: rng}
}

// Build returns the next class. A nil grade picks one uniformly from Grades.
func (f *ClassFactory) Build(cohort Cohort, period int, grade *int) *Class {
	var g int
	if grade != nil {
		g = *grade
	} else {
		g = Grades[f.rng.Intn(len(Grades))]
	}
	id := f.next
	f.next++
	return &Class{
		ID:       id,
		Grade:    g,
		Cohort:   cohort,
		Period:   period,
		Students: make([]*Student, 0),
	}
}

// Reset restarts the id counter.
func (f *ClassFactory) Reset() {
	f.next = 0
}
