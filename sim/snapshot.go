package sim

// Snapshot is a value-isolated copy of the whole population after one day.
// Later mutation of live students never changes a Snapshot.
type Snapshot struct {
	Day      int
	Students []Student
}

// TakeSnapshot deep-copies the population.
func TakeSnapshot(day int, students []*Student) Snapshot {
	copied := make([]Student, len(students))
	for i, s := range students {
		copied[i] = s.Clone()
	}
	return Snapshot{Day: day, Students: copied}
}

// AverageContacts returns the mean contact count over the snapshot (0 if empty).
func (s Snapshot) AverageContacts() float64 {
	counts := make([]int, len(s.Students))
	for i := range s.Students {
		counts[i] = s.Students[i].ContactCount()
	}
	return CalculateMean(counts)
}

// AverageContacts returns the mean contact count over live students (0 if empty).
func AverageContacts(students []*Student) float64 {
	counts := make([]int, len(students))
	for i, s := range students {
		counts[i] = s.ContactCount()
	}
	return CalculateMean(counts)
}
