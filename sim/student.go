package sim

import "maps"

// Grades lists the grades a student or class can belong to, lowest first.
var Grades = []int{9, 10, 11, 12}

const (
	lowestGrade  = 9
	highestGrade = 12
)

// Student is a member of the simulated population.
//
// Contacts maps another student's ID to the shortest number of rotation-day
// hops observed between the two. A direct co-attendee has degree 1. A student
// never appears in its own contact map.
type Student struct {
	ID       int
	Name     string
	Grade    int
	Classes  []int       // class IDs in assignment order (period 1, then period 2)
	Contacts map[int]int // other student ID -> minimum degree (>= 1)
}

// NewStudent creates a student with an empty contact graph.
func NewStudent(id int, name string, grade int) *Student {
	return &Student{
		ID:       id,
		Name:     name,
		Grade:    grade,
		Classes:  make([]int, 0, 2),
		Contacts: make(map[int]int),
	}
}

// ContactCount returns the number of distinct students this student is
// connected to at any degree.
func (s *Student) ContactCount() int {
	return len(s.Contacts)
}

// AddContacts merges one day of shared attendance with others into the
// contact graph. Each other student becomes a direct (degree 1) contact, and
// every contact they already carry is offered at one degree further away.
// Existing entries only ever move closer.
func (s *Student) AddContacts(others []*Student) {
	for _, other := range others {
		if other.ID == s.ID {
			continue
		}
		s.Contacts[other.ID] = 1

		for id, degree := range other.Contacts {
			if id == s.ID {
				continue
			}
			proposed := degree + 1
			if current, ok := s.Contacts[id]; !ok || proposed < current {
				s.Contacts[id] = proposed
			}
		}
	}
}

// DegreeHistogram counts contacts by degree.
func (s *Student) DegreeHistogram() map[int]int {
	histogram := make(map[int]int)
	for _, degree := range s.Contacts {
		histogram[degree]++
	}
	return histogram
}

// Clone returns a deep copy that shares no memory with s.
func (s *Student) Clone() Student {
	return Student{
		ID:       s.ID,
		Name:     s.Name,
		Grade:    s.Grade,
		Classes:  append([]int(nil), s.Classes...),
		Contacts: maps.Clone(s.Contacts),
	}
}
