// Package trace provides decision-trace recording for class placement and cohort rotation.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// PlacementRecord captures a single class-assignment decision.
type PlacementRecord struct {
	Trial        int
	StudentID    int
	StudentGrade int
	TargetGrade  int // grade after any cross-grade shift
	Period       int
	ClassID      int
	ClassGrade   int
	Cohort       string
	Strategy     string // name of the placement strategy that succeeded
	OverCapacity bool   // class was already at capacity when the student was placed
}

// CrossGrade reports whether the student was placed outside their own grade.
func (r PlacementRecord) CrossGrade() bool {
	return r.ClassGrade != r.StudentGrade
}

// SwitchRecord captures one simulated rotation day.
type SwitchRecord struct {
	Trial           int
	Day             int    // 1-based
	Cohort          string // schedule token, e.g. "1A"
	Classes         int
	Attendees       int
	AverageContacts float64 // population-wide, after the switch
}
