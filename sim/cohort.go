package sim

import (
	"fmt"
	"strconv"
)

// CohortKey names one (period, cohort) group, e.g. "1A" or "2B".
// Schedules are ordered sequences of CohortKeys.
type CohortKey string

// ValidCohortKeys lists the recognized schedule tokens.
var ValidCohortKeys = []CohortKey{"1A", "1B", "2A", "2B"}

// NewCohortKey builds the key for a period and cohort.
func NewCohortKey(period int, cohort Cohort) CohortKey {
	return CohortKey(strconv.Itoa(period) + string(cohort))
}

// ParseCohortKey splits a schedule token into its period and cohort.
func ParseCohortKey(token string) (int, Cohort, error) {
	for _, k := range ValidCohortKeys {
		if string(k) == token {
			return int(token[0] - '0'), Cohort(token[1:]), nil
		}
	}
	return 0, "", fmt.Errorf("unknown cohort %q; valid: 1A, 1B, 2A, 2B", token)
}

// GradeIndex groups a cohort's classes by grade.
// Grades are kept in first-seen order so scans over "any grade" are
// deterministic and match the order classes were built in.
type GradeIndex struct {
	grades  []int
	byGrade map[int][]*Class
}

// NewGradeIndex indexes classes by grade, preserving list order within a grade.
func NewGradeIndex(classes []*Class) *GradeIndex {
	idx := &GradeIndex{byGrade: make(map[int][]*Class)}
	for _, c := range classes {
		if _, ok := idx.byGrade[c.Grade]; !ok {
			idx.grades = append(idx.grades, c.Grade)
		}
		idx.byGrade[c.Grade] = append(idx.byGrade[c.Grade], c)
	}
	return idx
}

// Grade returns the classes of one grade (nil if none).
func (g *GradeIndex) Grade(grade int) []*Class {
	return g.byGrade[grade]
}

// Grades returns grades in first-seen order.
func (g *GradeIndex) Grades() []int {
	return g.grades
}

// CohortGroup is every class of one cohort in one period.
type CohortGroup struct {
	Key     CohortKey
	Period  int
	Cohort  Cohort
	Classes []*Class
	Index   *GradeIndex
}

// NewCohortGroup wraps classes with their grade index.
func NewCohortGroup(period int, cohort Cohort, classes []*Class) *CohortGroup {
	return &CohortGroup{
		Key:     NewCohortKey(period, cohort),
		Period:  period,
		Cohort:  cohort,
		Classes: classes,
		Index:   NewGradeIndex(classes),
	}
}
