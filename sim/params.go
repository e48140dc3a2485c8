package sim

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultNumberOfCohorts is the only supported cohort count (A and B).
const DefaultNumberOfCohorts = 2

// SimulationParams is the full configuration of a run.
// Construct it with NewSimulationParams or LoadSimulationParams so that it is
// defaulted and validated; treat it as read-only afterwards.
type SimulationParams struct {
	TotalStudents           int             `yaml:"total_students" validate:"gt=0"`
	StudentsPerClass        int             `yaml:"students_per_class" validate:"gt=0"`
	CohortSwitches          int             `yaml:"cohort_switches" validate:"gte=0"`
	ClassSizeFudge          float64         `yaml:"class_size_fudge" validate:"gt=1"`
	ClassAssignmentRetry    int             `yaml:"class_assignment_retry" validate:"gte=0"`
	OutsideGradeProbability map[int]float64 `yaml:"outside_grade_probability" validate:"required,dive,keys,oneof=9 10 11 12,endkeys,gte=0,lte=1"`
	Iterations              int             `yaml:"iterations" validate:"gt=0"`
	MaxDegree               int             `yaml:"max_degree" validate:"gt=0"`
	Schedule                []CohortKey     `yaml:"schedule" validate:"dive,oneof=1A 1B 2A 2B"`
	PercentageInClass       float64         `yaml:"percentage_in_class" validate:"gt=0,lte=1"`
	NumberOfCohorts         int             `yaml:"number_of_cohorts,omitempty" validate:"eq=2"`
	Seed                    int64           `yaml:"seed"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their YAML names so errors match the config file.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NewSimulationParams applies defaults to p and validates it.
func NewSimulationParams(p SimulationParams) (*SimulationParams, error) {
	if p.NumberOfCohorts == 0 {
		p.NumberOfCohorts = DefaultNumberOfCohorts
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadSimulationParams reads a YAML parameter file, applies defaults and validates it.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadSimulationParams(path string) (*SimulationParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading simulation params: %w", err)
	}
	p, err := DecodeSimulationParams(data)
	if err != nil {
		return nil, err
	}
	return NewSimulationParams(*p)
}

// DecodeSimulationParams strictly decodes YAML without defaulting or validating.
// Callers that layer overrides on top (the CLI) validate afterwards.
func DecodeSimulationParams(data []byte) (*SimulationParams, error) {
	var p SimulationParams
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing simulation params: %w", err)
	}
	return &p, nil
}

// Validate checks field ranges and that every grade has a crossing probability.
func (p *SimulationParams) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid simulation params: %s = %v violates %s",
				fe.Namespace(), fe.Value(), strings.TrimSpace(fe.Tag()+" "+fe.Param()))
		}
		return fmt.Errorf("invalid simulation params: %w", err)
	}
	for _, g := range Grades {
		if _, ok := p.OutsideGradeProbability[g]; !ok {
			return fmt.Errorf("invalid simulation params: outside_grade_probability missing grade %d", g)
		}
	}
	return nil
}

// Classes is the number of classes needed across all cohorts of one period.
func (p *SimulationParams) Classes() int {
	return int(math.Ceil(float64(p.TotalStudents) / float64(p.StudentsPerClass) * p.ClassSizeFudge))
}

// Students is the number of students physically attending, and so simulated.
func (p *SimulationParams) Students() int {
	return int(math.Ceil(float64(p.TotalStudents) * p.PercentageInClass))
}

// ClassesPerCohort is the number of classes built for each (period, cohort) group.
func (p *SimulationParams) ClassesPerCohort() int {
	cohorts := p.NumberOfCohorts
	if cohorts <= 0 {
		cohorts = DefaultNumberOfCohorts
	}
	return int(math.Ceil(float64(p.Classes()) / float64(cohorts)))
}

// SwitchPlan returns the cohort keys consumed by one trial, in order.
// The schedule is tiled when it is shorter than CohortSwitches; an empty
// schedule yields no switches.
func (p *SimulationParams) SwitchPlan() []CohortKey {
	n := len(p.Schedule)
	if n == 0 || p.CohortSwitches <= 0 {
		return nil
	}
	repeats := (p.CohortSwitches + n - 1) / n
	plan := make([]CohortKey, 0, repeats*n)
	for i := 0; i < repeats; i++ {
		plan = append(plan, p.Schedule...)
	}
	return plan[:p.CohortSwitches]
}

// Metadata returns every configuration field as a (name, value) row, in
// declaration order, for the report headers.
func (p *SimulationParams) Metadata() [][]string {
	return [][]string{
		{"total_students", strconv.Itoa(p.TotalStudents)},
		{"students_per_class", strconv.Itoa(p.StudentsPerClass)},
		{"cohort_switches", strconv.Itoa(p.CohortSwitches)},
		{"class_size_fudge", formatFloat(p.ClassSizeFudge)},
		{"class_assignment_retry", strconv.Itoa(p.ClassAssignmentRetry)},
		{"outside_grade_probability", formatGradeProbability(p.OutsideGradeProbability)},
		{"iterations", strconv.Itoa(p.Iterations)},
		{"max_degree", strconv.Itoa(p.MaxDegree)},
		{"schedule", formatSchedule(p.Schedule)},
		{"percentage_in_class", formatFloat(p.PercentageInClass)},
		{"number_of_cohorts", strconv.Itoa(p.NumberOfCohorts)},
		{"seed", strconv.FormatInt(p.Seed, 10)},
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatGradeProbability(m map[int]float64) string {
	grades := make([]int, 0, len(m))
	for g := range m {
		grades = append(grades, g)
	}
	sort.Ints(grades)
	parts := make([]string, len(grades))
	for i, g := range grades {
		parts[i] = fmt.Sprintf("%d: %s", g, formatFloat(m[g]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func formatSchedule(schedule []CohortKey) string {
	parts := make([]string, len(schedule))
	for i, k := range schedule {
		parts[i] = string(k)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
