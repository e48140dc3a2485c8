package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every placement decision and rotation day.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether records should be collected at all.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelDecisions
}

// SimulationTrace collects decision records during one or more trials.
// A trace is owned by a single trial while it runs; Merge combines finished
// traces in trial order.
type SimulationTrace struct {
	Config     TraceConfig
	Placements []PlacementRecord
	Switches   []SwitchRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:     config,
		Placements: make([]PlacementRecord, 0),
		Switches:   make([]SwitchRecord, 0),
	}
}

// RecordPlacement appends a placement decision record.
func (st *SimulationTrace) RecordPlacement(record PlacementRecord) {
	st.Placements = append(st.Placements, record)
}

// RecordSwitch appends a rotation day record.
func (st *SimulationTrace) RecordSwitch(record SwitchRecord) {
	st.Switches = append(st.Switches, record)
}

// Merge appends all records of other. A nil other is ignored.
func (st *SimulationTrace) Merge(other *SimulationTrace) {
	if other == nil {
		return
	}
	st.Placements = append(st.Placements, other.Placements...)
	st.Switches = append(st.Switches, other.Switches...)
}
