package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalPlacements      int
	CrossGradeCount      int
	OverCapacityCount    int
	TotalSwitches        int
	PeakAverageContacts  float64
	StrategyDistribution map[string]int // strategy name → placements it made
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		StrategyDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalPlacements = len(st.Placements)
	for _, p := range st.Placements {
		summary.StrategyDistribution[p.Strategy]++
		if p.CrossGrade() {
			summary.CrossGradeCount++
		}
		if p.OverCapacity {
			summary.OverCapacityCount++
		}
	}

	summary.TotalSwitches = len(st.Switches)
	for _, s := range st.Switches {
		if s.AverageContacts > summary.PeakAverageContacts {
			summary.PeakAverageContacts = s.AverageContacts
		}
	}

	return summary
}
