// Aggregates trial results into the two report tables and a run summary.

package sim

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/jaemoore/class-simulation/sim/trace"
)

// Table titles, as printed above each rendered table.
const (
	TitleContactsPerDay   = "Average Contacts per Iteration:"
	TitleDegreePerStudent = "Average Degree per Student:"
)

// Table is an ordered-row report ready for rendering. All values are
// pre-formatted; renderers do no computation.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
}

// ContactsPerDay returns one row per trial with the average contact count
// after each simulated day. There is no cross-trial averaging.
func (r *Results) ContactsPerDay() Table {
	days := len(r.Params.SwitchPlan())
	header := make([]string, 0, days+1)
	header = append(header, "Trial")
	for d := 1; d <= days; d++ {
		header = append(header, fmt.Sprintf("Day: %d", d))
	}

	rows := make([][]string, 0, len(r.Trials))
	for _, t := range r.Trials {
		row := make([]string, 0, len(t.DailyAverages)+1)
		row = append(row, strconv.Itoa(t.Trial+1))
		for _, avg := range t.DailyAverages {
			row = append(row, fmt.Sprintf("%.2f", avg))
		}
		rows = append(rows, row)
	}
	return Table{Title: TitleContactsPerDay, Header: header, Rows: rows}
}

// DegreePerStudent returns, for every student id present in any trial's
// final snapshot, the number of contacts at each degree 1..MaxDegree summed
// over trials and divided by the trial count. Rows are in ascending id order.
func (r *Results) DegreePerStudent() Table {
	maxDegree := r.Params.MaxDegree
	header := make([]string, 0, maxDegree+1)
	header = append(header, "Student")
	for d := 1; d <= maxDegree; d++ {
		header = append(header, fmt.Sprintf("Degree: %d", d))
	}

	averages := r.DegreeAverages()
	rows := make([][]string, 0, len(averages))
	for _, a := range averages {
		row := make([]string, 0, len(a.ByDegree)+1)
		row = append(row, strconv.Itoa(a.StudentID))
		for _, v := range a.ByDegree {
			row = append(row, fmt.Sprintf("%.2f", v))
		}
		rows = append(rows, row)
	}
	return Table{Title: TitleDegreePerStudent, Header: header, Rows: rows}
}

// DegreeAverage is one student's mean contact count per degree.
// ByDegree[d-1] holds degree d, for d in 1..MaxDegree.
type DegreeAverage struct {
	StudentID int
	ByDegree  []float64
}

// DegreeAverages computes the unformatted values behind DegreePerStudent.
// Contacts beyond MaxDegree are not reported.
func (r *Results) DegreeAverages() []DegreeAverage {
	sums := r.degreeSums()
	ids := make([]int, 0, len(sums))
	for id := range sums {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	trials := float64(len(r.Trials))
	averages := make([]DegreeAverage, 0, len(ids))
	for _, id := range ids {
		byDegree := make([]float64, r.Params.MaxDegree)
		for d := 1; d <= r.Params.MaxDegree; d++ {
			byDegree[d-1] = float64(sums[id][d]) / trials
		}
		averages = append(averages, DegreeAverage{StudentID: id, ByDegree: byDegree})
	}
	return averages
}

// degreeSums adds up each student's final degree histogram across trials.
func (r *Results) degreeSums() map[int]map[int]int {
	sums := make(map[int]map[int]int)
	for _, t := range r.Trials {
		if t.Final == nil {
			continue
		}
		for i := range t.Final.Students {
			s := &t.Final.Students[i]
			acc, ok := sums[s.ID]
			if !ok {
				acc = make(map[int]int)
				sums[s.ID] = acc
			}
			for degree, count := range s.DegreeHistogram() {
				acc[degree] += count
			}
		}
	}
	return sums
}

// RunSummary condenses a run for logging and the CLI footer.
type RunSummary struct {
	Trials            int
	Days              int
	MeanFinalContacts float64 // mean over trials of the final-day average
	P50FinalContacts  float64 // median final contact count over every student of every trial
	P90FinalContacts  float64
	Overflows         int
	Trace             *trace.TraceSummary // nil unless tracing is enabled
}

// Summary computes the run summary.
func (r *Results) Summary() RunSummary {
	summary := RunSummary{
		Trials: len(r.Trials),
		Days:   len(r.Params.SwitchPlan()),
	}

	finalAverages := make([]float64, 0, len(r.Trials))
	var counts []int
	for _, t := range r.Trials {
		summary.Overflows += t.Overflows
		if n := len(t.DailyAverages); n > 0 {
			finalAverages = append(finalAverages, t.DailyAverages[n-1])
		}
		if t.Final != nil {
			for i := range t.Final.Students {
				counts = append(counts, t.Final.Students[i].ContactCount())
			}
		}
	}
	summary.MeanFinalContacts = CalculateMean(finalAverages)
	summary.P50FinalContacts = CalculatePercentile(counts, 50)
	summary.P90FinalContacts = CalculatePercentile(counts, 90)

	if r.Trace != nil {
		summary.Trace = trace.Summarize(r.Trace)
	}
	return summary
}
