// Package report renders aggregated simulation tables to the terminal and
// writes them as CSV files.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sirupsen/logrus"

	"github.com/jaemoore/class-simulation/sim"
)

// Output file names written by WriteAll.
const (
	ContactsPerDayFile   = "average_contacts.csv"
	DegreePerStudentFile = "average_degree_per_student.csv"
)

// MetadataTitle heads the configuration block of every report.
const MetadataTitle = "Metadata:"

var (
	colorAccent = lipgloss.Color("#20B9B4")
	colorBorder = lipgloss.Color("#16858E")
	colorMuted  = lipgloss.Color("#2C4A54")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	keyStyle    = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
)

// Render writes the metadata block followed by the titled data table.
func Render(w io.Writer, metadata [][]string, t sim.Table) error {
	meta := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 0 {
				return keyStyle
			}
			return cellStyle
		}).
		Rows(metadata...)

	data := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(t.Header...).
		Rows(t.Rows...)

	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n%s\n\n",
		titleStyle.Render(MetadataTitle), meta.String(),
		titleStyle.Render(t.Title), data.String())
	return err
}

// WriteCSV writes a "Metadata:" row, one row per configuration field, an
// empty row, then the table header and rows.
func WriteCSV(path string, metadata [][]string, t sim.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := EncodeCSV(f, metadata, t); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// EncodeCSV is WriteCSV on an arbitrary writer.
func EncodeCSV(w io.Writer, metadata [][]string, t sim.Table) error {
	cw := csv.NewWriter(w)
	records := make([][]string, 0, len(metadata)+len(t.Rows)+3)
	records = append(records, []string{MetadataTitle})
	records = append(records, metadata...)
	records = append(records, []string{})
	records = append(records, t.Header)
	records = append(records, t.Rows...)
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

// WriteAll renders both tables of a run to w and writes them as CSV files
// into dir, which is created if missing.
func WriteAll(w io.Writer, dir string, results *sim.Results) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	metadata := results.Params.Metadata()
	outputs := []struct {
		file  string
		table sim.Table
	}{
		{ContactsPerDayFile, results.ContactsPerDay()},
		{DegreePerStudentFile, results.DegreePerStudent()},
	}
	for _, out := range outputs {
		if err := Render(w, metadata, out.table); err != nil {
			return fmt.Errorf("rendering %q: %w", out.table.Title, err)
		}
		path := filepath.Join(dir, out.file)
		if err := WriteCSV(path, metadata, out.table); err != nil {
			return err
		}
		logrus.Infof("wrote %s", path)
	}
	return nil
}
