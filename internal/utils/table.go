// Package utils holds terminal presentation helpers for the CLI.
package utils

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// Table renders rows as aligned columns under a bold header.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &Table{headers: headers, widths: widths}
}

// AddRow appends a row. Missing cells are blank; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	for i, c := range row {
		if w := lipgloss.Width(c); w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// String renders the table; columns are separated by two spaces and the
// header is underlined.
func (t *Table) String() string {
	var sb strings.Builder
	t.writeRow(&sb, t.headers, headerStyle)

	rule := make([]string, len(t.widths))
	for i, w := range t.widths {
		rule[i] = strings.Repeat("─", w)
	}
	sb.WriteString(strings.Join(rule, "  "))
	sb.WriteString("\n")

	for _, row := range t.rows {
		t.writeRow(&sb, row, lipgloss.NewStyle())
	}
	return sb.String()
}

func (t *Table) writeRow(sb *strings.Builder, cells []string, style lipgloss.Style) {
	for i, c := range cells {
		if i > 0 {
			sb.WriteString("  ")
		}
		cell := style.Render(c)
		sb.WriteString(cell)
		if i < len(cells)-1 {
			sb.WriteString(strings.Repeat(" ", t.widths[i]-lipgloss.Width(c)))
		}
	}
	sb.WriteString("\n")
}
