package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderTable draws CSV rows as a bordered table: first row is the header,
// the rest are data rows. Ragged rows are padded with empty cells.
func renderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	trimmed := make([][]string, len(rows))
	for r, row := range rows {
		trimmed[r] = make([]string, cols)
		for i := 0; i < cols; i++ {
			if i < len(row) {
				trimmed[r][i] = strings.TrimSpace(row[i])
			}
		}
	}
	rows = trimmed

	widths := make([]int, cols)
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	pad := func(cell string, i int) string {
		return cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
	}

	var b strings.Builder
	for r, row := range rows {
		cells := make([]string, cols)
		for i, cell := range row {
			if r == 0 {
				cells[i] = tableHeaderStyle.Render(pad(cell, i))
			} else {
				cells[i] = tableCellStyle.Render(pad(cell, i))
			}
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		if r < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
