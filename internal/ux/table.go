package ux

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table is a text-mode result with a header and rows.
type Table struct {
	Headers []string
	Rows    [][]string
	// Footer is printed under the table, e.g. a page count.
	Footer string
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	oddRowStyle  = cellStyle.Foreground(lipgloss.Color("252"))
	evenRowStyle = cellStyle.Foreground(lipgloss.Color("245"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Render writes the table to w. With noColor only padding is applied.
func (t Table) Render(w io.Writer, noColor bool) error {
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(t.Headers...).
		Rows(t.Rows...)

	if noColor {
		tbl = tbl.Border(lipgloss.NormalBorder()).
			StyleFunc(func(row, col int) lipgloss.Style { return cellStyle })
	} else {
		tbl = tbl.BorderStyle(borderStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				case row%2 == 0:
					return evenRowStyle
				default:
					return oddRowStyle
				}
			})
	}

	if _, err := fmt.Fprintln(w, tbl.String()); err != nil {
		return err
	}
	if t.Footer == "" {
		return nil
	}
	footer := t.Footer
	if !noColor {
		footer = footerStyle.Render(footer)
	}
	_, err := fmt.Fprintln(w, footer)
	return err
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
