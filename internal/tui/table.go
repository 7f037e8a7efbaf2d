package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pscapp/psc/internal/ux"
)

const (
	maxColumnWidth = 48
	defaultHeight  = 12
	// chrome is the lines taken by the title, frame and help.
	chrome = 7
)

type keyMap struct {
	Quit   key.Binding
	Select key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
}

// TableModel is a scrollable, selectable view over a ux.Table.
type TableModel struct {
	title    string
	footer   string
	table    table.Model
	styles   Styles
	selected []string
	quitting bool
}

// NewTableModel builds the viewer. Column widths fit the widest cell up
// to a cap.
func NewTableModel(title string, data ux.Table) TableModel {
	styles := DefaultStyles()

	t := table.New(
		table.WithColumns(columns(data)),
		table.WithRows(rows(data)),
		table.WithFocused(true),
		table.WithHeight(min(defaultHeight, max(len(data.Rows), 1))),
	)
	t.SetStyles(styles.Table)

	return TableModel{
		title:  title,
		footer: data.Footer,
		table:  t,
		styles: styles,
	}
}

func columns(data ux.Table) []table.Column {
	cols := make([]table.Column, len(data.Headers))
	for i, h := range data.Headers {
		width := lipgloss.Width(h)
		for _, row := range data.Rows {
			if i < len(row) {
				width = max(width, lipgloss.Width(row[i]))
			}
		}
		cols[i] = table.Column{Title: h, Width: min(width, maxColumnWidth)}
	}
	return cols
}

func rows(data ux.Table) []table.Row {
	out := make([]table.Row, len(data.Rows))
	for i, r := range data.Rows {
		row := make(table.Row, len(data.Headers))
		copy(row, r)
		out[i] = row
	}
	return out
}

// Init initializes the model (required by Bubble Tea)
func (m TableModel) Init() tea.Cmd {
	return nil
}

// Update handles messages (required by Bubble Tea)
func (m TableModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Select):
			m.selected = m.table.SelectedRow()
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-chrome, 1))
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the viewer (required by Bubble Tea)
func (m TableModel) View() string {
	if m.quitting {
		return ""
	}

	help := fmt.Sprintf("↑/↓ move • %s %s • %s %s",
		keys.Select.Help().Key, keys.Select.Help().Desc,
		keys.Quit.Help().Key, keys.Quit.Help().Desc)
	if m.footer != "" {
		help = m.footer + " • " + help
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render(m.title),
		m.styles.Frame.Render(m.table.View()),
		m.styles.Help.Render(help),
	)
}

// Selected returns the row chosen with enter, or nil.
func (m TableModel) Selected() []string {
	return m.selected
}

// Cursor returns the highlighted row index.
func (m TableModel) Cursor() int {
	return m.table.Cursor()
}

// RunTable shows data until the user quits and returns the selected row.
func RunTable(title string, data ux.Table) ([]string, error) {
	final, err := tea.NewProgram(NewTableModel(title, data)).Run()
	if err != nil {
		return nil, fmt.Errorf("table viewer failed: %w", err)
	}
	return final.(TableModel).Selected(), nil
}
