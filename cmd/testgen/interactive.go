package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unbound-force/testgen/internal/report"
	"github.com/unbound-force/testgen/internal/testmodel"
)

// keyMap defines keybindings for the interactive TUI.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Quit     key.Binding
	Help     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Top, k.Bottom},
		{k.Quit, k.Help},
	}
}

var defaultKeyMap = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("^/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("v/j", "down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
	Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// Styles for the TUI.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	tuiHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	tuiBorderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))

	nestedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
)

// listModel is the Bubble Tea model for browsing a discovered suite.
type listModel struct {
	listed   []listedClass
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	ready    bool
	content  string
}

func newListModel(listed []listedClass) listModel {
	return listModel{
		listed:  listed,
		help:    help.New(),
		keys:    defaultKeyMap,
		content: renderListContent(listed),
	}
}

func renderListContent(listed []listedClass) string {
	var sb strings.Builder

	cases := 0
	for _, lc := range listed {
		for _, rc := range lc.Models {
			cases += rc.CaseCount()
		}
	}

	sb.WriteString(titleStyle.Render(
		fmt.Sprintf("testgen suite: %d class(es), %d test case(s)",
			len(listed), cases)))
	sb.WriteString("\n\n")

	for _, lc := range listed {
		sb.WriteString(tuiHeaderStyle.Render(fmt.Sprintf("=== %s ===", lc.Class)))
		sb.WriteString("\n")
		sb.WriteString(statusStyle.Render(fmt.Sprintf("    %s", lc.Path)))
		sb.WriteString("\n")

		for _, rc := range lc.Models {
			writeResolvedTable(&sb, rc, "")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// writeResolvedTable renders the cases of rc as a table, then each
// nested class under its dotted path.
func writeResolvedTable(sb *strings.Builder, rc *testmodel.ResolvedClass, parent string) {
	name := rc.Name
	if parent != "" {
		name = parent + "." + rc.Name
	}
	sb.WriteString(nestedStyle.Render(fmt.Sprintf("    %s  %s", name, rc.Root)))
	sb.WriteString("\n")

	if len(rc.Cases) == 0 {
		if len(rc.Inner) == 0 {
			sb.WriteString(statusStyle.Render("    No test cases discovered."))
			sb.WriteString("\n")
		}
	} else {
		rows := make([][]string, 0, len(rc.Cases))
		for _, tc := range rc.Cases {
			rows = append(rows, []string{tc.MethodName, report.Shorten(tc.RelPath, 50)})
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(tuiBorderStyle).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return tuiHeaderStyle
				}
				return lipgloss.NewStyle()
			}).
			Headers("METHOD", "TEST DATA").
			Rows(rows...)

		sb.WriteString(t.String())
		sb.WriteString("\n")
	}

	for _, in := range rc.Inner {
		writeResolvedTable(sb, in, name)
	}
}

func (m listModel) Init() tea.Cmd {
	return nil
}

func (m listModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		footerHeight := 2

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-footerHeight)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - footerHeight
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Top):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m listModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	footer := statusStyle.Render(
		fmt.Sprintf(" %3.f%% ", m.viewport.ScrollPercent()*100)) +
		" " + m.help.View(m.keys)

	return m.viewport.View() + "\n" + footer
}

// runInteractiveList launches the Bubble Tea TUI for browsing the
// discovered suite.
func runInteractiveList(listed []listedClass) error {
	p := tea.NewProgram(newListModel(listed), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
