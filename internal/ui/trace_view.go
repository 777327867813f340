// Package ui renders a live view of a running VM for `vmrun run --ui`:
// a spinner while the program executes plus a scrolling tail of its
// most recent trace lines, styled with lipgloss the way the teacher's
// own build-pipeline progress view (internal/ui/progress.go in
// _examples/vovakirdan-surge) styles file-by-file compile status. This
// version has no stage/file bookkeeping to drive a percentage bar, since
// a VM run is one opcode stream of unknown length rather than a fixed
// set of files moving through fixed stages - so it trades the teacher's
// progress.Model for an indeterminate spinner plus a bounded scrollback.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Event is one update fed into the TUI: either another trace line, or
// the run's final outcome.
type Event struct {
	Line string
	Done bool
	Err  error
}

// maxScrollback bounds how many trace lines View renders, the same role
// trace.Ring plays for the error-path trace dump, but for the live
// display instead of the post-mortem one.
const maxScrollback = 20

type traceModel struct {
	title   string
	events  <-chan Event
	spinner spinner.Model
	lines   []string
	width   int
	done    bool
	err     error
}

type eventMsg Event

// NewTraceModel returns a Bubble Tea model that renders title and a
// live tail of the trace lines sent over events, ending in a done/error
// summary once events closes or sends a Done event.
func NewTraceModel(title string, events <-chan Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	return &traceModel{title: title, events: events, spinner: sp, width: 80}
}

func (m *traceModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m *traceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		if msg.Done {
			m.done = true
			m.err = msg.Err
			return m, tea.Quit
		}
		m.lines = append(m.lines, msg.Line)
		if len(m.lines) > maxScrollback {
			m.lines = m.lines[len(m.lines)-maxScrollback:]
		}
		return m, m.listen()
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		return m, nil
	}
	return m, nil
}

func (m *traceModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	lineStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	var b strings.Builder
	header := m.title
	switch {
	case m.done && m.err != nil:
		header = fmt.Sprintf("error: %s", header)
	case m.done:
		header = fmt.Sprintf("done: %s", header)
	default:
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	for _, line := range m.lines {
		b.WriteString(lineStyle.Render(truncate(line, m.width-2)))
		b.WriteString("\n")
	}
	if m.done && m.err != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *traceModel) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return eventMsg(Event{Done: true})
		}
		return eventMsg(ev)
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
