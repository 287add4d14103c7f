package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))

type keyMap struct {
	NextChunk key.Binding
	PrevChunk key.Binding
	Top       key.Binding
	Quit      key.Binding
}

var defaultKeys = keyMap{
	NextChunk: key.NewBinding(
		key.WithKeys("n", "tab"),
		key.WithHelp("n", "next chunk"),
	),
	PrevChunk: key.NewBinding(
		key.WithKeys("p", "shift+tab"),
		key.WithHelp("p", "previous chunk"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}

// browser shows the text dump in a scrollable viewport and jumps between
// chunk headers.
type browser struct {
	name       string
	rep        *report
	lines      []string
	chunkLines []int
	chunk      int
	keys       keyMap
	viewport   viewport.Model
	ready      bool
}

func newBrowser(name string, rep *report) *browser {
	lines, chunkLines := renderLines(rep, newStyles(true))
	return &browser{
		name:       name,
		rep:        rep,
		lines:      lines,
		chunkLines: chunkLines,
		chunk:      -1,
		keys:       defaultKeys,
	}
}

func (m *browser) Init() tea.Cmd { return nil }

func (m *browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-2, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.SetContent(strings.Join(m.lines, "\n"))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextChunk):
			m.jump(m.chunk + 1)
			return m, nil
		case key.Matches(msg, m.keys.PrevChunk):
			m.jump(m.chunk - 1)
			return m, nil
		case key.Matches(msg, m.keys.Top):
			m.chunk = -1
			m.viewport.GotoTop()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// jump scrolls so that chunk i's header is the top line.
func (m *browser) jump(i int) {
	if len(m.chunkLines) == 0 {
		return
	}
	i = min(max(i, 0), len(m.chunkLines)-1)
	m.chunk = i
	m.viewport.SetYOffset(m.chunkLines[i])
}

func (m *browser) View() string {
	if !m.ready {
		return "Loading..."
	}
	status := m.name
	if m.chunk >= 0 {
		c := m.rep.Chunks[m.chunk]
		status = fmt.Sprintf("%s  %s at %#x", m.name, c.Label, c.Offset)
	}
	help := helpStyle.Render(helpLine(m.keys.NextChunk, m.keys.PrevChunk, m.keys.Top, m.keys.Quit))
	return m.viewport.View() + "\n" + status + "\n" + help
}

func helpLine(keys ...key.Binding) string {
	parts := make([]string, 0, len(keys)+1)
	for _, b := range keys {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	parts = append(parts, "↑/↓ scroll")
	return strings.Join(parts, " • ")
}

func runInteractive(name string, rep *report) error {
	p := tea.NewProgram(newBrowser(name, rep), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
