// Package tui is the interactive terminal front end: pick a service, type
// some text, read the result.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dyne/textsvc/internal/service"
)

// MsgNoInput is shown when enter is pressed on a blank input.
const MsgNoInput = "please enter text first"

// Catalogue is what the picker needs from the service registry.
type Catalogue interface {
	Entries() []service.Entry
	Run(key, input string) (string, error)
}

type focus int

const (
	focusInput focus = iota
	focusList
)

type Model struct {
	cat      Catalogue
	styles   *Styles
	entries  []service.Entry
	selected int
	input    textinput.Model
	focus    focus
	result   string
	errMsg   string
	width    int
}

func New(cat Catalogue, s *Styles) *Model {
	if s == nil {
		s = DefaultStyles()
	}
	ti := textinput.New()
	ti.Placeholder = "Enter text..."
	ti.CharLimit = 0
	ti.Width = 50
	ti.Focus()
	return &Model{
		cat:     cat,
		styles:  s,
		entries: cat.Entries(),
		input:   ti,
		width:   80,
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 12; w > 10 {
			m.input.Width = w
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			return m, m.toggleFocus()
		case "up":
			m.move(-1)
			return m, nil
		case "down":
			m.move(1)
			return m, nil
		case "enter":
			m.run()
			return m, nil
		}
		if m.focus == focusList {
			switch msg.String() {
			case "k":
				m.move(-1)
			case "j":
				m.move(1)
			case "q":
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusInput {
		m.focus = focusList
		m.input.Blur()
		return nil
	}
	m.focus = focusInput
	return m.input.Focus()
}

func (m *Model) move(delta int) {
	next := m.selected + delta
	if next >= 0 && next < len(m.entries) {
		m.selected = next
	}
}

func (m *Model) run() {
	m.result, m.errMsg = "", ""
	if len(m.entries) == 0 {
		m.errMsg = "please select a valid service"
		return
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		m.errMsg = MsgNoInput
		return
	}
	out, err := m.cat.Run(m.entries[m.selected].Key, text)
	if err != nil {
		m.errMsg = "please select a valid service: " + err.Error()
		return
	}
	m.result = out
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Text Services"))
	b.WriteString("\n\n")

	for i, e := range m.entries {
		cursor := "  "
		style := m.styles.Item
		if i == m.selected {
			cursor = "> "
			style = m.styles.Selected
		}
		b.WriteString(cursor + style.Render(e.Name) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Label.Render("Input: "))
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.errMsg != "":
		b.WriteString(m.styles.Error.Render(m.errMsg))
		b.WriteString("\n")
	case m.result != "":
		b.WriteString(m.resultBox())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("[up/down] Service  [tab] Focus  [enter] Run  [esc] Quit"))
	return b.String()
}

// resultBox wraps long results so the border stays inside the terminal.
// The border takes one column on each side.
func (m *Model) resultBox() string {
	style := m.styles.Result
	if w := m.width - 2; w > 2 && lipgloss.Width(style.Render(m.result)) > m.width {
		style = style.Width(w)
	}
	return style.Render(m.result)
}

// Selected returns the key of the highlighted service, or "" when the
// catalogue is empty.
func (m *Model) Selected() string {
	if len(m.entries) == 0 {
		return ""
	}
	return m.entries[m.selected].Key
}

// Result returns the output of the last run.
func (m *Model) Result() string { return m.result }

// Run starts the picker on the terminal and blocks until the user quits.
func Run(ctx context.Context, cat Catalogue) error {
	p := tea.NewProgram(New(cat, nil), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
