package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/git-auto-commit/internal/review"
)

// lineModel edits one line of text. Enter accepts; Esc and Ctrl-C cancel.
type lineModel struct {
	keys      KeyMap
	input     textinput.Model
	submitted bool
	cancelled bool
}

func newLineModel(keys KeyMap, prompt, initial string) lineModel {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.SetValue(initial)
	ti.CursorEnd()
	ti.Focus()
	return lineModel{keys: keys, input: ti}
}

// Init implements tea.Model.
func (m lineModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m lineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.submitted || m.cancelled {
		return m, nil
	}
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(keyMsg, m.keys.Default):
			m.submitted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m lineModel) View() string {
	switch {
	case m.cancelled:
		return m.input.Prompt + "^C\n"
	case m.submitted:
		return m.input.Prompt + m.input.Value() + "\n"
	}
	return m.input.View()
}

// result returns the edited text.
func (m lineModel) result() (string, error) {
	if !m.submitted {
		return "", review.ErrCancelled
	}
	return m.input.Value(), nil
}
