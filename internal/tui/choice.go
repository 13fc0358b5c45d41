package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/git-auto-commit/internal/review"
	"github.com/gerunddev/git-auto-commit/internal/session"
)

// option is one answer of a single-key prompt.
type option struct {
	label   string // first rune is the shortcut, e.g. "YES" renders as [Y]ES
	binding key.Binding
	value   int
}

// choiceModel asks for a single keypress among options. Enter selects the
// first option; Esc and Ctrl-C cancel.
type choiceModel struct {
	keys      KeyMap
	options   []option
	chosen    int
	cancelled bool
}

func newChoiceModel(keys KeyMap, options []option) choiceModel {
	return choiceModel{keys: keys, options: options, chosen: -1}
}

// menuOptions returns the review menu for format. Only the format toggle
// that applies is offered.
func menuOptions(keys KeyMap, format session.Format) []option {
	toggle := option{label: "long", binding: keys.Long, value: int(review.ToggleFormat)}
	if format == session.MultiLine {
		toggle = option{label: "short", binding: keys.Short, value: int(review.ToggleFormat)}
	}
	return []option{
		{label: "YES", binding: keys.Yes, value: int(review.Accept)},
		{label: "no", binding: keys.No, value: int(review.Abort)},
		{label: "reroll", binding: keys.Reroll, value: int(review.Reroll)},
		toggle,
		{label: "edit", binding: keys.Edit, value: int(review.Edit)},
		{label: "prompt", binding: keys.Prompt, value: int(review.AddPrompt)},
	}
}

// confirmOptions returns the large diff prompt; value 1 means continue.
func confirmOptions(keys KeyMap) []option {
	return []option{
		{label: "continue", binding: keys.Continue, value: 1},
		{label: "abort", binding: keys.Abort, value: 0},
	}
}

// Init implements tea.Model.
func (m choiceModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m choiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.done() {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Default):
		m.chosen = 0
		return m, tea.Quit
	}
	for i, o := range m.options {
		if key.Matches(keyMsg, o.binding) {
			m.chosen = i
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m choiceModel) done() bool {
	return m.cancelled || m.chosen >= 0
}

// value returns the chosen option's value.
func (m choiceModel) value() (int, error) {
	if m.cancelled || m.chosen < 0 {
		return 0, review.ErrCancelled
	}
	return m.options[m.chosen].value, nil
}

// View implements tea.Model.
func (m choiceModel) View() string {
	var b strings.Builder
	b.WriteString(m.promptText())
	b.WriteString(" ? ")
	switch {
	case m.cancelled:
		b.WriteString("^C\n")
	case m.chosen >= 0:
		b.WriteString(shortcut(m.options[m.chosen].label))
		b.WriteString("\n")
	}
	return b.String()
}

// promptText renders "[Y]ES/[n]o/..." with the shortcut letters styled.
func (m choiceModel) promptText() string {
	parts := make([]string, len(m.options))
	for i, o := range m.options {
		first, size := utf8.DecodeRuneInString(o.label)
		parts[i] = "[" + menuKeyStyle.Render(string(first)) + "]" + o.label[size:]
	}
	return strings.Join(parts, "/")
}

// shortcut returns the lowercase shortcut letter of label.
func shortcut(label string) string {
	first, _ := utf8.DecodeRuneInString(label)
	return strings.ToLower(string(first))
}
