package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/git-auto-commit/internal/llm"
	"github.com/gerunddev/git-auto-commit/internal/review"
)

// generatedMsg carries the result of the background generation call.
type generatedMsg struct {
	result *llm.Result
	err    error
}

// spinnerModel shows a spinner while fn runs. Esc and Ctrl-C cancel the call.
type spinnerModel struct {
	keys    KeyMap
	label   string
	spinner spinner.Model
	run     tea.Cmd
	cancel  context.CancelFunc

	finished  bool
	cancelled bool
	result    *llm.Result
	err       error
}

func newSpinnerModel(ctx context.Context, keys KeyMap, label string, fn review.GenerateFunc) spinnerModel {
	ctx, cancel := context.WithCancel(ctx)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = infoStyle

	return spinnerModel{
		keys:    keys,
		label:   label,
		spinner: sp,
		cancel:  cancel,
		run: func() tea.Msg {
			res, err := fn(ctx)
			return generatedMsg{result: res, err: err}
		},
	}
}

// Init implements tea.Model.
func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

// Update implements tea.Model.
func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case generatedMsg:
		m.finished = true
		m.result, m.err = msg.result, msg.err
		m.cancel()
		return m, tea.Quit
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Cancel) {
			m.cancelled = true
			m.cancel()
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model. The line disappears once the call returns.
func (m spinnerModel) View() string {
	if m.finished {
		return ""
	}
	if m.cancelled {
		return infoStyle.Render(m.label) + " ^C\n"
	}
	return m.spinner.View() + " " + infoStyle.Render(m.label)
}

// outcome returns what the call produced.
func (m spinnerModel) outcome() (*llm.Result, error) {
	if m.cancelled || !m.finished {
		return nil, review.ErrCancelled
	}
	return m.result, m.err
}
