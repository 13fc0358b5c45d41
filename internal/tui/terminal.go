package tui

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/gerunddev/git-auto-commit/internal/llm"
	"github.com/gerunddev/git-auto-commit/internal/review"
	"github.com/gerunddev/git-auto-commit/internal/session"
)

// TextEditor edits multi-line text in an external program.
type TextEditor interface {
	Edit(ctx context.Context, text string) (string, error)
}

// Config holds configuration for the terminal.
type Config struct {
	In            io.Reader // Defaults to os.Stdin
	Out           io.Writer // Defaults to os.Stdout
	Err           io.Writer // Defaults to os.Stderr; spinner, warnings and debug output
	MaxLineLength int
	MaxFiles      int
	Editor        TextEditor
}

// programRunner runs a bubbletea model to completion.
type programRunner func(m tea.Model, in io.Reader, out io.Writer) (tea.Model, error)

func defaultProgramRunner(m tea.Model, in io.Reader, out io.Writer) (tea.Model, error) {
	return tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out)).Run()
}

// Terminal is the interactive UI for the review loop.
type Terminal struct {
	in       io.Reader
	out      io.Writer
	errOut   io.Writer
	keys     KeyMap
	renderer *Renderer
	editor   TextEditor

	// run allows overriding program execution for testing.
	run programRunner
}

// New creates a Terminal.
func New(cfg Config) *Terminal {
	t := &Terminal{
		in:       cfg.In,
		out:      cfg.Out,
		errOut:   cfg.Err,
		keys:     DefaultKeyMap(),
		renderer: NewRenderer(cfg.MaxLineLength, cfg.MaxFiles),
		editor:   cfg.Editor,
		run:      defaultProgramRunner,
	}
	if t.in == nil {
		t.in = os.Stdin
	}
	if t.out == nil {
		t.out = os.Stdout
	}
	if t.errOut == nil {
		t.errOut = os.Stderr
	}
	return t
}

// Generate shows a spinner on stderr while fn runs.
func (t *Terminal) Generate(ctx context.Context, label string, fn review.GenerateFunc) (*llm.Result, error) {
	final, err := t.run(newSpinnerModel(ctx, t.keys, label, fn), t.in, t.errOut)
	if err != nil {
		return nil, fmt.Errorf("spinner failed: %w", err)
	}
	return final.(spinnerModel).outcome()
}

// Present writes the rendered presentation to stdout.
func (t *Terminal) Present(p review.Presentation) {
	fmt.Fprint(t.out, t.renderer.Presentation(p))
}

// Choose shows the review menu and waits for one key.
func (t *Terminal) Choose(format session.Format) (review.Command, error) {
	v, err := t.choose(menuOptions(t.keys, format))
	return review.Command(v), err
}

// ConfirmLargeDiff warns about a large diff and asks whether to continue.
func (t *Terminal) ConfirmLargeDiff(size int) (bool, error) {
	t.Warn(fmt.Sprintf("diff is large (%s bytes), this may use many tokens", humanize.Comma(int64(size))))
	v, err := t.choose(confirmOptions(t.keys))
	return v == 1, err
}

func (t *Terminal) choose(options []option) (int, error) {
	final, err := t.run(newChoiceModel(t.keys, options), t.in, t.out)
	if err != nil {
		return 0, fmt.Errorf("prompt failed: %w", err)
	}
	return final.(choiceModel).value()
}

// EditLine edits a single-line description inline.
func (t *Terminal) EditLine(initial string) (string, error) {
	return t.readLine("? ", initial)
}

// AskPrompt asks for extra instructions for the model.
func (t *Terminal) AskPrompt() (string, error) {
	return t.readLine("prompt? ", "")
}

func (t *Terminal) readLine(prompt, initial string) (string, error) {
	final, err := t.run(newLineModel(t.keys, prompt, initial), t.in, t.out)
	if err != nil {
		return "", fmt.Errorf("line editor failed: %w", err)
	}
	return final.(lineModel).result()
}

// EditText edits a multi-line description in the external editor.
func (t *Terminal) EditText(initial string) (string, error) {
	if t.editor == nil {
		return "", fmt.Errorf("no editor configured")
	}
	return t.editor.Edit(context.Background(), initial)
}

// Warn writes a yellow warning line to stderr.
func (t *Terminal) Warn(msg string) {
	fmt.Fprintln(t.errOut, warningStyle.Render(msg))
}

// Debug writes a titled block of debug output to stderr.
func (t *Terminal) Debug(title, body string) {
	fmt.Fprintln(t.errOut, debugTitleStyle.Render("--- "+title+" ---"))
	fmt.Fprintln(t.errOut, debugBodyStyle.Render(body))
	fmt.Fprintln(t.errOut, debugTitleStyle.Render("--- end "+title+" ---"))
}

// Committed reports a successful commit.
func (t *Terminal) Committed(id string) {
	if len(id) > 12 {
		id = id[:12]
	}
	fmt.Fprintln(t.out, statusStyle.Render("committed "+id))
}
