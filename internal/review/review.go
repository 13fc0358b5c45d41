// Package review runs the generate, present and commit state machine for one
// invocation.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gerunddev/git-auto-commit/internal/commitmsg"
	"github.com/gerunddev/git-auto-commit/internal/git"
	"github.com/gerunddev/git-auto-commit/internal/llm"
	"github.com/gerunddev/git-auto-commit/internal/log"
	"github.com/gerunddev/git-auto-commit/internal/policy"
	"github.com/gerunddev/git-auto-commit/internal/prompt"
	"github.com/gerunddev/git-auto-commit/internal/session"
)

// DefaultMaxAutoRerolls bounds validation retries per generation attempt.
const DefaultMaxAutoRerolls = 3

// GenerateFunc performs one backend call.
type GenerateFunc func(ctx context.Context) (*llm.Result, error)

// Presentation is everything shown to the user for one description.
type Presentation struct {
	Description string
	Format      session.Format
	Changes     *git.ChangeSet
	Backend     string
	Model       string
	Usage       *llm.Result
	Warnings    []string
}

// UI is the interactive surface the loop drives.
type UI interface {
	// Generate runs fn while showing label; it returns fn's result.
	Generate(ctx context.Context, label string, fn GenerateFunc) (*llm.Result, error)
	Present(p Presentation)
	// Choose waits for a menu command. It returns ErrCancelled on Esc/Ctrl-C.
	Choose(format session.Format) (Command, error)
	// EditLine edits a single-line description inline.
	EditLine(initial string) (string, error)
	// EditText edits a multi-line description in an external editor.
	EditText(initial string) (string, error)
	// AskPrompt collects extra instructions for the model.
	AskPrompt() (string, error)
	Warn(msg string)
	Debug(title, body string)
}

// Committer stages and commits changes.
type Committer interface {
	Stage(ctx context.Context, cs *git.ChangeSet) error
	Commit(ctx context.Context, message string) (string, error)
}

// Config holds configuration for the loop.
type Config struct {
	Models         policy.Models
	MaxAutoRerolls int
	MaxTokens      int
	Timeout        time.Duration // Per backend call; zero means no limit
	DebugPrompt    bool
	DebugResponse  bool
}

// Deps holds dependencies for the loop.
type Deps struct {
	Backend   llm.Backend
	Prompts   *prompt.Builder
	Validator *commitmsg.Validator
	Committer Committer
	UI        UI
}

// Outcome describes a committed description.
type Outcome struct {
	Description string
	CommitID    string
	Generations int
}

// Loop is the review state machine. It owns the session state exclusively.
type Loop struct {
	cfg     Config
	deps    Deps
	state   *session.State
	changes *git.ChangeSet

	phase       Phase
	usage       *llm.Result
	model       string
	warnings    []string
	presented   bool
	generations int
	commitID    string
}

// New creates a loop over the given changes.
func New(cfg Config, deps Deps, state *session.State, changes *git.ChangeSet) *Loop {
	if cfg.MaxAutoRerolls < 0 {
		cfg.MaxAutoRerolls = 0
	}
	return &Loop{
		cfg:     cfg,
		deps:    deps,
		state:   state,
		changes: changes,
		phase:   Generating,
	}
}

// State returns the session state.
func (l *Loop) State() *session.State {
	return l.state
}

// Phase returns the current phase.
func (l *Loop) Phase() Phase {
	return l.phase
}

// Run drives the loop until the description is committed or the session ends.
func (l *Loop) Run(ctx context.Context) (*Outcome, error) {
	for !l.phase.Terminal() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, err := l.step(ctx)
		if err != nil {
			return nil, err
		}
		if !canTransition(l.phase, next) {
			return nil, fmt.Errorf("invalid transition from %s to %s", l.phase, next)
		}
		log.Debug("review transition", "from", l.phase, "to", next)
		l.phase = next
	}

	if l.phase == Aborted {
		return nil, ErrAborted
	}
	return &Outcome{
		Description: l.state.Description,
		CommitID:    l.commitID,
		Generations: l.generations,
	}, nil
}

// step runs the current phase and returns the next one.
func (l *Loop) step(ctx context.Context) (Phase, error) {
	switch l.phase {
	case Generating:
		return l.generate(ctx)
	case Presenting:
		return l.present(), nil
	case Confirming:
		return l.confirm()
	case Editing:
		return l.edit()
	case Committing:
		return l.commit(ctx)
	}
	return l.phase, fmt.Errorf("no step for phase %s", l.phase)
}

// generate runs policy, backend and validator once.
func (l *Loop) generate(ctx context.Context) (Phase, error) {
	req := policy.Build(l.state, l.changes)
	text, err := l.deps.Prompts.Build(req)
	if err != nil {
		return l.generationFailed(err)
	}
	if l.cfg.DebugPrompt {
		header, err := l.deps.Prompts.Header(req)
		if err != nil {
			return l.generationFailed(err)
		}
		l.deps.UI.Debug("prompt", header)
	}

	model := l.cfg.Models.For(req.Tier)
	log.Debug("generating",
		"backend", l.deps.Backend.Name(),
		"model", model,
		"think_hard", req.ThinkHard,
		"ultrathink", req.Ultrathink,
		"format", req.Format,
		"auto_rerolls", l.state.AutoRerolls,
	)

	l.generations++
	res, err := l.deps.UI.Generate(ctx, l.spinnerLabel(), func(ctx context.Context) (*llm.Result, error) {
		if l.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
			defer cancel()
		}
		return l.deps.Backend.Generate(ctx, llm.Request{
			Model:     model,
			Prompt:    text,
			MaxTokens: l.cfg.MaxTokens,
		})
	})
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return l.phase, err
		}
		return l.generationFailedWith(model, err)
	}
	if l.cfg.DebugResponse {
		body := res.Raw
		if body == "" {
			body = res.Text
		}
		l.deps.UI.Debug("response", body)
	}

	desc, fenced := commitmsg.Extract(res.Text)
	desc = commitmsg.Sanitize(desc)
	if desc == "" {
		return l.generationFailedWith(model, llm.ErrEmptyResponse)
	}

	verdict := l.deps.Validator.Validate(desc, l.state.Format)
	if verdict.Retryable() && !l.state.UserEdited {
		if l.state.AutoRerolls < l.cfg.MaxAutoRerolls {
			log.Info("rerolling invalid description", "attempt", l.state.AutoRerolls+1, "issues", verdict.Issues)
			l.state.AutoReroll()
			return Generating, nil
		}
	}

	l.state.SetGenerated(desc)
	l.usage = res
	l.model = model
	l.warnings = nil
	if !fenced {
		l.warnings = append(l.warnings, "could not find a fenced commit description in the response, using it as is")
	}
	l.warnings = append(l.warnings, l.describe(verdict)...)
	if verdict.Retryable() && l.state.AutoRerolls > 0 {
		l.warnings = append(l.warnings, fmt.Sprintf("(not auto-rerolling after %d attempts)", l.state.AutoRerolls))
	}
	return Presenting, nil
}

// generationFailed handles an error before the backend was called.
func (l *Loop) generationFailed(err error) (Phase, error) {
	return l.generationFailedWith(l.cfg.Models.For(l.state.Tier), err)
}

// generationFailedWith falls back to the previous description when one has
// been shown, and is fatal otherwise.
func (l *Loop) generationFailedWith(model string, err error) (Phase, error) {
	if !l.presented {
		return l.phase, &GenerationError{Backend: l.deps.Backend.Name(), Model: model, Err: err}
	}
	log.Warn("generation failed, keeping previous description", "model", model, "error", err)
	l.warnings = []string{fmt.Sprintf("generation failed (%v), showing the previous description", err)}
	return Presenting, nil
}

// describe turns validation issues into user-facing warnings.
func (l *Loop) describe(v commitmsg.Verdict) []string {
	var out []string
	for _, issue := range v.Issues {
		switch {
		case issue.Reason == commitmsg.ForbiddenContent:
			out = append(out, fmt.Sprintf("commit desc contains a reference to the model (%s)", issue.Detail))
		case issue.Reason == commitmsg.UnexpectedStructure && l.state.Format == session.SingleLine && issue.Line == 0:
			out = append(out, "commit message contains multiple lines")
		default:
			out = append(out, fmt.Sprintf("%s: %s", issue.Reason, issue))
		}
	}
	return out
}

func (l *Loop) spinnerLabel() string {
	n := len(l.changes.Files)
	noun := "files"
	if n == 1 {
		noun = "file"
	}
	return fmt.Sprintf("generating commit description from %s [%d %s]", l.changes.Source(), n, noun)
}

// present shows the current description. It does not change the session.
func (l *Loop) present() Phase {
	l.deps.UI.Present(l.presentation())
	l.presented = true
	return Confirming
}

func (l *Loop) presentation() Presentation {
	return Presentation{
		Description: l.state.Description,
		Format:      l.state.Format,
		Changes:     l.changes,
		Backend:     l.deps.Backend.Name(),
		Model:       l.model,
		Usage:       l.usage,
		Warnings:    append([]string(nil), l.warnings...),
	}
}

// confirm waits for one menu command and applies it.
func (l *Loop) confirm() (Phase, error) {
	cmd, err := l.deps.UI.Choose(l.state.Format)
	if err != nil {
		return l.phase, err
	}
	log.Debug("menu command", "command", cmd)

	switch cmd {
	case Accept:
		l.state.Accept()
		return Committing, nil
	case Abort:
		return Aborted, nil
	case Reroll:
		l.state.Reroll()
		return Generating, nil
	case ToggleFormat:
		l.state.ToggleFormat()
		return Generating, nil
	case Edit:
		return Editing, nil
	case AddPrompt:
		text, err := l.deps.UI.AskPrompt()
		if err != nil {
			return l.phase, err
		}
		if !l.state.AddPrompt(text) {
			return Presenting, nil
		}
		return Generating, nil
	}
	return l.phase, fmt.Errorf("unknown command %s", cmd)
}

// edit hands the description to the line or external editor.
func (l *Loop) edit() (Phase, error) {
	var (
		text string
		err  error
	)
	if l.state.Format == session.MultiLine {
		text, err = l.deps.UI.EditText(l.state.Description)
	} else {
		text, err = l.deps.UI.EditLine(l.state.Description)
	}
	if errors.Is(err, ErrCancelled) {
		return l.phase, err
	}
	if err != nil {
		return l.phase, fmt.Errorf("%w: %w", ErrEditAbandoned, err)
	}

	text = commitmsg.Sanitize(text)
	if text == "" {
		return l.phase, fmt.Errorf("%w: empty description", ErrEditAbandoned)
	}

	l.state.ApplyEdit(text)
	l.warnings = l.describe(l.deps.Validator.Validate(text, l.state.Format))
	return Presenting, nil
}

// commit stages unstaged changes when needed and commits the description.
func (l *Loop) commit(ctx context.Context) (Phase, error) {
	if !l.changes.Staged {
		if err := l.deps.Committer.Stage(ctx, l.changes); err != nil {
			return l.phase, &CommitError{Op: "stage", Err: err}
		}
	}
	id, err := l.deps.Committer.Commit(ctx, l.state.Description)
	if err != nil {
		return l.phase, &CommitError{Op: "commit", Err: err}
	}
	l.commitID = id
	log.Debug("committed", "id", id)
	return Done, nil
}
