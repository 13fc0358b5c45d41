// Package app wires configuration, the repository, the generation backend
// and the terminal into one commit session.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/gerunddev/git-auto-commit/internal/anthropic"
	"github.com/gerunddev/git-auto-commit/internal/claude"
	"github.com/gerunddev/git-auto-commit/internal/commitmsg"
	"github.com/gerunddev/git-auto-commit/internal/config"
	"github.com/gerunddev/git-auto-commit/internal/editor"
	"github.com/gerunddev/git-auto-commit/internal/git"
	"github.com/gerunddev/git-auto-commit/internal/llm"
	"github.com/gerunddev/git-auto-commit/internal/log"
	"github.com/gerunddev/git-auto-commit/internal/policy"
	"github.com/gerunddev/git-auto-commit/internal/prompt"
	"github.com/gerunddev/git-auto-commit/internal/review"
	"github.com/gerunddev/git-auto-commit/internal/session"
	"github.com/gerunddev/git-auto-commit/internal/sizer"
	"github.com/gerunddev/git-auto-commit/internal/tui"
)

// Error types for session setup.
var (
	// ErrNotInteractive is returned when stdin, stdout or stderr is not a terminal.
	ErrNotInteractive = errors.New("this command requires an interactive terminal")
	// ErrNoAPIKey is returned when --api is forced without a stored key.
	ErrNoAPIKey = errors.New("no api-key found in credentials file")
)

// BackendMode selects the generation backend.
type BackendMode int

const (
	// BackendAuto uses the API when a key is stored and the CLI otherwise.
	BackendAuto BackendMode = iota
	BackendCLI
	BackendAPI
)

func (m BackendMode) String() string {
	switch m {
	case BackendCLI:
		return "cli"
	case BackendAPI:
		return "api"
	}
	return "auto"
}

// Repository is the git surface a session needs. The repository state is
// checked before the App is created.
type Repository interface {
	Changes(ctx context.Context, contextLines int) (*git.ChangeSet, error)
	Stage(ctx context.Context, cs *git.ChangeSet) error
	Commit(ctx context.Context, message string) (string, error)
}

// UI is the terminal surface a session needs.
type UI interface {
	review.UI
	ConfirmLargeDiff(size int) (bool, error)
	Committed(id string)
}

// Config holds configuration for creating a new App.
type Config struct {
	// WorkDir is the repository directory.
	// If empty, uses the current working directory.
	WorkDir string

	// ConfigPath overrides $GAC_CONFIG and the default config location.
	ConfigPath string

	Backend       BackendMode
	DebugPrompt   bool
	DebugResponse bool
}

// App runs one commit session.
type App struct {
	cfg       *config.Config
	opts      Config
	workDir   string
	sessionID string

	// For testing: allow injecting mock dependencies
	repoOverride    Repository
	backendOverride llm.Backend
	uiOverride      UI
	isTerminal      func() bool
}

// New loads configuration and creates an App.
func New(cfg Config) (*App, error) {
	var (
		appConfig *config.Config
		err       error
	)
	if cfg.ConfigPath != "" {
		appConfig, err = config.LoadFromPath(cfg.ConfigPath)
	} else {
		appConfig, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	workDir := cfg.WorkDir
	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	sessionID := uuid.New().String()
	log.SetSessionID(sessionID)
	log.Debug("session started", "workdir", workDir, "backend", cfg.Backend)

	return &App{
		cfg:        appConfig,
		opts:       cfg,
		workDir:    workDir,
		sessionID:  sessionID,
		isTerminal: stdioIsTerminal,
	}, nil
}

// SessionID returns the id attached to this session's log lines.
func (a *App) SessionID() string {
	return a.sessionID
}

// Run sizes the diff and runs the review loop.
func (a *App) Run(ctx context.Context) (*review.Outcome, error) {
	if !a.isTerminal() {
		return nil, ErrNotInteractive
	}

	repo := a.repository()

	backend, models, err := a.backend()
	if err != nil {
		return nil, err
	}
	log.Debug("selected backend", "backend", backend.Name(), "fast", models.Fast, "smart", models.Smart)

	ui := a.ui()
	sized, err := sizer.Resolve(ctx, repo, ui.ConfirmLargeDiff, a.limits())
	if err != nil {
		return nil, err
	}

	validator := commitmsg.NewValidator(a.cfg.MaxLineLength)
	loop := review.New(review.Config{
		Models:         models,
		MaxAutoRerolls: a.cfg.MaxAutoRerolls,
		MaxTokens:      a.cfg.API.MaxTokens,
		Timeout:        a.cfg.Timeout(),
		DebugPrompt:    a.opts.DebugPrompt,
		DebugResponse:  a.opts.DebugResponse,
	}, review.Deps{
		Backend:   backend,
		Prompts:   prompt.New(validator.MaxLineLength()),
		Validator: validator,
		Committer: repo,
		UI:        ui,
	}, session.New(sized.ContextLines), sized.Changes)

	outcome, err := loop.Run(ctx)
	if err != nil {
		return nil, err
	}
	ui.Committed(outcome.CommitID)
	return outcome, nil
}

func (a *App) limits() sizer.Limits {
	return sizer.Limits{
		DefaultContext: a.cfg.Diff.DefaultContext,
		ReducedContext: a.cfg.Diff.ReducedContext,
		WarnBytes:      a.cfg.Diff.WarnBytes,
		MaxBytes:       a.cfg.Diff.MaxBytes,
	}
}

func (a *App) repository() Repository {
	if a.repoOverride != nil {
		return a.repoOverride
	}
	return git.NewClient(a.workDir)
}

func (a *App) ui() UI {
	if a.uiOverride != nil {
		return a.uiOverride
	}
	return tui.New(tui.Config{
		MaxLineLength: a.cfg.MaxLineLength,
		MaxFiles:      a.cfg.MaxFilesShown,
		Editor:        editor.New(""),
	})
}

// backend picks the generation backend once for the whole session.
func (a *App) backend() (llm.Backend, policy.Models, error) {
	if a.backendOverride != nil {
		return a.backendOverride, policy.Models(a.cfg.Models.CLI), nil
	}

	cliBackend := func() (llm.Backend, policy.Models, error) {
		return claude.NewClient(claude.ClientConfig{}), policy.Models(a.cfg.Models.CLI), nil
	}
	if a.opts.Backend == BackendCLI {
		return cliBackend()
	}

	creds, err := config.LoadCredentials(a.cfg.CredentialsPath)
	if err != nil {
		return nil, policy.Models{}, fmt.Errorf("failed to load credentials: %w", err)
	}
	if !creds.HasAPIKey() {
		if a.opts.Backend == BackendAPI {
			return nil, policy.Models{}, fmt.Errorf("%w (%s)", ErrNoAPIKey, a.cfg.CredentialsPath)
		}
		log.Debug("no api key, using claude cli", "credentials", a.cfg.CredentialsPath)
		return cliBackend()
	}

	return anthropic.NewClient(anthropic.Config{
		APIKey:    creds.APIKey,
		BaseURL:   a.cfg.API.BaseURL,
		MaxTokens: a.cfg.API.MaxTokens,
	}), policy.Models(a.cfg.Models.API), nil
}

// stdioIsTerminal reports whether stdin, stdout and stderr are all terminals.
func stdioIsTerminal() bool {
	for _, f := range []*os.File{os.Stdin, os.Stdout, os.Stderr} {
		if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
			return false
		}
	}
	return true
}

// SetRepository allows injecting a mock repository for testing.
func (a *App) SetRepository(repo Repository) {
	a.repoOverride = repo
}

// SetBackend allows injecting a mock backend for testing.
func (a *App) SetBackend(backend llm.Backend) {
	a.backendOverride = backend
}

// SetUI allows injecting a mock UI for testing.
func (a *App) SetUI(ui UI) {
	a.uiOverride = ui
}
