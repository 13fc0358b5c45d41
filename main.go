// Package main is the entry point for the git-auto-commit CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/gerunddev/git-auto-commit/internal/app"
	"github.com/gerunddev/git-auto-commit/internal/git"
	"github.com/gerunddev/git-auto-commit/internal/log"
	"github.com/gerunddev/git-auto-commit/internal/review"
	"github.com/gerunddev/git-auto-commit/internal/sizer"
	"github.com/gerunddev/git-auto-commit/internal/tui"
)

// Exit statuses.
const (
	exitOK        = 0
	exitFatal     = 1
	exitAborted   = 2
	exitAbandoned = 3
)

// repoValidator is the function used to validate the git repository.
// It can be replaced in tests to mock repository validation.
var repoValidator = defaultRepoValidator

// appFactory is the function used to create a new app.App.
// It can be replaced in tests to mock app creation.
var appFactory = defaultAppFactory

// defaultRepoValidator is the production repository validation implementation.
func defaultRepoValidator(ctx context.Context, workDir string) error {
	return git.NewClient(workDir).Check(ctx)
}

// defaultAppFactory is the production app factory implementation.
func defaultAppFactory(cfg app.Config) (App, error) {
	return app.New(cfg)
}

// App interface defines the methods needed from app.App for testing.
type App interface {
	Run(ctx context.Context) (*review.Outcome, error)
}

// options holds the parsed flags.
type options struct {
	cli           bool
	api           bool
	debugPrompt   bool
	debugResponse bool
	verbose       bool
	configPath    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	reportError(os.Stderr, err)
	os.Exit(exitCode(err))
}

func newRootCmd() *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "git-auto-commit",
		Short: "Generate a commit message for your changes and commit them",
		Long: `git-auto-commit asks Claude to describe your staged changes (or, when
nothing is staged, every modified and untracked file), shows you the
description, and commits it once you accept.

Uses the Anthropic API when an api-key is stored in
~/.config/git-auto-commit/credentials and the claude CLI otherwise.

Examples:
  git-auto-commit                  # Describe and commit the current changes
  git auto-commit --api            # Same, as a git subcommand, forcing the API
  git-auto-commit --debug-prompt   # Show the prompt before sending it`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(cmd.Context(), opts)
		},
	}

	rootCmd.Flags().BoolVar(&opts.cli, "cli", false,
		"Always use the claude CLI")
	rootCmd.Flags().BoolVar(&opts.api, "api", false,
		"Always use the Anthropic API (requires an api-key)")
	rootCmd.MarkFlagsMutuallyExclusive("cli", "api")
	rootCmd.Flags().BoolVar(&opts.debugPrompt, "debug-prompt", false,
		"Print the prompt before sending it")
	rootCmd.Flags().BoolVar(&opts.debugResponse, "debug-response", false,
		"Print the raw model response")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.Flags().StringVar(&opts.configPath, "config", "",
		"Path to the config file (default $GAC_CONFIG or ~/.config/git-auto-commit/config.json)")

	return rootCmd
}

// runCommit validates the repository and runs one commit session.
func runCommit(ctx context.Context, opts options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log.SetVerbose(opts.verbose)

	if err := validateRepository(ctx); err != nil {
		return err
	}

	backend := app.BackendAuto
	switch {
	case opts.cli:
		backend = app.BackendCLI
	case opts.api:
		backend = app.BackendAPI
	}

	a, err := appFactory(app.Config{
		ConfigPath:    opts.configPath,
		Backend:       backend,
		DebugPrompt:   opts.debugPrompt,
		DebugResponse: opts.debugResponse,
	})
	if err != nil {
		return err
	}

	_, err = a.Run(ctx)
	return err
}

// validateRepository checks that we're inside a git work tree that can take a commit.
func validateRepository(ctx context.Context) error {
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	err = repoValidator(ctx, workDir)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, git.ErrNotRepo):
		return fmt.Errorf("not a git repository (run from within a git work tree): %w", err)
	case errors.Is(err, git.ErrCommandNotFound):
		return fmt.Errorf("git command not found (install git: https://git-scm.com): %w", err)
	case errors.Is(err, git.ErrOperationInProgress), errors.Is(err, git.ErrDetachedHead):
		return err
	}
	return fmt.Errorf("failed to verify git repository: %w", err)
}

// exitCode maps a session error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, review.ErrAborted), errors.Is(err, sizer.ErrDeclined):
		return exitAborted
	case errors.Is(err, review.ErrCancelled),
		errors.Is(err, review.ErrEditAbandoned),
		errors.Is(err, context.Canceled):
		return exitAbandoned
	}
	return exitFatal
}

// reportError prints err in red unless the user already saw why the session
// ended.
func reportError(w io.Writer, err error) {
	if err == nil || errors.Is(err, review.ErrCancelled) || errors.Is(err, context.Canceled) {
		return
	}
	fmt.Fprintln(w, tui.ErrorText("error: "+err.Error()))
}
