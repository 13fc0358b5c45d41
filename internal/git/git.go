// Package git provides a wrapper for the git CLI: change discovery, staging and commits.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Error types for git operations.
var (
	// ErrNotRepo is returned when the working directory is not inside a git work tree.
	ErrNotRepo = errors.New("not in a git repository")
	// ErrCommandNotFound is returned when the git binary is not found in PATH.
	ErrCommandNotFound = errors.New("git command not found")
	// ErrOperationInProgress is returned when a merge, rebase or similar is unfinished.
	ErrOperationInProgress = errors.New("repository is in the middle of an operation (merge, rebase, etc)")
	// ErrDetachedHead is returned when HEAD does not point at a branch.
	ErrDetachedHead = errors.New("repository is in detached HEAD state")
	// ErrNoChanges is returned when there is nothing staged, modified or untracked.
	ErrNoChanges = errors.New("no changes found")
)

// CommandError reports a git invocation that exited unsuccessfully.
type CommandError struct {
	SubCommand string
	ExitCode   int
	Stderr     string
	Err        error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git %s failed with exit code %d: %s", e.SubCommand, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("git %s failed with exit code %d", e.SubCommand, e.ExitCode)
}

func (e *CommandError) Unwrap() error { return e.Err }

// CommandRunner is the function type used to execute commands.
// It can be replaced in tests to mock command execution.
type CommandRunner func(ctx context.Context, dir string, name string, args ...string) (string, string, error)

// InteractiveRunner runs a command attached to the user's terminal.
type InteractiveRunner func(ctx context.Context, dir string, name string, args ...string) error

// defaultCommandRunner executes a command using exec.CommandContext.
func defaultCommandRunner(ctx context.Context, dir string, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// defaultInteractiveRunner hands the terminal to the child so hooks and
// signing prompts reach the user.
func defaultInteractiveRunner(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Client wraps the git CLI.
type Client struct {
	workDir           string
	commandRunner     CommandRunner
	interactiveRunner InteractiveRunner
}

// NewClient creates a new git CLI client bound to the specified working directory.
func NewClient(workDir string) *Client {
	return &Client{
		workDir:           workDir,
		commandRunner:     defaultCommandRunner,
		interactiveRunner: defaultInteractiveRunner,
	}
}

// SetCommandRunner allows setting a custom command runner (for testing).
func (c *Client) SetCommandRunner(runner CommandRunner) {
	c.commandRunner = runner
}

// SetInteractiveRunner allows setting a custom terminal-attached runner (for testing).
func (c *Client) SetInteractiveRunner(runner InteractiveRunner) {
	c.interactiveRunner = runner
}

// runCommand executes a git command and returns its stdout.
func (c *Client) runCommand(ctx context.Context, args ...string) (string, error) {
	stdout, stderr, err := c.commandRunner(ctx, c.workDir, "git", args...)
	if err != nil {
		return "", c.wrapError(subCommand(args), stderr, err)
	}
	return stdout, nil
}

// subCommand returns the git subcommand, skipping leading `-c key=value` pairs.
func subCommand(args []string) string {
	for len(args) >= 2 && args[0] == "-c" {
		args = args[2:]
	}
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// wrapError converts exec errors into appropriate git error types.
func (c *Client) wrapError(subCommand string, stderr string, err error) error {
	var execErr *exec.Error
	if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return ErrCommandNotFound
	}

	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return context.DeadlineExceeded
	}

	stderrLower := strings.ToLower(stderr)
	if strings.Contains(stderrLower, "not a git repository") {
		return ErrNotRepo
	}

	return &CommandError{
		SubCommand: subCommand,
		ExitCode:   exitCode(err),
		Stderr:     strings.TrimSpace(stderr),
		Err:        err,
	}
}

// exitCode extracts a process exit status, or -1 when there is none.
func exitCode(err error) int {
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return -1
}

// sanitizeMessage removes characters that could cause issues in commit messages.
func sanitizeMessage(message string) string {
	// Replace null bytes (could terminate strings early)
	message = strings.ReplaceAll(message, "\x00", "")
	return strings.TrimSpace(message)
}

// inProgressMarkers are files in the git dir that signal an unfinished operation.
var inProgressMarkers = []string{
	"MERGE_HEAD",
	"CHERRY_PICK_HEAD",
	"REVERT_HEAD",
	"BISECT_LOG",
	"rebase-merge",
	"rebase-apply",
}

// Check verifies that the working directory is a clean place to commit from:
// inside a work tree, no operation in progress, HEAD on a branch.
func (c *Client) Check(ctx context.Context) error {
	out, err := c.runCommand(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return err
	}
	if strings.TrimSpace(out) != "true" {
		return ErrNotRepo
	}

	gitDir, err := c.runCommand(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return fmt.Errorf("failed to locate git dir: %w", err)
	}
	gitDir = strings.TrimSpace(gitDir)
	for _, marker := range inProgressMarkers {
		if _, err := os.Stat(filepath.Join(gitDir, marker)); err == nil {
			return fmt.Errorf("%w: found %s", ErrOperationInProgress, marker)
		}
	}

	if _, err := c.runCommand(ctx, "symbolic-ref", "--quiet", "HEAD"); err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode == 1 {
			return ErrDetachedHead
		}
		return err
	}

	return nil
}

// Stage adds every path of the change set to the index, including the old
// side of renames so the removal is recorded.
func (c *Client) Stage(ctx context.Context, cs *ChangeSet) error {
	paths := cs.Paths()
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--all", "--"}, paths...)
	_, err := c.runCommand(ctx, args...)
	return err
}

// Commit records the index with message and returns the new commit id.
// git runs attached to the terminal so hooks and commit signing behave as usual.
func (c *Client) Commit(ctx context.Context, message string) (string, error) {
	sanitized := sanitizeMessage(message)
	if sanitized == "" {
		return "", errors.New("commit message cannot be empty")
	}

	if err := c.interactiveRunner(ctx, c.workDir, "git", "commit", "--message", sanitized); err != nil {
		return "", c.wrapError("commit", "", err)
	}

	out, err := c.runCommand(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to read new commit id: %w", err)
	}
	return strings.TrimSpace(out), nil
}
