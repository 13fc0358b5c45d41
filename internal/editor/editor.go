// Package editor edits text in the user's external editor.
package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/gerunddev/git-auto-commit/internal/log"
)

// ErrNoEditor is returned when neither $EDITOR nor $VISUAL is set.
var ErrNoEditor = errors.New("no editor found, set $EDITOR")

// CommandCreator is a function type for creating exec.Cmd instances.
// It allows mocking command execution in tests.
type CommandCreator func(ctx context.Context, name string, args ...string) *exec.Cmd

func defaultCommandCreator(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// Editor runs an external editor on a temporary file.
type Editor struct {
	command        string
	commandCreator CommandCreator
}

// New creates an Editor for command. An empty command is looked up from
// $EDITOR, then $VISUAL.
func New(command string) *Editor {
	if command == "" {
		command = os.Getenv("EDITOR")
	}
	if command == "" {
		command = os.Getenv("VISUAL")
	}
	return &Editor{command: command, commandCreator: defaultCommandCreator}
}

// SetCommandCreator sets a custom command creator (for testing).
func (e *Editor) SetCommandCreator(creator CommandCreator) {
	e.commandCreator = creator
}

// Edit writes text to a temporary file, opens it in the editor and returns
// the trimmed result. The command runs through sh so editor arguments work.
func (e *Editor) Edit(ctx context.Context, text string) (result string, err error) {
	if strings.TrimSpace(e.command) == "" {
		return "", ErrNoEditor
	}

	f, err := os.CreateTemp("", "git-auto-commit-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	path := f.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil {
			log.Debug("failed to remove temporary file", "path", path, "error", rmErr)
		}
	}()

	if _, err := f.WriteString(text); err != nil {
		log.CloseError("temporary file", f.Close())
		return "", fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write temporary file: %w", err)
	}

	cmd := e.commandCreator(ctx, "sh", "-c", e.command+" "+shellQuote(path))
	log.Debug("running editor", "command", e.command, "path", path)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor exited with error: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read edited file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// shellQuote wraps s in single quotes for sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
