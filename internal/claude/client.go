package claude

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/gerunddev/git-auto-commit/internal/llm"
	"github.com/gerunddev/git-auto-commit/internal/log"
)

// ClientConfig holds configuration for the Claude client.
type ClientConfig struct {
	Binary  string   // Defaults to "claude"
	EnvVars []string // Additional environment variables (KEY=VALUE format)
}

// Client runs one-shot, tool-less Claude CLI invocations.
type Client struct {
	binary  string
	envVars []string

	// commandCreator allows overriding command creation for testing.
	commandCreator CommandCreator
}

// CommandCreator is a function type for creating exec.Cmd instances.
// It allows mocking command execution in tests.
type CommandCreator func(ctx context.Context, name string, args ...string) *exec.Cmd

// defaultCommandCreator creates a standard exec.Cmd.
func defaultCommandCreator(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}

// NewClient creates a new Claude CLI client.
func NewClient(cfg ClientConfig) *Client {
	binary := cfg.Binary
	if binary == "" {
		binary = "claude"
	}
	return &Client{
		binary:         binary,
		envVars:        cfg.EnvVars,
		commandCreator: defaultCommandCreator,
	}
}

// SetCommandCreator sets a custom command creator (for testing).
func (c *Client) SetCommandCreator(creator CommandCreator) {
	c.commandCreator = creator
}

// Name implements llm.Backend.
func (c *Client) Name() string {
	return "claude"
}

// Generate runs the CLI in print mode with the prompt on stdin and returns
// the final result text. Tools are disabled so the model can only answer.
func (c *Client) Generate(ctx context.Context, req llm.Request) (*llm.Result, error) {
	// Note: --verbose is required when using --output-format stream-json with -p (print mode)
	args := []string{
		"-p",
		"--output-format", "stream-json",
		"--verbose",
		"--tools", "",
	}
	if req.Model != "" {
		args = append(args, "--model", req.Model)
	}

	cmd := c.commandCreator(ctx, c.binary, args...)
	if len(c.envVars) > 0 {
		cmd.Env = append(os.Environ(), c.envVars...)
	}
	cmd.Stdin = strings.NewReader(req.Prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("running claude", "model", req.Model, "prompt_bytes", len(req.Prompt))
	runErr := cmd.Run()

	if err := llm.ContextError(ctx); err != nil {
		return nil, err
	}
	if runErr != nil {
		var execErr *exec.Error
		if errors.As(runErr, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return nil, llm.ErrCommandNotFound
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return nil, fmt.Errorf("claude exited with code %d: %s", exitErr.ExitCode(), msg)
			}
			return nil, fmt.Errorf("claude exited with code %d", exitErr.ExitCode())
		}
		return nil, fmt.Errorf("claude process error: %w", runErr)
	}

	return parseOutput(stdout.Bytes())
}

// parseOutput folds a stream-JSON transcript into a single result.
func parseOutput(out []byte) (*llm.Result, error) {
	parser := NewParser(bytes.NewReader(out))
	result := &llm.Result{Raw: string(out)}

	var messages []string
	var final *ResultContent
	for {
		event, err := parser.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse error: %w", err)
		}

		switch event.Type {
		case EventMessage:
			if event.Message.Text != "" {
				messages = append(messages, event.Message.Text)
			}
		case EventResult:
			final = event.Result
		case EventError:
			return nil, fmt.Errorf("claude reported an error: %s", event.Error.Message)
		}
	}

	if final != nil {
		if final.IsError {
			return nil, fmt.Errorf("claude run failed (%s): %s", final.SubType, final.Result)
		}
		result.Text = final.Result
		result.InputTokens = final.Usage.Input()
		result.OutputTokens = final.Usage.OutputTokens
		result.CostUSD = final.CostUSD
	}
	if strings.TrimSpace(result.Text) == "" {
		result.Text = strings.Join(messages, "\n")
	}
	if strings.TrimSpace(result.Text) == "" {
		return nil, llm.ErrEmptyResponse
	}

	return result, nil
}
