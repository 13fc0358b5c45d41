// Package llm defines the contract shared by the commit-message generation backends.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Error types for generation calls.
var (
	// ErrTimeout is returned when the generation deadline expires.
	ErrTimeout = errors.New("claude thought for too long")
	// ErrEmptyResponse is returned when the backend produced no text.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrCommandNotFound is returned when the claude binary is not found in PATH.
	ErrCommandNotFound = errors.New("claude command not found")
)

// Backend generates text for a prompt. Implementations never retry.
type Backend interface {
	// Name identifies the backend in status lines ("claude" or "api").
	Name() string
	Generate(ctx context.Context, req Request) (*Result, error)
}

// Request is a single generation call.
type Request struct {
	Model     string
	Prompt    string
	MaxTokens int
}

// Result is the outcome of a successful generation call.
type Result struct {
	Text         string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	Raw          string // Unparsed backend output, for --debug-response
}

// Tokens returns the total token usage of the call.
func (r *Result) Tokens() int {
	if r == nil {
		return 0
	}
	return r.InputTokens + r.OutputTokens
}

// APIError reports a non-success HTTP status from the messages API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Body)
}

// ContextError maps a finished context to the matching generation error.
// It returns nil while ctx is still live.
func ContextError(ctx context.Context) error {
	switch err := ctx.Err(); {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case err != nil:
		return err
	}
	return nil
}
