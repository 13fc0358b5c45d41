package review

import (
	"errors"
	"fmt"
)

// Error types for the review loop.
var (
	// ErrCancelled is returned when the user presses Esc or Ctrl-C at a prompt.
	ErrCancelled = errors.New("cancelled")
	// ErrEditAbandoned is returned when the editor fails or leaves the message empty.
	ErrEditAbandoned = errors.New("edit abandoned")
	// ErrAborted is returned when the user chooses not to commit.
	ErrAborted = errors.New("aborted")
)

// GenerationError is a backend failure with no earlier description to fall back to.
type GenerationError struct {
	Backend string
	Model   string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to generate commit description (%s, %s): %v", e.Backend, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// CommitError is a failure to stage or commit the accepted description.
type CommitError struct {
	Op  string // "stage" or "commit"
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
