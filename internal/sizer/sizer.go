// Package sizer keeps the diff sent to the model within a byte budget by
// reducing context once and then asking or failing.
package sizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/gerunddev/git-auto-commit/internal/git"
	"github.com/gerunddev/git-auto-commit/internal/log"
)

// ErrDeclined is returned when the user chooses not to send a large diff.
var ErrDeclined = errors.New("aborted: diff too large")

// TooLargeError reports a diff over the hard limit even with reduced context.
type TooLargeError struct {
	Size int
	Max  int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("diff is too large (%s bytes, max %s)", humanize.Comma(int64(e.Size)), humanize.IBytes(uint64(e.Max)))
}

// Decision is what to do with a diff of a given size.
type Decision int

const (
	Proceed Decision = iota
	Reduce
	Confirm
	Fail
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case Reduce:
		return "reduce"
	case Confirm:
		return "confirm"
	case Fail:
		return "fail"
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// Limits are the context-line and byte thresholds.
type Limits struct {
	DefaultContext int
	ReducedContext int
	WarnBytes      int
	MaxBytes       int
}

// DefaultLimits returns 3/1 context lines and a 50 KiB warning / 100 KiB maximum.
func DefaultLimits() Limits {
	return Limits{
		DefaultContext: 3,
		ReducedContext: 1,
		WarnBytes:      50 * 1024,
		MaxBytes:       100 * 1024,
	}
}

// Decide classifies a diff of size bytes taken with contextLines of context.
func Decide(size, contextLines int, l Limits) Decision {
	switch {
	case size < l.WarnBytes:
		return Proceed
	case contextLines > l.ReducedContext:
		return Reduce
	case size >= l.MaxBytes:
		return Fail
	default:
		return Confirm
	}
}

// Source produces a change set for a given amount of diff context.
type Source interface {
	Changes(ctx context.Context, contextLines int) (*git.ChangeSet, error)
}

// ConfirmFunc asks whether to continue with a large diff of size bytes.
type ConfirmFunc func(size int) (bool, error)

// Result is the change set that will be sent and the context it used.
type Result struct {
	Changes      *git.ChangeSet
	ContextLines int
}

// Resolve fetches changes at the default context, reduces context at most
// once, and asks confirm at most once.
func Resolve(ctx context.Context, src Source, confirm ConfirmFunc, l Limits) (*Result, error) {
	contextLines := l.DefaultContext
	for {
		cs, err := src.Changes(ctx, contextLines)
		if err != nil {
			return nil, err
		}

		size := cs.Size()
		decision := Decide(size, contextLines, l)
		log.Debug("sized diff", "bytes", size, "context", contextLines, "decision", decision)

		switch decision {
		case Proceed:
			return &Result{Changes: cs, ContextLines: contextLines}, nil
		case Reduce:
			contextLines = l.ReducedContext
		case Fail:
			return nil, &TooLargeError{Size: size, Max: l.MaxBytes}
		case Confirm:
			ok, err := confirm(size)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ErrDeclined
			}
			return &Result{Changes: cs, ContextLines: contextLines}, nil
		}
	}
}
