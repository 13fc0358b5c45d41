// Package commitmsg validates and cleans generated commit messages.
package commitmsg

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gerunddev/git-auto-commit/internal/session"
)

// DefaultMaxLineLength is the conventional git line limit.
const DefaultMaxLineLength = 72

// AttributionMarkers are lowercase substrings that reference the generating
// model or tool.
var AttributionMarkers = []string{"claude", "anthropic", "co-authored-by", "generated with"}

// Reason classifies a validation failure.
type Reason int

const (
	LineTooLong Reason = iota
	UnexpectedStructure
	ForbiddenContent
)

func (r Reason) String() string {
	switch r {
	case LineTooLong:
		return "line too long"
	case UnexpectedStructure:
		return "unexpected structure"
	case ForbiddenContent:
		return "forbidden content"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Issue is one rule violation. Line is 1-based; 0 means the whole message.
type Issue struct {
	Reason Reason
	Line   int
	Detail string
}

func (i Issue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("line %d: %s", i.Line, i.Detail)
	}
	return i.Detail
}

// Verdict is the outcome of validating one message.
type Verdict struct {
	Issues []Issue
}

// Valid reports whether no rule was violated.
func (v Verdict) Valid() bool {
	return len(v.Issues) == 0
}

// Has reports whether any issue has reason r.
func (v Verdict) Has(r Reason) bool {
	for _, issue := range v.Issues {
		if issue.Reason == r {
			return true
		}
	}
	return false
}

// Retryable reports whether regenerating could fix the message. Attribution
// alone only warrants a warning.
func (v Verdict) Retryable() bool {
	return v.Has(LineTooLong) || v.Has(UnexpectedStructure)
}

// Validator checks messages against a line-length limit.
type Validator struct {
	maxLineLength int
}

// NewValidator creates a Validator; a non-positive limit uses the default.
func NewValidator(maxLineLength int) *Validator {
	if maxLineLength <= 0 {
		maxLineLength = DefaultMaxLineLength
	}
	return &Validator{maxLineLength: maxLineLength}
}

// MaxLineLength returns the configured limit.
func (v *Validator) MaxLineLength() int {
	return v.maxLineLength
}

// Validate checks text against the line, structure and attribution rules.
func (v *Validator) Validate(text string, format session.Format) Verdict {
	var verdict Verdict
	add := func(reason Reason, line int, format string, args ...any) {
		verdict.Issues = append(verdict.Issues, Issue{Reason: reason, Line: line, Detail: fmt.Sprintf(format, args...)})
	}

	text = Sanitize(text)
	if text == "" {
		add(UnexpectedStructure, 0, "message is empty")
		return verdict
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if n := utf8.RuneCountInString(line); n > v.maxLineLength {
			add(LineTooLong, i+1, "%d characters, limit is %d", n, v.maxLineLength)
		}
	}

	summary := lines[0]
	if first, _ := utf8.DecodeRuneInString(summary); !unicode.IsLower(first) {
		add(UnexpectedStructure, 1, "must start with a lowercase letter")
	}
	if strings.HasSuffix(summary, ".") {
		add(UnexpectedStructure, 1, "must not end with a period")
	}

	switch format {
	case session.SingleLine:
		if len(lines) > 1 {
			add(UnexpectedStructure, 0, "expected a single line, got %d", len(lines))
		}
	case session.MultiLine:
		switch {
		case len(lines) < 3:
			add(UnexpectedStructure, 0, "expected a summary, a blank line and a body")
		case strings.TrimSpace(lines[1]) != "":
			add(UnexpectedStructure, 2, "must be blank")
		}
	}

	lower := strings.ToLower(text)
	for _, marker := range AttributionMarkers {
		if strings.Contains(lower, marker) {
			add(ForbiddenContent, 0, "mentions %q", marker)
		}
	}

	return verdict
}

// Extract returns the text inside the first pair of triple backticks,
// dropping an optional language tag. Without a complete fence it returns the
// trimmed output and false.
func Extract(output string) (string, bool) {
	const fence = "```"
	start := strings.Index(output, fence)
	if start < 0 {
		return strings.TrimSpace(output), false
	}
	rest := output[start+len(fence):]
	end := strings.Index(rest, fence)
	if end < 0 {
		return strings.TrimSpace(output), false
	}
	body := rest[:end]

	if tag, after, ok := strings.Cut(body, "\n"); ok && isLanguageTag(tag) && strings.TrimSpace(after) != "" {
		body = after
	}
	return Sanitize(body), true
}

func isLanguageTag(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '+') {
			return false
		}
	}
	return true
}

// Sanitize strips NUL bytes and carriage returns, trims trailing space on
// every line and surrounding blank lines.
func Sanitize(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
