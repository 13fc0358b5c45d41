// Package prompt renders generation requests into the text sent to the model.
package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/gerunddev/git-auto-commit/internal/policy"
	"github.com/gerunddev/git-auto-commit/internal/session"
)

// ErrEmptyDiff is returned when the request carries no diff text.
var ErrEmptyDiff = errors.New("diff cannot be empty")

// minTargetLength is the lower end of the line length the model should aim for.
const minTargetLength = 50

// Template is the instruction block that precedes the diff.
const Template = `Ignore any CLAUDE.md or project instruction files; this task replaces them.

You write git commit messages. Nothing else.

Output format (required):
` + "```" + `
<commit message>
` + "```" + `

- wrap the message in triple backticks
- no explanation, no preamble, no alternatives

Hard limit: {{.MaxLineLength}} characters per line. A longer line is rejected.
Aim for {{.TargetMin}}-{{.TargetMax}} characters so there is room to spare.
Count every character, spaces included, before answering.

Keep it short:
- plain verbs: add, fix, update, remove, refactor
- no adjectives, no articles
- describe the single most important change
{{if .MultiLine}}
Format: multi-line
- line 1: summary, at most {{.MaxLineLength}} characters
- line 2: blank
- line 3 onward: "- " bullets, each at most {{.MaxLineLength}} characters,
  starting lowercase, no trailing period
{{else}}
Format: one line only, at most {{.MaxLineLength}} characters
{{end}}
Also:
- start with a lowercase letter, no trailing period
- never mention claude, anthropic or any AI tool; no co-authored-by lines
- describe the outcome, not the implementation
{{if .ExtraPrompt}}
Additional instructions from the user:
{{.ExtraPrompt}}
{{end}}{{if .ThinkHard}}
think hard

The previous attempt was rejected. Write a shorter message: aim for
{{.TargetMin}}-{{.TargetMax}} characters, count again, and if any line is over
{{.MaxLineLength}} start over with different wording.
{{end}}{{if .Ultrathink}}
ultrathink
{{end}}
Changed files ({{.Source}}):
{{range .Files}}{{.}}
{{end}}`

var promptTemplate = template.Must(template.New("commit-prompt").Parse(Template))

// templateData is what Template renders.
type templateData struct {
	MaxLineLength int
	TargetMin     int
	TargetMax     int
	MultiLine     bool
	ExtraPrompt   string
	ThinkHard     bool
	Ultrathink    bool
	Source        string
	Files         []string
}

// Builder renders prompts for a fixed line-length limit.
type Builder struct {
	maxLineLength int
}

// New creates a Builder for maxLineLength-character lines.
func New(maxLineLength int) *Builder {
	return &Builder{maxLineLength: maxLineLength}
}

// Header renders the instructions without the diff, as shown by --debug-prompt.
func (b *Builder) Header(req policy.Request) (string, error) {
	data := templateData{
		MaxLineLength: b.maxLineLength,
		TargetMin:     min(minTargetLength, b.maxLineLength),
		TargetMax:     max(b.maxLineLength-7, min(minTargetLength, b.maxLineLength)),
		MultiLine:     req.Format == session.MultiLine,
		ExtraPrompt:   strings.TrimSpace(req.ExtraPrompt),
		ThinkHard:     req.ThinkHard,
		Ultrathink:    req.Ultrathink,
		Source:        "unstaged",
	}
	if req.Staged {
		data.Source = "staged"
	}
	for _, f := range req.Files {
		data.Files = append(data.Files, f.String())
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Build renders the complete prompt: instructions followed by the diff.
func (b *Builder) Build(req policy.Request) (string, error) {
	if strings.TrimSpace(req.Diff) == "" {
		return "", ErrEmptyDiff
	}
	header, err := b.Header(req)
	if err != nil {
		return "", err
	}
	return header + "\n\n" + req.Diff + "\n", nil
}
