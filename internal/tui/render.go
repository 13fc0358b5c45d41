package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/gerunddev/git-auto-commit/internal/commitmsg"
	"github.com/gerunddev/git-auto-commit/internal/git"
	"github.com/gerunddev/git-auto-commit/internal/review"
)

// DefaultMaxFiles is how many changed files are listed before "(+N more)".
const DefaultMaxFiles = 10

// Renderer formats presentations for the terminal.
type Renderer struct {
	maxLineLength int
	maxFiles      int
}

// NewRenderer creates a Renderer. Non-positive values use the defaults.
func NewRenderer(maxLineLength, maxFiles int) *Renderer {
	if maxLineLength <= 0 {
		maxLineLength = commitmsg.DefaultMaxLineLength
	}
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	return &Renderer{maxLineLength: maxLineLength, maxFiles: maxFiles}
}

// Presentation renders the status line, description, file list and warnings.
func (r *Renderer) Presentation(p review.Presentation) string {
	var b strings.Builder
	if p.Usage != nil {
		b.WriteString(statusStyle.Render(r.Status(p)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(r.Description(p.Description))
	b.WriteString("\n\n")
	if p.Changes != nil {
		b.WriteString(r.Files(p.Changes.Files))
		b.WriteString("\n")
	}
	for _, w := range p.Warnings {
		b.WriteString(warningStyle.Render("warning: " + w))
		b.WriteString("\n")
	}
	return b.String()
}

// Summary describes the change set, e.g. "staged changes [3 files]".
func (r *Renderer) Summary(cs *git.ChangeSet) string {
	n := len(cs.Files)
	noun := "files"
	if n == 1 {
		noun = "file"
	}
	return fmt.Sprintf("%s [%d %s]", cs.Source(), n, noun)
}

// Status is the summary followed by token usage and cost.
func (r *Renderer) Status(p review.Presentation) string {
	var summary string
	if p.Changes != nil {
		summary = r.Summary(p.Changes)
	}
	if p.Usage == nil {
		return summary
	}
	return fmt.Sprintf("%s (%s tokens, $%.4f USD)", summary, humanize.Comma(int64(p.Usage.Tokens())), p.Usage.CostUSD)
}

// Files lists changed files, capped at the configured maximum.
func (r *Renderer) Files(files []git.FileChange) string {
	var b strings.Builder
	b.WriteString(statusStyle.Render("files:"))
	b.WriteString("\n")
	for i, f := range files {
		if i == r.maxFiles {
			b.WriteString(infoStyle.Render(fmt.Sprintf("(+%d more)", len(files)-r.maxFiles)))
			b.WriteString("\n")
			break
		}
		b.WriteString(infoStyle.Render(f.String()))
		b.WriteString("\n")
	}
	return b.String()
}

// Description renders text with overflow and attribution highlighted.
func (r *Renderer) Description(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		var b strings.Builder
		for _, seg := range r.segments(line) {
			switch seg.kind {
			case segmentOverflow:
				b.WriteString(overflowStyle.Render(seg.text))
			case segmentAttribution:
				b.WriteString(attributionStyle.Render(seg.text))
			default:
				b.WriteString(descriptionStyle.Render(seg.text))
			}
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

type segmentKind int

const (
	segmentPlain segmentKind = iota
	segmentAttribution
	segmentOverflow
)

type segment struct {
	text string
	kind segmentKind
}

// segments splits a line into plain text, attribution markers, and the
// part past the line length limit. Overflow wins over attribution.
func (r *Renderer) segments(line string) []segment {
	head, tail := line, ""
	if runes := []rune(line); len(runes) > r.maxLineLength {
		head, tail = string(runes[:r.maxLineLength]), string(runes[r.maxLineLength:])
	}

	var out []segment
	plainStart := 0
	for i := 0; i < len(head); {
		n := attributionAt(head, i)
		if n == 0 {
			i++
			continue
		}
		if plainStart < i {
			out = append(out, segment{text: head[plainStart:i]})
		}
		out = append(out, segment{text: head[i : i+n], kind: segmentAttribution})
		i += n
		plainStart = i
	}
	if plainStart < len(head) {
		out = append(out, segment{text: head[plainStart:]})
	}
	if tail != "" {
		out = append(out, segment{text: tail, kind: segmentOverflow})
	}
	return out
}

// attributionAt returns the byte length of the marker starting at s[i], or 0.
func attributionAt(s string, i int) int {
	for _, marker := range commitmsg.AttributionMarkers {
		if end := i + len(marker); end <= len(s) && strings.EqualFold(s[i:end], marker) {
			return len(marker)
		}
	}
	return 0
}
