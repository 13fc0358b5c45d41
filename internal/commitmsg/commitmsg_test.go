package commitmsg

import (
	"strings"
	"testing"

	"github.com/gerunddev/git-auto-commit/internal/session"
)

// =============================================================================
// Validate
// =============================================================================

func TestValidate(t *testing.T) {
	long := "add " + strings.Repeat("x", 76) // 80 characters

	tests := []struct {
		name       string
		text       string
		format     session.Format
		wantValid  bool
		wantReason []Reason
		retryable  bool
	}{
		{"good single line", "fix worker memory leak", session.SingleLine, true, nil, false},
		{"exactly 72", strings.Repeat("a", 72), session.SingleLine, true, nil, false},
		{"73 characters", strings.Repeat("a", 73), session.SingleLine, false, []Reason{LineTooLong}, true},
		{"80 characters", long, session.SingleLine, false, []Reason{LineTooLong}, true},
		{"multibyte counted as runes", "fix " + strings.Repeat("é", 68), session.SingleLine, true, nil, false},
		{"uppercase start", "Fix bug", session.SingleLine, false, []Reason{UnexpectedStructure}, true},
		{"digit start", "2fa support", session.SingleLine, false, []Reason{UnexpectedStructure}, true},
		{"trailing period", "fix bug.", session.SingleLine, false, []Reason{UnexpectedStructure}, true},
		{"two lines in single mode", "fix bug\n\n- detail", session.SingleLine, false, []Reason{UnexpectedStructure}, true},
		{"empty", "   ", session.SingleLine, false, []Reason{UnexpectedStructure}, true},
		{"good multi line", "refactor db layer\n\n- split query builder\n- add tests", session.MultiLine, true, nil, false},
		{"multi without body", "refactor db layer", session.MultiLine, false, []Reason{UnexpectedStructure}, true},
		{"multi without blank", "refactor db layer\n- split\n- test", session.MultiLine, false, []Reason{UnexpectedStructure}, true},
		{"long body line", "refactor db\n\n- " + strings.Repeat("y", 80), session.MultiLine, false, []Reason{LineTooLong}, true},
		{"attribution", "add parser written by claude", session.SingleLine, false, []Reason{ForbiddenContent}, false},
		{"co-author trailer", "add parser\n\nCo-Authored-By: Someone", session.MultiLine, false, []Reason{ForbiddenContent}, false},
	}

	v := NewValidator(72)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := v.Validate(tt.text, tt.format)
			if verdict.Valid() != tt.wantValid {
				t.Fatalf("Valid() = %v, want %v (issues %v)", verdict.Valid(), tt.wantValid, verdict.Issues)
			}
			for _, r := range tt.wantReason {
				if !verdict.Has(r) {
					t.Errorf("expected reason %v, got %v", r, verdict.Issues)
				}
			}
			if verdict.Retryable() != tt.retryable {
				t.Errorf("Retryable() = %v, want %v", verdict.Retryable(), tt.retryable)
			}
		})
	}
}

func TestValidate_IssueDetails(t *testing.T) {
	verdict := NewValidator(10).Validate("short\n\nthis line is too long", session.MultiLine)

	if len(verdict.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %v", verdict.Issues)
	}
	issue := verdict.Issues[0]
	if issue.Reason != LineTooLong || issue.Line != 3 {
		t.Errorf("unexpected issue %+v", issue)
	}
	if issue.String() != "line 3: 21 characters, limit is 10" {
		t.Errorf("String() = %q", issue.String())
	}
}

func TestNewValidator_Default(t *testing.T) {
	if got := NewValidator(0).MaxLineLength(); got != DefaultMaxLineLength {
		t.Errorf("MaxLineLength() = %d, want %d", got, DefaultMaxLineLength)
	}
}

func TestReasonString(t *testing.T) {
	for r, want := range map[Reason]string{
		LineTooLong:         "line too long",
		UnexpectedStructure: "unexpected structure",
		ForbiddenContent:    "forbidden content",
		Reason(9):           "Reason(9)",
	} {
		if r.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(r), r.String(), want)
		}
	}
}

// =============================================================================
// Extract
// =============================================================================

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
		wantOK bool
	}{
		{"fenced", "```\nfix typo in readme\n```", "fix typo in readme", true},
		{"preamble and trailer", "Here you go:\n```\nadd retries\n```\nHope that helps", "add retries", true},
		{"language tag", "```text\nupdate deps\n```", "update deps", true},
		{"inline fence", "```bump version```", "bump version", true},
		{"single word on fence line", "```refactor\n```", "refactor", true},
		{"multi line body", "```\nrefactor db\n\n- split builder\n```", "refactor db\n\n- split builder", true},
		{"first fence wins", "```\none\n```\n```\ntwo\n```", "one", true},
		{"no fence", "  add cache layer \n", "add cache layer", false},
		{"unterminated fence", "```\nadd cache", "```\nadd cache", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.output)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Extract() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// =============================================================================
// Sanitize
// =============================================================================

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  fix bug  ", "fix bug"},
		{"fix\x00 bug", "fix bug"},
		{"summary  \r\n\r\n- body \r\n", "summary\n\n- body"},
		{"\n\nsummary\n\n", "summary"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
