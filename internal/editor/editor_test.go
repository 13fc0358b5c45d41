package editor

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

// =============================================================================
// Editor Tests
// =============================================================================

// shCreator runs the real command without attaching the terminal.
func shCreator(calls *[][]string) CommandCreator {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		*calls = append(*calls, append([]string{name}, args...))
		return exec.CommandContext(ctx, name, args...)
	}
}

func TestEdit_RewritesFile(t *testing.T) {
	var calls [][]string
	// The "editor" replaces the file contents, with extra arguments that
	// only work through the shell.
	e := New("sh -c 'printf \"add greeting\\n\\n- print hello\\n\" > \"$0\"'")
	e.SetCommandCreator(shCreator(&calls))

	got, err := e.Edit(context.Background(), "add one")
	if err != nil {
		t.Fatalf("Edit() returned error: %v", err)
	}
	if got != "add greeting\n\n- print hello" {
		t.Errorf("Edit() = %q", got)
	}
	if len(calls) != 1 || calls[0][0] != "sh" || calls[0][1] != "-c" {
		t.Errorf("unexpected command: %q", calls)
	}
	if !strings.HasSuffix(calls[0][2], ".tmp'") {
		t.Errorf("expected a quoted .tmp path, got %q", calls[0][2])
	}
}

func TestEdit_SeedsFileWithText(t *testing.T) {
	var calls [][]string
	// Appending proves the original text was in the file.
	e := New("sh -c 'printf \" edited\" >> \"$0\"'")
	e.SetCommandCreator(shCreator(&calls))

	got, err := e.Edit(context.Background(), "add one")
	if err != nil {
		t.Fatalf("Edit() returned error: %v", err)
	}
	if got != "add one edited" {
		t.Errorf("Edit() = %q", got)
	}
}

func TestEdit_Errors(t *testing.T) {
	tests := []struct {
		name    string
		command string
		target  error
	}{
		{"non-zero exit", "false", nil},
		{"missing editor binary", "nonexistent_editor_12345", nil},
		{"blank command", "   ", ErrNoEditor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls [][]string
			e := New(tt.command)
			e.SetCommandCreator(shCreator(&calls))

			_, err := e.Edit(context.Background(), "add one")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestNew_FromEnvironment(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "nano")
	if e := New(""); e.command != "nano" {
		t.Errorf("command = %q, want nano", e.command)
	}

	t.Setenv("EDITOR", "vim -u NONE")
	if e := New(""); e.command != "vim -u NONE" {
		t.Errorf("command = %q, want EDITOR value", e.command)
	}

	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")
	if _, err := New("").Edit(context.Background(), "x"); !errors.Is(err, ErrNoEditor) {
		t.Errorf("expected ErrNoEditor, got %v", err)
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/tmp/a.tmp", "'/tmp/a.tmp'"},
		{"/tmp/it's.tmp", `'/tmp/it'\''s.tmp'`},
	}
	for _, tt := range tests {
		if got := shellQuote(tt.in); got != tt.want {
			t.Errorf("shellQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
