package claude

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/gerunddev/git-auto-commit/internal/llm"
)

// =============================================================================
// Client Tests - NewClient
// =============================================================================

func TestNewClient(t *testing.T) {
	client := NewClient(ClientConfig{Binary: "/opt/bin/claude", EnvVars: []string{"A=B"}})

	if client.binary != "/opt/bin/claude" {
		t.Errorf("client.binary = %q", client.binary)
	}
	if len(client.envVars) != 1 {
		t.Errorf("client.envVars = %v", client.envVars)
	}
	if client.commandCreator == nil {
		t.Error("client.commandCreator is nil")
	}
	if client.Name() != "claude" {
		t.Errorf("Name() = %q, want claude", client.Name())
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(ClientConfig{})
	if client.binary != "claude" {
		t.Errorf("client.binary = %q, want claude", client.binary)
	}
}

// =============================================================================
// Client Tests - Generate
// =============================================================================

// mockCommandCreator creates a mock command that records the arguments
// and writes predefined output to stdout.
func mockCommandCreator(output string) (CommandCreator, *[][]string) {
	var calls [][]string

	creator := func(ctx context.Context, name string, args ...string) *exec.Cmd {
		calls = append(calls, append([]string{name}, args...))
		return exec.CommandContext(ctx, "echo", "-n", output)
	}

	return creator, &calls
}

const successOutput = `{"type":"system","subtype":"init","session_id":"s"}
{"type":"assistant","message":{"content":[{"type":"text","text":"` + "```\\nfix typo in readme\\n```" + `"}]}}
{"type":"result","subtype":"success","total_cost_usd":0.0021,"usage":{"input_tokens":900,"output_tokens":12},"result":"` + "```\\nfix typo in readme\\n```" + `"}`

func TestClient_GenerateBuildsCorrectArguments(t *testing.T) {
	client := NewClient(ClientConfig{})
	creator, calls := mockCommandCreator(successOutput)
	client.SetCommandCreator(creator)

	_, err := client.Generate(context.Background(), llm.Request{Model: "haiku", Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}

	if len(*calls) != 1 {
		t.Fatalf("Expected 1 call, got %d", len(*calls))
	}
	args := (*calls)[0]
	if args[0] != "claude" {
		t.Errorf("Command name = %q, want %q", args[0], "claude")
	}

	argsStr := strings.Join(args[1:], " ")
	for _, part := range []string{"-p", "--output-format stream-json", "--verbose", "--model haiku"} {
		if !strings.Contains(argsStr, part) {
			t.Errorf("Arguments missing %q, got: %v", part, args[1:])
		}
	}

	// --tools must be followed by an empty value to disable every tool.
	found := false
	for i, a := range args {
		if a == "--tools" && i+1 < len(args) && args[i+1] == "" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected --tools \"\" in %q", args)
	}

	// The prompt travels on stdin, never as an argument.
	for _, a := range args {
		if a == "p" {
			t.Errorf("prompt leaked into arguments: %q", args)
		}
	}
}

func TestClient_GenerateOmitsEmptyModel(t *testing.T) {
	client := NewClient(ClientConfig{})
	creator, calls := mockCommandCreator(successOutput)
	client.SetCommandCreator(creator)

	if _, err := client.Generate(context.Background(), llm.Request{Prompt: "p"}); err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	for _, a := range (*calls)[0] {
		if a == "--model" {
			t.Errorf("unexpected --model in %q", (*calls)[0])
		}
	}
}

func TestClient_GenerateParsesResult(t *testing.T) {
	client := NewClient(ClientConfig{})
	creator, _ := mockCommandCreator(successOutput)
	client.SetCommandCreator(creator)

	res, err := client.Generate(context.Background(), llm.Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}

	if res.Text != "```\nfix typo in readme\n```" {
		t.Errorf("Text = %q", res.Text)
	}
	if res.InputTokens != 900 || res.OutputTokens != 12 || res.Tokens() != 912 {
		t.Errorf("unexpected usage: in=%d out=%d", res.InputTokens, res.OutputTokens)
	}
	if res.CostUSD != 0.0021 {
		t.Errorf("CostUSD = %v, want 0.0021", res.CostUSD)
	}
	if res.Raw != successOutput {
		t.Error("Raw output not preserved")
	}
}

func TestClient_GenerateSendsPromptOnStdin(t *testing.T) {
	client := NewClient(ClientConfig{})
	// cat echoes stdin, so a prompt that is itself a result event round-trips.
	client.SetCommandCreator(func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "cat")
	})

	prompt := `{"type":"result","result":"from stdin"}`
	res, err := client.Generate(context.Background(), llm.Request{Prompt: prompt})
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	if res.Text != "from stdin" {
		t.Errorf("Text = %q, want %q", res.Text, "from stdin")
	}
}

func TestClient_GenerateFallsBackToMessageText(t *testing.T) {
	client := NewClient(ClientConfig{})
	creator, _ := mockCommandCreator(`{"type":"assistant","message":{"content":[{"type":"text","text":"only message"}]}}`)
	client.SetCommandCreator(creator)

	res, err := client.Generate(context.Background(), llm.Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	if res.Text != "only message" {
		t.Errorf("Text = %q", res.Text)
	}
}

// =============================================================================
// Client Tests - Error Handling
// =============================================================================

func TestClient_GenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		wantErr string
		target  error
	}{
		{"empty output", "", "", llm.ErrEmptyResponse},
		{"blank result", `{"type":"result","result":"   "}`, "", llm.ErrEmptyResponse},
		{"error event", `{"type":"error","error":{"message":"overloaded"}}`, "overloaded", nil},
		{"error result", `{"type":"result","subtype":"error_max_turns","is_error":true,"result":"nope"}`, "error_max_turns", nil},
		{"bad json", `{"type":`, "parse error", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(ClientConfig{})
			creator, _ := mockCommandCreator(tt.output)
			client.SetCommandCreator(creator)

			_, err := client.Generate(context.Background(), llm.Request{Prompt: "p"})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestClient_CommandNotFound(t *testing.T) {
	client := NewClient(ClientConfig{})
	client.SetCommandCreator(func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "nonexistent_command_12345")
	})

	_, err := client.Generate(context.Background(), llm.Request{Prompt: "p"})
	if !errors.Is(err, llm.ErrCommandNotFound) {
		t.Errorf("expected ErrCommandNotFound, got %v", err)
	}
}

func TestClient_NonZeroExitIncludesStderr(t *testing.T) {
	client := NewClient(ClientConfig{})
	client.SetCommandCreator(func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", "echo 'not logged in' >&2; exit 4")
	})

	_, err := client.Generate(context.Background(), llm.Request{Prompt: "p"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "code 4") || !strings.Contains(err.Error(), "not logged in") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	client := NewClient(ClientConfig{})
	client.SetCommandCreator(func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sleep", "5")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Generate(ctx, llm.Request{Prompt: "p"})
	if !errors.Is(err, llm.ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("Generate did not return promptly after the deadline")
	}
}

// =============================================================================
// Integration Tests
// =============================================================================

func hasClaude() bool {
	_, err := exec.LookPath("claude")
	return err == nil
}

func TestIntegration_Generate(t *testing.T) {
	if !hasClaude() {
		t.Skip("claude not installed, skipping integration test")
	}
	if os.Getenv("GAC_INTEGRATION") == "" {
		t.Skip("GAC_INTEGRATION not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	res, err := NewClient(ClientConfig{}).Generate(ctx, llm.Request{Model: "haiku", Prompt: "Say 'Hello' and nothing else"})
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	t.Logf("text=%q tokens=%d cost=%.4f", res.Text, res.Tokens(), res.CostUSD)
}
