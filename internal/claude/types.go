// Package claude implements the subprocess generation backend on top of the Claude CLI.
package claude

// EventType represents the type of a stream event.
type EventType string

const (
	// EventInit is sent at the start of a session.
	EventInit EventType = "init"
	// EventMessage contains assistant message content.
	EventMessage EventType = "message"
	// EventResult is sent at the end of a session with final status.
	EventResult EventType = "result"
	// EventError indicates an error occurred.
	EventError EventType = "error"
	// EventSystem is for system-level events.
	EventSystem EventType = "system"
)

// StreamEvent represents a parsed event from Claude's stream-JSON output.
type StreamEvent struct {
	Type    EventType
	Raw     []byte          // Original JSON line
	Message *MessageContent // For message events
	Result  *ResultContent  // For result events
	Error   *ErrorContent
	SubType string // For system events
}

// MessageContent contains the text of an assistant message.
type MessageContent struct {
	ID         string
	Model      string
	Text       string
	StopReason string
	Usage      Usage
}

// Usage contains token usage information.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	CacheRead    int `json:"cache_read_input_tokens"`
	CacheCreate  int `json:"cache_creation_input_tokens"`
}

// Input returns prompt-side tokens, cached or not.
func (u Usage) Input() int {
	return u.InputTokens + u.CacheRead + u.CacheCreate
}

// ResultContent contains the final result of a run.
type ResultContent struct {
	SessionID  string
	SubType    string
	IsError    bool
	CostUSD    float64
	DurationMS int64
	Usage      Usage
	Result     string
}

// ErrorContent contains error information.
type ErrorContent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// rawEvent is used for initial JSON parsing to determine event type.
type rawEvent struct {
	Type      string `json:"type"`
	SubType   string `json:"subtype"`
	SessionID string `json:"session_id"`

	Message *rawMessage `json:"message"`

	// Result event fields. Older CLI releases report cost_usd, newer ones
	// total_cost_usd.
	IsError      bool    `json:"is_error"`
	CostUSD      float64 `json:"cost_usd"`
	TotalCostUSD float64 `json:"total_cost_usd"`
	DurationMS   int64   `json:"duration_ms"`
	Usage        *Usage  `json:"usage"`
	Result       string  `json:"result"`

	Error *ErrorContent `json:"error"`
}

// rawMessage represents the message object in Claude's output.
type rawMessage struct {
	ID         string       `json:"id"`
	Role       string       `json:"role"`
	Model      string       `json:"model"`
	StopReason string       `json:"stop_reason"`
	Usage      Usage        `json:"usage"`
	Content    []rawContent `json:"content"`
}

// rawContent represents a content block within a message.
type rawContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
