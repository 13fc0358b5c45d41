package claude

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Parser parses Claude's stream-JSON output format.
type Parser struct {
	scanner *bufio.Scanner
}

// NewParser creates a new stream-JSON parser.
func NewParser(r io.Reader) *Parser {
	scanner := bufio.NewScanner(r)
	// Set a larger buffer for potentially large JSON lines
	const maxScannerBuffer = 10 * 1024 * 1024 // 10MB
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxScannerBuffer)

	return &Parser{
		scanner: scanner,
	}
}

// Next returns the next event from the stream.
// Returns io.EOF when the stream is exhausted.
func (p *Parser) Next() (*StreamEvent, error) {
	for p.scanner.Scan() {
		line := p.scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		return p.parseLine(line)
	}
	if err := p.scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	return nil, io.EOF
}

// parseLine parses a single JSON line into a StreamEvent.
func (p *Parser) parseLine(line []byte) (*StreamEvent, error) {
	var raw rawEvent
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	event := &StreamEvent{
		Raw: append([]byte(nil), line...),
	}

	switch {
	case raw.Message != nil:
		event.Type = EventMessage
		event.Message = messageContent(raw.Message)

	case raw.Type == "result":
		event.Type = EventResult
		usage := Usage{}
		if raw.Usage != nil {
			usage = *raw.Usage
		}
		cost := raw.TotalCostUSD
		if cost == 0 {
			cost = raw.CostUSD
		}
		event.Result = &ResultContent{
			SessionID:  raw.SessionID,
			SubType:    raw.SubType,
			IsError:    raw.IsError,
			CostUSD:    cost,
			DurationMS: raw.DurationMS,
			Usage:      usage,
			Result:     raw.Result,
		}

	case raw.Type == "error" || raw.Error != nil:
		event.Type = EventError
		if raw.Error != nil {
			event.Error = raw.Error
		} else {
			event.Error = &ErrorContent{Message: "unknown error"}
		}

	case raw.Type == "init":
		event.Type = EventInit

	case raw.Type == "system":
		event.Type = EventSystem
		event.SubType = raw.SubType

	default:
		event.Type = EventType(raw.Type)
		if event.Type == "" {
			event.Type = "unknown"
		}
	}

	return event, nil
}

// messageContent joins the text blocks of an assistant message.
func messageContent(msg *rawMessage) *MessageContent {
	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return &MessageContent{
		ID:         msg.ID,
		Model:      msg.Model,
		Text:       strings.Join(parts, "\n"),
		StopReason: msg.StopReason,
		Usage:      msg.Usage,
	}
}
