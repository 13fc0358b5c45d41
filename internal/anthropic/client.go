// Package anthropic implements the direct API generation backend.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gerunddev/git-auto-commit/internal/llm"
	"github.com/gerunddev/git-auto-commit/internal/log"
)

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	messagesPath   = "/v1/messages"

	defaultMaxTokens = 1024
)

// Config holds configuration for the API client.
type Config struct {
	APIKey     string
	BaseURL    string
	MaxTokens  int
	HTTPClient *http.Client // Defaults to a client without its own timeout; the caller's context bounds the call
}

// Client calls the messages API with a stored key.
type Client struct {
	apiKey    string
	baseURL   string
	maxTokens int
	client    *http.Client
}

// NewClient creates a new API client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		apiKey:    cfg.APIKey,
		baseURL:   baseURL,
		maxTokens: maxTokens,
		client:    httpClient,
	}
}

// Name implements llm.Backend.
func (c *Client) Name() string { return "api" }

// Generate sends a single user message and returns the text reply.
func (c *Client) Generate(ctx context.Context, req llm.Request) (*llm.Result, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	payload, err := json.Marshal(messagesRequest{
		Model:     req.Model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	log.Debug("calling messages api", "model", req.Model, "prompt_bytes", len(req.Prompt))
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		if ctxErr := llm.ContextError(ctx); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer func() { log.CloseError("response body", httpResp.Body.Close()) }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if ctxErr := llm.ContextError(ctx); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &llm.APIError{Status: httpResp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, llm.ErrEmptyResponse
	}

	model := resp.Model
	if model == "" {
		model = req.Model
	}
	return &llm.Result{
		Text:         text.String(),
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		CostUSD:      Cost(model, resp.Usage.InputTokens, resp.Usage.OutputTokens),
		Raw:          string(body),
	}, nil
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Model   string         `json:"model"`
	Content []contentBlock `json:"content"`
	Usage   usage          `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
