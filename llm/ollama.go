// Package llm talks to a locally hosted Ollama server for chat completions.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ChatModel produces a single non-streamed reply to a system and user prompt.
type ChatModel interface {
	Complete(ctx context.Context, system, user string, timeout time.Duration) (string, error)
	Ping(ctx context.Context) error
}

var _ ChatModel = (*OllamaClient)(nil)

// OllamaClient talks to the chat endpoint of a local Ollama server.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// NewOllamaClient returns a client for the chat model served at baseURL.
// Per-call deadlines come from Complete, so the http.Client has no timeout.
func NewOllamaClient(baseURL, model string) *OllamaClient {
	return &OllamaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{},
	}
}

// Model returns the chat model name
func (c *OllamaClient) Model() string { return c.model }

// Complete posts the two messages to /api/chat and returns the trimmed reply.
// A timeout <= 0 leaves the deadline to ctx.
func (c *OllamaClient) Complete(ctx context.Context, system, user string, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: false,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Error{Kind: KindDecode, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(jsonData))
	if err != nil {
		return "", &Error{Kind: KindNetwork, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{
			Kind:       KindServer,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(body))),
		}
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &Error{Kind: KindDecode, Err: fmt.Errorf("parse response: %w", err)}
	}
	if result.Error != "" {
		return "", &Error{Kind: KindServer, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", result.Error)}
	}

	return strings.TrimSpace(result.Message.Content), nil
}

// Ping checks that the Ollama server answers on /api/tags.
func (c *OllamaClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return &Error{Kind: KindNetwork, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Kind: KindServer, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status")}
	}
	return nil
}
