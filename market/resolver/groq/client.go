// Package groq talks to an OpenAI-compatible chat-completions endpoint
// (Groq by default) and maps its answers onto the resolver contract.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/maeulmarket/server/config"
	"github.com/maeulmarket/server/market/resolver"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// Client is a resolver.Provider backed by an OpenAI-compatible API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates a Client from provider config.
func New(cfg config.ProviderConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether an API key is present. Without one the
// resolver fails fast instead of attempting a network call.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt and parses the structured {text, newPrice}
// reply. HTTP 429 comes back wrapping resolver.ErrRateLimited.
func (c *Client) Complete(ctx context.Context, req resolver.Request) (*resolver.Reply, error) {
	body := chatRequest{Model: c.model}
	body.ResponseFormat.Type = "json_object"
	body.Messages = make([]chatMessage, 0, len(req.Messages)+1)
	body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("groq: status 429: %w", resolver.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("groq: status %d: %s", resp.StatusCode, snippet)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("groq: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("groq: empty choices")
	}

	return parseContent(parsed.Choices[0].Message.Content)
}

// parseContent decodes the model's JSON answer. newPrice may arrive as a
// string or a bare number; both are preserved as raw text for the resolver.
func parseContent(content string) (*resolver.Reply, error) {
	var answer struct {
		Text     string      `json:"text"`
		NewPrice interface{} `json:"newPrice"`
	}
	if err := json.Unmarshal([]byte(content), &answer); err != nil {
		return nil, fmt.Errorf("groq: malformed answer: %w", err)
	}

	reply := &resolver.Reply{Text: answer.Text}
	switch v := answer.NewPrice.(type) {
	case string:
		reply.NewPrice = v
	case float64:
		reply.NewPrice = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return reply, nil
}
