package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vbonduro/fridgechef/internal/domain"
)

type payload struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type ClientOption func(*Client)

// WithModel sets the model name sent in the request body.
func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// Client posts to a chat-completions endpoint authenticated by an api-key
// header.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

// NewClient fails with a *domain.ConfigurationError when apiKey is empty.
func NewClient(endpoint, apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, &domain.ConfigurationError{Name: "CHAT_API_KEY"}
	}
	c := &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

var _ Model = (*Client)(nil)

func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(payload{
		Model:       c.model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call chat endpoint: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close chat response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &domain.TransportError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(errBody))}
	}

	var out completion
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &domain.ParseError{Err: err}
	}
	if len(out.Choices) == 0 {
		return "", &domain.ParseError{Err: errors.New("response has no choices")}
	}
	return out.Choices[0].Message.Content, nil
}
