// Package completions talks to OpenAI-style chat-completions vision endpoints.
// Two response shapes are supported behind one Transport: a single JSON body
// and a chunked body that must be drained before it is parsed.
package completions

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

const (
	ModeJSON   = "json"
	ModeStream = "stream"
)

// defaultChunkSize is the read buffer used when draining a chunked body.
const defaultChunkSize = 4096

// Transport sends one completion request and returns the decoded response.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Completion, error)
}

type Request struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	TopP        float64   `json:"top_p,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type Message struct {
	Role    string  `json:"role"`
	Content []Block `json:"content"`
}

// Block is a text or image_url content part.
type Block struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type Completion struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Content returns choices[0].message.content.
func (c *Completion) Content() (string, error) {
	if len(c.Choices) == 0 {
		return "", &domain.ParseError{Err: errors.New("response has no choices")}
	}
	return c.Choices[0].Message.Content, nil
}

// NewTransport returns the transport for mode.
func NewTransport(mode, endpoint, apiKey string, client *http.Client) (Transport, error) {
	switch mode {
	case ModeJSON, "":
		return NewJSONTransport(endpoint, apiKey, client), nil
	case ModeStream:
		return NewStreamTransport(endpoint, apiKey, client), nil
	default:
		return nil, fmt.Errorf("unknown vision mode %q", mode)
	}
}

// JSONTransport decodes the response body as one JSON object. It
// authenticates with an api-key header.
type JSONTransport struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewJSONTransport(endpoint, apiKey string, client *http.Client) *JSONTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &JSONTransport{endpoint: endpoint, apiKey: apiKey, client: client}
}

func (t *JSONTransport) Send(ctx context.Context, req *Request) (*Completion, error) {
	resp, err := post(ctx, t.client, t.endpoint, req, func(h http.Header) {
		h.Set("api-key", t.apiKey)
	})
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	var out Completion
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &domain.ParseError{Err: err}
	}
	return &out, nil
}

// StreamTransport reads the body as a sequence of chunks, concatenating them
// in arrival order until EOF, and only then parses the result. It
// authenticates with a bearer token.
type StreamTransport struct {
	endpoint  string
	token     string
	client    *http.Client
	chunkSize int
}

func NewStreamTransport(endpoint, token string, client *http.Client) *StreamTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &StreamTransport{endpoint: endpoint, token: token, client: client, chunkSize: defaultChunkSize}
}

func (t *StreamTransport) Send(ctx context.Context, req *Request) (*Completion, error) {
	resp, err := post(ctx, t.client, t.endpoint, req, func(h http.Header) {
		h.Set("Authorization", "Bearer "+t.token)
	})
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	body, err := drain(resp.Body, t.chunkSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read response stream: %w", err)
	}

	var out Completion
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, &domain.ParseError{Err: err}
	}
	return &out, nil
}

// drain reads r to completion one chunk at a time and returns the
// concatenated text. Chunks are never interpreted on their own.
func drain(r io.Reader, chunkSize int) (string, error) {
	var sb strings.Builder
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		sb.Write(buf[:n])
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
	}
}

func post(ctx context.Context, client *http.Client, endpoint string, req *Request, auth func(http.Header)) (*http.Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	auth(httpReq.Header)

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call vision endpoint: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		closeBody(resp)
		return nil, &domain.TransportError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(errBody))}
	}
	return resp, nil
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		slog.Error("failed to close vision response body", "error", err)
	}
}
