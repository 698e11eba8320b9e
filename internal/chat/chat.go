// Package chat defines the chat-completion capability used for recipe
// generation and an HTTP client for OpenAI-compatible endpoints.
package chat

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Model produces the assistant reply for a message list. Failures are
// reported as *domain.TransportError, *domain.ParseError or a wrapped network
// error.
type Model interface {
	Complete(ctx context.Context, req Request) (string, error)
}
