// Package openai adapts the official OpenAI SDK to chat.Model.
package openai

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/vbonduro/fridgechef/internal/chat"
	"github.com/vbonduro/fridgechef/internal/domain"
)

type Client struct {
	client sdk.Client
	model  string
}

// NewClient fails with a *domain.ConfigurationError when apiKey is empty.
// Retries are disabled: a failed generation surfaces immediately as the
// fallback turn.
func NewClient(apiKey, model string, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, &domain.ConfigurationError{Name: "CHAT_API_KEY"}
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &Client{
		client: sdk.NewClient(opts...),
		model:  model,
	}, nil
}

var _ chat.Model = (*Client)(nil)

func (c *Client) Complete(ctx context.Context, req chat.Request) (string, error) {
	messages := make([]sdk.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case chat.RoleSystem:
			messages = append(messages, sdk.SystemMessage(m.Content))
		case chat.RoleAssistant:
			messages = append(messages, sdk.AssistantMessage(m.Content))
		default:
			messages = append(messages, sdk.UserMessage(m.Content))
		}
	}

	params := sdk.ChatCompletionNewParams{
		Model:       sdk.ChatModel(c.model),
		Messages:    messages,
		Temperature: sdk.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = sdk.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return "", &domain.TransportError{StatusCode: apiErr.StatusCode, Body: apiErr.Message}
		}
		return "", fmt.Errorf("failed to call openai: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", &domain.ParseError{Err: errors.New("response has no choices")}
	}
	return resp.Choices[0].Message.Content, nil
}
