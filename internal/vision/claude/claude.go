package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/vbonduro/fridgechef/internal/domain"
	"github.com/vbonduro/fridgechef/internal/vision"
)

// maxTokens bounds the reply; a comma-separated list for one photo is short.
const maxTokens = 300

// Extractor implements vision.Extractor on the Anthropic Messages API.
type Extractor struct {
	client *anthropic.Client
	model  string
}

// NewExtractor fails with a *domain.ConfigurationError when apiKey is empty.
func NewExtractor(apiKey, model string, httpClient *http.Client, opts ...anthropic.ClientOption) (*Extractor, error) {
	if apiKey == "" {
		return nil, &domain.ConfigurationError{Name: "VISION_API_KEY"}
	}
	opts = append([]anthropic.ClientOption{anthropic.WithHTTPClient(recordStatus(httpClient))}, opts...)
	return &Extractor{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}, nil
}

var _ vision.Extractor = (*Extractor)(nil)

func (e *Extractor) Extract(ctx context.Context, image domain.ImageRecord) ([]string, error) {
	encoded, err := vision.Base64(image)
	if err != nil {
		return nil, &domain.ExtractionError{Err: fmt.Errorf("failed to encode image: %w", err)}
	}

	ctx, status := withStatus(ctx)
	resp, err := e.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(e.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{{
			Role: anthropic.RoleUser,
			Content: []anthropic.MessageContent{
				anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
					anthropic.MessagesContentSourceTypeBase64,
					vision.MimeType(image),
					encoded,
				)),
				anthropic.NewTextMessageContent(vision.Prompt(image)),
			},
		}},
	})
	if err != nil {
		return nil, &domain.ExtractionError{Err: classify(err, *status)}
	}

	for _, c := range resp.Content {
		if c.Type == "text" {
			return vision.ParseResponse(resp.GetFirstContentText()), nil
		}
	}
	return nil, &domain.ExtractionError{Err: &domain.ParseError{Err: errors.New("response has no text content")}}
}

// classify maps SDK errors onto the transport taxonomy. status is the HTTP
// status of the reply, or 0 when none arrived.
func classify(err error, status int) error {
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return &domain.TransportError{StatusCode: reqErr.StatusCode, Body: reqErr.Error()}
	}
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) && status != 0 {
		return &domain.TransportError{StatusCode: status, Body: apiErr.Message}
	}
	if status >= http.StatusMultipleChoices {
		return &domain.TransportError{StatusCode: status, Body: err.Error()}
	}
	return fmt.Errorf("failed to call claude: %w", err)
}

type statusKey struct{}

// withStatus returns a context under which statusTransport records the reply
// status into the returned int.
func withStatus(ctx context.Context) (context.Context, *int) {
	status := new(int)
	return context.WithValue(ctx, statusKey{}, status), status
}

// statusTransport records each reply status for the request that carries a
// withStatus context. The SDK drops the status from its JSON API errors.
type statusTransport struct {
	base http.RoundTripper
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err == nil {
		if status, ok := req.Context().Value(statusKey{}).(*int); ok {
			*status = resp.StatusCode
		}
	}
	return resp, err
}

func recordStatus(c *http.Client) *http.Client {
	out := &http.Client{}
	if c != nil {
		*out = *c
	}
	base := out.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	out.Transport = &statusTransport{base: base}
	return out
}
