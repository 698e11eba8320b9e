package completions

import (
	"context"
	"fmt"

	"github.com/vbonduro/fridgechef/internal/domain"
	"github.com/vbonduro/fridgechef/internal/vision"
)

type Extractor struct {
	transport Transport
	model     string
}

// NewExtractor returns a vision.Extractor sending requests through transport.
// model may be empty for deployments that fix the model in the endpoint URL.
func NewExtractor(transport Transport, model string) *Extractor {
	return &Extractor{transport: transport, model: model}
}

var _ vision.Extractor = (*Extractor)(nil)

func (e *Extractor) Extract(ctx context.Context, image domain.ImageRecord) ([]string, error) {
	uri, err := vision.DataURI(image)
	if err != nil {
		return nil, &domain.ExtractionError{Err: fmt.Errorf("failed to encode image: %w", err)}
	}

	completion, err := e.transport.Send(ctx, buildRequest(e.model, uri, vision.Prompt(image)))
	if err != nil {
		return nil, &domain.ExtractionError{Err: err}
	}

	content, err := completion.Content()
	if err != nil {
		return nil, &domain.ExtractionError{Err: err}
	}

	return vision.ParseResponse(content), nil
}

func buildRequest(model, imageURI, prompt string) *Request {
	return &Request{
		Model: model,
		Messages: []Message{{
			Role: "user",
			Content: []Block{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &ImageURL{URL: imageURI}},
			},
		}},
		Temperature: 0.7,
		TopP:        0.95,
		// A comma-separated ingredient list for one photo stays well below this.
		MaxTokens: 300,
	}
}
