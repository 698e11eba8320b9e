package domain

import (
	"fmt"
)

// ConfigurationError reports a required setting, usually a credential, that
// is absent. It is not recoverable at runtime.
type ConfigurationError struct {
	Name string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s is not set", e.Name)
}

// TransportError is a non-success HTTP status from a model endpoint.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// ParseError means a response body did not have the expected shape.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "failed to parse response: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// ExtractionError wraps any failure while detecting ingredients in one image.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return "ingredient extraction failed: " + e.Err.Error() }
func (e *ExtractionError) Unwrap() error { return e.Err }

// GenerationError wraps any failure while generating the next assistant turn.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "recipe generation failed: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }
