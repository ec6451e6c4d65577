// Package llm calls the hosted language model that produces optimization results.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnexpectedContent is returned when the model answers without any text block.
var ErrUnexpectedContent = errors.New("unexpected response content from model")

// Request is a single-turn completion request. The API key belongs to the end user.
type Request struct {
	APIKey    string
	Model     string
	MaxTokens int
	Prompt    string
}

// Client completes one prompt. Implementations do not retry.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.Status)
	}
	if e.Type == "" {
		return fmt.Sprintf("api returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api returned status %d (%s): %s", e.Status, e.Type, e.Message)
}
