package services

import (
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/generation"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/quota"
)

var (
	ErrUnauthenticated       = errors.New("authentication required")
	ErrProfileNotFound       = errors.New("profile not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrActivationCodeInvalid = errors.New("activation code is invalid or already used")
	ErrAlreadyPro            = errors.New("profile is already on the Pro plan")
	ErrGenerationNotFound    = errors.New("generation not found")

	// ErrMalformedResponse is re-exported so handlers only depend on this package.
	ErrMalformedResponse = generation.ErrMalformedResponse
)

// QuotaExceededError names the monthly limit that was hit.
type QuotaExceededError = quota.ExceededError

// InputError describes a rejected request field. It matches ErrInvalidInput.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, format string, args ...interface{}) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// LLMError wraps any failure of the model call. It is the only retryable error kind.
type LLMError struct {
	Detail  string
	Timeout bool
	Err     error
}

func (e *LLMError) Error() string {
	if e.Timeout {
		return "AI request timed out"
	}
	return "AI request failed: " + e.Detail
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

// Retryable reports whether resubmitting the same request might succeed.
func Retryable(err error) bool {
	var llmErr *LLMError
	return errors.As(err, &llmErr)
}
