package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/pdfrender"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/pdftext"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/services"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps a service error onto an HTTP status and a stable machine-readable code.
func statusFor(err error) (int, string) {
	var (
		exceeded *services.QuotaExceededError
		llmErr   *services.LLMError
	)
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return fiber.StatusUnauthorized, "UNAUTHENTICATED"
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusUnauthorized, "INVALID_CREDENTIALS"
	case errors.Is(err, services.ErrProfileNotFound):
		return fiber.StatusNotFound, "PROFILE_NOT_FOUND"
	case errors.Is(err, services.ErrUserNotFound):
		return fiber.StatusNotFound, "USER_NOT_FOUND"
	case errors.Is(err, services.ErrGenerationNotFound):
		return fiber.StatusNotFound, "GENERATION_NOT_FOUND"
	case errors.As(err, &exceeded):
		return fiber.StatusPaymentRequired, "LIMIT_REACHED"
	case errors.Is(err, services.ErrInvalidInput):
		return fiber.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, services.ErrEmailTaken):
		return fiber.StatusConflict, "EMAIL_TAKEN"
	case errors.As(err, &llmErr):
		if llmErr.Timeout {
			return fiber.StatusGatewayTimeout, "LLM_ERROR"
		}
		return fiber.StatusBadGateway, "LLM_ERROR"
	case errors.Is(err, services.ErrMalformedResponse):
		return fiber.StatusUnprocessableEntity, "MALFORMED_RESPONSE"
	case errors.Is(err, services.ErrActivationCodeInvalid):
		return fiber.StatusBadRequest, "ACTIVATION_CODE_INVALID"
	case errors.Is(err, services.ErrAlreadyPro):
		return fiber.StatusConflict, "ALREADY_PRO"
	case errors.Is(err, pdftext.ErrInvalidPDF):
		return fiber.StatusBadRequest, "INVALID_PDF"
	case errors.Is(err, pdftext.ErrNoText):
		return fiber.StatusUnprocessableEntity, "NO_TEXT_LAYER"
	case errors.Is(err, pdfrender.ErrEmptyResume):
		return fiber.StatusUnprocessableEntity, "EMPTY_RESUME"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// respondError writes the error body. Server-side failures are logged and sent to Sentry
// without exposing details; LLM failures are reported too since they signal provider trouble.
func respondError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)

	var llmErr *services.LLMError
	if status >= fiber.StatusInternalServerError || errors.As(err, &llmErr) {
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}

	message := err.Error()
	if status == fiber.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err,
		)
		message = "Internal server error"
	}

	return c.Status(status).JSON(dto.ErrorResponse{
		Error:     true,
		Message:   message,
		Code:      code,
		Retryable: services.Retryable(err),
	})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid request body", Code: "INVALID_INPUT",
	})
}
