package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	ping func() error
	cfg  *config.Config
}

func NewHealthHandler(ping func() error, cfg *config.Config) *HealthHandler {
	return &HealthHandler{ping: ping, cfg: cfg}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := h.ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}

// Config exposes the public settings the web client needs before login.
func (h *HealthHandler) Config(c *fiber.Ctx) error {
	return c.JSON(dto.PublicConfigResponse{
		PaymentLinkURL:      h.cfg.PaymentLinkURL,
		FreeGenerationLimit: h.cfg.FreeGenerationLimit,
		Model:               h.cfg.AnthropicModel,
	})
}
