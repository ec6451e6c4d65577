package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	profiles *services.ProfileService
}

func NewAdminHandler(profiles *services.ProfileService) *AdminHandler {
	return &AdminHandler{profiles: profiles}
}

// IssueCodes mints activation codes to hand out after payment.
func (h *AdminHandler) IssueCodes(c *fiber.Ctx) error {
	var req dto.IssueCodesRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	codes, err := h.profiles.IssueCodes(c.UserContext(), req.Count)
	if err != nil {
		return respondError(c, err)
	}

	slog.Info("activation codes issued", "count", len(codes), "action", "admin.issue_codes")
	return c.Status(fiber.StatusCreated).JSON(dto.IssueCodesResponse{Codes: codes})
}
