package handlers

import (
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID, err := authctx.UserID(c)
	if err != nil {
		return respondError(c, services.ErrUnauthenticated)
	}

	resp, err := h.profiles.GetProfile(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, err := authctx.UserID(c)
	if err != nil {
		return respondError(c, services.ErrUnauthenticated)
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.profiles.UpdateProfile(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ProfileHandler) SaveAPIKey(c *fiber.Ctx) error {
	userID, err := authctx.UserID(c)
	if err != nil {
		return respondError(c, services.ErrUnauthenticated)
	}

	var req dto.SaveAPIKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.profiles.SaveAPIKey(c.UserContext(), userID, req.APIKey)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ProfileHandler) ClearAPIKey(c *fiber.Ctx) error {
	userID, err := authctx.UserID(c)
	if err != nil {
		return respondError(c, services.ErrUnauthenticated)
	}

	resp, err := h.profiles.ClearAPIKey(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Activate redeems a Pro activation code bought through the payment link.
func (h *ProfileHandler) Activate(c *fiber.Ctx) error {
	userID, err := authctx.UserID(c)
	if err != nil {
		return respondError(c, services.ErrUnauthenticated)
	}

	var req dto.ActivateCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.profiles.ActivateProCode(c.UserContext(), userID, req.Code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
