package handlers

import (
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/generation"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/pdfrender"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type GenerationHandler struct {
	generations *services.GenerationService
}

func NewGenerationHandler(generations *services.GenerationService) *GenerationHandler {
	return &GenerationHandler{generations: generations}
}

// Generate answers 201 with the stored generation, or 200 with the prompt when the user has
// no API key and must run it manually.
func (h *GenerationHandler) Generate(c *fiber.Ctx) error {
	userID, err := authctx.UserID(c)
	if err != nil {
		return respondError(c, services.ErrUnauthenticated)
	}

	var req dto.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	out, err := h.generations.Generate(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return writeOutcome(c, out)
}

func (h *GenerationHandler) SubmitManual(c *fiber.Ctx) error {
	userID, err := authctx.UserID(c)
	if err != nil {
		return respondError(c, services.ErrUnauthenticated)
	}

	var req dto.ManualSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	out, err := h.generations.SubmitManual(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return writeOutcome(c, out)
}

func writeOutcome(c *fiber.Ctx, out *generation.Outcome) error {
	if out.Kind == generation.OutcomeManualPrompt {
		return c.JSON(dto.GenerateResponse{Status: string(out.Kind), Prompt: out.Prompt})
	}
	view := services.GenerationView(out.Generation)
	return c.Status(fiber.StatusCreated).JSON(dto.GenerateResponse{Status: string(out.Kind), Generation: &view})
}

func (h *GenerationHandler) List(c *fiber.Ctx) error {
	userID, err := authctx.UserID(c)
	if err != nil {
		return respondError(c, services.ErrUnauthenticated)
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	items, total, err := h.generations.List(c.UserContext(), userID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.GenerationListResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}

func (h *GenerationHandler) Get(c *fiber.Ctx) error {
	userID, err := authctx.UserID(c)
	if err != nil {
		return respondError(c, services.ErrUnauthenticated)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, services.ErrGenerationNotFound)
	}

	g, err := h.generations.Get(c.UserContext(), userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(services.GenerationView(g))
}

// ResumePDF renders the optimized résumé of one generation as a downloadable file.
func (h *GenerationHandler) ResumePDF(c *fiber.Ctx) error {
	userID, err := authctx.UserID(c)
	if err != nil {
		return respondError(c, services.ErrUnauthenticated)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, services.ErrGenerationNotFound)
	}

	g, err := h.generations.Get(c.UserContext(), userID, id)
	if err != nil {
		return respondError(c, err)
	}

	doc, err := pdfrender.RenderResume(g.OptimizedResume)
	if err != nil {
		return respondError(c, err)
	}

	slog.Info("resume pdf rendered", "user_id", userID.String(), "generation_id", g.ID.String(), "bytes", len(doc))
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, pdfFileName(g.Title)))
	return c.Send(doc)
}

func pdfFileName(title string) string {
	name := slug.Make(title)
	if name == "" || title == generation.UntitledTitle {
		return "resume.pdf"
	}
	return name + "-resume.pdf"
}

func (h *GenerationHandler) Dashboard(c *fiber.Ctx) error {
	userID, err := authctx.UserID(c)
	if err != nil {
		return respondError(c, services.ErrUnauthenticated)
	}

	resp, err := h.generations.Dashboard(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
