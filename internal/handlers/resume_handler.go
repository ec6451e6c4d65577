package handlers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/pdftext"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	maxUploadBytes = 10 * 1024 * 1024
	archiveTimeout = 30 * time.Second
)

type ResumeHandler struct {
	store storage.ObjectStore // nil disables archiving
}

func NewResumeHandler(store storage.ObjectStore) *ResumeHandler {
	return &ResumeHandler{store: store}
}

// Extract reads the text layer of an uploaded PDF so the client can prefill the résumé field.
func (h *ResumeHandler) Extract(c *fiber.Ctx) error {
	userID, err := authctx.UserID(c)
	if err != nil {
		return respondError(c, services.ErrUnauthenticated)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return respondError(c, &services.InputError{Field: "file", Reason: "a PDF file is required"})
	}
	if fh.Size > maxUploadBytes {
		return respondError(c, &services.InputError{Field: "file", Reason: "must be at most 10 MB"})
	}
	isPDF := fh.Header.Get(fiber.HeaderContentType) == "application/pdf" ||
		strings.EqualFold(filepath.Ext(fh.Filename), ".pdf")
	if !isPDF {
		return respondError(c, &services.InputError{Field: "file", Reason: "must be a PDF"})
	}

	f, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return respondError(c, err)
	}

	text, pages, err := pdftext.Extract(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Warn("pdf extraction failed", "user_id", userID.String(), "action", "resume.extract", "error", err)
		return respondError(c, err)
	}

	h.archive(c.UserContext(), userID, data)

	return c.JSON(dto.ExtractResponse{Text: text, Pages: pages, FileName: fh.Filename})
}

// archive keeps a copy of the upload in the background. Failures are only logged.
func (h *ResumeHandler) archive(ctx context.Context, userID uuid.UUID, data []byte) {
	if h.store == nil {
		return
	}
	key := storage.ResumeKey(userID, uuid.New())
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
		defer cancel()
		if err := h.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "application/pdf"); err != nil {
			slog.Error("resume archive failed", "user_id", userID.String(), "action", "resume.archive", "error", err)
			return
		}
		slog.Info("resume archived", "user_id", userID.String(), "key", key)
	}()
}
