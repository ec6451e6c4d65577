package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/pdfrender"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/pdftext"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrUnauthenticated, 401, "UNAUTHENTICATED"},
		{services.ErrProfileNotFound, 404, "PROFILE_NOT_FOUND"},
		{&services.QuotaExceededError{Limit: 3}, 402, "LIMIT_REACHED"},
		{&services.InputError{Field: "vacancy_text", Reason: "too short"}, 400, "INVALID_INPUT"},
		{&services.LLMError{Detail: "overloaded"}, 502, "LLM_ERROR"},
		{&services.LLMError{Timeout: true, Err: context.DeadlineExceeded}, 504, "LLM_ERROR"},
		{fmt.Errorf("%w: missing ats_score", services.ErrMalformedResponse), 422, "MALFORMED_RESPONSE"},
		{services.ErrActivationCodeInvalid, 400, "ACTIVATION_CODE_INVALID"},
		{services.ErrAlreadyPro, 409, "ALREADY_PRO"},
		{services.ErrEmailTaken, 409, "EMAIL_TAKEN"},
		{services.ErrInvalidCredentials, 401, "INVALID_CREDENTIALS"},
		{services.ErrGenerationNotFound, 404, "GENERATION_NOT_FOUND"},
		{pdftext.ErrNoText, 422, "NO_TEXT_LAYER"},
		{fmt.Errorf("%w: eof", pdftext.ErrInvalidPDF), 400, "INVALID_PDF"},
		{pdfrender.ErrEmptyResume, 422, "EMPTY_RESUME"},
		{io.ErrUnexpectedEOF, 500, "INTERNAL"},
	}
	for _, tc := range cases {
		status, code := statusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestRespondErrorBody(t *testing.T) {
	app := fiber.New()
	app.Get("/llm", func(c *fiber.Ctx) error { return respondError(c, &services.LLMError{Detail: "overloaded"}) })
	app.Get("/boom", func(c *fiber.Ctx) error { return respondError(c, fmt.Errorf("dial tcp: refused")) })
	app.Get("/quota", func(c *fiber.Ctx) error { return respondError(c, &services.QuotaExceededError{Limit: 3}) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/llm", nil))
	require.NoError(t, err)
	body := decodeError(t, resp)
	assert.True(t, body.Error)
	assert.True(t, body.Retryable)
	assert.Equal(t, "AI request failed: overloaded", body.Message)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	body = decodeError(t, resp)
	assert.Equal(t, "Internal server error", body.Message)
	assert.False(t, body.Retryable)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/quota", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)
	body = decodeError(t, resp)
	assert.Contains(t, body.Message, "3 generations")
	assert.False(t, body.Retryable)
}

func TestPDFFileName(t *testing.T) {
	assert.Equal(t, "senior-go-engineer-resume.pdf", pdfFileName("Senior Go Engineer"))
	assert.Equal(t, "resume.pdf", pdfFileName("Untitled"))
	assert.Equal(t, "resume.pdf", pdfFileName("!!!"))
}

type memStore struct {
	mu   sync.Mutex
	keys []string
	done chan struct{}
}

func (m *memStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	_, _ = io.Copy(io.Discard, r)
	m.mu.Lock()
	m.keys = append(m.keys, key)
	m.mu.Unlock()
	close(m.done)
	return nil
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/extract", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func extractApp(store *memStore) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(authctx.LocalsKey, &jwt.Token{Claims: jwt.MapClaims{"sub": uuid.NewString()}})
		return c.Next()
	})
	h := NewResumeHandler(nil)
	if store != nil {
		h = NewResumeHandler(store)
	}
	app.Post("/extract", h.Extract)
	return app
}

func TestExtractRejectsBadUploads(t *testing.T) {
	app := extractApp(nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/extract", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(multipartUpload(t, "resume.docx", []byte("PK...")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, resp).Code)

	resp, err = app.Test(multipartUpload(t, "resume.pdf", []byte("not really a pdf")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_PDF", decodeError(t, resp).Code)
}

func TestExtractReturnsTextAndArchives(t *testing.T) {
	store := &memStore{done: make(chan struct{})}
	app := extractApp(store)

	data := testutil.MinimalPDF("BT /F1 12 Tf 72 720 Td (Jane Doe Go Engineer) Tj ET")
	resp, err := app.Test(multipartUpload(t, "cv.pdf", data))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.ExtractResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Text, "Jane Doe")
	assert.Equal(t, 1, body.Pages)
	assert.Equal(t, "cv.pdf", body.FileName)

	select {
	case <-store.done:
	case <-time.After(2 * time.Second):
		t.Fatal("upload was not archived")
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.keys, 1)
	assert.Regexp(t, `^resumes/[0-9a-f-]{36}/[0-9a-f-]{36}\.pdf$`, store.keys[0])
}
