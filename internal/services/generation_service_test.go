package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/generation"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/llm"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateReq() *dto.GenerateRequest {
	return &dto.GenerateRequest{ResumeText: "  Jane Doe\nGo developer  ", VacancyText: testVacancy}
}

func manualReq(response string) *dto.ManualSubmitRequest {
	return &dto.ManualSubmitRequest{ResumeText: "Jane Doe\nGo developer", VacancyText: testVacancy, Response: response}
}

func TestGenerateWithoutKeyReturnsPrompt(t *testing.T) {
	f := newFixture(t)
	userID := f.seedProfile(t, models.PlanFree, 0, "")

	out, err := f.gens.Generate(context.Background(), userID, generateReq())
	require.NoError(t, err)

	assert.Equal(t, generation.OutcomeManualPrompt, out.Kind)
	assert.Nil(t, out.Generation)
	assert.Equal(t, generation.BuildPrompt(generateReq().ResumeText, testVacancy), out.Prompt)
	assert.Zero(t, f.llm.Calls())
	assert.Zero(t, f.generationCount(t, userID))
	assert.Equal(t, 0, f.profile(t, userID).GenerationsUsed)
}

func TestGenerateCompletesAndChargesQuota(t *testing.T) {
	f := newFixture(t)
	userID := f.seedProfile(t, models.PlanFree, 0, "sk-ant-user-key")

	out, err := f.gens.Generate(context.Background(), userID, generateReq())
	require.NoError(t, err)
	require.Equal(t, generation.OutcomeCompleted, out.Kind)

	g := out.Generation
	require.NotNil(t, g)
	assert.Equal(t, "Senior Go Engineer", g.Title)
	assert.Equal(t, 72, g.ATSScore)
	assert.Len(t, g.ATSRecommendations, 3)
	assert.Len(t, g.CoverLetters, 2)
	assert.Equal(t, models.GenerationCompleted, g.Status)

	assert.Equal(t, 1, f.llm.Calls())
	assert.Equal(t, "sk-ant-user-key", f.llm.last.APIKey)
	assert.Equal(t, "claude-sonnet-4-5", f.llm.last.Model)
	assert.Equal(t, 4096, f.llm.last.MaxTokens)
	assert.Equal(t, int64(1), f.generationCount(t, userID))
	assert.Equal(t, 1, f.profile(t, userID).GenerationsUsed)
	assert.Equal(t, 1.0, f.generationsTotal(t, metrics.ModeAuto, "completed"))
}

func TestGenerateQuotaExceededSkipsModel(t *testing.T) {
	f := newFixture(t)
	userID := f.seedProfile(t, models.PlanFree, 3, "sk-ant-user-key")

	_, err := f.gens.Generate(context.Background(), userID, generateReq())

	var exceeded *QuotaExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, 3, exceeded.Limit)
	assert.False(t, Retryable(err))
	assert.Zero(t, f.llm.Calls())
	assert.Zero(t, f.generationCount(t, userID))
}

func TestGenerateQuotaCheckedBeforeManualPrompt(t *testing.T) {
	f := newFixture(t)
	userID := f.seedProfile(t, models.PlanFree, 3, "")

	_, err := f.gens.Generate(context.Background(), userID, generateReq())
	var exceeded *QuotaExceededError
	assert.ErrorAs(t, err, &exceeded)
}

func TestGenerateProIsUnlimited(t *testing.T) {
	f := newFixture(t)
	userID := f.seedProfile(t, models.PlanPro, 250, "sk-ant-user-key")

	out, err := f.gens.Generate(context.Background(), userID, generateReq())
	require.NoError(t, err)
	assert.Equal(t, generation.OutcomeCompleted, out.Kind)
	assert.Equal(t, 251, f.profile(t, userID).GenerationsUsed)
}

func TestGenerateResetsUsageInNewMonth(t *testing.T) {
	f := newFixture(t)
	userID := f.seedProfile(t, models.PlanFree, 3, "sk-ant-user-key")
	require.NoError(t, f.db.Model(&models.Profile{}).Where("id = ?", userID).
		Update("generations_reset_at", f.now.AddDate(0, -1, 0)).Error)

	_, err := f.gens.Generate(context.Background(), userID, generateReq())
	require.NoError(t, err)

	p := f.profile(t, userID)
	assert.Equal(t, 1, p.GenerationsUsed)
	assert.Equal(t, f.now.Month(), p.GenerationsResetAt.UTC().Month())
}

func TestGenerateLLMFailureIsRetryableAndFree(t *testing.T) {
	f := newFixture(t)
	userID := f.seedProfile(t, models.PlanFree, 0, "sk-ant-user-key")
	f.llm.err = &llm.APIError{Status: http.StatusUnauthorized, Type: "authentication_error", Message: "invalid x-api-key"}

	_, err := f.gens.Generate(context.Background(), userID, generateReq())

	var llmErr *LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.False(t, llmErr.Timeout)
	assert.Equal(t, "invalid x-api-key", llmErr.Detail)
	assert.True(t, Retryable(err))
	assert.Zero(t, f.generationCount(t, userID))
	assert.Equal(t, 0, f.profile(t, userID).GenerationsUsed)
	assert.Equal(t, 1.0, f.generationsTotal(t, metrics.ModeAuto, "llm_error"))
}

func TestGenerateTimeout(t *testing.T) {
	f := newFixture(t)
	f.cfg.AITimeout = 20 * time.Millisecond
	userID := f.seedProfile(t, models.PlanFree, 0, "sk-ant-user-key")
	f.llm.block = true

	_, err := f.gens.Generate(context.Background(), userID, generateReq())

	var llmErr *LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.True(t, llmErr.Timeout)
	assert.Equal(t, "AI request timed out", llmErr.Error())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestGenerateSurvivesClientCancellation(t *testing.T) {
	f := newFixture(t)
	userID := f.seedProfile(t, models.PlanFree, 0, "sk-ant-user-key")

	// The client goes away while the model is still answering.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.llm.onCall = cancel

	out, err := f.gens.Generate(ctx, userID, generateReq())
	require.NoError(t, err)
	assert.Equal(t, generation.OutcomeCompleted, out.Kind)
	assert.NoError(t, f.llm.ctxErr)
	assert.Equal(t, int64(1), f.generationCount(t, userID))
}

func TestGenerateMalformedResponseIsNotCharged(t *testing.T) {
	f := newFixture(t)
	userID := f.seedProfile(t, models.PlanFree, 0, "sk-ant-user-key")
	f.llm.reply = `{"ats_score": 72, "ats_recommendations": []}`

	_, err := f.gens.Generate(context.Background(), userID, generateReq())

	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.False(t, Retryable(err))
	assert.Zero(t, f.generationCount(t, userID))
	assert.Equal(t, 0, f.profile(t, userID).GenerationsUsed)
}

func TestGenerateStoresInputsVerbatim(t *testing.T) {
	f := newFixture(t)
	userID := f.seedProfile(t, models.PlanFree, 0, "sk-ant-user-key")

	req := &dto.GenerateRequest{ResumeText: "  Jane Doe\nGo developer  ", VacancyText: "\n" + testVacancy + "\n"}
	out, err := f.gens.Generate(context.Background(), userID, req)
	require.NoError(t, err)

	var stored models.Generation
	require.NoError(t, f.db.First(&stored, "id = ?", out.Generation.ID).Error)
	assert.Equal(t, req.ResumeText, stored.ResumeText)
	assert.Equal(t, req.VacancyText, stored.VacancyText)
	assert.Equal(t, generation.UntitledTitle, stored.Title, "title comes from the raw first line")
	assert.Equal(t, generation.BuildPrompt(req.ResumeText, req.VacancyText), f.llm.last.Prompt)
}

func TestGenerateRejectsInput(t *testing.T) {
	f := newFixture(t)
	userID := f.seedProfile(t, models.PlanFree, 0, "sk-ant-user-key")

	cases := map[string]*dto.GenerateRequest{
		"empty resume":  {ResumeText: "   ", VacancyText: testVacancy},
		"short vacancy": {ResumeText: "Jane", VacancyText: "Go dev"},
		"huge resume":   {ResumeText: strings.Repeat("я", maxInputRunes+1), VacancyText: testVacancy},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.gens.Generate(context.Background(), userID, req)
			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Zero(t, f.llm.Calls())
}

func TestGenerateUnauthenticatedAndMissingProfile(t *testing.T) {
	f := newFixture(t)

	_, err := f.gens.Generate(context.Background(), uuid.Nil, generateReq())
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.gens.Generate(context.Background(), uuid.New(), generateReq())
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestSubmitManualPersists(t *testing.T) {
	f := newFixture(t)
	userID := f.seedProfile(t, models.PlanFree, 2, "")

	out, err := f.gens.SubmitManual(context.Background(), userID, manualReq(validResponse))
	require.NoError(t, err)
	require.Equal(t, generation.OutcomeCompleted, out.Kind)
	assert.Equal(t, "Senior Go Engineer", out.Generation.Title)

	assert.Zero(t, f.llm.Calls())
	assert.Equal(t, 3, f.profile(t, userID).GenerationsUsed)
	assert.Equal(t, 1.0, f.generationsTotal(t, metrics.ModeManual, "completed"))
}

func TestSubmitManualRechecksQuota(t *testing.T) {
	f := newFixture(t)
	userID := f.seedProfile(t, models.PlanFree, 3, "")

	_, err := f.gens.SubmitManual(context.Background(), userID, manualReq(validResponse))
	var exceeded *QuotaExceededError
	require.ErrorAs(t, err, &exceeded)

	// A new month makes the same submission acceptable.
	f.now = f.now.AddDate(0, 1, 0)
	_, err = f.gens.SubmitManual(context.Background(), userID, manualReq(validResponse))
	require.NoError(t, err)
	assert.Equal(t, 1, f.profile(t, userID).GenerationsUsed)
}

func TestSubmitManualRejectsBadResponse(t *testing.T) {
	f := newFixture(t)
	userID := f.seedProfile(t, models.PlanFree, 0, "")

	_, err := f.gens.SubmitManual(context.Background(), userID, manualReq("  "))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.gens.SubmitManual(context.Background(), userID, manualReq("Sure! Here is your résumé."))
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Zero(t, f.generationCount(t, userID))
}

func TestListGetAndDashboard(t *testing.T) {
	f := newFixture(t)
	userID := f.seedProfile(t, models.PlanPro, 0, "")
	otherID := f.seedProfile(t, models.PlanFree, 0, "")

	base := f.now.Add(-time.Hour)
	for i, score := range []int{50, 70, 90} {
		require.NoError(t, f.db.Create(&models.Generation{
			UserID:          userID,
			Title:           "Role " + string(rune('A'+i)),
			ResumeText:      "r",
			VacancyText:     "v",
			ATSScore:        score,
			OptimizedResume: "o",
			CoverLetters:    []string{"a", "b"},
			Status:          models.GenerationCompleted,
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	items, total, err := f.gens.List(context.Background(), userID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	assert.Equal(t, "Role C", items[0].Title)
	assert.Equal(t, "strong", items[0].ATSBand)
	assert.Equal(t, 2, items[0].CoverLetterCount)

	_, err = f.gens.Get(context.Background(), otherID, items[0].ID)
	assert.ErrorIs(t, err, ErrGenerationNotFound)

	g, err := f.gens.Get(context.Background(), userID, items[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 70, g.ATSScore)

	dash, err := f.gens.Dashboard(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), dash.TotalGenerations)
	assert.Equal(t, 70, dash.AverageATSScore)
	assert.Len(t, dash.Recent, 3)
	assert.Equal(t, -1, dash.Profile.GenerationsLeft)

	empty, err := f.gens.Dashboard(context.Background(), otherID)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalGenerations)
	assert.Zero(t, empty.AverageATSScore)
	assert.Empty(t, empty.Recent)
}

func TestGenerationViewNeverReturnsNullSlices(t *testing.T) {
	view := GenerationView(&models.Generation{ATSScore: 40})
	assert.NotNil(t, view.ATSRecommendations)
	assert.NotNil(t, view.CoverLetters)
	assert.Equal(t, "weak", view.ATSBand)
}
