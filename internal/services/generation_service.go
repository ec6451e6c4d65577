package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/generation"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/llm"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/quota"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxInputRunes     = 50000
	minVacancyRunes   = 50
	defaultPageSize   = 20
	maxPageSize       = 50
	dashboardRecent   = 5
	outcomeQuota      = "quota_exceeded"
	outcomeLLMError   = "llm_error"
	outcomeMalformed  = "malformed"
	outcomeInvalid    = "invalid_input"
	outcomeStoreError = "store_error"
)

type GenerationService struct {
	db       *gorm.DB
	cfg      *config.Config
	tracker  *quota.Tracker
	profiles *ProfileService
	client   llm.Client
	metrics  *metrics.Recorder
}

func NewGenerationService(db *gorm.DB, cfg *config.Config, tracker *quota.Tracker, profiles *ProfileService, client llm.Client, rec *metrics.Recorder) *GenerationService {
	return &GenerationService{
		db:       db,
		cfg:      cfg,
		tracker:  tracker,
		profiles: profiles,
		client:   client,
		metrics:  rec,
	}
}

// Generate runs one optimization. Without a stored API key it returns the prompt for the
// manual path and neither persists anything nor charges the quota.
func (s *GenerationService) Generate(ctx context.Context, userID uuid.UUID, req *dto.GenerateRequest) (*generation.Outcome, error) {
	outcome, err := s.generate(ctx, userID, req)
	s.record(metrics.ModeAuto, outcome, err)
	return outcome, err
}

func (s *GenerationService) generate(ctx context.Context, userID uuid.UUID, req *dto.GenerateRequest) (*generation.Outcome, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	resume, vacancy, err := checkTexts(req.ResumeText, req.VacancyText)
	if err != nil {
		return nil, err
	}

	profile, err := s.admit(ctx, userID)
	if err != nil {
		return nil, err
	}

	prompt := generation.BuildPrompt(resume, vacancy)
	if !profile.HasAPIKey() {
		slog.Info("generation needs manual mode", "user_id", userID.String(), "action", "generation.manual_prompt")
		return generation.ManualPrompt(prompt), nil
	}

	raw, err := s.complete(ctx, userID, *profile.AnthropicAPIKey, prompt)
	if err != nil {
		return nil, err
	}

	result, err := generation.Validate(raw)
	if err != nil {
		slog.Warn("model response rejected", "user_id", userID.String(), "action", "generation.validate", "error", err)
		return nil, err
	}

	g, err := s.persist(ctx, userID, resume, vacancy, result)
	if err != nil {
		return nil, err
	}
	return generation.Completed(g), nil
}

// SubmitManual accepts a response produced outside the service from the prompt returned by
// Generate. The quota is re-evaluated now, not when the prompt was issued.
func (s *GenerationService) SubmitManual(ctx context.Context, userID uuid.UUID, req *dto.ManualSubmitRequest) (*generation.Outcome, error) {
	outcome, err := s.submitManual(ctx, userID, req)
	s.record(metrics.ModeManual, outcome, err)
	return outcome, err
}

func (s *GenerationService) submitManual(ctx context.Context, userID uuid.UUID, req *dto.ManualSubmitRequest) (*generation.Outcome, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	resume, vacancy, err := checkTexts(req.ResumeText, req.VacancyText)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Response) == "" {
		return nil, invalid("response", "is required")
	}

	if _, err := s.admit(ctx, userID); err != nil {
		return nil, err
	}

	result, err := generation.Validate(req.Response)
	if err != nil {
		return nil, err
	}

	g, err := s.persist(ctx, userID, resume, vacancy, result)
	if err != nil {
		return nil, err
	}
	return generation.Completed(g), nil
}

// admit loads the profile, applies a due monthly reset and checks the allowance.
func (s *GenerationService) admit(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.profiles.load(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.tracker.CheckAndMaybeReset(ctx, profile)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, &QuotaExceededError{Limit: s.tracker.Limit()}
	}
	return profile, nil
}

// complete calls the model on a context detached from the client connection: once a paid call
// has started it runs to completion or to the configured timeout.
func (s *GenerationService) complete(ctx context.Context, userID uuid.UUID, apiKey, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.AITimeout)
	defer cancel()

	start := time.Now()
	raw, err := s.client.Complete(callCtx, llm.Request{
		APIKey:    apiKey,
		Model:     s.cfg.AnthropicModel,
		MaxTokens: s.cfg.AnthropicMaxTokens,
		Prompt:    prompt,
	})
	took := time.Since(start)
	s.metrics.LLMCall(took, err)

	if err != nil {
		llmErr := wrapLLMError(err)
		slog.Error("model call failed",
			"user_id", userID.String(),
			"action", "generation.llm",
			"error", err,
			"latency_ms", took.Milliseconds(),
		)
		return "", llmErr
	}

	slog.Info("model call finished", "user_id", userID.String(), "latency_ms", took.Milliseconds())
	return raw, nil
}

func wrapLLMError(err error) *LLMError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &LLMError{Timeout: true, Detail: "timeout", Err: err}
	}
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &LLMError{Detail: apiErr.Message, Err: err}
	}
	return &LLMError{Detail: err.Error(), Err: err}
}

// persist writes the generation and charges the quota atomically; either both happen or
// neither does. It outlives client cancellation so a finished model call is never lost.
func (s *GenerationService) persist(ctx context.Context, userID uuid.UUID, resume, vacancy string, result generation.Result) (*models.Generation, error) {
	g := &models.Generation{
		UserID:             userID,
		Title:              generation.Title(vacancy),
		ResumeText:         resume,
		VacancyText:        vacancy,
		ATSScore:           result.ATSScore,
		ATSRecommendations: result.ATSRecommendations,
		OptimizedResume:    result.OptimizedResume,
		CoverLetters:       result.CoverLetters,
		Status:             models.GenerationCompleted,
	}

	err := s.db.WithContext(context.WithoutCancel(ctx)).Transaction(func(tx *gorm.DB) error {
		if err := s.tracker.Consume(tx, userID); err != nil {
			return err
		}
		if err := tx.Create(g).Error; err != nil {
			return fmt.Errorf("failed to save generation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("generation saved",
		"user_id", userID.String(),
		"generation_id", g.ID.String(),
		"ats_score", g.ATSScore,
	)
	return g, nil
}

func (s *GenerationService) record(mode string, outcome *generation.Outcome, err error) {
	if err == nil {
		s.metrics.Generation(mode, string(outcome.Kind))
		return
	}

	var (
		exceeded *QuotaExceededError
		llmErr   *LLMError
	)
	switch {
	case errors.As(err, &exceeded):
		s.metrics.Generation(mode, outcomeQuota)
	case errors.As(err, &llmErr):
		s.metrics.Generation(mode, outcomeLLMError)
	case errors.Is(err, ErrMalformedResponse):
		s.metrics.Generation(mode, outcomeMalformed)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnauthenticated):
		s.metrics.Generation(mode, outcomeInvalid)
	default:
		s.metrics.Generation(mode, outcomeStoreError)
	}
}

// checkTexts validates trimmed copies; the texts themselves are passed through verbatim.
func checkTexts(resumeText, vacancyText string) (string, string, error) {
	resume := utf8.RuneCountInString(strings.TrimSpace(resumeText))
	vacancy := utf8.RuneCountInString(strings.TrimSpace(vacancyText))

	switch {
	case resume == 0:
		return "", "", invalid("resume_text", "is required")
	case resume > maxInputRunes:
		return "", "", invalid("resume_text", "must be at most %d characters", maxInputRunes)
	case vacancy < minVacancyRunes:
		return "", "", invalid("vacancy_text", "must be at least %d characters", minVacancyRunes)
	case vacancy > maxInputRunes:
		return "", "", invalid("vacancy_text", "must be at most %d characters", maxInputRunes)
	}
	return resumeText, vacancyText, nil
}

// List returns the user's history, newest first, and the total number of records.
func (s *GenerationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.GenerationSummary, int64, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	db := s.db.WithContext(ctx).Model(&models.Generation{}).Where("user_id = ?", userID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count generations: %w", err)
	}

	var rows []models.Generation
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list generations: %w", err)
	}

	return summaries(rows), total, nil
}

// Get returns one generation owned by userID. Other users' records are reported as missing.
func (s *GenerationService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Generation, error) {
	var g models.Generation
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGenerationNotFound
		}
		return nil, fmt.Errorf("failed to load generation: %w", err)
	}
	return &g, nil
}

func (s *GenerationService) Dashboard(ctx context.Context, userID uuid.UUID) (*dto.DashboardResponse, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var stats struct {
		Total   int64
		Average float64
	}
	err = s.db.WithContext(ctx).Model(&models.Generation{}).
		Select("COUNT(*) AS total, COALESCE(AVG(ats_score), 0) AS average").
		Where("user_id = ?", userID).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate generations: %w", err)
	}

	recent, _, err := s.List(ctx, userID, dashboardRecent, 0)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		Profile:          *profile,
		TotalGenerations: stats.Total,
		AverageATSScore:  int(math.Round(stats.Average)),
		Recent:           recent,
	}, nil
}

func summaries(rows []models.Generation) []dto.GenerationSummary {
	out := make([]dto.GenerationSummary, 0, len(rows))
	for _, g := range rows {
		out = append(out, dto.GenerationSummary{
			ID:               g.ID,
			Title:            g.Title,
			ATSScore:         g.ATSScore,
			ATSBand:          generation.ScoreBand(g.ATSScore),
			CoverLetterCount: len(g.CoverLetters),
			Status:           g.Status,
			CreatedAt:        g.CreatedAt,
		})
	}
	return out
}

// GenerationView is the full client representation of a stored generation.
func GenerationView(g *models.Generation) dto.GenerationResponse {
	recs := []string(g.ATSRecommendations)
	if recs == nil {
		recs = []string{}
	}
	letters := []string(g.CoverLetters)
	if letters == nil {
		letters = []string{}
	}
	return dto.GenerationResponse{
		ID:                 g.ID,
		Title:              g.Title,
		ResumeText:         g.ResumeText,
		VacancyText:        g.VacancyText,
		ATSScore:           g.ATSScore,
		ATSBand:            generation.ScoreBand(g.ATSScore),
		ATSRecommendations: recs,
		OptimizedResume:    g.OptimizedResume,
		CoverLetters:       letters,
		Status:             g.Status,
		CreatedAt:          g.CreatedAt,
	}
}
