package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/llm"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/quota"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const validResponse = "```json\n" + `{
  "ats_score": 72,
  "ats_recommendations": ["Add Kubernetes", "Quantify results", "Mention Go"],
  "optimized_resume": "Jane Doe\njane@example.com\n\nEXPERIENCE\n- Built services in Go",
  "cover_letters": ["Dear Hiring Manager, ...", "Hi team, ..."]
}` + "\n```"

const testVacancy = "Senior Go Engineer\nWe are looking for an engineer with Go, Kubernetes and PostgreSQL experience."

// stubLLM records calls and answers with a fixed reply or error.
type stubLLM struct {
	mu     sync.Mutex
	reply  string
	err    error
	block  bool
	onCall func()
	calls  int
	last   llm.Request
	ctxErr error
}

func (s *stubLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	if s.onCall != nil {
		s.onCall()
	}
	s.mu.Lock()
	s.calls++
	s.last = req
	s.ctxErr = ctx.Err()
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.reply, s.err
}

func (s *stubLLM) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fixture struct {
	db       *gorm.DB
	cfg      *config.Config
	now      time.Time
	llm      *stubLLM
	metrics  *metrics.Recorder
	registry *prometheus.Registry
	tracker  *quota.Tracker
	profiles *ProfileService
	auth     *AuthService
	gens     *GenerationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db: testutil.NewDB(t),
		cfg: &config.Config{
			JWTSecret:           "test-secret",
			JWTAccessExpiry:     15 * time.Minute,
			JWTRefreshExpiry:    time.Hour,
			AnthropicModel:      "claude-sonnet-4-5",
			AnthropicMaxTokens:  4096,
			AITimeout:           time.Second,
			FreeGenerationLimit: 3,
		},
		now:      time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC),
		llm:      &stubLLM{reply: validResponse},
		registry: prometheus.NewRegistry(),
	}
	f.metrics = metrics.NewRecorder(f.registry)
	f.tracker = quota.NewTracker(f.db, f.cfg.FreeGenerationLimit).WithClock(func() time.Time { return f.now })
	f.profiles = NewProfileService(f.db, f.tracker)
	f.auth = NewAuthService(f.db, f.cfg, f.profiles)
	f.gens = NewGenerationService(f.db, f.cfg, f.tracker, f.profiles, f.llm, f.metrics)
	return f
}

func (f *fixture) seedProfile(t *testing.T, plan string, used int, apiKey string) uuid.UUID {
	t.Helper()
	p := &models.Profile{
		ID:                 uuid.New(),
		Email:              "jane@example.com",
		Plan:               plan,
		GenerationsUsed:    used,
		GenerationsResetAt: f.now,
	}
	if apiKey != "" {
		p.AnthropicAPIKey = &apiKey
	}
	require.NoError(t, f.db.Create(p).Error)
	return p.ID
}

func (f *fixture) profile(t *testing.T, id uuid.UUID) models.Profile {
	t.Helper()
	var p models.Profile
	require.NoError(t, f.db.First(&p, "id = ?", id).Error)
	return p
}

func (f *fixture) generationCount(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Generation{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

// generationsTotal reads one series of resumeai_generations_total from the fixture registry.
func (f *fixture) generationsTotal(t *testing.T, mode, outcome string) float64 {
	t.Helper()
	families, err := f.registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "resumeai_generations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["mode"] == mode && labels["outcome"] == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}
