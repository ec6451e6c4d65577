package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/quota"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	apiKeyPrefix    = "sk-ant-"
	maxFullName     = 255
	maxIssuedCodes  = 100
	codeGroups      = 3
	codeGroupLength = 4
	// 32 symbols, so a random byte maps onto it without bias. No 0/O or 1/I.
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

type ProfileService struct {
	db      *gorm.DB
	tracker *quota.Tracker
}

func NewProfileService(db *gorm.DB, tracker *quota.Tracker) *ProfileService {
	return &ProfileService{db: db, tracker: tracker}
}

func (s *ProfileService) now() time.Time {
	return s.tracker.Now()
}

func newProfile(userID uuid.UUID, email, fullName string, now time.Time) *models.Profile {
	p := &models.Profile{
		ID:                 userID,
		Email:              email,
		Plan:               models.PlanFree,
		GenerationsResetAt: now,
	}
	if fullName != "" {
		p.FullName = &fullName
	}
	return p
}

// EnsureProfile creates the free profile for userID if it does not exist yet.
func (s *ProfileService) EnsureProfile(ctx context.Context, userID uuid.UUID, email string) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(newProfile(userID, email, "", s.now())).Error
	if err != nil {
		return fmt.Errorf("failed to ensure profile: %w", err)
	}
	return nil
}

func (s *ProfileService) load(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := db.WithContext(ctx).First(&p, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &p, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error) {
	p, err := s.load(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	view := s.view(p)
	return &view, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	name := strings.TrimSpace(req.FullName)
	if utf8.RuneCountInString(name) > maxFullName {
		return nil, invalid("full_name", "must be at most %d characters", maxFullName)
	}

	var value interface{}
	if name != "" {
		value = name
	}
	return s.update(ctx, userID, map[string]interface{}{"full_name": value})
}

// SaveAPIKey stores the user's own Anthropic key, which switches generation to automatic mode.
func (s *ProfileService) SaveAPIKey(ctx context.Context, userID uuid.UUID, key string) (*dto.ProfileResponse, error) {
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(key, apiKeyPrefix) || len(key) <= len(apiKeyPrefix) {
		return nil, invalid("api_key", "must start with %q", apiKeyPrefix)
	}
	return s.update(ctx, userID, map[string]interface{}{"anthropic_api_key": key})
}

// ClearAPIKey removes the stored key; later generations return a prompt for manual mode.
func (s *ProfileService) ClearAPIKey(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error) {
	return s.update(ctx, userID, map[string]interface{}{"anthropic_api_key": nil})
}

func (s *ProfileService) update(ctx context.Context, userID uuid.UUID, fields map[string]interface{}) (*dto.ProfileResponse, error) {
	res := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", userID).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrProfileNotFound
	}
	return s.GetProfile(ctx, userID)
}

// ActivateProCode redeems a single-use code. The code is claimed with a conditional update, so
// two concurrent redemptions of the same code cannot both succeed.
func (s *ProfileService) ActivateProCode(ctx context.Context, userID uuid.UUID, code string) (*dto.ProfileResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, invalid("code", "is required")
	}

	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.load(ctx, tx, userID)
		if err != nil {
			return err
		}
		if p.IsPro() {
			// An unusable code is reported as such even for Pro users; a valid one is left unspent.
			var unused int64
			if err := tx.Model(&models.ActivationCode{}).
				Where("code = ? AND used = ?", code, false).
				Count(&unused).Error; err != nil {
				return fmt.Errorf("failed to look up code: %w", err)
			}
			if unused == 0 {
				return ErrActivationCodeInvalid
			}
			return ErrAlreadyPro
		}

		res := tx.Model(&models.ActivationCode{}).
			Where("code = ? AND used = ?", code, false).
			Updates(map[string]interface{}{
				"used":    true,
				"used_by": userID,
				"used_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to redeem code: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrActivationCodeInvalid
		}

		return tx.Model(&models.Profile{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"plan":             models.PlanPro,
			"pro_activated_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetProfile(ctx, userID)
}

// IssueCodes mints n fresh activation codes for sale through the payment link.
func (s *ProfileService) IssueCodes(ctx context.Context, n int) ([]string, error) {
	if n < 1 || n > maxIssuedCodes {
		return nil, invalid("count", "must be between 1 and %d", maxIssuedCodes)
	}

	records := make([]models.ActivationCode, 0, n)
	codes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		code, err := newActivationCode()
		if err != nil {
			return nil, err
		}
		records = append(records, models.ActivationCode{Code: code})
		codes = append(codes, code)
	}

	if err := s.db.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to store activation codes: %w", err)
	}
	return codes, nil
}

func newActivationCode() (string, error) {
	raw := make([]byte, codeGroups*codeGroupLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	var b strings.Builder
	b.WriteString("PRO")
	for i, c := range raw {
		if i%codeGroupLength == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}
	return b.String(), nil
}

// view reports usage as it will be seen by the next request: a profile whose window has
// rolled over shows zero usage even before the reset is persisted.
func (s *ProfileService) view(p *models.Profile) dto.ProfileResponse {
	used := p.GenerationsUsed
	if quota.NeedsReset(s.now(), p.GenerationsResetAt) {
		used = 0
	}
	shown := *p
	shown.GenerationsUsed = used

	limit := s.tracker.Limit()
	resp := dto.ProfileResponse{
		ID:                 p.ID,
		Email:              p.Email,
		FullName:           p.FullName,
		Plan:               p.Plan,
		GenerationsUsed:    used,
		GenerationsLimit:   limit,
		GenerationsLeft:    quota.Remaining(&shown, limit),
		GenerationsResetAt: p.GenerationsResetAt,
		HasAPIKey:          p.HasAPIKey(),
		ProActivatedAt:     p.ProActivatedAt,
	}
	if resp.HasAPIKey {
		resp.APIKeyHint = keyHint(*p.AnthropicAPIKey)
	}
	return resp
}

func keyHint(key string) string {
	if len(key) <= len(apiKeyPrefix)+4 {
		return apiKeyPrefix + "…"
	}
	return apiKeyPrefix + "…" + key[len(key)-4:]
}
