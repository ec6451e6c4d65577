package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// Profile holds plan and usage state. Its ID is the owning user's ID.
type Profile struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email              string     `gorm:"size:255" json:"email"`
	FullName           *string    `gorm:"size:255" json:"full_name"`
	Plan               string     `gorm:"size:10;not null;default:'free'" json:"plan"`
	GenerationsUsed    int        `gorm:"not null;default:0" json:"generations_used"`
	GenerationsResetAt time.Time  `gorm:"not null" json:"generations_reset_at"`
	AnthropicAPIKey    *string    `gorm:"size:255" json:"-"`
	ProActivatedAt     *time.Time `json:"pro_activated_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// HasAPIKey reports whether automatic generation is possible for this profile.
func (p *Profile) HasAPIKey() bool {
	return p.AnthropicAPIKey != nil && strings.TrimSpace(*p.AnthropicAPIKey) != ""
}

func (p *Profile) IsPro() bool {
	return p.Plan == PlanPro
}
