package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivationCode is a single-use token that upgrades a profile to Pro.
type ActivationCode struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string     `gorm:"size:64;not null;uniqueIndex" json:"code"`
	Used      bool       `gorm:"not null;default:false;index" json:"used"`
	UsedBy    *uuid.UUID `gorm:"type:uuid" json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (ActivationCode) TableName() string {
	return "activation_codes"
}

func (a *ActivationCode) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
