package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	GenerationPending   = "pending"
	GenerationCompleted = "completed"
	GenerationFailed    = "failed"
)

// Generation is one completed optimization. It is written once and never updated.
type Generation struct {
	ID                 uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID                   `gorm:"type:uuid;not null;index:idx_generations_user_created,priority:1" json:"user_id"`
	Title              string                      `gorm:"size:255;not null" json:"title"`
	ResumeText         string                      `gorm:"type:text;not null" json:"resume_text"`
	VacancyText        string                      `gorm:"type:text;not null" json:"vacancy_text"`
	ATSScore           int                         `gorm:"not null" json:"ats_score"`
	ATSRecommendations datatypes.JSONSlice[string] `json:"ats_recommendations"`
	OptimizedResume    string                      `gorm:"type:text;not null" json:"optimized_resume"`
	CoverLetters       datatypes.JSONSlice[string] `json:"cover_letters"`
	Status             string                      `gorm:"size:20;not null;default:'completed'" json:"status"`
	CreatedAt          time.Time                   `gorm:"index:idx_generations_user_created,priority:2" json:"created_at"`
}

func (Generation) TableName() string {
	return "generations"
}

func (g *Generation) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
