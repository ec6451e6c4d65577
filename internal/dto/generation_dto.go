package dto

import (
	"time"

	"github.com/google/uuid"
)

type GenerateRequest struct {
	ResumeText  string `json:"resume_text"`
	VacancyText string `json:"vacancy_text"`
}

type ManualSubmitRequest struct {
	ResumeText  string `json:"resume_text"`
	VacancyText string `json:"vacancy_text"`
	Response    string `json:"response"`
}

// GenerateResponse carries either a completed generation or the prompt for manual mode.
type GenerateResponse struct {
	Status     string              `json:"status"`
	Generation *GenerationResponse `json:"generation,omitempty"`
	Prompt     string              `json:"prompt,omitempty"`
}

type GenerationResponse struct {
	ID                 uuid.UUID `json:"id"`
	Title              string    `json:"title"`
	ResumeText         string    `json:"resume_text"`
	VacancyText        string    `json:"vacancy_text"`
	ATSScore           int       `json:"ats_score"`
	ATSBand            string    `json:"ats_band"`
	ATSRecommendations []string  `json:"ats_recommendations"`
	OptimizedResume    string    `json:"optimized_resume"`
	CoverLetters       []string  `json:"cover_letters"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}

// GenerationSummary is the history-list shape; full texts are fetched per item.
type GenerationSummary struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	ATSScore         int       `json:"ats_score"`
	ATSBand          string    `json:"ats_band"`
	CoverLetterCount int       `json:"cover_letter_count"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

type DashboardResponse struct {
	Profile          ProfileResponse     `json:"profile"`
	TotalGenerations int64               `json:"total_generations"`
	AverageATSScore  int                 `json:"average_ats_score"`
	Recent           []GenerationSummary `json:"recent"`
}

type ExtractResponse struct {
	Text     string `json:"text"`
	Pages    int    `json:"pages"`
	FileName string `json:"file_name"`
}

type GenerationListResponse struct {
	Items  []GenerationSummary `json:"items"`
	Total  int64               `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}
