package dto

import (
	"time"

	"github.com/google/uuid"
)

type ProfileResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	FullName           *string    `json:"full_name"`
	Plan               string     `json:"plan"`
	GenerationsUsed    int        `json:"generations_used"`
	GenerationsLimit   int        `json:"generations_limit"`
	GenerationsLeft    int        `json:"generations_left"`
	GenerationsResetAt time.Time  `json:"generations_reset_at"`
	HasAPIKey          bool       `json:"has_api_key"`
	APIKeyHint         string     `json:"api_key_hint,omitempty"`
	ProActivatedAt     *time.Time `json:"pro_activated_at"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
}

type SaveAPIKeyRequest struct {
	APIKey string `json:"api_key"`
}

type ActivateCodeRequest struct {
	Code string `json:"code"`
}

type IssueCodesRequest struct {
	Count int `json:"count"`
}

type IssueCodesResponse struct {
	Codes []string `json:"codes"`
}
