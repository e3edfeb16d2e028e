package models

import (
	"github.com/breezyday/breezyday/internal/assistant"
	"github.com/breezyday/breezyday/internal/user"
)

// ProfileUpdated is the body of a successful profile update.
type ProfileUpdated struct {
	Message string        `json:"message"`
	Profile *user.Profile `json:"profile"`
}

// FeedbackCreated is the body of a successful feedback submission.
type FeedbackCreated struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// AllergyTipsRequest is the body of POST /api/ai/allergy-tips.
type AllergyTipsRequest struct {
	GeminiAPIKey string        `json:"geminiApiKey"`
	Env          assistant.Env `json:"env"`
}

// AllergyTips is the body of a tips response.
type AllergyTips struct {
	Success bool     `json:"success"`
	Tips    []string `json:"tips"`
}
