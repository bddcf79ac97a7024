package dto

import (
	"time"

	"github.com/noah-isme/academy-admin-api/internal/models"
)

// ResetCodeRequest carries the optional reason for a signup-code reset.
type ResetCodeRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// ToggleCodeRequest carries the optional reason for a status toggle.
type ToggleCodeRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// SignupCodeResponse describes the current code after a reset.
type SignupCodeResponse struct {
	BatchID     string    `json:"batch_id"`
	Code        string    `json:"code"`
	IsActive    bool      `json:"is_active"`
	UsageCount  int       `json:"usage_count"`
	GeneratedAt time.Time `json:"generated_at"`
	ResetReason *string   `json:"reset_reason,omitempty"`
}

// ToggleCodeResponse reports the state after a toggle.
type ToggleCodeResponse struct {
	BatchID  string `json:"batch_id"`
	IsActive bool   `json:"is_active"`
}

// CodeStatusResponse is the read-only status projection.
type CodeStatusResponse struct {
	BatchID    string `json:"batch_id"`
	IsActive   bool   `json:"is_active"`
	UsageCount int    `json:"usage_count"`
}

// RedeemRequest is a student's attempt to register with a signup code.
type RedeemRequest struct {
	Code  string `json:"code" validate:"required,max=64"`
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email,max=200"`
}

// RedeemResponse reports the recorded outcome of a redemption attempt.
type RedeemResponse struct {
	LogID         string                    `json:"log_id"`
	BatchID       string                    `json:"batch_id,omitempty"`
	BatchName     string                    `json:"batch_name,omitempty"`
	Status        models.RegistrationStatus `json:"status"`
	FailureReason *string                   `json:"failure_reason,omitempty"`
}
