package models

import "time"

// Batch represents a student cohort sharing one signup code.
// The single signup_code column is what enforces the one-active-code
// invariant: a replaced value ceases to exist the moment the reset commits.
type Batch struct {
	ID              string     `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Description     string     `db:"description" json:"description,omitempty"`
	SignupCode      string     `db:"signup_code" json:"signup_code"`
	CodeActive      bool       `db:"code_active" json:"code_active"`
	CodeUsageCount  int        `db:"code_usage_count" json:"code_usage_count"`
	CodeGeneratedAt time.Time  `db:"code_generated_at" json:"code_generated_at"`
	CodeResetReason *string    `db:"code_reset_reason" json:"code_reset_reason,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// SignupCodeStatus is the read-only projection served by the status endpoint.
type SignupCodeStatus struct {
	BatchID    string `db:"id" json:"batch_id"`
	IsActive   bool   `db:"code_active" json:"is_active"`
	UsageCount int    `db:"code_usage_count" json:"usage_count"`
}

// CodeEventType identifies administrative signup-code events.
type CodeEventType string

// Recorded code event types.
const (
	CodeEventReset       CodeEventType = "RESET"
	CodeEventActivated   CodeEventType = "ACTIVATED"
	CodeEventDeactivated CodeEventType = "DEACTIVATED"
)

// CodeEvent is an append-only audit record for signup-code administration,
// kept separate from redemption entries in the usage log.
type CodeEvent struct {
	ID        string        `db:"id" json:"id"`
	BatchID   string        `db:"batch_id" json:"batch_id"`
	Event     CodeEventType `db:"event" json:"event"`
	Reason    *string       `db:"reason" json:"reason,omitempty"`
	ActorID   *string       `db:"actor_id" json:"actor_id,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}
