package models

import "time"

// RegistrationStatus represents the lifecycle of a signup-code redemption.
type RegistrationStatus string

// Possible registration statuses.
const (
	RegistrationStatusPending    RegistrationStatus = "PENDING"
	RegistrationStatusSuccessful RegistrationStatus = "SUCCESSFUL"
	RegistrationStatusFailed     RegistrationStatus = "FAILED"
)

// Valid reports whether the status is one of the known values.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationStatusPending, RegistrationStatusSuccessful, RegistrationStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the status permits no further transition.
func (s RegistrationStatus) Terminal() bool {
	return s == RegistrationStatusSuccessful || s == RegistrationStatusFailed
}

// UsageLogEntry records a single signup-code redemption attempt. Entries are
// append-only; the only permitted mutation is PENDING to a terminal status.
type UsageLogEntry struct {
	ID            string             `db:"id" json:"id"`
	BatchID       string             `db:"batch_id" json:"batch_id"`
	UserName      string             `db:"user_name" json:"user_name"`
	UserEmail     string             `db:"user_email" json:"user_email"`
	SignupCode    string             `db:"signup_code" json:"signup_code"`
	Status        RegistrationStatus `db:"registration_status" json:"registration_status"`
	FailureReason *string            `db:"failure_reason" json:"failure_reason,omitempty"`
	UsedAt        time.Time          `db:"used_at" json:"used_at"`
}

// UsageLogDetail enriches UsageLogEntry with the batch name for listings.
type UsageLogDetail struct {
	UsageLogEntry
	BatchName string `db:"batch_name" json:"batch_name"`
}

// UsageLogFilter defines filter criteria for usage-log queries. BatchIDs and
// Statuses combine with OR within themselves, all keys combine with AND.
type UsageLogFilter struct {
	BatchIDs  []string
	Statuses  []RegistrationStatus
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	Page      int
	PageSize  int
}

// UsageStats aggregates a filtered usage-log set.
type UsageStats struct {
	Total      int `db:"total" json:"total"`
	Successful int `db:"successful" json:"successful"`
	Failed     int `db:"failed" json:"failed"`
	Pending    int `db:"pending" json:"pending"`
}
