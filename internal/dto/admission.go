package dto

import "github.com/noah-isme/academy-admin-api/internal/models"

// ApproveRequest carries the optional review note for a single approval.
type ApproveRequest struct {
	ReviewMessage string `json:"review_message" validate:"omitempty,max=500"`
}

// RejectRequest carries the mandatory rejection reason.
type RejectRequest struct {
	ReviewMessage string `json:"review_message" validate:"required,max=500"`
}

// BulkApproveRequest lists the requests to approve in order.
type BulkApproveRequest struct {
	RequestIDs    []string `json:"request_ids" validate:"required,min=1,dive,required"`
	ReviewMessage string   `json:"review_message" validate:"omitempty,max=500"`
}

// BulkRejectRequest lists the requests to reject with a shared reason.
type BulkRejectRequest struct {
	RequestIDs    []string `json:"request_ids" validate:"required,min=1,dive,required"`
	ReviewMessage string   `json:"review_message" validate:"required,max=500"`
}

// BulkOutcome classifies the result of one item in a bulk operation.
type BulkOutcome string

// Per-item outcomes.
const (
	OutcomeApproved         BulkOutcome = "APPROVED"
	OutcomeRejectedCapacity BulkOutcome = "REJECTED_CAPACITY"
	OutcomeAlreadyEnrolled  BulkOutcome = "ALREADY_ENROLLED"
	OutcomeRejected         BulkOutcome = "REJECTED"
	OutcomeNoop             BulkOutcome = "NOOP"
	OutcomeFailed           BulkOutcome = "FAILED"
)

// BulkItemResult is the outcome for a single request in a bulk call.
type BulkItemResult struct {
	RequestID   string      `json:"request_id"`
	StudentName string      `json:"student_name,omitempty"`
	Outcome     BulkOutcome `json:"outcome"`
	Reason      string      `json:"reason,omitempty"`
}

// BulkSummary aggregates per-item outcomes. Counts always sum to Total:
// no request is silently dropped.
type BulkSummary struct {
	Total            int `json:"total"`
	Approved         int `json:"approved"`
	RejectedCapacity int `json:"rejected_capacity"`
	AlreadyEnrolled  int `json:"already_enrolled"`
	Rejected         int `json:"rejected"`
	Noop             int `json:"noop"`
	Failed           int `json:"failed"`
}

// BulkAdmissionResult is the structured report returned by bulk operations.
type BulkAdmissionResult struct {
	Summary          BulkSummary                        `json:"summary"`
	Items            []BulkItemResult                   `json:"items"`
	Approved         []string                           `json:"approved_students,omitempty"`
	RejectedCapacity []string                           `json:"rejected_capacity_students,omitempty"`
	AlreadyEnrolled  []string                           `json:"already_enrolled_students,omitempty"`
	Failed           []string                           `json:"failed_requests,omitempty"`
	Capacity         map[string]models.CapacitySnapshot `json:"capacity,omitempty"`
	Message          string                             `json:"message"`
}
