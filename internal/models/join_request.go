package models

import "time"

// JoinRequestStatus represents the lifecycle of a class-join request.
type JoinRequestStatus string

// Possible join request statuses. Approved and rejected are terminal.
const (
	JoinRequestStatusPending  JoinRequestStatus = "PENDING"
	JoinRequestStatusApproved JoinRequestStatus = "APPROVED"
	JoinRequestStatusRejected JoinRequestStatus = "REJECTED"
)

// Valid reports whether the status is one of the known values.
func (s JoinRequestStatus) Valid() bool {
	switch s {
	case JoinRequestStatusPending, JoinRequestStatusApproved, JoinRequestStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether the status permits no further transition.
func (s JoinRequestStatus) Terminal() bool {
	return s == JoinRequestStatusApproved || s == JoinRequestStatusRejected
}

// CanTransitionTo reports whether a transition from s to target is legal.
// Only pending requests move, and only to a terminal status.
func (s JoinRequestStatus) CanTransitionTo(target JoinRequestStatus) bool {
	return s == JoinRequestStatusPending && target.Terminal()
}

// JoinRequest captures a student's request to join a class.
type JoinRequest struct {
	ID             string            `db:"id" json:"id"`
	StudentID      string            `db:"student_id" json:"student_id"`
	ClassID        string            `db:"class_id" json:"class_id"`
	Status         JoinRequestStatus `db:"status" json:"status"`
	RequestMessage *string           `db:"request_message" json:"request_message,omitempty"`
	ReviewMessage  *string           `db:"review_message" json:"review_message,omitempty"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// JoinRequestDetail enriches JoinRequest with student and class info.
type JoinRequestDetail struct {
	JoinRequest
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
	ClassName    string `db:"class_name" json:"class_name"`
}

// JoinRequestFilter provides filters for listing request history.
type JoinRequestFilter struct {
	ClassID  string
	Status   JoinRequestStatus
	Page     int
	PageSize int
}
