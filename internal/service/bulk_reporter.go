package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/models"
)

// BulkReporter projects per-item admission traces into the structured result
// consumed by callers. It holds no state and performs no side effects.
type BulkReporter struct{}

// NewBulkReporter constructs a BulkReporter.
func NewBulkReporter() *BulkReporter {
	return &BulkReporter{}
}

// BuildApproval summarises a bulk-approve trace. The summary counts always
// add up to the number of input items.
func (r *BulkReporter) BuildApproval(items []dto.BulkItemResult, capacity map[string]models.CapacitySnapshot) *dto.BulkAdmissionResult {
	result := &dto.BulkAdmissionResult{Items: items, Capacity: capacity}
	result.Summary.Total = len(items)

	for _, item := range items {
		switch item.Outcome {
		case dto.OutcomeApproved:
			result.Summary.Approved++
			result.Approved = append(result.Approved, displayName(item))
		case dto.OutcomeRejectedCapacity:
			result.Summary.RejectedCapacity++
			result.RejectedCapacity = append(result.RejectedCapacity, displayName(item))
		case dto.OutcomeAlreadyEnrolled:
			result.Summary.AlreadyEnrolled++
			result.AlreadyEnrolled = append(result.AlreadyEnrolled, displayName(item))
		default:
			result.Summary.Failed++
			result.Failed = append(result.Failed, displayName(item))
		}
	}

	result.Message = approvalMessage(result.Summary)
	return result
}

// BuildRejection summarises a bulk-reject trace.
func (r *BulkReporter) BuildRejection(items []dto.BulkItemResult) *dto.BulkAdmissionResult {
	result := &dto.BulkAdmissionResult{Items: items}
	result.Summary.Total = len(items)

	for _, item := range items {
		switch item.Outcome {
		case dto.OutcomeRejected:
			result.Summary.Rejected++
		case dto.OutcomeNoop:
			result.Summary.Noop++
		default:
			result.Summary.Failed++
		}
	}

	parts := []string{fmt.Sprintf("Rejected %d of %d requests", result.Summary.Rejected, result.Summary.Total)}
	if result.Summary.Noop > 0 {
		parts = append(parts, fmt.Sprintf("%d already resolved", result.Summary.Noop))
	}
	if result.Summary.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d not found", result.Summary.Failed))
	}
	result.Message = strings.Join(parts, "; ")
	return result
}

func approvalMessage(summary dto.BulkSummary) string {
	parts := []string{fmt.Sprintf("Approved %d of %d requests", summary.Approved, summary.Total)}
	if summary.RejectedCapacity > 0 {
		parts = append(parts, fmt.Sprintf("%d rejected for capacity", summary.RejectedCapacity))
	}
	if summary.AlreadyEnrolled > 0 {
		parts = append(parts, fmt.Sprintf("%d already enrolled", summary.AlreadyEnrolled))
	}
	if summary.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d not found", summary.Failed))
	}
	return strings.Join(parts, "; ")
}

func displayName(item dto.BulkItemResult) string {
	if item.StudentName != "" {
		return item.StudentName
	}
	return item.RequestID
}
