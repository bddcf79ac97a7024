package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/models"
)

func TestBulkReporterBuildApproval(t *testing.T) {
	reporter := NewBulkReporter()
	items := []dto.BulkItemResult{
		{RequestID: "req-1", StudentName: "Ana", Outcome: dto.OutcomeApproved},
		{RequestID: "req-2", StudentName: "Ben", Outcome: dto.OutcomeRejectedCapacity},
		{RequestID: "req-3", Outcome: dto.OutcomeAlreadyEnrolled},
		{RequestID: "req-4", Outcome: dto.OutcomeFailed},
	}
	capacity := map[string]models.CapacitySnapshot{"class-1": {Current: 2}}

	result := reporter.BuildApproval(items, capacity)

	assert.Equal(t, 4, result.Summary.Total)
	assert.Equal(t, 1, result.Summary.Approved)
	assert.Equal(t, 1, result.Summary.RejectedCapacity)
	assert.Equal(t, 1, result.Summary.AlreadyEnrolled)
	assert.Equal(t, 1, result.Summary.Failed)
	assert.Equal(t, result.Summary.Total,
		result.Summary.Approved+result.Summary.RejectedCapacity+result.Summary.AlreadyEnrolled+result.Summary.Failed)

	assert.Equal(t, []string{"Ana"}, result.Approved)
	assert.Equal(t, []string{"Ben"}, result.RejectedCapacity)
	// Items without a student name fall back to the request ID.
	assert.Equal(t, []string{"req-3"}, result.AlreadyEnrolled)
	assert.Equal(t, []string{"req-4"}, result.Failed)

	assert.Equal(t, capacity, result.Capacity)
	assert.Equal(t, "Approved 1 of 4 requests; 1 rejected for capacity; 1 already enrolled; 1 not found", result.Message)
}

func TestBulkReporterBuildApprovalAllApproved(t *testing.T) {
	reporter := NewBulkReporter()
	items := []dto.BulkItemResult{
		{RequestID: "req-1", StudentName: "Ana", Outcome: dto.OutcomeApproved},
		{RequestID: "req-2", StudentName: "Ben", Outcome: dto.OutcomeApproved},
	}

	result := reporter.BuildApproval(items, nil)

	assert.Equal(t, "Approved 2 of 2 requests", result.Message)
	assert.Empty(t, result.RejectedCapacity)
	assert.Empty(t, result.AlreadyEnrolled)
}

func TestBulkReporterBuildRejection(t *testing.T) {
	reporter := NewBulkReporter()
	items := []dto.BulkItemResult{
		{RequestID: "req-1", Outcome: dto.OutcomeRejected},
		{RequestID: "req-2", Outcome: dto.OutcomeNoop},
		{RequestID: "req-3", Outcome: dto.OutcomeFailed},
	}

	result := reporter.BuildRejection(items)

	assert.Equal(t, 3, result.Summary.Total)
	assert.Equal(t, 1, result.Summary.Rejected)
	assert.Equal(t, 1, result.Summary.Noop)
	assert.Equal(t, 1, result.Summary.Failed)
	assert.Equal(t, "Rejected 1 of 3 requests; 1 already resolved; 1 not found", result.Message)
}
