package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
)

type mockJoinRequestRepo struct {
	requests map[string]*models.JoinRequestDetail
}

func (m *mockJoinRequestRepo) FindByID(ctx context.Context, id string) (*models.JoinRequest, error) {
	if r, ok := m.requests[id]; ok {
		req := r.JoinRequest
		return &req, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockJoinRequestRepo) FindDetailByID(ctx context.Context, id string) (*models.JoinRequestDetail, error) {
	if r, ok := m.requests[id]; ok {
		detail := *r
		return &detail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockJoinRequestRepo) ListPendingByClass(ctx context.Context, classID string) ([]models.JoinRequestDetail, error) {
	var out []models.JoinRequestDetail
	for _, r := range m.requests {
		if r.ClassID == classID && r.Status == models.JoinRequestStatusPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockJoinRequestRepo) ListHistory(ctx context.Context, filter models.JoinRequestFilter) ([]models.JoinRequestDetail, int, error) {
	var out []models.JoinRequestDetail
	for _, r := range m.requests {
		if r.ClassID != filter.ClassID {
			continue
		}
		if filter.Status != "" {
			if r.Status == filter.Status {
				out = append(out, *r)
			}
		} else if r.Status != models.JoinRequestStatusPending {
			out = append(out, *r)
		}
	}
	return out, len(out), nil
}

func (m *mockJoinRequestRepo) ResolvePending(ctx context.Context, id string, status models.JoinRequestStatus, reviewMessage *string) (bool, error) {
	r, ok := m.requests[id]
	if !ok || r.Status != models.JoinRequestStatusPending {
		return false, nil
	}
	r.Status = status
	r.ReviewMessage = reviewMessage
	return true, nil
}

func (m *mockJoinRequestRepo) RejectSiblings(ctx context.Context, approvedID, studentID, classID, reviewMessage string) ([]string, error) {
	var ids []string
	for id, r := range m.requests {
		if id == approvedID || r.StudentID != studentID || r.ClassID != classID {
			continue
		}
		if r.Status == models.JoinRequestStatusPending {
			r.Status = models.JoinRequestStatusRejected
			r.ReviewMessage = &reviewMessage
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type mockClassRepo struct {
	classes map[string]*models.Class
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if c, ok := m.classes[id]; ok {
		class := *c
		return &class, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) IncrementEnrollment(ctx context.Context, id string) (bool, error) {
	c, ok := m.classes[id]
	if !ok || !c.HasCapacity() {
		return false, nil
	}
	c.EnrolledCount++
	return true, nil
}

func (m *mockClassRepo) DecrementEnrollment(ctx context.Context, id string) error {
	if c, ok := m.classes[id]; ok && c.EnrolledCount > 0 {
		c.EnrolledCount--
	}
	return nil
}

func intPtr(v int) *int { return &v }

func pendingRequest(id, studentID, classID, studentName string) *models.JoinRequestDetail {
	return &models.JoinRequestDetail{
		JoinRequest: models.JoinRequest{ID: id, StudentID: studentID, ClassID: classID, Status: models.JoinRequestStatusPending},
		StudentName: studentName,
	}
}

func newAdmissionService(requests *mockJoinRequestRepo, classes *mockClassRepo) *AdmissionService {
	return NewAdmissionService(requests, classes, NewBulkReporter(), nil, nil, zap.NewNop(), 100)
}

func TestAdmissionServiceApprove(t *testing.T) {
	requests := &mockJoinRequestRepo{requests: map[string]*models.JoinRequestDetail{
		"req-1": pendingRequest("req-1", "stu-1", "class-1", "Ana"),
		"req-2": pendingRequest("req-2", "stu-1", "class-1", "Ana"),
		"req-3": pendingRequest("req-3", "stu-2", "class-1", "Ben"),
	}}
	classes := &mockClassRepo{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", Capacity: intPtr(5), EnrolledCount: 0},
	}}
	svc := newAdmissionService(requests, classes)

	detail, err := svc.Approve(context.Background(), "req-1", dto.ApproveRequest{ReviewMessage: "welcome"})
	require.NoError(t, err)
	assert.Equal(t, models.JoinRequestStatusApproved, detail.Status)
	assert.Equal(t, 1, classes.classes["class-1"].EnrolledCount)

	// The student's other pending request was auto-rejected; Ben's was not.
	assert.Equal(t, models.JoinRequestStatusRejected, requests.requests["req-2"].Status)
	require.NotNil(t, requests.requests["req-2"].ReviewMessage)
	assert.Equal(t, siblingRejectionMessage, *requests.requests["req-2"].ReviewMessage)
	assert.Equal(t, models.JoinRequestStatusPending, requests.requests["req-3"].Status)
}

func TestAdmissionServiceApproveClassFull(t *testing.T) {
	requests := &mockJoinRequestRepo{requests: map[string]*models.JoinRequestDetail{
		"req-1": pendingRequest("req-1", "stu-1", "class-1", "Ana"),
	}}
	classes := &mockClassRepo{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", Capacity: intPtr(2), EnrolledCount: 2},
	}}
	svc := newAdmissionService(requests, classes)

	_, err := svc.Approve(context.Background(), "req-1", dto.ApproveRequest{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCapacityExceeded))

	// The request stays pending, so it is retryable once a seat frees up.
	assert.Equal(t, models.JoinRequestStatusPending, requests.requests["req-1"].Status)
	assert.Equal(t, 2, classes.classes["class-1"].EnrolledCount)
}

func TestAdmissionServiceApproveAlreadyResolved(t *testing.T) {
	resolved := pendingRequest("req-1", "stu-1", "class-1", "Ana")
	resolved.Status = models.JoinRequestStatusApproved
	requests := &mockJoinRequestRepo{requests: map[string]*models.JoinRequestDetail{"req-1": resolved}}
	classes := &mockClassRepo{classes: map[string]*models.Class{"class-1": {ID: "class-1"}}}
	svc := newAdmissionService(requests, classes)

	_, err := svc.Approve(context.Background(), "req-1", dto.ApproveRequest{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
}

func TestAdmissionServiceRejectRequiresMessage(t *testing.T) {
	requests := &mockJoinRequestRepo{requests: map[string]*models.JoinRequestDetail{
		"req-1": pendingRequest("req-1", "stu-1", "class-1", "Ana"),
	}}
	svc := newAdmissionService(requests, &mockClassRepo{})

	_, err := svc.Reject(context.Background(), "req-1", dto.RejectRequest{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, models.JoinRequestStatusPending, requests.requests["req-1"].Status)
}

func TestAdmissionServiceReject(t *testing.T) {
	requests := &mockJoinRequestRepo{requests: map[string]*models.JoinRequestDetail{
		"req-1": pendingRequest("req-1", "stu-1", "class-1", "Ana"),
	}}
	classes := &mockClassRepo{classes: map[string]*models.Class{"class-1": {ID: "class-1", EnrolledCount: 4}}}
	svc := newAdmissionService(requests, classes)

	detail, err := svc.Reject(context.Background(), "req-1", dto.RejectRequest{ReviewMessage: "class moved online"})
	require.NoError(t, err)
	assert.Equal(t, models.JoinRequestStatusRejected, detail.Status)
	require.NotNil(t, detail.ReviewMessage)
	assert.Equal(t, "class moved online", *detail.ReviewMessage)

	// Rejection never touches enrollment.
	assert.Equal(t, 4, classes.classes["class-1"].EnrolledCount)
}

func TestAdmissionServiceBulkApprovePartialSuccess(t *testing.T) {
	requests := &mockJoinRequestRepo{requests: map[string]*models.JoinRequestDetail{
		"req-a": pendingRequest("req-a", "stu-a", "class-1", "Ana"),
		"req-b": pendingRequest("req-b", "stu-b", "class-1", "Ben"),
		"req-c": pendingRequest("req-c", "stu-c", "class-1", "Cara"),
	}}
	classes := &mockClassRepo{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", Capacity: intPtr(2), EnrolledCount: 1},
	}}
	svc := newAdmissionService(requests, classes)

	result, err := svc.BulkApprove(context.Background(), dto.BulkApproveRequest{RequestIDs: []string{"req-a", "req-b", "req-c"}})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Summary.Total)
	assert.Equal(t, 1, result.Summary.Approved)
	assert.Equal(t, 2, result.Summary.RejectedCapacity)
	assert.Equal(t, result.Summary.Total,
		result.Summary.Approved+result.Summary.RejectedCapacity+result.Summary.AlreadyEnrolled+result.Summary.Failed)

	// Input order is preserved: the single free seat goes to the first request.
	require.Len(t, result.Items, 3)
	assert.Equal(t, dto.OutcomeApproved, result.Items[0].Outcome)
	assert.Equal(t, dto.OutcomeRejectedCapacity, result.Items[1].Outcome)
	assert.Equal(t, dto.OutcomeRejectedCapacity, result.Items[2].Outcome)
	assert.Equal(t, []string{"Ana"}, result.Approved)
	assert.ElementsMatch(t, []string{"Ben", "Cara"}, result.RejectedCapacity)

	snap, ok := result.Capacity["class-1"]
	require.True(t, ok)
	assert.Equal(t, 2, snap.Current)
	require.NotNil(t, snap.Available)
	assert.Zero(t, *snap.Available)

	// Capacity-rejected requests remain pending.
	assert.Equal(t, models.JoinRequestStatusPending, requests.requests["req-b"].Status)
	assert.Equal(t, models.JoinRequestStatusPending, requests.requests["req-c"].Status)
}

func TestAdmissionServiceBulkApproveSiblingCascade(t *testing.T) {
	requests := &mockJoinRequestRepo{requests: map[string]*models.JoinRequestDetail{
		"req-1": pendingRequest("req-1", "stu-1", "class-1", "Ana"),
		"req-2": pendingRequest("req-2", "stu-1", "class-1", "Ana"),
	}}
	classes := &mockClassRepo{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", Capacity: intPtr(10), EnrolledCount: 0},
	}}
	svc := newAdmissionService(requests, classes)

	result, err := svc.BulkApprove(context.Background(), dto.BulkApproveRequest{RequestIDs: []string{"req-1", "req-2"}})
	require.NoError(t, err)

	assert.Equal(t, dto.OutcomeApproved, result.Items[0].Outcome)
	assert.Equal(t, dto.OutcomeAlreadyEnrolled, result.Items[1].Outcome)
	assert.Equal(t, 1, result.Summary.Approved)
	assert.Equal(t, 1, result.Summary.AlreadyEnrolled)

	// The student holds exactly one seat despite two requests.
	assert.Equal(t, 1, classes.classes["class-1"].EnrolledCount)
}

func TestAdmissionServiceBulkApproveMissingRequest(t *testing.T) {
	requests := &mockJoinRequestRepo{requests: map[string]*models.JoinRequestDetail{
		"req-1": pendingRequest("req-1", "stu-1", "class-1", "Ana"),
	}}
	classes := &mockClassRepo{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", Capacity: intPtr(10), EnrolledCount: 0},
	}}
	svc := newAdmissionService(requests, classes)

	result, err := svc.BulkApprove(context.Background(), dto.BulkApproveRequest{RequestIDs: []string{"ghost", "req-1"}})
	require.NoError(t, err)

	assert.Equal(t, dto.OutcomeFailed, result.Items[0].Outcome)
	assert.Equal(t, dto.OutcomeApproved, result.Items[1].Outcome)
	assert.Equal(t, 1, result.Summary.Failed)
	assert.Equal(t, 1, result.Summary.Approved)
	assert.Equal(t, 2, result.Summary.Total)
}

func TestAdmissionServiceBulkApproveTooMany(t *testing.T) {
	svc := NewAdmissionService(&mockJoinRequestRepo{}, &mockClassRepo{}, NewBulkReporter(), nil, nil, zap.NewNop(), 2)

	_, err := svc.BulkApprove(context.Background(), dto.BulkApproveRequest{RequestIDs: []string{"a", "b", "c"}})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAdmissionServiceBulkReject(t *testing.T) {
	approved := pendingRequest("req-2", "stu-2", "class-1", "Ben")
	approved.Status = models.JoinRequestStatusApproved
	requests := &mockJoinRequestRepo{requests: map[string]*models.JoinRequestDetail{
		"req-1": pendingRequest("req-1", "stu-1", "class-1", "Ana"),
		"req-2": approved,
	}}
	svc := newAdmissionService(requests, &mockClassRepo{})

	result, err := svc.BulkReject(context.Background(), dto.BulkRejectRequest{
		RequestIDs:    []string{"req-1", "req-2", "ghost"},
		ReviewMessage: "semester cancelled",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Summary.Total)
	assert.Equal(t, 1, result.Summary.Rejected)
	assert.Equal(t, 1, result.Summary.Noop)
	assert.Equal(t, 1, result.Summary.Failed)
	assert.Equal(t, models.JoinRequestStatusRejected, requests.requests["req-1"].Status)
	assert.Equal(t, models.JoinRequestStatusApproved, requests.requests["req-2"].Status)
}

func TestAdmissionServiceListPendingUnknownClass(t *testing.T) {
	svc := newAdmissionService(&mockJoinRequestRepo{}, &mockClassRepo{})

	_, err := svc.ListPending(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
