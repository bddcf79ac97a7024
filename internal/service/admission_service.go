package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
)

// siblingRejectionMessage is the auto-generated review note applied to other
// pending requests from the same student when one is approved.
const siblingRejectionMessage = "Automatically rejected: another request from this student was approved for this class"

type joinRequestRepository interface {
	FindByID(ctx context.Context, id string) (*models.JoinRequest, error)
	FindDetailByID(ctx context.Context, id string) (*models.JoinRequestDetail, error)
	ListPendingByClass(ctx context.Context, classID string) ([]models.JoinRequestDetail, error)
	ListHistory(ctx context.Context, filter models.JoinRequestFilter) ([]models.JoinRequestDetail, int, error)
	ResolvePending(ctx context.Context, id string, status models.JoinRequestStatus, reviewMessage *string) (bool, error)
	RejectSiblings(ctx context.Context, approvedID, studentID, classID, reviewMessage string) ([]string, error)
}

type classRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	IncrementEnrollment(ctx context.Context, id string) (bool, error)
	DecrementEnrollment(ctx context.Context, id string) error
}

// AdmissionService runs the capacity-aware state machine for join requests.
// Capacity check-and-increment is a single conditional statement in the class
// repository, so concurrent approvals against the same class serialize on the
// database row rather than on application locks.
type AdmissionService struct {
	requests  joinRequestRepository
	classes   classRepository
	reporter  *BulkReporter
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	maxBulk   int
}

// NewAdmissionService constructs AdmissionService.
func NewAdmissionService(requests joinRequestRepository, classes classRepository, reporter *BulkReporter, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, maxBulk int) *AdmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if reporter == nil {
		reporter = NewBulkReporter()
	}
	if maxBulk <= 0 {
		maxBulk = 100
	}
	return &AdmissionService{requests: requests, classes: classes, reporter: reporter, metrics: metrics, validator: validate, logger: logger, maxBulk: maxBulk}
}

// ListPending returns the pending join requests for a class.
func (s *AdmissionService) ListPending(ctx context.Context, classID string) ([]models.JoinRequestDetail, error) {
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	requests, err := s.requests.ListPendingByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending requests")
	}
	return requests, nil
}

// History returns reviewed requests for a class with pagination metadata.
func (s *AdmissionService) History(ctx context.Context, filter models.JoinRequestFilter) ([]models.JoinRequestDetail, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown request status")
	}
	requests, total, err := s.requests.ListHistory(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list request history")
	}
	return requests, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Approve admits a single pending request subject to class capacity and
// force-rejects the student's other pending requests for the same class.
// Capacity exhaustion leaves the request pending: it is retryable, unlike an
// explicit rejection.
func (s *AdmissionService) Approve(ctx context.Context, requestID string, req dto.ApproveRequest) (*models.JoinRequestDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approval payload")
	}
	detail, err := s.loadDetail(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if detail.Status != models.JoinRequestStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("request is already %s", detail.Status))
	}

	var review *string
	if req.ReviewMessage != "" {
		review = &req.ReviewMessage
	}
	if err := s.admit(ctx, &detail.JoinRequest, review); err != nil {
		return nil, err
	}

	s.metrics.RecordAdmission("approved")
	updated, err := s.loadDetail(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Reject declines a single pending request. A non-empty review message is
// mandatory so students always see why.
func (s *AdmissionService) Reject(ctx context.Context, requestID string, req dto.RejectRequest) (*models.JoinRequestDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rejection requires a review message")
	}
	detail, err := s.loadDetail(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if detail.Status != models.JoinRequestStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("request is already %s", detail.Status))
	}

	resolved, err := s.requests.ResolvePending(ctx, requestID, models.JoinRequestStatusRejected, &req.ReviewMessage)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject request")
	}
	if !resolved {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "request was resolved concurrently")
	}

	s.metrics.RecordAdmission("rejected")
	return s.loadDetail(ctx, requestID)
}

// BulkApprove processes requests one at a time in input order, re-checking
// capacity before each, so partial success is possible and reported rather
// than hidden. Per-item problems never abort the batch; only infrastructure
// failures do.
func (s *AdmissionService) BulkApprove(ctx context.Context, req dto.BulkApproveRequest) (*dto.BulkAdmissionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk approval payload")
	}
	if len(req.RequestIDs) > s.maxBulk {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("bulk operations are limited to %d requests", s.maxBulk))
	}

	var review *string
	if req.ReviewMessage != "" {
		review = &req.ReviewMessage
	}

	items := make([]dto.BulkItemResult, 0, len(req.RequestIDs))
	touched := make(map[string]struct{})
	for _, id := range req.RequestIDs {
		item := dto.BulkItemResult{RequestID: id}

		detail, err := s.requests.FindDetailByID(ctx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				item.Outcome = dto.OutcomeFailed
				item.Reason = "request not found"
				items = append(items, item)
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
		}
		item.StudentName = detail.StudentName
		touched[detail.ClassID] = struct{}{}

		if detail.Status != models.JoinRequestStatusPending {
			// Either a true double submission or a sibling cascade earlier in
			// this same batch; both read the same way to the caller.
			item.Outcome = dto.OutcomeAlreadyEnrolled
			item.Reason = fmt.Sprintf("request already %s", detail.Status)
			items = append(items, item)
			continue
		}

		err = s.admit(ctx, &detail.JoinRequest, review)
		switch {
		case err == nil:
			item.Outcome = dto.OutcomeApproved
			s.metrics.RecordAdmission("approved")
		case appErrors.Is(err, appErrors.ErrCapacityExceeded):
			item.Outcome = dto.OutcomeRejectedCapacity
			item.Reason = "class capacity exhausted"
			s.metrics.RecordAdmission("rejected_capacity")
		case appErrors.Is(err, appErrors.ErrInvalidState):
			item.Outcome = dto.OutcomeAlreadyEnrolled
			item.Reason = "request was resolved concurrently"
		case appErrors.Is(err, appErrors.ErrNotFound):
			item.Outcome = dto.OutcomeFailed
			item.Reason = "class not found"
		default:
			return nil, err
		}
		items = append(items, item)
	}

	capacity, err := s.snapshotClasses(ctx, touched)
	if err != nil {
		return nil, err
	}
	return s.reporter.BuildApproval(items, capacity), nil
}

// BulkReject declines every pending request in the set with a shared reason.
// Requests already in a terminal state are reported as no-ops.
func (s *AdmissionService) BulkReject(ctx context.Context, req dto.BulkRejectRequest) (*dto.BulkAdmissionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "bulk rejection requires a review message")
	}
	if len(req.RequestIDs) > s.maxBulk {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("bulk operations are limited to %d requests", s.maxBulk))
	}

	items := make([]dto.BulkItemResult, 0, len(req.RequestIDs))
	for _, id := range req.RequestIDs {
		item := dto.BulkItemResult{RequestID: id}

		detail, err := s.requests.FindDetailByID(ctx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				item.Outcome = dto.OutcomeFailed
				item.Reason = "request not found"
				items = append(items, item)
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
		}
		item.StudentName = detail.StudentName

		if detail.Status != models.JoinRequestStatusPending {
			item.Outcome = dto.OutcomeNoop
			item.Reason = fmt.Sprintf("request already %s", detail.Status)
			items = append(items, item)
			continue
		}

		resolved, err := s.requests.ResolvePending(ctx, id, models.JoinRequestStatusRejected, &req.ReviewMessage)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject request")
		}
		if !resolved {
			item.Outcome = dto.OutcomeNoop
			item.Reason = "request was resolved concurrently"
		} else {
			item.Outcome = dto.OutcomeRejected
			s.metrics.RecordAdmission("rejected")
		}
		items = append(items, item)
	}

	return s.reporter.BuildRejection(items), nil
}

// admit performs the atomic approve-and-increment for one pending request
// and cascades the sibling rejections. The enrollment increment happens
// first; if the request turns out to be resolved concurrently the increment
// is compensated so the counter never drifts.
func (s *AdmissionService) admit(ctx context.Context, request *models.JoinRequest, review *string) error {
	admitted, err := s.classes.IncrementEnrollment(ctx, request.ClassID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}
	if !admitted {
		if _, err := s.classes.FindByID(ctx, request.ClassID); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "class not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
		}
		return appErrors.Clone(appErrors.ErrCapacityExceeded, "class is full")
	}

	resolved, err := s.requests.ResolvePending(ctx, request.ID, models.JoinRequestStatusApproved, review)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve request")
	}
	if !resolved {
		if derr := s.classes.DecrementEnrollment(ctx, request.ClassID); derr != nil {
			s.logger.Error("failed to compensate enrollment increment",
				zap.String("class_id", request.ClassID), zap.Error(derr))
		}
		return appErrors.Clone(appErrors.ErrInvalidState, "request was resolved concurrently")
	}

	siblings, err := s.requests.RejectSiblings(ctx, request.ID, request.StudentID, request.ClassID, siblingRejectionMessage)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject sibling requests")
	}
	if len(siblings) > 0 {
		s.logger.Info("sibling requests auto-rejected",
			zap.String("approved_request_id", request.ID),
			zap.Strings("rejected_request_ids", siblings),
		)
	}
	return nil
}

func (s *AdmissionService) loadDetail(ctx context.Context, requestID string) (*models.JoinRequestDetail, error) {
	detail, err := s.requests.FindDetailByID(ctx, requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "join request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return detail, nil
}

func (s *AdmissionService) snapshotClasses(ctx context.Context, classIDs map[string]struct{}) (map[string]models.CapacitySnapshot, error) {
	snapshots := make(map[string]models.CapacitySnapshot, len(classIDs))
	for id := range classIDs {
		class, err := s.classes.FindByID(ctx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
		}
		snapshots[id] = class.Snapshot()
	}
	return snapshots, nil
}
