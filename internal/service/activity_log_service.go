package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
)

type usageLogRepository interface {
	List(ctx context.Context, filter models.UsageLogFilter) ([]models.UsageLogDetail, int, error)
	Stats(ctx context.Context, filter models.UsageLogFilter) (*models.UsageStats, error)
}

// ActivityLogService serves filtered views over the signup-code usage ledger.
type ActivityLogService struct {
	usage  usageLogRepository
	logger *zap.Logger
}

// NewActivityLogService constructs ActivityLogService.
func NewActivityLogService(usage usageLogRepository, logger *zap.Logger) *ActivityLogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityLogService{usage: usage, logger: logger}
}

// Query returns a page of usage entries together with stats computed over the
// same filtered set, so the list and the summary always agree. An empty match
// yields an empty list and zero stats, never an error.
func (s *ActivityLogService) Query(ctx context.Context, filter models.UsageLogFilter) (*dto.ActivityLogResponse, *models.Pagination, error) {
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown registration status")
		}
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "end date precedes start date")
	}

	entries, total, err := s.usage.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list usage logs")
	}
	stats, err := s.usage.Stats(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate usage stats")
	}
	if entries == nil {
		entries = []models.UsageLogDetail{}
	}

	resp := &dto.ActivityLogResponse{Logs: entries, Stats: *stats}
	return resp, models.NewPagination(filter.Page, filter.PageSize, total), nil
}
