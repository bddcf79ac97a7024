package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
)

type mockUsageLogRepo struct {
	entries []models.UsageLogDetail
	stats   models.UsageStats
	listErr error
}

func (m *mockUsageLogRepo) List(ctx context.Context, filter models.UsageLogFilter) ([]models.UsageLogDetail, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.entries, len(m.entries), nil
}

func (m *mockUsageLogRepo) Stats(ctx context.Context, filter models.UsageLogFilter) (*models.UsageStats, error) {
	stats := m.stats
	return &stats, nil
}

func TestActivityLogServiceQuery(t *testing.T) {
	repo := &mockUsageLogRepo{
		entries: []models.UsageLogDetail{
			{UsageLogEntry: models.UsageLogEntry{ID: "log-1", Status: models.RegistrationStatusSuccessful}, BatchName: "Batch 2026"},
		},
		stats: models.UsageStats{Total: 1, Successful: 1},
	}
	svc := NewActivityLogService(repo, zap.NewNop())

	resp, pagination, err := svc.Query(context.Background(), models.UsageLogFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, resp.Logs, 1)
	assert.Equal(t, "Batch 2026", resp.Logs[0].BatchName)
	assert.Equal(t, 1, resp.Stats.Total)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestActivityLogServiceQueryEmptyMatch(t *testing.T) {
	svc := NewActivityLogService(&mockUsageLogRepo{}, zap.NewNop())

	resp, _, err := svc.Query(context.Background(), models.UsageLogFilter{Search: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Logs)
	assert.Empty(t, resp.Logs)
	assert.Zero(t, resp.Stats.Total)
}

func TestActivityLogServiceQueryUnknownStatus(t *testing.T) {
	svc := NewActivityLogService(&mockUsageLogRepo{}, zap.NewNop())

	_, _, err := svc.Query(context.Background(), models.UsageLogFilter{
		Statuses: []models.RegistrationStatus{"BOGUS"},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestActivityLogServiceQueryInvertedDateRange(t *testing.T) {
	svc := NewActivityLogService(&mockUsageLogRepo{}, zap.NewNop())

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-24 * time.Hour)
	_, _, err := svc.Query(context.Background(), models.UsageLogFilter{StartDate: &start, EndDate: &end})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
