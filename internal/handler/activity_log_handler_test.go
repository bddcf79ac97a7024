package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/models"
	"github.com/noah-isme/academy-admin-api/internal/service"
)

type activityLogServiceMock struct {
	lastFilter models.UsageLogFilter
	queryErr   error
}

func (m *activityLogServiceMock) Query(ctx context.Context, filter models.UsageLogFilter) (*dto.ActivityLogResponse, *models.Pagination, error) {
	m.lastFilter = filter
	if m.queryErr != nil {
		return nil, nil, m.queryErr
	}
	return &dto.ActivityLogResponse{Logs: []models.UsageLogDetail{}}, models.NewPagination(filter.Page, filter.PageSize, 0), nil
}

type activityExportServiceMock struct {
	lastFormat string
	result     *service.ExportResult
}

func (m *activityExportServiceMock) ActivityLogs(ctx context.Context, filter models.UsageLogFilter, format string) (*service.ExportResult, error) {
	m.lastFormat = format
	return m.result, nil
}

func TestActivityLogHandlerQueryParsesFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &activityLogServiceMock{}
	handler := NewActivityLogHandler(mockSvc, &activityExportServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet,
		"/activity-logs?batchId=batch-1,batch-2&status=successful&startDate=2026-08-01&endDate=2026-08-31&search=ana&page=2&limit=50", nil)
	c.Request = req

	handler.Query(c)
	require.Equal(t, http.StatusOK, w.Code)

	filter := mockSvc.lastFilter
	assert.Equal(t, []string{"batch-1", "batch-2"}, filter.BatchIDs)
	assert.Equal(t, []models.RegistrationStatus{models.RegistrationStatusSuccessful}, filter.Statuses)
	assert.Equal(t, "ana", filter.Search)
	assert.Equal(t, 2, filter.Page)
	assert.Equal(t, 50, filter.PageSize)

	require.NotNil(t, filter.StartDate)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), *filter.StartDate)
	// A date-only end bound covers the entire day.
	require.NotNil(t, filter.EndDate)
	assert.Equal(t, 31, filter.EndDate.Day())
	assert.Equal(t, 23, filter.EndDate.Hour())
}

func TestActivityLogHandlerQueryBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewActivityLogHandler(&activityLogServiceMock{}, &activityExportServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/activity-logs?startDate=yesterday", nil)
	c.Request = req

	handler.Query(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActivityLogHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockExport := &activityExportServiceMock{
		result: &service.ExportResult{Content: []byte("csv-bytes"), ContentType: "text/csv", Filename: "activity-logs.csv"},
	}
	handler := NewActivityLogHandler(&activityLogServiceMock{}, mockExport)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/activity-logs/export?format=CSV", nil)
	c.Request = req

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mockExport.lastFormat)
	assert.Equal(t, "attachment; filename=activity-logs.csv", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "csv-bytes", w.Body.String())
}
