package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/models"
	"github.com/noah-isme/academy-admin-api/internal/service"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
	"github.com/noah-isme/academy-admin-api/pkg/response"
)

type activityLogService interface {
	Query(ctx context.Context, filter models.UsageLogFilter) (*dto.ActivityLogResponse, *models.Pagination, error)
}

type activityExportService interface {
	ActivityLogs(ctx context.Context, filter models.UsageLogFilter, format string) (*service.ExportResult, error)
}

// ActivityLogHandler exposes the signup-usage ledger endpoints.
type ActivityLogHandler struct {
	logs    activityLogService
	exports activityExportService
}

// NewActivityLogHandler constructs ActivityLogHandler.
func NewActivityLogHandler(logs activityLogService, exports activityExportService) *ActivityLogHandler {
	return &ActivityLogHandler{logs: logs, exports: exports}
}

// parseUsageFilter maps query parameters onto the ledger filter. Multi-value
// keys accept both repeated parameters and comma separation. Date bounds are
// inclusive; a date-only end bound covers the whole day.
func parseUsageFilter(c *gin.Context) (models.UsageLogFilter, error) {
	var filter models.UsageLogFilter

	filter.BatchIDs = splitMulti(c.QueryArray("batchId"))
	for _, raw := range splitMulti(c.QueryArray("status")) {
		filter.Statuses = append(filter.Statuses, models.RegistrationStatus(strings.ToUpper(raw)))
	}
	filter.Search = strings.TrimSpace(c.Query("search"))

	if raw := c.Query("startDate"); raw != "" {
		start, _, err := parseDateBound(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid startDate")
		}
		filter.StartDate = &start
	}
	if raw := c.Query("endDate"); raw != "" {
		_, end, err := parseDateBound(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid endDate")
		}
		filter.EndDate = &end
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter, nil
}

func splitMulti(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

// parseDateBound accepts RFC3339 timestamps or bare dates and returns the
// value as both a lower and an upper inclusive bound.
func parseDateBound(raw string) (time.Time, time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return t, t.Add(24*time.Hour - time.Nanosecond), nil
}

// Query godoc
// @Summary Query signup activity logs
// @Tags Activity Logs
// @Produce json
// @Param batchId query []string false "Filter by batch"
// @Param status query []string false "Filter by registration status"
// @Param startDate query string false "Inclusive start bound"
// @Param endDate query string false "Inclusive end bound"
// @Param search query string false "Match name, email or code"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /activity-logs [get]
func (h *ActivityLogHandler) Query(c *gin.Context) {
	filter, err := parseUsageFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, pagination, err := h.logs.Query(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, pagination)
}

// Export godoc
// @Summary Export signup activity logs
// @Tags Activity Logs
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "csv or pdf"
// @Success 200 {file} binary
// @Router /activity-logs/export [get]
func (h *ActivityLogHandler) Export(c *gin.Context) {
	filter, err := parseUsageFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.ActivityLogs(c.Request.Context(), filter, strings.ToLower(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
