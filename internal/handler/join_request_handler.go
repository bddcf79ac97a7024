package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
	"github.com/noah-isme/academy-admin-api/pkg/response"
)

type admissionService interface {
	ListPending(ctx context.Context, classID string) ([]models.JoinRequestDetail, error)
	History(ctx context.Context, filter models.JoinRequestFilter) ([]models.JoinRequestDetail, *models.Pagination, error)
	Approve(ctx context.Context, requestID string, req dto.ApproveRequest) (*models.JoinRequestDetail, error)
	Reject(ctx context.Context, requestID string, req dto.RejectRequest) (*models.JoinRequestDetail, error)
	BulkApprove(ctx context.Context, req dto.BulkApproveRequest) (*dto.BulkAdmissionResult, error)
	BulkReject(ctx context.Context, req dto.BulkRejectRequest) (*dto.BulkAdmissionResult, error)
}

// JoinRequestHandler exposes the admission endpoints.
type JoinRequestHandler struct {
	admissions admissionService
}

// NewJoinRequestHandler constructs JoinRequestHandler.
func NewJoinRequestHandler(admissions admissionService) *JoinRequestHandler {
	return &JoinRequestHandler{admissions: admissions}
}

// ListPending godoc
// @Summary List pending join requests for a class
// @Tags Join Requests
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/join-requests [get]
func (h *JoinRequestHandler) ListPending(c *gin.Context) {
	requests, err := h.admissions.ListPending(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// History godoc
// @Summary List reviewed join requests for a class
// @Tags Join Requests
// @Produce json
// @Param id path string true "Class ID"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/join-requests/history [get]
func (h *JoinRequestHandler) History(c *gin.Context) {
	var filter models.JoinRequestFilter
	filter.ClassID = c.Param("id")
	filter.Status = models.JoinRequestStatus(strings.ToUpper(c.Query("status")))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	requests, pagination, err := h.admissions.History(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, pagination)
}

// Approve godoc
// @Summary Approve a join request
// @Tags Join Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.ApproveRequest false "Approval payload"
// @Success 200 {object} response.Envelope
// @Router /join-requests/{id}/approve [post]
func (h *JoinRequestHandler) Approve(c *gin.Context) {
	var req dto.ApproveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	request, err := h.admissions.Approve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Reject godoc
// @Summary Reject a join request
// @Tags Join Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.RejectRequest true "Rejection payload"
// @Success 200 {object} response.Envelope
// @Router /join-requests/{id}/reject [post]
func (h *JoinRequestHandler) Reject(c *gin.Context) {
	var req dto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.admissions.Reject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// BulkApprove godoc
// @Summary Approve join requests in bulk
// @Tags Join Requests
// @Accept json
// @Produce json
// @Param payload body dto.BulkApproveRequest true "Bulk approval payload"
// @Success 200 {object} response.Envelope
// @Router /join-requests/bulk-approve [post]
func (h *JoinRequestHandler) BulkApprove(c *gin.Context) {
	var req dto.BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.admissions.BulkApprove(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// BulkReject godoc
// @Summary Reject join requests in bulk
// @Tags Join Requests
// @Accept json
// @Produce json
// @Param payload body dto.BulkRejectRequest true "Bulk rejection payload"
// @Success 200 {object} response.Envelope
// @Router /join-requests/bulk-reject [post]
func (h *JoinRequestHandler) BulkReject(c *gin.Context) {
	var req dto.BulkRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.admissions.BulkReject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
