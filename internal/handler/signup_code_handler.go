package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/middleware"
	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
	"github.com/noah-isme/academy-admin-api/pkg/response"
)

type signupCodeService interface {
	Reset(ctx context.Context, batchID string, req dto.ResetCodeRequest, actorID string) (*dto.SignupCodeResponse, error)
	Toggle(ctx context.Context, batchID string, req dto.ToggleCodeRequest, actorID string) (*dto.ToggleCodeResponse, error)
	Status(ctx context.Context, batchID string) (*dto.CodeStatusResponse, error)
	Events(ctx context.Context, batchID string, limit int) ([]models.CodeEvent, error)
	Redeem(ctx context.Context, req dto.RedeemRequest) (*dto.RedeemResponse, error)
}

// SignupCodeHandler exposes signup-code lifecycle endpoints.
type SignupCodeHandler struct {
	codes signupCodeService
}

// NewSignupCodeHandler constructs SignupCodeHandler.
func NewSignupCodeHandler(codes signupCodeService) *SignupCodeHandler {
	return &SignupCodeHandler{codes: codes}
}

func actorID(c *gin.Context) string {
	if claims := middleware.CurrentUser(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// Reset godoc
// @Summary Reset a batch signup code
// @Tags Signup Codes
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param payload body dto.ResetCodeRequest false "Reset payload"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/signup-code/reset [post]
func (h *SignupCodeHandler) Reset(c *gin.Context) {
	var req dto.ResetCodeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	code, err := h.codes.Reset(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, code, nil)
}

// Toggle godoc
// @Summary Toggle signup code active state
// @Tags Signup Codes
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param payload body dto.ToggleCodeRequest false "Toggle payload"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/signup-code/toggle [patch]
func (h *SignupCodeHandler) Toggle(c *gin.Context) {
	var req dto.ToggleCodeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	state, err := h.codes.Toggle(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Status godoc
// @Summary Signup code status
// @Tags Signup Codes
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/signup-code [get]
func (h *SignupCodeHandler) Status(c *gin.Context) {
	status, err := h.codes.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Events godoc
// @Summary Signup code audit trail
// @Tags Signup Codes
// @Produce json
// @Param id path string true "Batch ID"
// @Param limit query int false "Max events"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/signup-code/events [get]
func (h *SignupCodeHandler) Events(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	events, err := h.codes.Events(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// Redeem godoc
// @Summary Redeem a signup code
// @Tags Signup Codes
// @Accept json
// @Produce json
// @Param payload body dto.RedeemRequest true "Redemption payload"
// @Success 200 {object} response.Envelope
// @Router /signup/redeem [post]
func (h *SignupCodeHandler) Redeem(c *gin.Context) {
	var req dto.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.codes.Redeem(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
