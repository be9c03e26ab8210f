package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bloodlink_backend/internal/donors/service"
	"bloodlink_backend/internal/donors/transport"
	"bloodlink_backend/platform/httpkit"
	"bloodlink_backend/platform/validator"
)

// Handler handles HTTP requests for donor progress.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidDonorID   = "invalid donor id"
)

// New creates a new donor progress handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListProgress resolves the current stage for a page of donors.
// GET /api/v1/donors/progress
func (h *Handler) ListProgress(c *gin.Context) {
	var req transport.ListProgressRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ListProgress(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetDonorProgress resolves one donor's current stage.
// GET /api/v1/donors/:id/progress
func (h *Handler) GetDonorProgress(c *gin.Context) {
	donorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || donorID < 1 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidDonorID, nil)
		return
	}

	result, err := h.svc.GetDonorProgress(c.Request.Context(), donorID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListConflicts runs the duplicate-assignment check over a resolved page.
// GET /api/v1/donors/conflicts
func (h *Handler) ListConflicts(c *gin.Context) {
	var req transport.ListProgressRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ListConflicts(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
