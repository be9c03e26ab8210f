package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bloodlink_backend/internal/collection/service"
	"bloodlink_backend/internal/collection/transport"
	"bloodlink_backend/platform/httpkit"
	"bloodlink_backend/platform/validator"
)

// Handler handles HTTP requests for blood collections.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new collection handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Submit records a blood collection against a physical examination.
// POST /api/v1/collections
func (h *Handler) Submit(c *gin.Context) {
	var req transport.SubmitCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Submit(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}
