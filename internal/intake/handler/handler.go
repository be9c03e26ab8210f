package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bloodlink_backend/internal/intake/service"
	"bloodlink_backend/internal/intake/transport"
	"bloodlink_backend/platform/httpkit"
	"bloodlink_backend/platform/validator"
)

// Handler handles HTTP requests for donor intake.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new intake handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterDonor stores a new donor form.
// POST /api/v1/donors
func (h *Handler) RegisterDonor(c *gin.Context) {
	var req transport.RegisterDonorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.RegisterDonor(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// ReviewMedicalHistory records the interviewer's approval decision.
// PATCH /api/v1/medical-histories/:id
func (h *Handler) ReviewMedicalHistory(c *gin.Context) {
	var req transport.ReviewMedicalHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ReviewMedicalHistory(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RegistrationQR renders the registration link as a QR PNG.
// GET /api/v1/donors/registration-qr
func (h *Handler) RegistrationQR(c *gin.Context) {
	png, err := h.svc.RegistrationQR(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
