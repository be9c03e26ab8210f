package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bloodlink_backend/internal/eligibility/service"
	"bloodlink_backend/platform/httpkit"
)

// Handler handles HTTP requests for eligibility.
type Handler struct {
	svc *service.Service
}

const msgInvalidDonorID = "invalid donor id"

// New creates a new eligibility handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Reconcile re-runs eligibility derivation for one donor.
// POST /api/v1/eligibility/reconcile/:donorID
func (h *Handler) Reconcile(c *gin.Context) {
	donorID, err := strconv.ParseInt(c.Param("donorID"), 10, 64)
	if err != nil || donorID < 1 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidDonorID, nil)
		return
	}

	outcome, err := h.svc.Reconcile(c.Request.Context(), donorID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, outcome)
}

// GetDonorEligibility returns the donor's current eligibility record.
// GET /api/v1/donors/:id/eligibility
func (h *Handler) GetDonorEligibility(c *gin.Context) {
	donorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || donorID < 1 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidDonorID, nil)
		return
	}

	record, err := h.svc.GetDonorEligibility(c.Request.Context(), donorID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, record)
}
