// Package donors provides the donor progress bounded context module.
package donors

import (
	"bloodlink_backend/internal/donors/handler"
	"bloodlink_backend/internal/donors/service"
	"bloodlink_backend/internal/events"
	apphttp "bloodlink_backend/internal/http"
	"bloodlink_backend/platform/config"
	"bloodlink_backend/platform/logger"
	"bloodlink_backend/platform/metrics"
	"bloodlink_backend/platform/validator"
)

// Module is the donor progress bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the donor progress module.
func NewModule(store service.Store, cfg config.StoreConfig, val *validator.Validator, log *logger.Logger, met *metrics.Metrics, bus events.Bus) *Module {
	svc := service.New(store, cfg, log, met, bus)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "donors"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts donor progress routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	donorGroup := ctx.V1.Group("/donors")
	donorGroup.GET("/progress", m.handler.ListProgress)
	donorGroup.GET("/conflicts", m.handler.ListConflicts)
	donorGroup.GET("/:id/progress", m.handler.GetDonorProgress)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
