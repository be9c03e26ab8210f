// Package collection provides the blood collection bounded context module.
package collection

import (
	"bloodlink_backend/internal/collection/handler"
	"bloodlink_backend/internal/collection/service"
	"bloodlink_backend/internal/events"
	apphttp "bloodlink_backend/internal/http"
	"bloodlink_backend/platform/config"
	"bloodlink_backend/platform/logger"
	"bloodlink_backend/platform/validator"
)

// Module is the collection bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the collection module.
func NewModule(store service.Store, cfg config.StoreConfig, val *validator.Validator, log *logger.Logger, bus events.Bus) *Module {
	svc := service.New(store, cfg, log, bus)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "collection"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts collection routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/collections")
	group.Use(ctx.WriteLimiter.RateLimit())
	group.POST("", m.handler.Submit)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
