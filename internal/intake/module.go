// Package intake provides the donor intake bounded context module.
package intake

import (
	"bloodlink_backend/internal/events"
	apphttp "bloodlink_backend/internal/http"
	"bloodlink_backend/internal/intake/handler"
	"bloodlink_backend/internal/intake/service"
	"bloodlink_backend/platform/config"
	"bloodlink_backend/platform/logger"
	"bloodlink_backend/platform/metrics"
	"bloodlink_backend/platform/validator"
)

// Module is the intake bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the intake module.
func NewModule(store service.Store, cfg config.IntakeConfig, val *validator.Validator, log *logger.Logger, met *metrics.Metrics, bus events.Bus) *Module {
	svc := service.New(store, cfg, log, met, bus)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "intake"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts intake routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	donorGroup := ctx.V1.Group("/donors")
	donorGroup.POST("", ctx.WriteLimiter.RateLimit(), m.handler.RegisterDonor)
	donorGroup.GET("/registration-qr", m.handler.RegistrationQR)

	ctx.V1.PATCH("/medical-histories/:id", ctx.WriteLimiter.RateLimit(), m.handler.ReviewMedicalHistory)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
