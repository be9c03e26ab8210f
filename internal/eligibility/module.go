// Package eligibility provides the eligibility bounded context module.
package eligibility

import (
	"context"
	"time"

	"bloodlink_backend/internal/eligibility/handler"
	"bloodlink_backend/internal/eligibility/service"
	"bloodlink_backend/internal/events"
	apphttp "bloodlink_backend/internal/http"
	"bloodlink_backend/internal/scheduler"
	"bloodlink_backend/platform/config"
	"bloodlink_backend/platform/logger"
	"bloodlink_backend/platform/metrics"
)

// reconcileRetryDelay is how long to wait before retrying a
// reconciliation that failed inline.
const reconcileRetryDelay = time.Minute

// Module is the eligibility bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	sched   scheduler.ReconcileScheduler
	log     *logger.Logger
}

// NewModule creates and initializes the eligibility module. sched may be
// nil when no task queue is configured; inline failures are then left to
// the periodic sweep.
func NewModule(store service.Store, cfg config.StoreConfig, log *logger.Logger, met *metrics.Metrics, bus events.Bus, sched scheduler.ReconcileScheduler) *Module {
	svc := service.New(store, cfg, log, met, bus)
	h := handler.New(svc)

	return &Module{
		handler: h,
		service: svc,
		sched:   sched,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "eligibility"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts eligibility routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	reconcileGroup := ctx.V1.Group("/eligibility")
	reconcileGroup.Use(ctx.WriteLimiter.RateLimit())
	reconcileGroup.POST("/reconcile/:donorID", m.handler.Reconcile)

	ctx.V1.GET("/donors/:id/eligibility", m.handler.GetDonorEligibility)
}

// RegisterHandlers subscribes to domain events so successful collection
// submissions trigger reconciliation without an explicit API call.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.BloodCollectionRecorded{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.BloodCollectionRecorded:
		if !e.IsSuccessful {
			return nil
		}
		if _, err := m.service.Reconcile(ctx, e.DonorID); err != nil {
			return m.deferReconcile(ctx, e.DonorID, err)
		}
		return nil
	default:
		return nil
	}
}

// deferReconcile hands a failed inline reconciliation to the task queue.
// Without a queue the error propagates and the periodic sweep picks the
// donor up later.
func (m *Module) deferReconcile(ctx context.Context, donorID int64, cause error) error {
	if m.sched == nil {
		return cause
	}
	if err := m.sched.ScheduleDonorReconcile(ctx, donorID, time.Now().Add(reconcileRetryDelay)); err != nil {
		m.log.Warn("failed to schedule reconcile retry", "donor_id", donorID, "error", err)
		return cause
	}
	m.log.WithDonorID(donorID).Info("reconcile retry scheduled", "cause", cause.Error())
	return nil
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
