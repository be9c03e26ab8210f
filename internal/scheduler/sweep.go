package scheduler

import (
	"context"
	"time"

	"bloodlink_backend/platform/config"
	"bloodlink_backend/platform/logger"
)

const defaultSweepInterval = 15 * time.Minute

// SweepScheduler periodically enqueues a reconciliation sweep so
// successful collections that were never reconciled (worker downtime,
// rows written by legacy tooling) are eventually picked up.
type SweepScheduler struct {
	client   *Client
	log      *logger.Logger
	interval time.Duration
	limit    int
}

func NewSweepScheduler(cfg config.SchedulerConfig, client *Client, log *logger.Logger) *SweepScheduler {
	interval := cfg.GetReconcileSweepInterval()
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	return &SweepScheduler{
		client:   client,
		log:      log,
		interval: interval,
		limit:    defaultSweepLimit,
	}
}

func (s *SweepScheduler) Run(ctx context.Context) {
	if s == nil || s.client == nil {
		return
	}

	s.enqueue(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueue(ctx)
		}
	}
}

func (s *SweepScheduler) enqueue(ctx context.Context) {
	if err := s.client.EnqueueSweep(ctx, s.limit); err != nil {
		s.log.Warn("failed to enqueue reconcile sweep", "error", err)
	}
}
