package scheduler

import (
	"context"
	"fmt"
	"time"

	eligibility "bloodlink_backend/internal/eligibility/service"
	"bloodlink_backend/internal/records"
	"bloodlink_backend/platform/config"
	"bloodlink_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	defaultSweepLimit = 100

	// maxSweepPages bounds one sweep run; anything beyond it waits for
	// the next tick.
	maxSweepPages = 50
)

// Reconciler runs eligibility derivation for one donor.
type Reconciler interface {
	Reconcile(ctx context.Context, donorID int64) (eligibility.Outcome, error)
}

// SweepStore is the slice of the record store the sweep walks.
type SweepStore interface {
	ListSuccessfulCollectionsNeedingReview(ctx context.Context, after time.Time, limit int) ([]records.BloodCollection, error)
	GetPhysicalExam(ctx context.Context, examID uuid.UUID) (*records.PhysicalExam, error)
}

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	store      SweepStore
	reconciler Reconciler
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, store SweepStore, reconciler Reconciler, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		store:      store,
		reconciler: reconciler,
		log:        log,
	}

	mux.HandleFunc(TaskReconcileSweep, w.handleReconcileSweep)
	mux.HandleFunc(TaskReconcileDonor, w.handleReconcileDonor)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleReconcileSweep finds successful collections still flagged for
// review and re-runs the reconciler over their donors. Pages advance by
// created_at cursor, so rows whose gates keep failing cannot starve
// newer rows out of the window. Donors are processed one at a time; the
// reconciler's writes must stay sequential.
func (w *Worker) handleReconcileSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseReconcileSweepPayload(task)
	if err != nil {
		return err
	}
	limit := payload.Limit
	if limit < 1 {
		limit = defaultSweepLimit
	}

	seen := make(map[int64]struct{})
	var cursor time.Time
	var scanned, applied, skipped int

	for page := 0; page < maxSweepPages; page++ {
		pending, err := w.store.ListSuccessfulCollectionsNeedingReview(ctx, cursor, limit)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			break
		}
		scanned += len(pending)

		for _, collection := range pending {
			cursor = collection.CreatedAt

			exam, err := w.store.GetPhysicalExam(ctx, collection.PhysicalExamID)
			if err != nil {
				return err
			}
			if exam == nil {
				w.log.DataIntegrityWarning("orphan_collection", 0,
					"collection "+collection.BloodCollectionID.String()+" references a missing examination")
				continue
			}
			if _, done := seen[exam.DonorID]; done {
				continue
			}
			seen[exam.DonorID] = struct{}{}

			outcome, err := w.reconciler.Reconcile(ctx, exam.DonorID)
			if err != nil {
				// Keep sweeping; the donor stays flagged and the next
				// sweep retries it.
				w.log.Warn("sweep reconcile failed", "donor_id", exam.DonorID, "error", err)
				continue
			}
			if outcome.Applied {
				applied++
			} else {
				skipped++
			}
		}

		if len(pending) < limit {
			break
		}
	}

	if scanned == 0 {
		return nil
	}
	w.log.Info("reconcile sweep complete",
		"scanned", scanned,
		"applied", applied,
		"skipped", skipped,
	)
	return nil
}

func (w *Worker) handleReconcileDonor(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseReconcileDonorPayload(task)
	if err != nil {
		return err
	}
	if payload.DonorID < 1 {
		return fmt.Errorf("invalid donor id %d", payload.DonorID)
	}

	_, err = w.reconciler.Reconcile(ctx, payload.DonorID)
	return err
}
