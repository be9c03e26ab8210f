// Package service orchestrates donor progress resolution: it fans out
// the stage collection fetches, joins them in memory, and runs the
// resolver over the snapshot.
package service

import (
	"context"
	"fmt"

	"bloodlink_backend/internal/donors/resolver"
	"bloodlink_backend/internal/donors/transport"
	"bloodlink_backend/internal/events"
	"bloodlink_backend/internal/records"
	"bloodlink_backend/platform/apperr"
	"bloodlink_backend/platform/config"
	"bloodlink_backend/platform/logger"
	"bloodlink_backend/platform/metrics"
	"bloodlink_backend/platform/retry"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Store is the slice of the record store the progress engine reads.
type Store interface {
	ListDonorForms(ctx context.Context, params records.ListDonorFormsParams) ([]records.DonorForm, error)
	ListDonorFormsByIDs(ctx context.Context, ids []int64) ([]records.DonorForm, error)
	ListMedicalHistoriesByDonorIDs(ctx context.Context, donorIDs []int64) ([]records.MedicalHistory, error)
	ListScreeningFormsByDonorIDs(ctx context.Context, donorIDs []int64) ([]records.ScreeningForm, error)
	ListPhysicalExamsByDonorIDs(ctx context.Context, donorIDs []int64) ([]records.PhysicalExam, error)
	ListBloodCollectionsByExamIDs(ctx context.Context, examIDs []uuid.UUID) ([]records.BloodCollection, error)
	ListReturningDonorIDs(ctx context.Context) (map[int64]struct{}, error)
}

// Service resolves donor progress over record store snapshots.
type Service struct {
	store Store
	cfg   config.StoreConfig
	log   *logger.Logger
	met   *metrics.Metrics
	bus   events.Bus
}

// New creates a donor progress service.
func New(store Store, cfg config.StoreConfig, log *logger.Logger, met *metrics.Metrics, bus events.Bus) *Service {
	return &Service{store: store, cfg: cfg, log: log, met: met, bus: bus}
}

// ListProgress resolves the current stage for a page of donors.
func (s *Service) ListProgress(ctx context.Context, req transport.ListProgressRequest) (transport.ProgressListResponse, error) {
	limit := req.Limit
	if limit < 1 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	var donors []records.DonorForm
	err := s.withRetry(ctx, func() error {
		var err error
		donors, err = s.store.ListDonorForms(ctx, records.ListDonorFormsParams{Limit: limit, Offset: offset})
		return err
	})
	if err != nil {
		return transport.ProgressListResponse{}, err
	}

	assignments, err := s.resolveDonors(ctx, donors)
	if err != nil {
		return transport.ProgressListResponse{}, err
	}

	return transport.ProgressListResponse{
		Items:  toProgressEntries(assignments),
		Count:  len(assignments),
		Limit:  limit,
		Offset: offset,
	}, nil
}

// GetDonorProgress resolves one donor's current stage.
func (s *Service) GetDonorProgress(ctx context.Context, donorID int64) (transport.ProgressEntry, error) {
	var donors []records.DonorForm
	err := s.withRetry(ctx, func() error {
		var err error
		donors, err = s.store.ListDonorFormsByIDs(ctx, []int64{donorID})
		return err
	})
	if err != nil {
		return transport.ProgressEntry{}, err
	}
	if len(donors) == 0 {
		return transport.ProgressEntry{}, apperr.NotFound(fmt.Sprintf("donor %d not found", donorID))
	}

	assignments, err := s.resolveDonors(ctx, donors)
	if err != nil {
		return transport.ProgressEntry{}, err
	}
	if len(assignments) == 0 {
		return transport.ProgressEntry{}, apperr.NotFound(fmt.Sprintf("donor %d not found", donorID))
	}
	return toProgressEntries(assignments)[0], nil
}

// ListConflicts runs the consistency check over a resolved page and
// reports any donor claimed at two stages. Conflicts are diagnostic
// output; they are logged and counted but never repaired here.
func (s *Service) ListConflicts(ctx context.Context, req transport.ListProgressRequest) (transport.ConflictListResponse, error) {
	limit := req.Limit
	if limit < 1 {
		limit = 200
	}

	var donors []records.DonorForm
	err := s.withRetry(ctx, func() error {
		var err error
		donors, err = s.store.ListDonorForms(ctx, records.ListDonorFormsParams{Limit: limit, Offset: req.Offset})
		return err
	})
	if err != nil {
		return transport.ConflictListResponse{}, err
	}

	assignments, err := s.resolveDonors(ctx, donors)
	if err != nil {
		return transport.ConflictListResponse{}, err
	}

	conflicts := resolver.CheckAssignments(assignments)
	return transport.ConflictListResponse{
		Conflicts: s.reportConflicts(ctx, conflicts),
		Checked:   len(assignments),
	}, nil
}

// reportConflicts logs, counts, and announces each duplicate stage
// assignment, then shapes the transport entries.
func (s *Service) reportConflicts(ctx context.Context, conflicts []resolver.Conflict) []transport.ConflictEntry {
	entries := make([]transport.ConflictEntry, 0, len(conflicts))
	for _, c := range conflicts {
		s.log.DataIntegrityWarning("duplicate_stage_assignment", c.DonorID,
			fmt.Sprintf("resolved at both %s and %s", c.FirstStage, c.SecondStage))
		if s.met != nil {
			s.met.StageConflicts.Inc()
		}
		if s.bus != nil {
			s.bus.Publish(ctx, events.StageConflictDetected{
				BaseEvent:   events.NewBaseEvent(),
				DonorID:     c.DonorID,
				FirstStage:  string(c.FirstStage),
				SecondStage: string(c.SecondStage),
			})
		}
		entries = append(entries, transport.ConflictEntry{
			DonorID:     c.DonorID,
			DonorName:   c.DonorName,
			FirstStage:  string(c.FirstStage),
			SecondStage: string(c.SecondStage),
		})
	}
	return entries
}

// resolveDonors fetches the stage collections for the given donors
// concurrently, then resolves the joined snapshot. A failed fetch of
// any collection aborts the run; the resolver never sees partial data.
func (s *Service) resolveDonors(ctx context.Context, donors []records.DonorForm) ([]resolver.Assignment, error) {
	if len(donors) == 0 {
		return []resolver.Assignment{}, nil
	}

	donorIDs := make([]int64, 0, len(donors))
	for _, d := range donors {
		donorIDs = append(donorIDs, d.DonorID)
	}

	snap := resolver.Snapshot{Donors: donors}
	var returning map[int64]struct{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.withRetry(gctx, func() error {
			var err error
			snap.Histories, err = s.store.ListMedicalHistoriesByDonorIDs(gctx, donorIDs)
			return err
		})
	})
	g.Go(func() error {
		return s.withRetry(gctx, func() error {
			var err error
			snap.Screenings, err = s.store.ListScreeningFormsByDonorIDs(gctx, donorIDs)
			return err
		})
	})
	g.Go(func() error {
		return s.withRetry(gctx, func() error {
			var err error
			snap.Exams, err = s.store.ListPhysicalExamsByDonorIDs(gctx, donorIDs)
			return err
		})
	})
	g.Go(func() error {
		return s.withRetry(gctx, func() error {
			var err error
			returning, err = s.store.ListReturningDonorIDs(gctx)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Collections hang off examinations, so this fetch waits for the
	// exam list.
	examIDs := make([]uuid.UUID, 0, len(snap.Exams))
	for _, e := range snap.Exams {
		examIDs = append(examIDs, e.PhysicalExamID)
	}
	if err := s.withRetry(ctx, func() error {
		var err error
		snap.Collections, err = s.store.ListBloodCollectionsByExamIDs(ctx, examIDs)
		return err
	}); err != nil {
		return nil, err
	}

	return resolver.Resolve(snap, returning), nil
}

func (s *Service) withRetry(ctx context.Context, fn func() error) error {
	return retry.Do(ctx, s.cfg.GetStoreRetryAttempts(), s.cfg.GetStoreRetryBaseDelay(), fn)
}

func toProgressEntries(assignments []resolver.Assignment) []transport.ProgressEntry {
	entries := make([]transport.ProgressEntry, 0, len(assignments))
	for _, a := range assignments {
		entries = append(entries, transport.ProgressEntry{
			DonorID:       a.DonorID,
			DonorName:     a.DonorName,
			CurrentStage:  string(a.Stage),
			Status:        a.Status,
			DonorType:     string(a.DonorType),
			EffectiveDate: a.EffectiveDate,
		})
	}
	return entries
}
