// Package service implements eligibility reconciliation: after a blood
// collection succeeds, re-verify every upstream gate and create or
// refresh the donor's eligibility record.
package service

import (
	"context"
	"strings"
	"time"

	"bloodlink_backend/internal/eligibility/domain"
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

// Gate outcomes recorded when a reconciliation run is skipped.
const (
	reasonNoMedicalApproval = "medical history not approved"
	reasonScreeningFailed   = "screening carries a disapproval reason"
	reasonExamNotAccepted   = "physical examination not accepted"
	reasonCollectionFailed  = "blood collection absent or unsuccessful"
)

const approvedStatus = "approved"

// Store is the slice of the record store the reconciler touches.
type Store interface {
	GetDonorForm(ctx context.Context, donorID int64) (*records.DonorForm, error)
	GetLatestMedicalHistoryByDonor(ctx context.Context, donorID int64) (*records.MedicalHistory, error)
	GetLatestScreeningByDonor(ctx context.Context, donorID int64) (*records.ScreeningForm, error)
	GetLatestPhysicalExamByDonor(ctx context.Context, donorID int64) (*records.PhysicalExam, error)
	GetBloodCollectionByExam(ctx context.Context, examID uuid.UUID) (*records.BloodCollection, error)
	FindCurrentEligibilityByDonor(ctx context.Context, donorID int64) (*records.Eligibility, error)
	CreateEligibility(ctx context.Context, donorID int64, fields records.EligibilityFields) (records.Eligibility, error)
	UpdateEligibility(ctx context.Context, id uuid.UUID, fields records.EligibilityFields) (records.Eligibility, error)
	ClearCollectionReviewFlag(ctx context.Context, collectionID uuid.UUID) error
}

// Outcome reports what a reconciliation run did.
type Outcome struct {
	Applied     bool                 `json:"applied"`
	Created     bool                 `json:"created"`
	Reason      string               `json:"reason,omitempty"`
	Eligibility *records.Eligibility `json:"eligibility,omitempty"`
}

// Service runs eligibility reconciliation for one donor at a time.
type Service struct {
	store Store
	cfg   config.StoreConfig
	log   *logger.Logger
	met   *metrics.Metrics
	bus   events.Bus
	now   func() time.Time
}

// New creates a reconciler service.
func New(store Store, cfg config.StoreConfig, log *logger.Logger, met *metrics.Metrics, bus events.Bus) *Service {
	return &Service{store: store, cfg: cfg, log: log, met: met, bus: bus, now: time.Now}
}

// Reconcile re-reads the donor's gating stages and, when all four pass,
// creates or refreshes the eligibility record. A failed gate is the
// normal steady state for an in-progress donor: no mutation, no error.
// Fetch failures abort the run before any write.
func (s *Service) Reconcile(ctx context.Context, donorID int64) (Outcome, error) {
	var (
		donor     *records.DonorForm
		history   *records.MedicalHistory
		screening *records.ScreeningForm
		exam      *records.PhysicalExam
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.withRetry(gctx, func() error {
			var err error
			donor, err = s.store.GetDonorForm(gctx, donorID)
			return err
		})
	})
	g.Go(func() error {
		return s.withRetry(gctx, func() error {
			var err error
			history, err = s.store.GetLatestMedicalHistoryByDonor(gctx, donorID)
			return err
		})
	})
	g.Go(func() error {
		return s.withRetry(gctx, func() error {
			var err error
			screening, err = s.store.GetLatestScreeningByDonor(gctx, donorID)
			return err
		})
	})
	g.Go(func() error {
		return s.withRetry(gctx, func() error {
			var err error
			exam, err = s.store.GetLatestPhysicalExamByDonor(gctx, donorID)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}
	if donor == nil {
		return Outcome{}, apperr.NotFound("donor not found")
	}

	// Re-verify every gate from the fresh snapshot. Caller state is
	// never trusted; stage records may have changed since the trigger.
	if history == nil || history.MedicalApproval != "Approved" {
		return s.skip(donorID, reasonNoMedicalApproval), nil
	}
	if screening == nil || strings.TrimSpace(screening.DisapprovalReason) != "" {
		return s.skip(donorID, reasonScreeningFailed), nil
	}
	if exam == nil || exam.Remarks != "Accepted" {
		return s.skip(donorID, reasonExamNotAccepted), nil
	}

	var collection *records.BloodCollection
	if err := s.withRetry(ctx, func() error {
		var err error
		collection, err = s.store.GetBloodCollectionByExam(ctx, exam.PhysicalExamID)
		return err
	}); err != nil {
		return Outcome{}, err
	}
	if collection == nil || !collection.IsSuccessful {
		return s.skip(donorID, reasonCollectionFailed), nil
	}

	start := s.now()
	fields := records.EligibilityFields{
		MedicalHistoryID:    &history.MedicalHistoryID,
		ScreeningID:         &screening.ScreeningID,
		PhysicalExamID:      &exam.PhysicalExamID,
		BloodCollectionID:   &collection.BloodCollectionID,
		BloodType:           screening.BloodType,
		DonationType:        screening.DonationType,
		BloodBagType:        optional(collection.BloodBagType),
		BloodBagBrand:       optional(collection.BloodBagBrand),
		AmountCollected:     collection.AmountTaken,
		UnitSerialNumber:    optional(collection.UnitSerialNumber),
		CollectionStartTime: collection.StartTime,
		StartDate:           start,
		EndDate:             domain.WindowEnd(start),
		Status:              approvedStatus,
		RegistrationChannel: donor.RegistrationChannel,
	}

	existing, err := s.store.FindCurrentEligibilityByDonor(ctx, donorID)
	if err != nil {
		return Outcome{}, err
	}

	var stored records.Eligibility
	created := existing == nil
	if created {
		stored, err = s.store.CreateEligibility(ctx, donorID, fields)
	} else {
		stored, err = s.store.UpdateEligibility(ctx, existing.EligibilityID, fields)
	}
	if err != nil {
		return Outcome{}, err
	}

	// Drop the review gate so the donor leaves pending-work queues.
	// Safe to repeat: clearing an already-clear flag is a no-op row update.
	if collection.NeedsReview {
		if err := s.store.ClearCollectionReviewFlag(ctx, collection.BloodCollectionID); err != nil {
			return Outcome{}, err
		}
	}

	s.log.ReconcileOutcome(donorID, true, "")
	if s.met != nil {
		s.met.EligibilityGranted.Inc()
	}
	if s.bus != nil {
		s.bus.Publish(ctx, events.EligibilityGranted{
			BaseEvent:     events.NewBaseEvent(),
			EligibilityID: stored.EligibilityID,
			DonorID:       donorID,
			BloodType:     stored.BloodType,
			StartDate:     stored.StartDate,
			EndDate:       stored.EndDate,
			Created:       created,
		})
	}

	return Outcome{Applied: true, Created: created, Eligibility: &stored}, nil
}

// GetDonorEligibility returns the donor's current eligibility record.
func (s *Service) GetDonorEligibility(ctx context.Context, donorID int64) (records.Eligibility, error) {
	var existing *records.Eligibility
	if err := s.withRetry(ctx, func() error {
		var err error
		existing, err = s.store.FindCurrentEligibilityByDonor(ctx, donorID)
		return err
	}); err != nil {
		return records.Eligibility{}, err
	}
	if existing == nil {
		return records.Eligibility{}, apperr.NotFound("no eligibility record for donor")
	}
	return *existing, nil
}

func (s *Service) skip(donorID int64, reason string) Outcome {
	s.log.ReconcileOutcome(donorID, false, reason)
	if s.met != nil {
		s.met.ReconcileSkipped.Inc()
	}
	return Outcome{Applied: false, Reason: reason}
}

func (s *Service) withRetry(ctx context.Context, fn func() error) error {
	return retry.Do(ctx, s.cfg.GetStoreRetryAttempts(), s.cfg.GetStoreRetryBaseDelay(), fn)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
