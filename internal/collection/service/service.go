// Package service records blood collection submissions against a
// physical examination and announces them on the event bus.
package service

import (
	"context"

	"bloodlink_backend/internal/collection/transport"
	"bloodlink_backend/internal/events"
	"bloodlink_backend/internal/records"
	"bloodlink_backend/platform/apperr"
	"bloodlink_backend/platform/config"
	"bloodlink_backend/platform/logger"
	"bloodlink_backend/platform/retry"

	"github.com/google/uuid"
)

// Collection outcome wording stored on the record. The resolver's
// canonicalizer maps these onto the fixed vocabulary.
const (
	statusAccepted = "Accepted"
	statusDeferred = "Deferred"
)

// Store is the slice of the record store the collection flow touches.
type Store interface {
	GetPhysicalExam(ctx context.Context, examID uuid.UUID) (*records.PhysicalExam, error)
	CountSerialUsage(ctx context.Context, serial string, excludeExamID uuid.UUID) (int, error)
	CreateBloodCollection(ctx context.Context, params records.CreateBloodCollectionParams) (records.BloodCollection, error)
}

// Service handles collection submissions.
type Service struct {
	store Store
	cfg   config.StoreConfig
	log   *logger.Logger
	bus   events.Bus
}

// New creates a collection service.
func New(store Store, cfg config.StoreConfig, log *logger.Logger, bus events.Bus) *Service {
	return &Service{store: store, cfg: cfg, log: log, bus: bus}
}

// Submit stores one collection row. The serial pre-check is advisory;
// the store's unique constraint is what actually rejects concurrent
// reuse, surfaced as a conflict. A successful collection is stored with
// the review flag already cleared so reconciliation can apply directly.
func (s *Service) Submit(ctx context.Context, req transport.SubmitCollectionRequest) (transport.CollectionResponse, error) {
	examID, err := uuid.Parse(req.PhysicalExamID)
	if err != nil {
		return transport.CollectionResponse{}, apperr.Validation("physical_exam_id is not a valid uuid")
	}

	var exam *records.PhysicalExam
	if err := s.withRetry(ctx, func() error {
		var err error
		exam, err = s.store.GetPhysicalExam(ctx, examID)
		return err
	}); err != nil {
		return transport.CollectionResponse{}, err
	}
	if exam == nil {
		return transport.CollectionResponse{}, apperr.NotFound("physical examination not found")
	}

	used, err := s.store.CountSerialUsage(ctx, req.UnitSerialNumber, examID)
	if err != nil {
		return transport.CollectionResponse{}, err
	}
	if used > 0 {
		return transport.CollectionResponse{}, apperr.Conflict("unit serial number already assigned to another examination")
	}

	successful := req.IsSuccessful != nil && *req.IsSuccessful
	status := statusDeferred
	if successful {
		status = statusAccepted
	}

	stored, err := s.store.CreateBloodCollection(ctx, records.CreateBloodCollectionParams{
		PhysicalExamID:   examID,
		ScreeningID:      exam.ScreeningID,
		IsSuccessful:     successful,
		BloodBagType:     req.BloodBagType,
		BloodBagBrand:    req.BloodBagBrand,
		AmountTaken:      req.AmountTaken,
		DonorReaction:    req.DonorReaction,
		ManagementDone:   req.ManagementDone,
		UnitSerialNumber: req.UnitSerialNumber,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Status:           status,
		NeedsReview:      !successful,
	})
	if err != nil {
		return transport.CollectionResponse{}, err
	}

	s.log.WithDonorID(exam.DonorID).Info("blood collection recorded",
		"collection_id", stored.BloodCollectionID.String(),
		"successful", successful,
	)
	if s.bus != nil {
		s.bus.Publish(ctx, events.BloodCollectionRecorded{
			BaseEvent:      events.NewBaseEvent(),
			CollectionID:   stored.BloodCollectionID,
			PhysicalExamID: examID,
			DonorID:        exam.DonorID,
			IsSuccessful:   successful,
		})
	}

	return toResponse(stored, exam.DonorID), nil
}

func (s *Service) withRetry(ctx context.Context, fn func() error) error {
	return retry.Do(ctx, s.cfg.GetStoreRetryAttempts(), s.cfg.GetStoreRetryBaseDelay(), fn)
}

func toResponse(c records.BloodCollection, donorID int64) transport.CollectionResponse {
	return transport.CollectionResponse{
		CollectionID:     c.BloodCollectionID.String(),
		PhysicalExamID:   c.PhysicalExamID.String(),
		DonorID:          donorID,
		IsSuccessful:     c.IsSuccessful,
		BloodBagType:     c.BloodBagType,
		BloodBagBrand:    c.BloodBagBrand,
		AmountTaken:      c.AmountTaken,
		UnitSerialNumber: c.UnitSerialNumber,
		StartTime:        c.StartTime,
		EndTime:          c.EndTime,
		Status:           c.Status,
		NeedsReview:      c.NeedsReview,
		CreatedAt:        c.CreatedAt,
	}
}
