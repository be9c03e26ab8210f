package records

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const bloodCollectionColumns = `blood_collection_id, physical_exam_id, screening_id, is_successful,
	blood_bag_type, blood_bag_brand, amount_taken, donor_reaction, management_done,
	unit_serial_number, start_time, end_time, status, needs_review, created_at, updated_at`

// ListBloodCollectionsByExamIDs returns the collections owned by the
// given physical examinations.
func (s *Store) ListBloodCollectionsByExamIDs(ctx context.Context, examIDs []uuid.UUID) ([]BloodCollection, error) {
	if len(examIDs) == 0 {
		return []BloodCollection{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+bloodCollectionColumns+`
		FROM blood_collection
		WHERE physical_exam_id = ANY($1)
		ORDER BY created_at DESC
	`, examIDs)
	if err != nil {
		return nil, s.fetchErr("blood_collection", "list_by_exam_ids", err)
	}
	defer rows.Close()

	items := make([]BloodCollection, 0)
	for rows.Next() {
		var c BloodCollection
		if err := scanBloodCollection(rows, &c); err != nil {
			s.rowSkipped("blood_collection", err)
			continue
		}
		items = append(items, c)
	}
	if rows.Err() != nil {
		return nil, s.fetchErr("blood_collection", "scan", rows.Err())
	}
	return items, nil
}

// GetBloodCollectionByExam returns the latest collection for one physical
// examination, or nil when none exists.
func (s *Store) GetBloodCollectionByExam(ctx context.Context, examID uuid.UUID) (*BloodCollection, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+bloodCollectionColumns+`
		FROM blood_collection
		WHERE physical_exam_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, examID)

	var c BloodCollection
	if err := scanBloodCollection(row, &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, s.fetchErr("blood_collection", "get_by_exam", err)
	}
	return &c, nil
}

// CountSerialUsage reports how many collections on OTHER physical
// examinations already carry the given unit serial number. Advisory only:
// the store's unique index is the authoritative guard.
func (s *Store) CountSerialUsage(ctx context.Context, serial string, excludeExamID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM blood_collection
		WHERE unit_serial_number = $1 AND physical_exam_id <> $2
	`, serial, excludeExamID).Scan(&count)
	if err != nil {
		return 0, s.fetchErr("blood_collection", "count_serial", err)
	}
	return count, nil
}

// CreateBloodCollectionParams holds the fields for a new collection row.
type CreateBloodCollectionParams struct {
	PhysicalExamID   uuid.UUID
	ScreeningID      *uuid.UUID
	IsSuccessful     bool
	BloodBagType     string
	BloodBagBrand    string
	AmountTaken      float64
	DonorReaction    *string
	ManagementDone   *string
	UnitSerialNumber string
	StartTime        *time.Time
	EndTime          *time.Time
	Status           string
	NeedsReview      bool
}

// CreateBloodCollection inserts a collection row. A serial collision with
// another examination surfaces as a conflict; the existing row is untouched.
func (s *Store) CreateBloodCollection(ctx context.Context, params CreateBloodCollectionParams) (BloodCollection, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO blood_collection (
			physical_exam_id, screening_id, is_successful, blood_bag_type, blood_bag_brand,
			amount_taken, donor_reaction, management_done, unit_serial_number,
			start_time, end_time, status, needs_review
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+bloodCollectionColumns+`
	`,
		params.PhysicalExamID, params.ScreeningID, params.IsSuccessful, params.BloodBagType, params.BloodBagBrand,
		params.AmountTaken, params.DonorReaction, params.ManagementDone, params.UnitSerialNumber,
		params.StartTime, params.EndTime, params.Status, params.NeedsReview,
	)

	var c BloodCollection
	if err := scanBloodCollection(row, &c); err != nil {
		return BloodCollection{}, s.writeErr("blood_collection", "create", err)
	}
	return c, nil
}

// ClearCollectionReviewFlag drops the needs_review gate so the donor is
// no longer surfaced in pending-work queues.
func (s *Store) ClearCollectionReviewFlag(ctx context.Context, collectionID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE blood_collection
		SET needs_review = false, updated_at = now()
		WHERE blood_collection_id = $1
	`, collectionID)
	if err != nil {
		return s.writeErr("blood_collection", "clear_review_flag", err)
	}
	if tag.RowsAffected() == 0 {
		return errNoRowsPatched("blood_collection")
	}
	return nil
}

// ListSuccessfulCollectionsNeedingReview returns successful collections
// whose review flag was never cleared, created strictly after the given
// cursor. Feed for the reconciliation sweep; keyset pagination so rows
// that permanently fail their gates cannot pin the window.
func (s *Store) ListSuccessfulCollectionsNeedingReview(ctx context.Context, after time.Time, limit int) ([]BloodCollection, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+bloodCollectionColumns+`
		FROM blood_collection
		WHERE is_successful = true AND needs_review = true AND created_at > $1
		ORDER BY created_at ASC
		LIMIT $2
	`, after, limit)
	if err != nil {
		return nil, s.fetchErr("blood_collection", "list_pending_review", err)
	}
	defer rows.Close()

	items := make([]BloodCollection, 0)
	for rows.Next() {
		var c BloodCollection
		if err := scanBloodCollection(rows, &c); err != nil {
			s.rowSkipped("blood_collection", err)
			continue
		}
		items = append(items, c)
	}
	if rows.Err() != nil {
		return nil, s.fetchErr("blood_collection", "scan", rows.Err())
	}
	return items, nil
}

func scanBloodCollection(row pgx.Row, c *BloodCollection) error {
	return row.Scan(
		&c.BloodCollectionID, &c.PhysicalExamID, &c.ScreeningID, &c.IsSuccessful,
		&c.BloodBagType, &c.BloodBagBrand, &c.AmountTaken, &c.DonorReaction, &c.ManagementDone,
		&c.UnitSerialNumber, &c.StartTime, &c.EndTime, &c.Status, &c.NeedsReview, &c.CreatedAt, &c.UpdatedAt,
	)
}
