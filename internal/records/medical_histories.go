package records

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const medicalHistoryColumns = `medical_history_id, donor_id, medical_approval, needs_review, created_at, updated_at`

// ListMedicalHistoriesByDonorIDs returns every medical history row owned
// by the given donors, newest first.
func (s *Store) ListMedicalHistoriesByDonorIDs(ctx context.Context, donorIDs []int64) ([]MedicalHistory, error) {
	if len(donorIDs) == 0 {
		return []MedicalHistory{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+medicalHistoryColumns+`
		FROM medical_history
		WHERE donor_id = ANY($1)
		ORDER BY updated_at DESC
	`, donorIDs)
	if err != nil {
		return nil, s.fetchErr("medical_history", "list_by_donor_ids", err)
	}
	defer rows.Close()

	items := make([]MedicalHistory, 0)
	for rows.Next() {
		var m MedicalHistory
		if err := rows.Scan(&m.MedicalHistoryID, &m.DonorID, &m.MedicalApproval, &m.NeedsReview, &m.CreatedAt, &m.UpdatedAt); err != nil {
			s.rowSkipped("medical_history", err)
			continue
		}
		items = append(items, m)
	}
	if rows.Err() != nil {
		return nil, s.fetchErr("medical_history", "scan", rows.Err())
	}
	return items, nil
}

// GetLatestMedicalHistoryByDonor returns the donor's most recent medical
// history row, or nil when none exists.
func (s *Store) GetLatestMedicalHistoryByDonor(ctx context.Context, donorID int64) (*MedicalHistory, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+medicalHistoryColumns+`
		FROM medical_history
		WHERE donor_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`, donorID)

	var m MedicalHistory
	err := row.Scan(&m.MedicalHistoryID, &m.DonorID, &m.MedicalApproval, &m.NeedsReview, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, s.fetchErr("medical_history", "get_latest", err)
	}
	return &m, nil
}

// CreateMedicalHistory inserts a pending medical history row for a donor.
func (s *Store) CreateMedicalHistory(ctx context.Context, donorID int64) (MedicalHistory, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO medical_history (donor_id, medical_approval, needs_review)
		VALUES ($1, '', true)
		RETURNING `+medicalHistoryColumns+`
	`, donorID)

	var m MedicalHistory
	err := row.Scan(&m.MedicalHistoryID, &m.DonorID, &m.MedicalApproval, &m.NeedsReview, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return MedicalHistory{}, s.writeErr("medical_history", "create", err)
	}
	return m, nil
}

// PatchMedicalHistoryApproval records the interviewer's outcome.
// Medical history rows are mutated on approve/decline, never deleted.
func (s *Store) PatchMedicalHistoryApproval(ctx context.Context, id uuid.UUID, approval string, needsReview bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE medical_history
		SET medical_approval = $2, needs_review = $3, updated_at = now()
		WHERE medical_history_id = $1
	`, id, approval, needsReview)
	if err != nil {
		return s.writeErr("medical_history", "patch_approval", err)
	}
	if tag.RowsAffected() == 0 {
		return errNoRowsPatched("medical_history")
	}
	return nil
}
