package records

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const physicalExamColumns = `physical_exam_id, donor_id, screening_id, blood_pressure, pulse_rate,
	body_temp, gen_appearance, skin, heent, heart_and_lungs, remarks, reason, needs_review,
	created_at, updated_at`

// ListPhysicalExamsByDonorIDs returns every physical examination owned by
// the given donors, newest first.
func (s *Store) ListPhysicalExamsByDonorIDs(ctx context.Context, donorIDs []int64) ([]PhysicalExam, error) {
	if len(donorIDs) == 0 {
		return []PhysicalExam{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+physicalExamColumns+`
		FROM physical_examination
		WHERE donor_id = ANY($1)
		ORDER BY created_at DESC
	`, donorIDs)
	if err != nil {
		return nil, s.fetchErr("physical_examination", "list_by_donor_ids", err)
	}
	defer rows.Close()

	items := make([]PhysicalExam, 0)
	for rows.Next() {
		var e PhysicalExam
		if err := scanPhysicalExam(rows, &e); err != nil {
			s.rowSkipped("physical_examination", err)
			continue
		}
		items = append(items, e)
	}
	if rows.Err() != nil {
		return nil, s.fetchErr("physical_examination", "scan", rows.Err())
	}
	return items, nil
}

// GetLatestPhysicalExamByDonor returns the donor's most recent physical
// examination, or nil when none exists.
func (s *Store) GetLatestPhysicalExamByDonor(ctx context.Context, donorID int64) (*PhysicalExam, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+physicalExamColumns+`
		FROM physical_examination
		WHERE donor_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, donorID)

	var e PhysicalExam
	if err := scanPhysicalExam(row, &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, s.fetchErr("physical_examination", "get_latest", err)
	}
	return &e, nil
}

// GetPhysicalExam returns one physical examination by identifier, or
// nil when it does not exist.
func (s *Store) GetPhysicalExam(ctx context.Context, examID uuid.UUID) (*PhysicalExam, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+physicalExamColumns+`
		FROM physical_examination
		WHERE physical_exam_id = $1
	`, examID)

	var e PhysicalExam
	if err := scanPhysicalExam(row, &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, s.fetchErr("physical_examination", "get", err)
	}
	return &e, nil
}

func scanPhysicalExam(row pgx.Row, e *PhysicalExam) error {
	return row.Scan(
		&e.PhysicalExamID, &e.DonorID, &e.ScreeningID, &e.BloodPressure, &e.PulseRate,
		&e.BodyTemp, &e.GenAppearance, &e.Skin, &e.Heent, &e.HeartAndLungs, &e.Remarks, &e.Reason, &e.NeedsReview,
		&e.CreatedAt, &e.UpdatedAt,
	)
}
