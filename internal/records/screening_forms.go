package records

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const screeningFormColumns = `screening_id, donor_form_id, blood_type, donation_type, body_weight,
	disapproval_reason, needs_review, created_at, updated_at`

// ListScreeningFormsByDonorIDs returns every screening form owned by the
// given donors, newest first.
func (s *Store) ListScreeningFormsByDonorIDs(ctx context.Context, donorIDs []int64) ([]ScreeningForm, error) {
	if len(donorIDs) == 0 {
		return []ScreeningForm{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+screeningFormColumns+`
		FROM screening_form
		WHERE donor_form_id = ANY($1)
		ORDER BY created_at DESC
	`, donorIDs)
	if err != nil {
		return nil, s.fetchErr("screening_form", "list_by_donor_ids", err)
	}
	defer rows.Close()

	items := make([]ScreeningForm, 0)
	for rows.Next() {
		var f ScreeningForm
		if err := scanScreeningForm(rows, &f); err != nil {
			s.rowSkipped("screening_form", err)
			continue
		}
		items = append(items, f)
	}
	if rows.Err() != nil {
		return nil, s.fetchErr("screening_form", "scan", rows.Err())
	}
	return items, nil
}

// GetLatestScreeningByDonor returns the donor's most recent screening
// form, or nil when none exists.
func (s *Store) GetLatestScreeningByDonor(ctx context.Context, donorID int64) (*ScreeningForm, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+screeningFormColumns+`
		FROM screening_form
		WHERE donor_form_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, donorID)

	var f ScreeningForm
	if err := scanScreeningForm(row, &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, s.fetchErr("screening_form", "get_latest", err)
	}
	return &f, nil
}

func scanScreeningForm(row pgx.Row, f *ScreeningForm) error {
	return row.Scan(
		&f.ScreeningID, &f.DonorFormID, &f.BloodType, &f.DonationType, &f.BodyWeight,
		&f.DisapprovalReason, &f.NeedsReview, &f.CreatedAt, &f.UpdatedAt,
	)
}
