package records

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const eligibilityColumns = `eligibility_id, donor_id, medical_history_id, screening_id, physical_exam_id,
	blood_collection_id, blood_type, donation_type, blood_bag_type, blood_bag_brand, amount_collected,
	collection_successful, unit_serial_number, collection_start_time, start_date, end_date, status,
	registration_channel, created_at, updated_at`

// ListEligibilitiesByDonorIDs returns the eligibility rows for the given
// donors, newest first.
func (s *Store) ListEligibilitiesByDonorIDs(ctx context.Context, donorIDs []int64) ([]Eligibility, error) {
	if len(donorIDs) == 0 {
		return []Eligibility{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+eligibilityColumns+`
		FROM eligibility
		WHERE donor_id = ANY($1)
		ORDER BY created_at DESC
	`, donorIDs)
	if err != nil {
		return nil, s.fetchErr("eligibility", "list_by_donor_ids", err)
	}
	defer rows.Close()

	items := make([]Eligibility, 0)
	for rows.Next() {
		var e Eligibility
		if err := scanEligibility(rows, &e); err != nil {
			s.rowSkipped("eligibility", err)
			continue
		}
		items = append(items, e)
	}
	if rows.Err() != nil {
		return nil, s.fetchErr("eligibility", "scan", rows.Err())
	}
	return items, nil
}

// FindCurrentEligibilityByDonor returns the donor's current eligibility
// row, or nil when the donor has none (a first-time donor).
func (s *Store) FindCurrentEligibilityByDonor(ctx context.Context, donorID int64) (*Eligibility, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+eligibilityColumns+`
		FROM eligibility
		WHERE donor_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, donorID)

	var e Eligibility
	if err := scanEligibility(row, &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, s.fetchErr("eligibility", "find_current", err)
	}
	return &e, nil
}

// ListReturningDonorIDs returns the set of donor identifiers that have at
// least one eligibility row. One bulk query; the New/Returning classifier
// must never fall back to per-donor lookups.
func (s *Store) ListReturningDonorIDs(ctx context.Context) (map[int64]struct{}, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT donor_id FROM eligibility`)
	if err != nil {
		return nil, s.fetchErr("eligibility", "list_returning", err)
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			s.rowSkipped("eligibility", err)
			continue
		}
		ids[id] = struct{}{}
	}
	if rows.Err() != nil {
		return nil, s.fetchErr("eligibility", "scan", rows.Err())
	}
	return ids, nil
}

// EligibilityFields carries the reconciler-computed values written on
// both create and update. Applied atomically per row; the reconciler
// never writes a subset.
type EligibilityFields struct {
	MedicalHistoryID    *uuid.UUID
	ScreeningID         *uuid.UUID
	PhysicalExamID      *uuid.UUID
	BloodCollectionID   *uuid.UUID
	BloodType           string
	DonationType        string
	BloodBagType        *string
	BloodBagBrand       *string
	AmountCollected     float64
	UnitSerialNumber    *string
	CollectionStartTime *time.Time
	StartDate           time.Time
	EndDate             time.Time
	Status              string
	RegistrationChannel string
}

// CreateEligibility inserts a new eligibility row for the donor.
func (s *Store) CreateEligibility(ctx context.Context, donorID int64, fields EligibilityFields) (Eligibility, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO eligibility (
			donor_id, medical_history_id, screening_id, physical_exam_id, blood_collection_id,
			blood_type, donation_type, blood_bag_type, blood_bag_brand, amount_collected,
			collection_successful, unit_serial_number, collection_start_time,
			start_date, end_date, status, registration_channel
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true, $11, $12, $13, $14, $15, $16)
		RETURNING `+eligibilityColumns+`
	`,
		donorID, fields.MedicalHistoryID, fields.ScreeningID, fields.PhysicalExamID, fields.BloodCollectionID,
		fields.BloodType, fields.DonationType, fields.BloodBagType, fields.BloodBagBrand, fields.AmountCollected,
		fields.UnitSerialNumber, fields.CollectionStartTime,
		fields.StartDate, fields.EndDate, fields.Status, fields.RegistrationChannel,
	)

	var e Eligibility
	if err := scanEligibility(row, &e); err != nil {
		return Eligibility{}, s.writeErr("eligibility", "create", err)
	}
	return e, nil
}

// UpdateEligibility rewrites the reconciler-managed fields of an existing
// eligibility row in place.
func (s *Store) UpdateEligibility(ctx context.Context, id uuid.UUID, fields EligibilityFields) (Eligibility, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE eligibility SET
			medical_history_id = $2, screening_id = $3, physical_exam_id = $4, blood_collection_id = $5,
			blood_type = $6, donation_type = $7, blood_bag_type = $8, blood_bag_brand = $9,
			amount_collected = $10, collection_successful = true, unit_serial_number = $11,
			collection_start_time = $12, start_date = $13, end_date = $14, status = $15,
			registration_channel = $16, updated_at = now()
		WHERE eligibility_id = $1
		RETURNING `+eligibilityColumns+`
	`,
		id, fields.MedicalHistoryID, fields.ScreeningID, fields.PhysicalExamID, fields.BloodCollectionID,
		fields.BloodType, fields.DonationType, fields.BloodBagType, fields.BloodBagBrand,
		fields.AmountCollected, fields.UnitSerialNumber,
		fields.CollectionStartTime, fields.StartDate, fields.EndDate, fields.Status,
		fields.RegistrationChannel,
	)

	var e Eligibility
	if err := scanEligibility(row, &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Eligibility{}, errNoRowsPatched("eligibility")
		}
		return Eligibility{}, s.writeErr("eligibility", "update", err)
	}
	return e, nil
}

func scanEligibility(row pgx.Row, e *Eligibility) error {
	return row.Scan(
		&e.EligibilityID, &e.DonorID, &e.MedicalHistoryID, &e.ScreeningID, &e.PhysicalExamID,
		&e.BloodCollectionID, &e.BloodType, &e.DonationType, &e.BloodBagType, &e.BloodBagBrand, &e.AmountCollected,
		&e.CollectionSuccessful, &e.UnitSerialNumber, &e.CollectionStartTime, &e.StartDate, &e.EndDate, &e.Status,
		&e.RegistrationChannel, &e.CreatedAt, &e.UpdatedAt,
	)
}
