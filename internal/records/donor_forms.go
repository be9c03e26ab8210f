package records

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

const donorFormColumns = `donor_id, surname, first_name, middle_name, birthdate, age, sex,
	civil_status, permanent_address, mobile_number, email, registration_channel, submitted_at`

// ListDonorFormsParams filters the donor form collection.
type ListDonorFormsParams struct {
	Limit  int
	Offset int
}

// ListDonorForms returns donor forms ordered by submission time, newest first.
func (s *Store) ListDonorForms(ctx context.Context, params ListDonorFormsParams) ([]DonorForm, error) {
	limit := params.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+donorFormColumns+`
		FROM donor_form
		ORDER BY submitted_at DESC, donor_id ASC
		LIMIT $1 OFFSET $2
	`, limit, params.Offset)
	if err != nil {
		return nil, s.fetchErr("donor_form", "list", err)
	}
	defer rows.Close()

	return s.collectDonorForms(rows)
}

// ListDonorFormsByIDs returns the donor forms for the given identifiers.
func (s *Store) ListDonorFormsByIDs(ctx context.Context, ids []int64) ([]DonorForm, error) {
	if len(ids) == 0 {
		return []DonorForm{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+donorFormColumns+`
		FROM donor_form
		WHERE donor_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, s.fetchErr("donor_form", "list_by_ids", err)
	}
	defer rows.Close()

	return s.collectDonorForms(rows)
}

// GetDonorForm returns one donor form, or nil when it does not exist.
func (s *Store) GetDonorForm(ctx context.Context, donorID int64) (*DonorForm, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+donorFormColumns+`
		FROM donor_form
		WHERE donor_id = $1
	`, donorID)

	var d DonorForm
	if err := scanDonorForm(row, &d); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, s.fetchErr("donor_form", "get", err)
	}
	return &d, nil
}

// FindDonorFormByIdentity looks for an existing donor with the same
// surname, first name, and birthdate. Used by the intake duplicate check.
func (s *Store) FindDonorFormByIdentity(ctx context.Context, surname, firstName string, birthdate time.Time) (*DonorForm, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+donorFormColumns+`
		FROM donor_form
		WHERE lower(surname) = lower($1) AND lower(first_name) = lower($2) AND birthdate = $3
		ORDER BY submitted_at DESC
		LIMIT 1
	`, surname, firstName, birthdate)

	var d DonorForm
	if err := scanDonorForm(row, &d); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, s.fetchErr("donor_form", "find_by_identity", err)
	}
	return &d, nil
}

// CreateDonorFormParams holds the fields for a new donor form.
type CreateDonorFormParams struct {
	Surname             string
	FirstName           string
	MiddleName          *string
	Birthdate           time.Time
	Age                 int
	Sex                 string
	CivilStatus         string
	PermanentAddress    string
	MobileNumber        string
	Email               *string
	RegistrationChannel string
}

// CreateDonorForm inserts a donor form and returns the stored row.
func (s *Store) CreateDonorForm(ctx context.Context, params CreateDonorFormParams) (DonorForm, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO donor_form (
			surname, first_name, middle_name, birthdate, age, sex,
			civil_status, permanent_address, mobile_number, email, registration_channel
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+donorFormColumns+`
	`,
		params.Surname, params.FirstName, params.MiddleName, params.Birthdate, params.Age, params.Sex,
		params.CivilStatus, params.PermanentAddress, params.MobileNumber, params.Email, params.RegistrationChannel,
	)

	var d DonorForm
	if err := scanDonorForm(row, &d); err != nil {
		return DonorForm{}, s.writeErr("donor_form", "create", err)
	}
	return d, nil
}

func (s *Store) collectDonorForms(rows pgx.Rows) ([]DonorForm, error) {
	items := make([]DonorForm, 0)
	for rows.Next() {
		var d DonorForm
		if err := scanDonorForm(rows, &d); err != nil {
			s.rowSkipped("donor_form", err)
			continue
		}
		items = append(items, d)
	}
	if rows.Err() != nil {
		return nil, s.fetchErr("donor_form", "scan", rows.Err())
	}
	return items, nil
}

func scanDonorForm(row pgx.Row, d *DonorForm) error {
	return row.Scan(
		&d.DonorID, &d.Surname, &d.FirstName, &d.MiddleName, &d.Birthdate, &d.Age, &d.Sex,
		&d.CivilStatus, &d.PermanentAddress, &d.MobileNumber, &d.Email, &d.RegistrationChannel, &d.SubmittedAt,
	)
}
