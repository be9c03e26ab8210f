package records

import (
	"time"

	"github.com/google/uuid"
)

// DonorForm is the intake record. Created once per donor; immutable
// except for administrative correction.
type DonorForm struct {
	DonorID             int64
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
	SubmittedAt         time.Time
}

// FullName renders the donor's display name.
func (d DonorForm) FullName() string {
	if d.MiddleName != nil && *d.MiddleName != "" {
		return d.FirstName + " " + *d.MiddleName + " " + d.Surname
	}
	return d.FirstName + " " + d.Surname
}

// MedicalHistory carries the interviewer's approval outcome.
// MedicalApproval is "Approved", "Not Approved", or empty while pending.
type MedicalHistory struct {
	MedicalHistoryID uuid.UUID
	DonorID          int64
	MedicalApproval  string
	NeedsReview      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ScreeningForm belongs to exactly one donor. An empty DisapprovalReason
// means the screening passed.
type ScreeningForm struct {
	ScreeningID       uuid.UUID
	DonorFormID       int64
	BloodType         string
	DonationType      string
	BodyWeight        *float64
	DisapprovalReason string
	NeedsReview       bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PhysicalExam belongs to exactly one donor and references a screening
// form. Remarks is the examiner outcome: "Accepted", "Temporarily
// Deferred", "Permanently Deferred", "Refused", or empty while pending.
type PhysicalExam struct {
	PhysicalExamID uuid.UUID
	DonorID        int64
	ScreeningID    *uuid.UUID
	BloodPressure  string
	PulseRate      int
	BodyTemp       float64
	GenAppearance  string
	Skin           string
	Heent          string
	HeartAndLungs  string
	Remarks        string
	Reason         *string
	NeedsReview    bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BloodCollection belongs to exactly one physical examination.
// UnitSerialNumber is globally unique across other examinations;
// NeedsReview gates the donor out of pending-work queues once cleared.
type BloodCollection struct {
	BloodCollectionID uuid.UUID
	PhysicalExamID    uuid.UUID
	ScreeningID       *uuid.UUID
	IsSuccessful      bool
	BloodBagType      string
	BloodBagBrand     string
	AmountTaken       float64
	DonorReaction     *string
	ManagementDone    *string
	UnitSerialNumber  string
	StartTime         *time.Time
	EndTime           *time.Time
	Status            string
	NeedsReview       bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Eligibility is the derived record; at most one current row per donor.
// Its existence alone classifies the donor as Returning.
type Eligibility struct {
	EligibilityID        uuid.UUID
	DonorID              int64
	MedicalHistoryID     *uuid.UUID
	ScreeningID          *uuid.UUID
	PhysicalExamID       *uuid.UUID
	BloodCollectionID    *uuid.UUID
	BloodType            string
	DonationType         string
	BloodBagType         *string
	BloodBagBrand        *string
	AmountCollected      float64
	CollectionSuccessful bool
	UnitSerialNumber     *string
	CollectionStartTime  *time.Time
	StartDate            time.Time
	EndDate              time.Time
	Status               string
	RegistrationChannel  string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
