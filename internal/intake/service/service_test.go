package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"bloodlink_backend/internal/intake/transport"
	"bloodlink_backend/internal/records"
	"bloodlink_backend/platform/apperr"
	"bloodlink_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	existing *records.DonorForm
	patchErr error

	createdDonor       *records.CreateDonorFormParams
	historySeeded      bool
	nextDonorID        int64
	patchedHistoryID   uuid.UUID
	patchedApproval    string
	patchedNeedsReview bool
}

func (f *fakeStore) FindDonorFormByIdentity(ctx context.Context, surname, firstName string, birthdate time.Time) (*records.DonorForm, error) {
	return f.existing, nil
}

func (f *fakeStore) CreateDonorForm(ctx context.Context, params records.CreateDonorFormParams) (records.DonorForm, error) {
	f.createdDonor = &params
	id := f.nextDonorID
	if id == 0 {
		id = 1
	}
	return records.DonorForm{
		DonorID:             id,
		Surname:             params.Surname,
		FirstName:           params.FirstName,
		Birthdate:           params.Birthdate,
		Age:                 params.Age,
		MobileNumber:        params.MobileNumber,
		RegistrationChannel: params.RegistrationChannel,
		SubmittedAt:         time.Now(),
	}, nil
}

func (f *fakeStore) CreateMedicalHistory(ctx context.Context, donorID int64) (records.MedicalHistory, error) {
	f.historySeeded = true
	return records.MedicalHistory{DonorID: donorID, NeedsReview: true}, nil
}

func (f *fakeStore) PatchMedicalHistoryApproval(ctx context.Context, id uuid.UUID, approval string, needsReview bool) error {
	if f.patchErr != nil {
		return f.patchErr
	}
	f.patchedHistoryID = id
	f.patchedApproval = approval
	f.patchedNeedsReview = needsReview
	return nil
}

type fakeIntakeConfig struct {
	ttl time.Duration
}

func (f fakeIntakeConfig) GetAppBaseURL() string { return "https://donate.example.org" }

func (f fakeIntakeConfig) GetRegistrationTokenTTL() time.Duration {
	if f.ttl > 0 {
		return f.ttl
	}
	return 24 * time.Hour
}

func validRequest() transport.RegisterDonorRequest {
	return transport.RegisterDonorRequest{
		Surname:          "Reyes",
		FirstName:        "Ana",
		Birthdate:        "1995-04-12",
		Sex:              "Female",
		CivilStatus:      "Single",
		PermanentAddress: "Quezon City",
		MobileNumber:     "09171234567",
	}
}

func newTestService(store *fakeStore, cfg fakeIntakeConfig) *Service {
	return New(store, cfg, logger.New("development"), nil, nil)
}

func TestRegisterDonor(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, fakeIntakeConfig{})

	resp, err := svc.RegisterDonor(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("RegisterDonor: %v", err)
	}

	if resp.DonorID != 1 {
		t.Errorf("donor id = %d, want 1", resp.DonorID)
	}
	if resp.RegistrationChannel != "PRC Portal" {
		t.Errorf("channel = %q, want default PRC Portal", resp.RegistrationChannel)
	}
	if store.createdDonor.MobileNumber != "+639171234567" {
		t.Errorf("mobile = %q, want E.164 +639171234567", store.createdDonor.MobileNumber)
	}
	if !store.historySeeded {
		t.Error("pending medical history row was not seeded")
	}
}

func TestRegisterDonorDuplicate(t *testing.T) {
	store := &fakeStore{existing: &records.DonorForm{DonorID: 42}}
	svc := newTestService(store, fakeIntakeConfig{})

	_, err := svc.RegisterDonor(context.Background(), validRequest())
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("error kind = %v, want conflict", apperr.GetKind(err))
	}
	if store.createdDonor != nil {
		t.Error("duplicate registration still created a donor form")
	}
}

func TestRegisterDonorAgeLimits(t *testing.T) {
	tests := []struct {
		name      string
		birthdate string
	}{
		{"too young", time.Now().AddDate(-15, 0, 0).Format("2006-01-02")},
		{"too old", "1940-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.Birthdate = tt.birthdate

			svc := newTestService(&fakeStore{}, fakeIntakeConfig{})
			_, err := svc.RegisterDonor(context.Background(), req)
			if apperr.GetKind(err) != apperr.KindValidation {
				t.Errorf("error kind = %v, want validation", apperr.GetKind(err))
			}
		})
	}
}

func TestAgeAt(t *testing.T) {
	tests := []struct {
		name      string
		birthdate time.Time
		now       time.Time
		want      int
	}{
		{
			"birthday today",
			time.Date(2000, time.June, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
			25,
		},
		{
			"day before birthday",
			time.Date(2000, time.June, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC),
			24,
		},
		{
			"leap-year birth, birthday in a common year",
			time.Date(2000, time.March, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			25,
		},
		{
			"feb 29 birth before the cutover",
			time.Date(2004, time.February, 29, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
			20,
		},
		{
			"feb 29 birth after the cutover",
			time.Date(2004, time.February, 29, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			21,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ageAt(tt.birthdate, tt.now); got != tt.want {
				t.Errorf("ageAt(%s, %s) = %d, want %d",
					tt.birthdate.Format("2006-01-02"), tt.now.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestRegisterDonorRejectsLandline(t *testing.T) {
	req := validRequest()
	req.MobileNumber = "028-812-3456"

	svc := newTestService(&fakeStore{}, fakeIntakeConfig{})
	_, err := svc.RegisterDonor(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Errorf("error kind = %v, want validation", apperr.GetKind(err))
	}
}

func TestReviewMedicalHistory(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, fakeIntakeConfig{})

	id := uuid.New()
	resp, err := svc.ReviewMedicalHistory(context.Background(), id.String(),
		transport.ReviewMedicalHistoryRequest{Approval: "Approved"})
	if err != nil {
		t.Fatalf("ReviewMedicalHistory: %v", err)
	}

	if store.patchedHistoryID != id {
		t.Errorf("patched id = %s, want %s", store.patchedHistoryID, id)
	}
	if store.patchedApproval != "Approved" {
		t.Errorf("patched approval = %q, want Approved", store.patchedApproval)
	}
	if store.patchedNeedsReview {
		t.Error("review flag was not cleared by the decision")
	}
	if resp.Approval != "Approved" || resp.NeedsReview {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestReviewMedicalHistoryInvalidID(t *testing.T) {
	svc := newTestService(&fakeStore{}, fakeIntakeConfig{})

	_, err := svc.ReviewMedicalHistory(context.Background(), "not-a-uuid",
		transport.ReviewMedicalHistoryRequest{Approval: "Declined"})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Errorf("error kind = %v, want validation", apperr.GetKind(err))
	}
}

func TestReviewMedicalHistoryUnknownRow(t *testing.T) {
	store := &fakeStore{patchErr: apperr.NotFound("medical_history record not found")}
	svc := newTestService(store, fakeIntakeConfig{})

	_, err := svc.ReviewMedicalHistory(context.Background(), uuid.NewString(),
		transport.ReviewMedicalHistoryRequest{Approval: "Approved"})
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Errorf("error kind = %v, want not found", apperr.GetKind(err))
	}
}

func TestRegistrationQRTokenRoundTrip(t *testing.T) {
	svc := newTestService(&fakeStore{}, fakeIntakeConfig{})

	png, err := svc.RegistrationQR(context.Background())
	if err != nil {
		t.Fatalf("RegistrationQR: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("QR output is not a PNG")
	}

	if len(svc.tokens) != 1 {
		t.Fatalf("token count = %d, want 1", len(svc.tokens))
	}
	var token string
	for tok := range svc.tokens {
		token = tok
	}

	req := validRequest()
	req.RegistrationToken = token
	if _, err := svc.RegisterDonor(context.Background(), req); err != nil {
		t.Fatalf("RegisterDonor with fresh token: %v", err)
	}

	// Tokens are single use.
	req2 := validRequest()
	req2.Surname = "Cruz"
	req2.RegistrationToken = token
	if _, err := svc.RegisterDonor(context.Background(), req2); apperr.GetKind(err) != apperr.KindValidation {
		t.Errorf("reused token error kind = %v, want validation", apperr.GetKind(err))
	}
}

func TestRegistrationTokenExpiry(t *testing.T) {
	svc := newTestService(&fakeStore{}, fakeIntakeConfig{ttl: time.Minute})

	base := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	if _, err := svc.RegistrationQR(context.Background()); err != nil {
		t.Fatalf("RegistrationQR: %v", err)
	}

	var token string
	for tok := range svc.tokens {
		token = tok
	}

	svc.now = func() time.Time { return base.Add(2 * time.Minute) }
	req := validRequest()
	req.RegistrationToken = token
	if _, err := svc.RegisterDonor(context.Background(), req); apperr.GetKind(err) != apperr.KindValidation {
		t.Errorf("expired token error kind = %v, want validation", apperr.GetKind(err))
	}
}
