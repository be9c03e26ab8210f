package service

import (
	"context"
	"testing"
	"time"

	"bloodlink_backend/internal/collection/transport"
	"bloodlink_backend/internal/events"
	"bloodlink_backend/internal/records"
	"bloodlink_backend/platform/apperr"
	"bloodlink_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	exam       *records.PhysicalExam
	serialUsed int
	createErr  error
	created    *records.CreateBloodCollectionParams
}

func (f *fakeStore) GetPhysicalExam(ctx context.Context, examID uuid.UUID) (*records.PhysicalExam, error) {
	return f.exam, nil
}

func (f *fakeStore) CountSerialUsage(ctx context.Context, serial string, excludeExamID uuid.UUID) (int, error) {
	return f.serialUsed, nil
}

func (f *fakeStore) CreateBloodCollection(ctx context.Context, params records.CreateBloodCollectionParams) (records.BloodCollection, error) {
	if f.createErr != nil {
		return records.BloodCollection{}, f.createErr
	}
	f.created = &params
	return records.BloodCollection{
		BloodCollectionID: uuid.New(),
		PhysicalExamID:    params.PhysicalExamID,
		IsSuccessful:      params.IsSuccessful,
		BloodBagType:      params.BloodBagType,
		BloodBagBrand:     params.BloodBagBrand,
		AmountTaken:       params.AmountTaken,
		UnitSerialNumber:  params.UnitSerialNumber,
		Status:            params.Status,
		NeedsReview:       params.NeedsReview,
		CreatedAt:         time.Now(),
	}, nil
}

type fakeStoreConfig struct{}

func (fakeStoreConfig) GetStoreRetryAttempts() int            { return 1 }
func (fakeStoreConfig) GetStoreRetryBaseDelay() time.Duration { return time.Millisecond }

func boolPtr(v bool) *bool { return &v }

func validRequest(examID uuid.UUID) transport.SubmitCollectionRequest {
	return transport.SubmitCollectionRequest{
		PhysicalExamID:   examID.String(),
		IsSuccessful:     boolPtr(true),
		BloodBagType:     "Single",
		BloodBagBrand:    "Terumo",
		AmountTaken:      450,
		UnitSerialNumber: "BC-20250605-0001",
	}
}

func newTestService(store *fakeStore, bus events.Bus) *Service {
	return New(store, fakeStoreConfig{}, logger.New("development"), bus)
}

func TestSubmitSuccessfulCollection(t *testing.T) {
	examID := uuid.New()
	store := &fakeStore{exam: &records.PhysicalExam{PhysicalExamID: examID, DonorID: 7, Remarks: "Accepted"}}
	bus := events.NewInMemoryBus(logger.New("development"))

	var received events.BloodCollectionRecorded
	done := make(chan struct{})
	bus.Subscribe(events.BloodCollectionRecorded{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		received = e.(events.BloodCollectionRecorded)
		close(done)
		return nil
	}))

	svc := newTestService(store, bus)
	resp, err := svc.Submit(context.Background(), validRequest(examID))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if resp.NeedsReview {
		t.Error("successful collection stored with needs_review still set")
	}
	if resp.Status != "Accepted" {
		t.Errorf("status = %q, want Accepted", resp.Status)
	}
	if resp.DonorID != 7 {
		t.Errorf("donor id = %d, want 7", resp.DonorID)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BloodCollectionRecorded event never published")
	}
	if received.DonorID != 7 || !received.IsSuccessful {
		t.Errorf("event = %+v, want donor 7 successful", received)
	}
}

func TestSubmitFailedCollectionNeedsReview(t *testing.T) {
	examID := uuid.New()
	store := &fakeStore{exam: &records.PhysicalExam{PhysicalExamID: examID, DonorID: 7}}

	req := validRequest(examID)
	req.IsSuccessful = boolPtr(false)

	svc := newTestService(store, nil)
	resp, err := svc.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.NeedsReview {
		t.Error("failed collection should be flagged for review")
	}
	if resp.Status != "Deferred" {
		t.Errorf("status = %q, want Deferred", resp.Status)
	}
}

func TestSubmitSerialCollision(t *testing.T) {
	examID := uuid.New()
	store := &fakeStore{
		exam:       &records.PhysicalExam{PhysicalExamID: examID, DonorID: 7},
		serialUsed: 1,
	}

	svc := newTestService(store, nil)
	_, err := svc.Submit(context.Background(), validRequest(examID))
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Errorf("error kind = %v, want conflict", apperr.GetKind(err))
	}
	if store.created != nil {
		t.Error("collision still created a collection row")
	}
}

func TestSubmitUnknownExam(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil)
	_, err := svc.Submit(context.Background(), validRequest(uuid.New()))
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Errorf("error kind = %v, want not found", apperr.GetKind(err))
	}
}

func TestSubmitInvalidExamID(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil)
	req := validRequest(uuid.New())
	req.PhysicalExamID = "not-a-uuid"
	_, err := svc.Submit(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Errorf("error kind = %v, want validation", apperr.GetKind(err))
	}
}

func TestSubmitStoreConflictPropagates(t *testing.T) {
	examID := uuid.New()
	store := &fakeStore{
		exam:      &records.PhysicalExam{PhysicalExamID: examID, DonorID: 7},
		createErr: apperr.Conflict("duplicate value rejected by blood_collection"),
	}

	svc := newTestService(store, nil)
	_, err := svc.Submit(context.Background(), validRequest(examID))
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Errorf("error kind = %v, want conflict", apperr.GetKind(err))
	}
}
