package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bloodlink_backend/internal/donors/domain"
	"bloodlink_backend/internal/donors/resolver"
	"bloodlink_backend/internal/donors/transport"
	"bloodlink_backend/internal/events"
	"bloodlink_backend/internal/records"
	"bloodlink_backend/platform/apperr"
	"bloodlink_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	donors      []records.DonorForm
	histories   []records.MedicalHistory
	screenings  []records.ScreeningForm
	exams       []records.PhysicalExam
	collections []records.BloodCollection
	returning   map[int64]struct{}

	histErr  error
	listErr  error
	calls    int
	failHist int
}

func (f *fakeStore) ListDonorForms(ctx context.Context, params records.ListDonorFormsParams) ([]records.DonorForm, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.donors, nil
}

func (f *fakeStore) ListDonorFormsByIDs(ctx context.Context, ids []int64) ([]records.DonorForm, error) {
	out := []records.DonorForm{}
	for _, d := range f.donors {
		for _, id := range ids {
			if d.DonorID == id {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListMedicalHistoriesByDonorIDs(ctx context.Context, donorIDs []int64) ([]records.MedicalHistory, error) {
	f.calls++
	if f.histErr != nil && f.calls <= f.failHist {
		return nil, f.histErr
	}
	return f.histories, nil
}

func (f *fakeStore) ListScreeningFormsByDonorIDs(ctx context.Context, donorIDs []int64) ([]records.ScreeningForm, error) {
	return f.screenings, nil
}

func (f *fakeStore) ListPhysicalExamsByDonorIDs(ctx context.Context, donorIDs []int64) ([]records.PhysicalExam, error) {
	return f.exams, nil
}

func (f *fakeStore) ListBloodCollectionsByExamIDs(ctx context.Context, examIDs []uuid.UUID) ([]records.BloodCollection, error) {
	return f.collections, nil
}

func (f *fakeStore) ListReturningDonorIDs(ctx context.Context) (map[int64]struct{}, error) {
	return f.returning, nil
}

type fakeStoreConfig struct {
	attempts int
}

func (f fakeStoreConfig) GetStoreRetryAttempts() int {
	if f.attempts > 0 {
		return f.attempts
	}
	return 1
}

func (f fakeStoreConfig) GetStoreRetryBaseDelay() time.Duration { return time.Millisecond }

func newTestService(store *fakeStore, attempts int) *Service {
	return New(store, fakeStoreConfig{attempts: attempts}, logger.New("development"), nil, nil)
}

func TestListProgressResolvesPage(t *testing.T) {
	examID := uuid.New()
	start := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	store := &fakeStore{
		donors: []records.DonorForm{
			{DonorID: 1, Surname: "Reyes", FirstName: "Ana", SubmittedAt: start.Add(-72 * time.Hour)},
			{DonorID: 2, Surname: "Cruz", FirstName: "Ben", SubmittedAt: start.Add(-48 * time.Hour)},
		},
		exams: []records.PhysicalExam{
			{PhysicalExamID: examID, DonorID: 1, Remarks: "Accepted", CreatedAt: start.Add(-time.Hour)},
		},
		collections: []records.BloodCollection{
			{BloodCollectionID: uuid.New(), PhysicalExamID: examID, Status: "Accepted", StartTime: &start, CreatedAt: start},
		},
		returning: map[int64]struct{}{1: {}},
	}

	svc := newTestService(store, 1)
	resp, err := svc.ListProgress(context.Background(), transport.ListProgressRequest{})
	if err != nil {
		t.Fatalf("ListProgress: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}

	first := resp.Items[0]
	if first.DonorID != 1 || first.CurrentStage != "blood_collection" {
		t.Errorf("first item = %+v, want donor 1 at blood_collection", first)
	}
	if first.DonorType != "Returning" {
		t.Errorf("donor 1 type = %s, want Returning", first.DonorType)
	}
	if resp.Items[1].DonorType != "New" {
		t.Errorf("donor 2 type = %s, want New", resp.Items[1].DonorType)
	}
}

func TestListProgressFailsClosedOnFetchError(t *testing.T) {
	store := &fakeStore{
		donors:   []records.DonorForm{{DonorID: 1, SubmittedAt: time.Now()}},
		histErr:  apperr.Unavailable("record store fetch failed: medical_history", errors.New("boom")),
		failHist: 10,
	}

	svc := newTestService(store, 1)
	_, err := svc.ListProgress(context.Background(), transport.ListProgressRequest{})
	if err == nil {
		t.Fatal("expected error when one stage fetch fails, got nil")
	}
	if apperr.GetKind(err) != apperr.KindUnavailable {
		t.Errorf("error kind = %v, want unavailable", apperr.GetKind(err))
	}
}

func TestListProgressRetriesTransientFailure(t *testing.T) {
	store := &fakeStore{
		donors:   []records.DonorForm{{DonorID: 1, SubmittedAt: time.Now()}},
		histErr:  errors.New("transient"),
		failHist: 1,
	}

	svc := newTestService(store, 3)
	resp, err := svc.ListProgress(context.Background(), transport.ListProgressRequest{})
	if err != nil {
		t.Fatalf("ListProgress after retry: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
}

func TestGetDonorProgressNotFound(t *testing.T) {
	svc := newTestService(&fakeStore{}, 1)
	_, err := svc.GetDonorProgress(context.Background(), 404)
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Errorf("error kind = %v, want not found", apperr.GetKind(err))
	}
}

func TestReportConflictsPublishesEvent(t *testing.T) {
	bus := events.NewInMemoryBus(logger.New("development"))

	var received events.StageConflictDetected
	done := make(chan struct{})
	bus.Subscribe(events.StageConflictDetected{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		received = e.(events.StageConflictDetected)
		close(done)
		return nil
	}))

	svc := New(&fakeStore{}, fakeStoreConfig{}, logger.New("development"), nil, bus)
	entries := svc.reportConflicts(context.Background(), []resolver.Conflict{{
		DonorID:     11,
		DonorName:   "Maria Santos",
		FirstStage:  domain.StageBloodCollection,
		SecondStage: domain.StageScreening,
	}})

	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("StageConflictDetected event never published")
	}
	if received.DonorID != 11 || received.FirstStage != "blood_collection" || received.SecondStage != "screening_form" {
		t.Errorf("event = %+v, want donor 11 at blood_collection/screening_form", received)
	}
}

func TestListConflictsCleanResolution(t *testing.T) {
	store := &fakeStore{
		donors: []records.DonorForm{
			{DonorID: 1, SubmittedAt: time.Now()},
			{DonorID: 2, SubmittedAt: time.Now()},
		},
	}

	svc := newTestService(store, 1)
	resp, err := svc.ListConflicts(context.Background(), transport.ListProgressRequest{})
	if err != nil {
		t.Fatalf("ListConflicts: %v", err)
	}
	if len(resp.Conflicts) != 0 {
		t.Errorf("conflicts = %d, want 0", len(resp.Conflicts))
	}
	if resp.Checked != 2 {
		t.Errorf("checked = %d, want 2", resp.Checked)
	}
}
