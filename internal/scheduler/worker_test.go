package scheduler

import (
	"context"
	"testing"
	"time"

	eligibility "bloodlink_backend/internal/eligibility/service"
	"bloodlink_backend/internal/records"
	"bloodlink_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeSweepStore struct {
	collections []records.BloodCollection
	exams       map[uuid.UUID]*records.PhysicalExam

	cursors []time.Time
}

func (f *fakeSweepStore) ListSuccessfulCollectionsNeedingReview(ctx context.Context, after time.Time, limit int) ([]records.BloodCollection, error) {
	f.cursors = append(f.cursors, after)

	out := []records.BloodCollection{}
	for _, c := range f.collections {
		if !c.CreatedAt.After(after) {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeSweepStore) GetPhysicalExam(ctx context.Context, examID uuid.UUID) (*records.PhysicalExam, error) {
	return f.exams[examID], nil
}

type fakeReconciler struct {
	applied map[int64]bool
	calls   []int64
}

func (f *fakeReconciler) Reconcile(ctx context.Context, donorID int64) (eligibility.Outcome, error) {
	f.calls = append(f.calls, donorID)
	return eligibility.Outcome{Applied: f.applied[donorID]}, nil
}

func sweepFixture(donorIDs ...int64) (*fakeSweepStore, []records.BloodCollection) {
	base := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	store := &fakeSweepStore{exams: map[uuid.UUID]*records.PhysicalExam{}}

	for i, donorID := range donorIDs {
		examID := uuid.New()
		store.exams[examID] = &records.PhysicalExam{PhysicalExamID: examID, DonorID: donorID}
		store.collections = append(store.collections, records.BloodCollection{
			BloodCollectionID: uuid.New(),
			PhysicalExamID:    examID,
			IsSuccessful:      true,
			NeedsReview:       true,
			CreatedAt:         base.Add(time.Duration(i) * time.Minute),
		})
	}
	return store, store.collections
}

func sweepWorker(store SweepStore, rec Reconciler) *Worker {
	return &Worker{store: store, reconciler: rec, log: logger.New("development")}
}

func TestSweepPagesPastStuckRows(t *testing.T) {
	// Donors 1 and 2 keep failing their gates; donor 3 sits beyond the
	// first page and must still be reached within one sweep run.
	store, _ := sweepFixture(1, 2, 3)
	rec := &fakeReconciler{applied: map[int64]bool{3: true}}

	task, err := NewReconcileSweepTask(ReconcileSweepPayload{Limit: 2})
	if err != nil {
		t.Fatalf("NewReconcileSweepTask: %v", err)
	}

	w := sweepWorker(store, rec)
	if err := w.handleReconcileSweep(context.Background(), task); err != nil {
		t.Fatalf("handleReconcileSweep: %v", err)
	}

	if len(rec.calls) != 3 {
		t.Fatalf("reconciled %d donors, want 3: %v", len(rec.calls), rec.calls)
	}
	if rec.calls[2] != 3 {
		t.Errorf("last reconciled donor = %d, want 3", rec.calls[2])
	}

	// The second page starts after the first page's last row.
	if len(store.cursors) < 2 {
		t.Fatalf("list calls = %d, want at least 2", len(store.cursors))
	}
	if !store.cursors[1].After(store.cursors[0]) {
		t.Errorf("cursor did not advance: %v then %v", store.cursors[0], store.cursors[1])
	}
}

func TestSweepDeduplicatesDonors(t *testing.T) {
	store, _ := sweepFixture(7, 7, 9)
	rec := &fakeReconciler{applied: map[int64]bool{7: true, 9: true}}

	task, err := NewReconcileSweepTask(ReconcileSweepPayload{})
	if err != nil {
		t.Fatalf("NewReconcileSweepTask: %v", err)
	}

	w := sweepWorker(store, rec)
	if err := w.handleReconcileSweep(context.Background(), task); err != nil {
		t.Fatalf("handleReconcileSweep: %v", err)
	}

	if len(rec.calls) != 2 {
		t.Errorf("reconciled %d donors, want 2 (7 deduplicated): %v", len(rec.calls), rec.calls)
	}
}

func TestSweepSkipsOrphanCollections(t *testing.T) {
	store, collections := sweepFixture(4)
	// Detach the collection from its examination.
	delete(store.exams, collections[0].PhysicalExamID)
	rec := &fakeReconciler{}

	task, err := NewReconcileSweepTask(ReconcileSweepPayload{})
	if err != nil {
		t.Fatalf("NewReconcileSweepTask: %v", err)
	}

	w := sweepWorker(store, rec)
	if err := w.handleReconcileSweep(context.Background(), task); err != nil {
		t.Fatalf("handleReconcileSweep: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("orphan collection still reconciled donors: %v", rec.calls)
	}
}
