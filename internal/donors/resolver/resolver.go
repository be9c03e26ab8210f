// Package resolver collapses a donor's per-stage records into exactly
// one current-stage assignment. Precedence is fixed: blood collection,
// then physical examination, then screening, then medical review. The
// pass keeps a shared claimed set so a donor can never surface twice,
// which is the invariant the consistency checker verifies.
package resolver

import (
	"sort"
	"time"

	"bloodlink_backend/internal/donors/domain"
	"bloodlink_backend/internal/records"

	"github.com/google/uuid"
)

// Snapshot is the joined-in-memory view of the record collections for
// one resolution run. All five lists are fetched before resolution
// starts; the resolver itself performs no I/O.
type Snapshot struct {
	Donors      []records.DonorForm
	Histories   []records.MedicalHistory
	Screenings  []records.ScreeningForm
	Exams       []records.PhysicalExam
	Collections []records.BloodCollection
}

// Assignment is one donor's resolved position in the workflow.
type Assignment struct {
	DonorID       int64
	DonorName     string
	Stage         domain.Stage
	Status        string
	DonorType     domain.DonorType
	EffectiveDate time.Time
}

// Conflict records a donor that appeared at two stages in a resolved
// set. Conflicts indicate a resolution bug upstream and are surfaced
// for diagnosis, never auto-repaired.
type Conflict struct {
	DonorID     int64
	DonorName   string
	FirstStage  domain.Stage
	SecondStage domain.Stage
}

// Resolve assigns every donor in the snapshot to exactly one stage.
// returning is the bulk eligibility-existence set used to classify each
// donor. Output is sorted newest effective date first, ties broken by
// lowest donor identifier.
func Resolve(snap Snapshot, returning map[int64]struct{}) []Assignment {
	histories := latestHistoryByDonor(snap.Histories)
	screenings := latestScreeningByDonor(snap.Screenings)
	exams := latestExamByDonor(snap.Exams)
	collections := latestCollectionByDonor(snap.Exams, snap.Collections)

	claimed := make(map[int64]struct{}, len(snap.Donors))
	out := make([]Assignment, 0, len(snap.Donors))

	claim := func(d records.DonorForm, stage domain.Stage, status string, effective time.Time) {
		claimed[d.DonorID] = struct{}{}
		out = append(out, Assignment{
			DonorID:       d.DonorID,
			DonorName:     d.FullName(),
			Stage:         stage,
			Status:        status,
			DonorType:     domain.Classify(d.DonorID, returning),
			EffectiveDate: effective,
		})
	}

	for _, d := range snap.Donors {
		if _, ok := claimed[d.DonorID]; ok {
			continue
		}
		if c, ok := collections[d.DonorID]; ok {
			// The review flag on an unsuccessful collection tracks store
			// cleanup, not donor state; a failed collection is a terminal
			// deferral for this visit and must not surface as pending.
			needsReview := c.NeedsReview && c.IsSuccessful
			claim(d, domain.StageBloodCollection,
				domain.CanonicalStatus(c.Status, needsReview),
				collectionEffectiveDate(c, screenings[d.DonorID], d))
		}
	}
	for _, d := range snap.Donors {
		if _, ok := claimed[d.DonorID]; ok {
			continue
		}
		if e, ok := exams[d.DonorID]; ok {
			claim(d, domain.StagePhysicalExam,
				domain.CanonicalStatus(e.Remarks, e.NeedsReview), e.CreatedAt)
		}
	}
	for _, d := range snap.Donors {
		if _, ok := claimed[d.DonorID]; ok {
			continue
		}
		if f, ok := screenings[d.DonorID]; ok {
			claim(d, domain.StageScreening,
				domain.CanonicalStatus(f.DisapprovalReason, f.NeedsReview), f.CreatedAt)
		}
	}
	for _, d := range snap.Donors {
		if _, ok := claimed[d.DonorID]; ok {
			continue
		}
		if h, ok := histories[d.DonorID]; ok {
			claim(d, domain.StageMedicalReview,
				domain.CanonicalStatus(h.MedicalApproval, h.NeedsReview), h.CreatedAt)
			continue
		}
		// A freshly registered donor with no stage records yet still
		// belongs in the resolved set, waiting on medical review.
		claim(d, domain.StageMedicalReview, domain.StatusPending, d.SubmittedAt)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].EffectiveDate.Equal(out[j].EffectiveDate) {
			return out[i].EffectiveDate.After(out[j].EffectiveDate)
		}
		return out[i].DonorID < out[j].DonorID
	})
	return out
}

// CheckAssignments scans a resolved set for donors assigned more than
// once. A correct resolution always yields an empty list.
func CheckAssignments(assignments []Assignment) []Conflict {
	seen := make(map[int64]domain.Stage, len(assignments))
	var conflicts []Conflict
	for _, a := range assignments {
		first, ok := seen[a.DonorID]
		if !ok {
			seen[a.DonorID] = a.Stage
			continue
		}
		conflicts = append(conflicts, Conflict{
			DonorID:     a.DonorID,
			DonorName:   a.DonorName,
			FirstStage:  first,
			SecondStage: a.Stage,
		})
	}
	return conflicts
}

// collectionEffectiveDate picks the collection's start time, falling
// back to the screening timestamp and then the donor submission time
// when the collection never recorded one.
func collectionEffectiveDate(c records.BloodCollection, scr *records.ScreeningForm, d records.DonorForm) time.Time {
	if c.StartTime != nil && !c.StartTime.IsZero() {
		return *c.StartTime
	}
	if scr != nil {
		return scr.CreatedAt
	}
	return d.SubmittedAt
}

func latestHistoryByDonor(items []records.MedicalHistory) map[int64]records.MedicalHistory {
	out := make(map[int64]records.MedicalHistory, len(items))
	for _, h := range items {
		if cur, ok := out[h.DonorID]; !ok || h.CreatedAt.After(cur.CreatedAt) {
			out[h.DonorID] = h
		}
	}
	return out
}

func latestScreeningByDonor(items []records.ScreeningForm) map[int64]*records.ScreeningForm {
	out := make(map[int64]*records.ScreeningForm, len(items))
	for i := range items {
		f := &items[i]
		if cur, ok := out[f.DonorFormID]; !ok || f.CreatedAt.After(cur.CreatedAt) {
			out[f.DonorFormID] = f
		}
	}
	return out
}

func latestExamByDonor(items []records.PhysicalExam) map[int64]records.PhysicalExam {
	out := make(map[int64]records.PhysicalExam, len(items))
	for _, e := range items {
		if cur, ok := out[e.DonorID]; !ok || e.CreatedAt.After(cur.CreatedAt) {
			out[e.DonorID] = e
		}
	}
	return out
}

// latestCollectionByDonor correlates collections to donors through the
// owning physical examination. Collections whose examination is absent
// from the snapshot cannot be attributed and are dropped here.
func latestCollectionByDonor(exams []records.PhysicalExam, items []records.BloodCollection) map[int64]records.BloodCollection {
	examDonor := make(map[uuid.UUID]int64, len(exams))
	for _, e := range exams {
		examDonor[e.PhysicalExamID] = e.DonorID
	}

	out := make(map[int64]records.BloodCollection, len(items))
	for _, c := range items {
		donorID, ok := examDonor[c.PhysicalExamID]
		if !ok {
			continue
		}
		if cur, ok := out[donorID]; !ok || c.CreatedAt.After(cur.CreatedAt) {
			out[donorID] = c
		}
	}
	return out
}
