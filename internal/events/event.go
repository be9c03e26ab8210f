// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"bloodlink_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Intake Domain Events
// =============================================================================

// DonorRegistered is published when a new donor form is accepted.
type DonorRegistered struct {
	BaseEvent
	DonorID             int64  `json:"donorId"`
	DonorName           string `json:"donorName"`
	RegistrationChannel string `json:"registrationChannel"`
}

func (e DonorRegistered) EventName() string { return "intake.donor.registered" }

// =============================================================================
// Collection Domain Events
// =============================================================================

// BloodCollectionRecorded is published when a collection submission is
// stored. Successful collections trigger eligibility reconciliation.
type BloodCollectionRecorded struct {
	BaseEvent
	CollectionID   uuid.UUID `json:"collectionId"`
	PhysicalExamID uuid.UUID `json:"physicalExamId"`
	DonorID        int64     `json:"donorId"`
	IsSuccessful   bool      `json:"isSuccessful"`
}

func (e BloodCollectionRecorded) EventName() string { return "collection.recorded" }

// =============================================================================
// Eligibility Domain Events
// =============================================================================

// EligibilityGranted is published when the reconciler creates or
// refreshes an approved eligibility record.
type EligibilityGranted struct {
	BaseEvent
	EligibilityID uuid.UUID `json:"eligibilityId"`
	DonorID       int64     `json:"donorId"`
	BloodType     string    `json:"bloodType"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	Created       bool      `json:"created"`
}

func (e EligibilityGranted) EventName() string { return "eligibility.granted" }

// StageConflictDetected is published when the consistency checker finds
// a donor resolved at two stages.
type StageConflictDetected struct {
	BaseEvent
	DonorID     int64  `json:"donorId"`
	FirstStage  string `json:"firstStage"`
	SecondStage string `json:"secondStage"`
}

func (e StageConflictDetected) EventName() string { return "donors.stage_conflict.detected" }
