// Package transport defines the request and response DTOs for donor
// progress endpoints.
package transport

import "time"

// ListProgressRequest is the query contract for the progress listing.
type ListProgressRequest struct {
	Limit  int `form:"limit" validate:"omitempty,min=1,max=200"`
	Offset int `form:"offset" validate:"omitempty,min=0"`
}

// ProgressEntry is one donor's resolved workflow position.
type ProgressEntry struct {
	DonorID       int64     `json:"donor_id"`
	DonorName     string    `json:"donor_name"`
	CurrentStage  string    `json:"current_stage"`
	Status        string    `json:"status"`
	DonorType     string    `json:"donor_type"`
	EffectiveDate time.Time `json:"effective_date"`
}

// ProgressListResponse wraps a page of resolved donors.
type ProgressListResponse struct {
	Items  []ProgressEntry `json:"items"`
	Count  int             `json:"count"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// ConflictEntry reports a donor that resolved to two stages at once.
type ConflictEntry struct {
	DonorID     int64  `json:"donor_id"`
	DonorName   string `json:"donor_name"`
	FirstStage  string `json:"first_stage"`
	SecondStage string `json:"second_stage"`
}

// ConflictListResponse wraps the consistency check output.
type ConflictListResponse struct {
	Conflicts []ConflictEntry `json:"conflicts"`
	Checked   int             `json:"checked"`
}
