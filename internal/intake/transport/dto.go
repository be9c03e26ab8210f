// Package transport defines the request and response DTOs for donor
// intake.
package transport

import "time"

// RegisterDonorRequest is the body contract for donor registration.
// Birthdate is a calendar date, not a timestamp.
type RegisterDonorRequest struct {
	Surname             string  `json:"surname" validate:"required,max=100"`
	FirstName           string  `json:"first_name" validate:"required,max=100"`
	MiddleName          *string `json:"middle_name" validate:"omitempty,max=100"`
	Birthdate           string  `json:"birthdate" validate:"required,datetime=2006-01-02"`
	Sex                 string  `json:"sex" validate:"required,oneof=Male Female"`
	CivilStatus         string  `json:"civil_status" validate:"required,oneof=Single Married Widowed Separated Divorced"`
	PermanentAddress    string  `json:"permanent_address" validate:"required,max=250"`
	MobileNumber        string  `json:"mobile_number" validate:"required,max=20"`
	Email               *string `json:"email" validate:"omitempty,email,max=150"`
	RegistrationChannel string  `json:"registration_channel" validate:"omitempty,oneof='PRC Portal' 'Mobile'"`
	RegistrationToken   string  `json:"registration_token" validate:"omitempty,uuid"`
}

// ReviewMedicalHistoryRequest is the interviewer's decision on a
// pending medical history.
type ReviewMedicalHistoryRequest struct {
	Approval string `json:"approval" validate:"required,oneof=Approved Declined"`
}

// MedicalReviewResponse is the patched medical history state.
type MedicalReviewResponse struct {
	MedicalHistoryID string `json:"medical_history_id"`
	Approval         string `json:"approval"`
	NeedsReview      bool   `json:"needs_review"`
}

// DonorResponse is the stored donor form.
type DonorResponse struct {
	DonorID             int64     `json:"donor_id"`
	Surname             string    `json:"surname"`
	FirstName           string    `json:"first_name"`
	MiddleName          *string   `json:"middle_name,omitempty"`
	Birthdate           string    `json:"birthdate"`
	Age                 int       `json:"age"`
	Sex                 string    `json:"sex"`
	CivilStatus         string    `json:"civil_status"`
	PermanentAddress    string    `json:"permanent_address"`
	MobileNumber        string    `json:"mobile_number"`
	Email               *string   `json:"email,omitempty"`
	RegistrationChannel string    `json:"registration_channel"`
	SubmittedAt         time.Time `json:"submitted_at"`
}
