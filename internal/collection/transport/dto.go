// Package transport defines the request and response DTOs for blood
// collection submission.
package transport

import "time"

// SubmitCollectionRequest is the body contract for recording a
// collection against a physical examination.
type SubmitCollectionRequest struct {
	PhysicalExamID   string     `json:"physical_exam_id" validate:"required,uuid"`
	IsSuccessful     *bool      `json:"is_successful" validate:"required"`
	BloodBagType     string     `json:"blood_bag_type" validate:"required,max=50"`
	BloodBagBrand    string     `json:"blood_bag_brand" validate:"required,max=50"`
	AmountTaken      float64    `json:"amount_taken" validate:"required,gt=0,lte=600"`
	DonorReaction    *string    `json:"donor_reaction" validate:"omitempty,max=500"`
	ManagementDone   *string    `json:"management_done" validate:"omitempty,max=500"`
	UnitSerialNumber string     `json:"unit_serial_number" validate:"required,max=50"`
	StartTime        *time.Time `json:"start_time"`
	EndTime          *time.Time `json:"end_time"`
}

// CollectionResponse is the stored collection row.
type CollectionResponse struct {
	CollectionID     string     `json:"collection_id"`
	PhysicalExamID   string     `json:"physical_exam_id"`
	DonorID          int64      `json:"donor_id"`
	IsSuccessful     bool       `json:"is_successful"`
	BloodBagType     string     `json:"blood_bag_type"`
	BloodBagBrand    string     `json:"blood_bag_brand"`
	AmountTaken      float64    `json:"amount_taken"`
	UnitSerialNumber string     `json:"unit_serial_number"`
	StartTime        *time.Time `json:"start_time,omitempty"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	Status           string     `json:"status"`
	NeedsReview      bool       `json:"needs_review"`
	CreatedAt        time.Time  `json:"created_at"`
}
