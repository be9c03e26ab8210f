package domain

// DonorType distinguishes first-time donors from those with a prior
// eligibility record.
type DonorType string

const (
	DonorNew       DonorType = "New"
	DonorReturning DonorType = "Returning"
)

// Classify reports whether the donor is New or Returning. The returning
// set is the bulk eligibility-existence set fetched once per run; the
// lookup is pure set membership so classifying a large page of donors
// stays linear.
func Classify(donorID int64, returning map[int64]struct{}) DonorType {
	if _, ok := returning[donorID]; ok {
		return DonorReturning
	}
	return DonorNew
}
