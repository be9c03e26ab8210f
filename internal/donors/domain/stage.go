package domain

// Stage identifies the donor's current position in the donation workflow.
type Stage string

// Stages in ascending workflow order. Resolution precedence is the
// reverse: the furthest stage a donor has reached claims the donor.
const (
	StageMedicalReview   Stage = "medical_review"
	StageScreening       Stage = "screening_form"
	StagePhysicalExam    Stage = "physical_examination"
	StageBloodCollection Stage = "blood_collection"
)

// Precedence returns the stage's resolution rank; higher claims first.
func (s Stage) Precedence() int {
	switch s {
	case StageBloodCollection:
		return 4
	case StagePhysicalExam:
		return 3
	case StageScreening:
		return 2
	case StageMedicalReview:
		return 1
	}
	return 0
}
