package models

// OutcomeStatus is the eligibility verdict for one application.
type OutcomeStatus string

// Possible outcome statuses.
const (
	OutcomeStatusPending  OutcomeStatus = "pending"
	OutcomeStatusApproved OutcomeStatus = "approved"
	OutcomeStatusRejected OutcomeStatus = "rejected"
)

// ClassificationClassifiable marks an approved outcome as eligible for
// convocation ranking.
const ClassificationClassifiable = "classifiable"

// ApplicationOutcome is the single current verdict for an application.
// Unique on application id; rebuilding outcomes replaces the row.
type ApplicationOutcome struct {
	ID                   string        `db:"id" json:"id"`
	ApplicationID        string        `db:"application_id" json:"application_id"`
	Status               OutcomeStatus `db:"status" json:"status"`
	ClassificationStatus *string       `db:"classification_status" json:"classification_status,omitempty"`
	AverageScore         float64       `db:"average_score" json:"average_score"`
	FinalScore           float64       `db:"final_score" json:"final_score"`
	Reason               *string       `db:"reason" json:"reason,omitempty"`
}

// ApprovedOutcome joins an approved outcome with the applicant form data
// needed for convocation ranking.
type ApprovedOutcome struct {
	ApplicationOutcome
	UserID   string   `db:"user_id"`
	FormData FormData `db:"form_data"`
}

// OutcomeFilter captures filtering criteria for listing outcomes.
type OutcomeFilter struct {
	ProcessSelectionID string
	Status             OutcomeStatus
	Page               int
	PageSize           int
}
