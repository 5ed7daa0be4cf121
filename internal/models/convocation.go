package models

import "time"

// ConvocationStatus tracks the list-generation-time state of an offer.
// Statuses beyond these are set by the response-handling workflow and
// only read here when scanning previous lists.
type ConvocationStatus string

const (
	ConvocationStatusPending          ConvocationStatus = "pending"
	ConvocationStatusSkipped          ConvocationStatus = "skipped"
	ConvocationStatusCalledOutOfQuota ConvocationStatus = "called_out_of_quota"
)

// ResultStatus derives from the course/category quota.
type ResultStatus string

const (
	ResultStatusClassified   ResultStatus = "classified"
	ResultStatusClassifiable ResultStatus = "classifiable"
)

// ResponseStatus tracks the applicant's reaction to an offer.
type ResponseStatus string

const (
	ResponseStatusPending           ResponseStatus = "pending"
	ResponseStatusDeclinedOtherList ResponseStatus = "declined_other_list"
)

// ConvocationList is one ranked call round of a selection process. The
// ordinal orders it against sibling lists of the same process.
type ConvocationList struct {
	ID                 string    `db:"id" json:"id"`
	ProcessSelectionID string    `db:"process_selection_id" json:"process_selection_id"`
	Ordinal            int       `db:"ordinal" json:"ordinal"`
	Name               string    `db:"name" json:"name"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// ConvocationListApplication is one ranked row of a convocation list.
// Rows are created once per generation run and never mutated here;
// later status transitions belong to the response workflow.
type ConvocationListApplication struct {
	ID                  string            `db:"id" json:"id"`
	ConvocationListID   string            `db:"convocation_list_id" json:"convocation_list_id"`
	ApplicationID       string            `db:"application_id" json:"application_id"`
	CourseID            string            `db:"course_id" json:"course_id"`
	AdmissionCategoryID *string           `db:"admission_category_id" json:"admission_category_id,omitempty"`
	GeneralRanking      int               `db:"general_ranking" json:"general_ranking"`
	CategoryRanking     int               `db:"category_ranking" json:"category_ranking"`
	ConvocationStatus   ConvocationStatus `db:"convocation_status" json:"convocation_status"`
	ResultStatus        ResultStatus      `db:"result_status" json:"result_status"`
	ResponseStatus      ResponseStatus    `db:"response_status" json:"response_status"`
	CreatedAt           time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time         `db:"updated_at" json:"updated_at"`
}
