package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CoursePosition is the course/position chosen on the application form.
type CoursePosition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AdmissionCategory is one admission category (quota lane) claimed by the
// applicant on the form.
type AdmissionCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BonusClaim is an optional percentage bonus declared by the applicant.
// Value is kept as the raw string from the form; non-numeric values are
// ignored during scoring.
type BonusClaim struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

// FormData is the applicant-submitted form payload stored as JSONB.
type FormData struct {
	Name                string              `json:"name"`
	CPF                 string              `json:"cpf"`
	Birthdate           string              `json:"birthdate"`
	Position            *CoursePosition     `json:"position,omitempty"`
	AdmissionCategories []AdmissionCategory `json:"admission_categories,omitempty"`
	Bonus               *BonusClaim         `json:"bonus,omitempty"`
}

// Value implements driver.Valuer for JSONB persistence.
func (f FormData) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (f *FormData) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*f = FormData{}
		return nil
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("unsupported form_data source type %T", src)
	}
}

// CategoryID resolves the id of a declared admission category by name.
// Returns empty when the name was never declared on the form.
func (f FormData) CategoryID(name string) string {
	for _, cat := range f.AdmissionCategories {
		if cat.Name == name {
			return cat.ID
		}
	}
	return ""
}

// CourseID returns the chosen course id, empty when no position was picked.
func (f FormData) CourseID() string {
	if f.Position == nil {
		return ""
	}
	return f.Position.ID
}

// Application is one applicant submission to a selection process. A user
// may submit more than once; only the most recent submission is eligible.
type Application struct {
	ID                 string    `db:"id" json:"id"`
	UserID             string    `db:"user_id" json:"user_id"`
	ProcessSelectionID string    `db:"process_selection_id" json:"process_selection_id"`
	FormData           FormData  `db:"form_data" json:"form_data"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// ApplicationFilter captures filtering criteria for listing applications.
type ApplicationFilter struct {
	ProcessSelectionID string
	UserID             string
	Page               int
	PageSize           int
}
