package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// EnemNotFoundSentinel is the marker the exam authority places in the raw
// score payload when the registration could not be matched.
const EnemNotFoundSentinel = "Candidato não encontrado"

// EnemScoreData is the structured score payload imported from the exam
// authority, stored as JSONB. Identity fields are as reported by the
// authority and may disagree with the application form.
type EnemScoreData struct {
	CPF             string  `json:"cpf"`
	Name            string  `json:"name"`
	Birthdate       string  `json:"birthdate"`
	ScienceScore    float64 `json:"science_score"`
	HumanitiesScore float64 `json:"humanities_score"`
	LanguageScore   float64 `json:"language_score"`
	MathScore       float64 `json:"math_score"`
	WritingScore    float64 `json:"writing_score"`
}

// Value implements driver.Valuer for JSONB persistence.
func (d EnemScoreData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (d *EnemScoreData) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = EnemScoreData{}
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported scores source type %T", src)
	}
}

// Average returns the plain mean of the five subject scores.
func (d EnemScoreData) Average() float64 {
	return (d.ScienceScore + d.HumanitiesScore + d.LanguageScore + d.MathScore + d.WritingScore) / 5
}

// EnemScore is one imported exam-score row linked to an application.
// EnemID is the exam registration number the row was fetched by.
type EnemScore struct {
	ID             string        `db:"id" json:"id"`
	ApplicationID  string        `db:"application_id" json:"application_id"`
	EnemID         string        `db:"enem_id" json:"enem_id"`
	OriginalScores string        `db:"original_scores" json:"original_scores"`
	Scores         EnemScoreData `db:"scores" json:"scores"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}
