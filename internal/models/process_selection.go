package models

import "time"

// ProcessSelection is one admissions cycle with its own applications,
// courses and convocation lists.
type ProcessSelection struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
