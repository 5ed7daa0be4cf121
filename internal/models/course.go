package models

// CategoryVacancy is the number of seats a course reserves for one
// admission category.
type CategoryVacancy struct {
	CourseID     string `db:"course_id" json:"course_id"`
	CategoryName string `db:"category_name" json:"category_name"`
	Seats        int    `db:"seats" json:"seats"`
}

// Course is a course offered within a selection process.
type Course struct {
	ID                  string         `db:"id" json:"id"`
	ProcessSelectionID  string         `db:"process_selection_id" json:"process_selection_id"`
	Name                string         `db:"name" json:"name"`
	AcademicUnitID      *string        `db:"academic_unit_id" json:"academic_unit_id,omitempty"`
	VacanciesByCategory map[string]int `db:"-" json:"vacancies_by_category,omitempty"`
}

// QuotaFor returns the vacancy quota for a category name, zero when the
// course reserves no seats for it.
func (c Course) QuotaFor(category string) int {
	return c.VacanciesByCategory[category]
}
