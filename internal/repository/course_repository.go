package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/unisel/admissions-api/internal/models"
)

// CourseRepository handles read access to courses and their quotas.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListByProcess returns the courses of a selection process with their
// per-category vacancy quotas assembled.
func (r *CourseRepository) ListByProcess(ctx context.Context, processSelectionID string) ([]models.Course, error) {
	const courseQuery = `SELECT id, process_selection_id, name, academic_unit_id
        FROM courses WHERE process_selection_id = $1 ORDER BY id`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, courseQuery, processSelectionID); err != nil {
		return nil, fmt.Errorf("list process courses: %w", err)
	}

	const vacancyQuery = `SELECT cv.course_id, cv.category_name, cv.seats
        FROM course_category_vacancies cv
        JOIN courses c ON c.id = cv.course_id
        WHERE c.process_selection_id = $1`
	var vacancies []models.CategoryVacancy
	if err := r.db.SelectContext(ctx, &vacancies, vacancyQuery, processSelectionID); err != nil {
		return nil, fmt.Errorf("list course vacancies: %w", err)
	}

	byCourse := make(map[string]map[string]int, len(courses))
	for _, vacancy := range vacancies {
		if byCourse[vacancy.CourseID] == nil {
			byCourse[vacancy.CourseID] = make(map[string]int)
		}
		byCourse[vacancy.CourseID][vacancy.CategoryName] = vacancy.Seats
	}
	for i := range courses {
		courses[i].VacanciesByCategory = byCourse[courses[i].ID]
	}
	return courses, nil
}
