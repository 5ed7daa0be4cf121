package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/unisel/admissions-api/internal/models"
)

// ApplicationRepository handles read access to applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// List returns applications filtered by the provided criteria.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	base := `FROM applications a`
	var conditions []string
	var args []interface{}

	if filter.ProcessSelectionID != "" {
		conditions = append(conditions, fmt.Sprintf("a.process_selection_id = $%d", len(args)+1))
		args = append(args, filter.ProcessSelectionID)
	}
	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("a.user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT a.id, a.user_id, a.process_selection_id, a.form_data, a.created_at
        %s ORDER BY a.created_at DESC, a.id LIMIT $%d OFFSET $%d`, base+clause, len(args)+1, len(args)+2)
	pageArgs := append(append([]interface{}{}, args...), size, offset)

	var applications []models.Application
	if err := r.db.SelectContext(ctx, &applications, query, pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return applications, total, nil
}

// ListByProcess returns every application of a selection process in a
// stable order (creation time, then id).
func (r *ApplicationRepository) ListByProcess(ctx context.Context, processSelectionID string) ([]models.Application, error) {
	const query = `SELECT id, user_id, process_selection_id, form_data, created_at
        FROM applications WHERE process_selection_id = $1 ORDER BY created_at, id`
	var applications []models.Application
	if err := r.db.SelectContext(ctx, &applications, query, processSelectionID); err != nil {
		return nil, fmt.Errorf("list process applications: %w", err)
	}
	return applications, nil
}

// FindByID returns an application by its ID.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	const query = `SELECT id, user_id, process_selection_id, form_data, created_at
        FROM applications WHERE id = $1`
	var application models.Application
	if err := r.db.GetContext(ctx, &application, query, id); err != nil {
		return nil, err
	}
	return &application, nil
}
