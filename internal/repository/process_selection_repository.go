package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/unisel/admissions-api/internal/models"
)

// ProcessSelectionRepository handles read access to selection processes.
type ProcessSelectionRepository struct {
	db *sqlx.DB
}

// NewProcessSelectionRepository constructs the repository.
func NewProcessSelectionRepository(db *sqlx.DB) *ProcessSelectionRepository {
	return &ProcessSelectionRepository{db: db}
}

// List returns all selection processes, most recent first.
func (r *ProcessSelectionRepository) List(ctx context.Context) ([]models.ProcessSelection, error) {
	const query = `SELECT id, name, status, created_at
        FROM process_selections ORDER BY created_at DESC, id`
	var processes []models.ProcessSelection
	if err := r.db.SelectContext(ctx, &processes, query); err != nil {
		return nil, fmt.Errorf("list process selections: %w", err)
	}
	return processes, nil
}

// FindByID returns a selection process by id.
func (r *ProcessSelectionRepository) FindByID(ctx context.Context, id string) (*models.ProcessSelection, error) {
	const query = `SELECT id, name, status, created_at
        FROM process_selections WHERE id = $1`
	var process models.ProcessSelection
	if err := r.db.GetContext(ctx, &process, query, id); err != nil {
		return nil, err
	}
	return &process, nil
}

// ListConvocationLists returns the convocation lists of a selection
// process in call order.
func (r *ProcessSelectionRepository) ListConvocationLists(ctx context.Context, processSelectionID string) ([]models.ConvocationList, error) {
	const query = `SELECT id, process_selection_id, ordinal, name, created_at
        FROM convocation_lists WHERE process_selection_id = $1 ORDER BY ordinal`
	var lists []models.ConvocationList
	if err := r.db.SelectContext(ctx, &lists, query, processSelectionID); err != nil {
		return nil, fmt.Errorf("list process convocation lists: %w", err)
	}
	return lists, nil
}
