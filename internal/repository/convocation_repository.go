package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unisel/admissions-api/internal/models"
)

// ConvocationRepository persists convocation lists and their rows.
type ConvocationRepository struct {
	db *sqlx.DB
}

// NewConvocationRepository constructs the repository.
func NewConvocationRepository(db *sqlx.DB) *ConvocationRepository {
	return &ConvocationRepository{db: db}
}

// FindListByID returns a convocation list by its ID.
func (r *ConvocationRepository) FindListByID(ctx context.Context, id string) (*models.ConvocationList, error) {
	const query = `SELECT id, process_selection_id, ordinal, name, created_at
        FROM convocation_lists WHERE id = $1`
	var list models.ConvocationList
	if err := r.db.GetContext(ctx, &list, query, id); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListPreviousStatuses returns, per application id, the distinct set of
// convocation statuses it held across lists of the process with an
// ordinal strictly lower than the given one.
func (r *ConvocationRepository) ListPreviousStatuses(ctx context.Context, processSelectionID string, ordinal int) (map[string][]models.ConvocationStatus, error) {
	const query = `SELECT DISTINCT cla.application_id, cla.convocation_status
        FROM convocation_list_applications cla
        JOIN convocation_lists cl ON cl.id = cla.convocation_list_id
        WHERE cl.process_selection_id = $1 AND cl.ordinal < $2`
	rows, err := r.db.QueryxContext(ctx, query, processSelectionID, ordinal)
	if err != nil {
		return nil, fmt.Errorf("list previous statuses: %w", err)
	}
	defer rows.Close()

	statuses := make(map[string][]models.ConvocationStatus)
	for rows.Next() {
		var applicationID string
		var status models.ConvocationStatus
		if err := rows.Scan(&applicationID, &status); err != nil {
			return nil, fmt.Errorf("scan previous status: %w", err)
		}
		statuses[applicationID] = append(statuses[applicationID], status)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate previous statuses: %w", err)
	}
	return statuses, nil
}

// ListRowsByList returns the ranked rows of a convocation list, paged.
func (r *ConvocationRepository) ListRowsByList(ctx context.Context, listID string, page, pageSize int) ([]models.ConvocationListApplication, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 500 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	const query = `SELECT id, convocation_list_id, application_id, course_id, admission_category_id,
        general_ranking, category_ranking, convocation_status, result_status, response_status, created_at, updated_at
        FROM convocation_list_applications WHERE convocation_list_id = $1
        ORDER BY general_ranking LIMIT $2 OFFSET $3`

	var listRows []models.ConvocationListApplication
	if err := r.db.SelectContext(ctx, &listRows, query, listID, pageSize, offset); err != nil {
		return nil, 0, fmt.Errorf("list convocation rows: %w", err)
	}

	const countQuery = `SELECT COUNT(*) FROM convocation_list_applications WHERE convocation_list_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, listID); err != nil {
		return nil, 0, fmt.Errorf("count convocation rows: %w", err)
	}
	return listRows, total, nil
}

// ListAllRowsByList returns every row of a list in ranking order, for exports.
func (r *ConvocationRepository) ListAllRowsByList(ctx context.Context, listID string) ([]models.ConvocationListApplication, error) {
	const query = `SELECT id, convocation_list_id, application_id, course_id, admission_category_id,
        general_ranking, category_ranking, convocation_status, result_status, response_status, created_at, updated_at
        FROM convocation_list_applications WHERE convocation_list_id = $1 ORDER BY general_ranking`
	var listRows []models.ConvocationListApplication
	if err := r.db.SelectContext(ctx, &listRows, query, listID); err != nil {
		return nil, fmt.Errorf("list all convocation rows: %w", err)
	}
	return listRows, nil
}

// BulkInsert writes all generated rows for a list in one transaction.
// Inserting nothing is a no-op.
func (r *ConvocationRepository) BulkInsert(ctx context.Context, listRows []models.ConvocationListApplication) error {
	if len(listRows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin convocation insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	const query = `INSERT INTO convocation_list_applications
        (id, convocation_list_id, application_id, course_id, admission_category_id,
         general_ranking, category_ranking, convocation_status, result_status, response_status, created_at, updated_at)
        VALUES (:id, :convocation_list_id, :application_id, :course_id, :admission_category_id,
         :general_ranking, :category_ranking, :convocation_status, :result_status, :response_status, :created_at, :updated_at)`
	for i := range listRows {
		if listRows[i].ID == "" {
			listRows[i].ID = uuid.NewString()
		}
		if listRows[i].CreatedAt.IsZero() {
			listRows[i].CreatedAt = now
		}
		if listRows[i].UpdatedAt.IsZero() {
			listRows[i].UpdatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, query, listRows[i]); err != nil {
			return fmt.Errorf("insert convocation row for application %s: %w", listRows[i].ApplicationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit convocation insert: %w", err)
	}
	return nil
}
