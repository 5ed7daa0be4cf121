package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unisel/admissions-api/internal/models"
)

// ApplicationOutcomeRepository persists eligibility outcomes.
type ApplicationOutcomeRepository struct {
	db *sqlx.DB
}

// NewApplicationOutcomeRepository constructs the repository.
func NewApplicationOutcomeRepository(db *sqlx.DB) *ApplicationOutcomeRepository {
	return &ApplicationOutcomeRepository{db: db}
}

// List returns outcomes filtered by the provided criteria.
func (r *ApplicationOutcomeRepository) List(ctx context.Context, filter models.OutcomeFilter) ([]models.ApplicationOutcome, int, error) {
	base := `FROM application_outcomes ao
JOIN applications a ON a.id = ao.application_id`
	var conditions []string
	var args []interface{}

	if filter.ProcessSelectionID != "" {
		conditions = append(conditions, fmt.Sprintf("a.process_selection_id = $%d", len(args)+1))
		args = append(args, filter.ProcessSelectionID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("ao.status = $%d", len(args)+1))
		args = append(args, filter.Status)
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

	query := fmt.Sprintf(`SELECT ao.id, ao.application_id, ao.status, ao.classification_status,
        ao.average_score, ao.final_score, ao.reason
        %s ORDER BY ao.final_score DESC, ao.application_id LIMIT $%d OFFSET $%d`, base+clause, len(args)+1, len(args)+2)
	pageArgs := append(append([]interface{}{}, args...), size, offset)

	var outcomes []models.ApplicationOutcome
	if err := r.db.SelectContext(ctx, &outcomes, query, pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("list outcomes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count outcomes: %w", err)
	}
	return outcomes, total, nil
}

// FindByApplicationID returns the current outcome for an application.
func (r *ApplicationOutcomeRepository) FindByApplicationID(ctx context.Context, applicationID string) (*models.ApplicationOutcome, error) {
	const query = `SELECT id, application_id, status, classification_status, average_score, final_score, reason
        FROM application_outcomes WHERE application_id = $1`
	var outcome models.ApplicationOutcome
	if err := r.db.GetContext(ctx, &outcome, query, applicationID); err != nil {
		return nil, err
	}
	return &outcome, nil
}

// ListApprovedByProcess returns approved outcomes joined with the form
// data required for ranking, excluding applications already placed in
// the given convocation list.
func (r *ApplicationOutcomeRepository) ListApprovedByProcess(ctx context.Context, processSelectionID, excludeListID string) ([]models.ApprovedOutcome, error) {
	const query = `SELECT ao.id, ao.application_id, ao.status, ao.classification_status,
        ao.average_score, ao.final_score, ao.reason, a.user_id, a.form_data
        FROM application_outcomes ao
        JOIN applications a ON a.id = ao.application_id
        WHERE ao.status = $1 AND a.process_selection_id = $2
          AND NOT EXISTS (
            SELECT 1 FROM convocation_list_applications cla
            WHERE cla.application_id = ao.application_id AND cla.convocation_list_id = $3
          )
        ORDER BY a.created_at, a.id`
	var outcomes []models.ApprovedOutcome
	if err := r.db.SelectContext(ctx, &outcomes, query, models.OutcomeStatusApproved, processSelectionID, excludeListID); err != nil {
		return nil, fmt.Errorf("list approved outcomes: %w", err)
	}
	return outcomes, nil
}

// ReplaceForProcess atomically swaps every outcome of a selection process
// for the given set. Delete and inserts share one transaction so readers
// never observe a window without outcomes.
func (r *ApplicationOutcomeRepository) ReplaceForProcess(ctx context.Context, processSelectionID string, outcomes []models.ApplicationOutcome) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outcome rebuild: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const deleteQuery = `DELETE FROM application_outcomes
        WHERE application_id IN (SELECT id FROM applications WHERE process_selection_id = $1)`
	if _, err := tx.ExecContext(ctx, deleteQuery, processSelectionID); err != nil {
		return fmt.Errorf("delete process outcomes: %w", err)
	}

	const insertQuery = `INSERT INTO application_outcomes
        (id, application_id, status, classification_status, average_score, final_score, reason)
        VALUES (:id, :application_id, :status, :classification_status, :average_score, :final_score, :reason)`
	for i := range outcomes {
		if outcomes[i].ID == "" {
			outcomes[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, insertQuery, outcomes[i]); err != nil {
			return fmt.Errorf("insert outcome for application %s: %w", outcomes[i].ApplicationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit outcome rebuild: %w", err)
	}
	return nil
}
