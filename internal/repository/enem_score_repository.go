package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/unisel/admissions-api/internal/models"
)

// EnemScoreRepository handles read access to imported exam scores.
type EnemScoreRepository struct {
	db *sqlx.DB
}

// NewEnemScoreRepository constructs the repository.
func NewEnemScoreRepository(db *sqlx.DB) *EnemScoreRepository {
	return &EnemScoreRepository{db: db}
}

// ListByProcess returns the score rows whose application belongs to the
// selection process, oldest import first.
func (r *EnemScoreRepository) ListByProcess(ctx context.Context, processSelectionID string) ([]models.EnemScore, error) {
	const query = `SELECT es.id, es.application_id, es.enem_id, es.original_scores, es.scores, es.created_at
        FROM enem_scores es
        JOIN applications a ON a.id = es.application_id
        WHERE a.process_selection_id = $1
        ORDER BY es.created_at, es.id`
	var scores []models.EnemScore
	if err := r.db.SelectContext(ctx, &scores, query, processSelectionID); err != nil {
		return nil, fmt.Errorf("list process enem scores: %w", err)
	}
	return scores, nil
}

// FindByApplicationID returns the score row linked to an application.
func (r *EnemScoreRepository) FindByApplicationID(ctx context.Context, applicationID string) (*models.EnemScore, error) {
	const query = `SELECT id, application_id, enem_id, original_scores, scores, created_at
        FROM enem_scores WHERE application_id = $1`
	var score models.EnemScore
	if err := r.db.GetContext(ctx, &score, query, applicationID); err != nil {
		return nil, err
	}
	return &score, nil
}
