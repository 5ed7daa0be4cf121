package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/unisel/admissions-api/internal/models"
	appErrors "github.com/unisel/admissions-api/pkg/errors"
)

type applicationStore interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
	FindByID(ctx context.Context, id string) (*models.Application, error)
}

type outcomeReader interface {
	List(ctx context.Context, filter models.OutcomeFilter) ([]models.ApplicationOutcome, int, error)
	FindByApplicationID(ctx context.Context, applicationID string) (*models.ApplicationOutcome, error)
}

type scoreFinder interface {
	FindByApplicationID(ctx context.Context, applicationID string) (*models.EnemScore, error)
}

// ApplicationService serves read access to applications and their
// current outcomes.
type ApplicationService struct {
	applications applicationStore
	outcomes     outcomeReader
	scores       scoreFinder
	logger       *zap.Logger
}

// NewApplicationService constructs ApplicationService.
func NewApplicationService(applications applicationStore, outcomes outcomeReader, scores scoreFinder, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{applications: applications, outcomes: outcomes, scores: scores, logger: logger}
}

// List returns applications matching the filter, with pagination metadata.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, *models.Pagination, error) {
	applications, total, err := s.applications.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return applications, models.NewPagination(page, size, total), nil
}

// Get returns a single application by id.
func (s *ApplicationService) Get(ctx context.Context, id string) (*models.Application, error) {
	application, err := s.applications.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return application, nil
}

// ListOutcomes returns outcomes matching the filter, with pagination metadata.
func (s *ApplicationService) ListOutcomes(ctx context.Context, filter models.OutcomeFilter) ([]models.ApplicationOutcome, *models.Pagination, error) {
	outcomes, total, err := s.outcomes.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list outcomes")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return outcomes, models.NewPagination(page, size, total), nil
}

// GetScore returns the imported exam-score row of an application.
func (s *ApplicationService) GetScore(ctx context.Context, applicationID string) (*models.EnemScore, error) {
	score, err := s.scores.FindByApplicationID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no score imported for application")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load score")
	}
	return score, nil
}

// GetOutcome returns the current outcome of an application.
func (s *ApplicationService) GetOutcome(ctx context.Context, applicationID string) (*models.ApplicationOutcome, error) {
	outcome, err := s.outcomes.FindByApplicationID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "outcome not found for application")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load outcome")
	}
	return outcome, nil
}
