package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/unisel/admissions-api/internal/models"
	appErrors "github.com/unisel/admissions-api/pkg/errors"
)

type processSelectionStore interface {
	List(ctx context.Context) ([]models.ProcessSelection, error)
	FindByID(ctx context.Context, id string) (*models.ProcessSelection, error)
	ListConvocationLists(ctx context.Context, processSelectionID string) ([]models.ConvocationList, error)
}

// ProcessSelectionService serves read access to selection processes.
type ProcessSelectionService struct {
	processes processSelectionStore
	logger    *zap.Logger
}

// NewProcessSelectionService constructs ProcessSelectionService.
func NewProcessSelectionService(processes processSelectionStore, logger *zap.Logger) *ProcessSelectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessSelectionService{processes: processes, logger: logger}
}

// List returns all selection processes.
func (s *ProcessSelectionService) List(ctx context.Context) ([]models.ProcessSelection, error) {
	processes, err := s.processes.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list process selections")
	}
	return processes, nil
}

// Get returns a selection process by id.
func (s *ProcessSelectionService) Get(ctx context.Context, id string) (*models.ProcessSelection, error) {
	process, err := s.processes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "process selection not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load process selection")
	}
	return process, nil
}

// ListConvocationLists returns the call rounds of a selection process.
func (s *ProcessSelectionService) ListConvocationLists(ctx context.Context, id string) ([]models.ConvocationList, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	lists, err := s.processes.ListConvocationLists(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list convocation lists")
	}
	return lists, nil
}
