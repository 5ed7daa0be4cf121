package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/unisel/admissions-api/internal/models"
	appErrors "github.com/unisel/admissions-api/pkg/errors"
)

type convocationStore interface {
	FindListByID(ctx context.Context, id string) (*models.ConvocationList, error)
	ListPreviousStatuses(ctx context.Context, processSelectionID string, ordinal int) (map[string][]models.ConvocationStatus, error)
	ListRowsByList(ctx context.Context, listID string, page, pageSize int) ([]models.ConvocationListApplication, int, error)
	BulkInsert(ctx context.Context, rows []models.ConvocationListApplication) error
}

type approvedOutcomeReader interface {
	ListApprovedByProcess(ctx context.Context, processSelectionID, excludeListID string) ([]models.ApprovedOutcome, error)
}

type courseReader interface {
	ListByProcess(ctx context.Context, processSelectionID string) ([]models.Course, error)
}

// ConvocationService generates ranked convocation lists from approved
// outcomes and serves their rows.
type ConvocationService struct {
	convocations convocationStore
	outcomes     approvedOutcomeReader
	courses      courseReader
	locker       runLocker
	lockTTL      time.Duration
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewConvocationService constructs ConvocationService.
func NewConvocationService(convocations convocationStore, outcomes approvedOutcomeReader, courses courseReader, locker runLocker, lockTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *ConvocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	return &ConvocationService{
		convocations: convocations,
		outcomes:     outcomes,
		courses:      courses,
		locker:       locker,
		lockTTL:      lockTTL,
		metrics:      metrics,
		logger:       logger,
	}
}

// Generate builds the ranked rows of a convocation list and inserts them
// in one transaction. Returns the number of inserted rows. Re-running on
// the same list only covers applications not yet placed in it.
func (s *ConvocationService) Generate(ctx context.Context, listID string) (int, error) {
	if listID == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "convocation list id required")
	}

	list, err := s.convocations.FindListByID(ctx, listID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "convocation list not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load convocation list")
	}

	if s.locker != nil {
		lockKey := "convocations:" + list.ID
		acquired, err := s.locker.Acquire(ctx, lockKey, s.lockTTL)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire generation lock")
		}
		if !acquired {
			return 0, appErrors.Clone(appErrors.ErrRunInProgress, "generation already running for this list")
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), lockKey); err != nil {
				s.logger.Warn("failed to release generation lock", zap.String("convocation_list_id", list.ID), zap.Error(err))
			}
		}()
	}

	rows, err := s.buildRows(ctx, list)
	if err != nil {
		return 0, err
	}

	if err := s.convocations.BulkInsert(ctx, rows); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert convocation rows")
	}

	s.metrics.AddConvocationRows(len(rows))
	s.logger.Info("convocation list generated",
		zap.String("convocation_list_id", list.ID),
		zap.String("process_selection_id", list.ProcessSelectionID),
		zap.Int("rows", len(rows)),
	)
	return len(rows), nil
}

type rankingGroup struct {
	courseID     string
	categoryName string
	entries      []models.ApprovedOutcome
}

func (s *ConvocationService) buildRows(ctx context.Context, list *models.ConvocationList) ([]models.ConvocationListApplication, error) {
	courses, err := s.courses.ListByProcess(ctx, list.ProcessSelectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	coursesByID := make(map[string]models.Course, len(courses))
	for _, course := range courses {
		coursesByID[course.ID] = course
	}

	prevStatuses, err := s.convocations.ListPreviousStatuses(ctx, list.ProcessSelectionID, list.Ordinal)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load previous list statuses")
	}

	approved, err := s.outcomes.ListApprovedByProcess(ctx, list.ProcessSelectionID, list.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list approved outcomes")
	}

	groups := s.groupOutcomes(approved)

	var rows []models.ConvocationListApplication
	globalRank := 0
	for _, group := range groups {
		sort.SliceStable(group.entries, func(i, j int) bool {
			a, b := group.entries[i], group.entries[j]
			if a.FinalScore != b.FinalScore {
				return a.FinalScore > b.FinalScore
			}
			return a.AverageScore > b.AverageScore
		})

		quota := coursesByID[group.courseID].QuotaFor(group.categoryName)

		for idx, out := range group.entries {
			globalRank++
			categoryRank := idx + 1

			convStatus := models.ConvocationStatusPending
			respStatus := models.ResponseStatusPending
			if leftPendings(prevStatuses[out.ApplicationID]) {
				convStatus = models.ConvocationStatusSkipped
				respStatus = models.ResponseStatusDeclinedOtherList
			}

			resultStatus := models.ResultStatusClassifiable
			if categoryRank <= quota {
				resultStatus = models.ResultStatusClassified
			}

			var categoryID *string
			if id := out.FormData.CategoryID(group.categoryName); id != "" {
				categoryID = &id
			} else {
				s.logger.Warn("admission category id not found on form data",
					zap.String("application_id", out.ApplicationID),
					zap.String("category_name", group.categoryName),
				)
			}

			rows = append(rows, models.ConvocationListApplication{
				ConvocationListID:   list.ID,
				ApplicationID:       out.ApplicationID,
				CourseID:            group.courseID,
				AdmissionCategoryID: categoryID,
				GeneralRanking:      globalRank,
				CategoryRanking:     categoryRank,
				ConvocationStatus:   convStatus,
				ResultStatus:        resultStatus,
				ResponseStatus:      respStatus,
			})
		}
	}
	return rows, nil
}

// groupOutcomes buckets approved outcomes per chosen course and declared
// admission category; an outcome competes in every category it declared.
// Groups come back in a fixed order so rankings are reproducible.
func (s *ConvocationService) groupOutcomes(approved []models.ApprovedOutcome) []rankingGroup {
	type groupKey struct {
		courseID     string
		categoryName string
	}
	buckets := make(map[groupKey][]models.ApprovedOutcome)
	for _, out := range approved {
		courseID := out.FormData.CourseID()
		if courseID == "" {
			s.logger.Warn("approved outcome without course position, dropped from ranking",
				zap.String("application_id", out.ApplicationID))
			continue
		}
		for _, cat := range out.FormData.AdmissionCategories {
			key := groupKey{courseID: courseID, categoryName: cat.Name}
			buckets[key] = append(buckets[key], out)
		}
	}

	groups := make([]rankingGroup, 0, len(buckets))
	for key, entries := range buckets {
		groups = append(groups, rankingGroup{courseID: key.courseID, categoryName: key.categoryName, entries: entries})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].courseID != groups[j].courseID {
			return groups[i].courseID < groups[j].courseID
		}
		return groups[i].categoryName < groups[j].categoryName
	})
	return groups
}

// leftPendings reports whether the application already moved beyond a
// callable state in any previous list. pending and called_out_of_quota
// keep the applicant eligible for the next round.
func leftPendings(history []models.ConvocationStatus) bool {
	for _, status := range history {
		if status != models.ConvocationStatusPending && status != models.ConvocationStatusCalledOutOfQuota {
			return true
		}
	}
	return false
}

// GetList returns a convocation list by id.
func (s *ConvocationService) GetList(ctx context.Context, listID string) (*models.ConvocationList, error) {
	list, err := s.convocations.FindListByID(ctx, listID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "convocation list not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load convocation list")
	}
	return list, nil
}

// ListRows returns the ranked rows of a list, paged.
func (s *ConvocationService) ListRows(ctx context.Context, listID string, page, pageSize int) ([]models.ConvocationListApplication, *models.Pagination, error) {
	rows, total, err := s.convocations.ListRowsByList(ctx, listID, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list convocation rows")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 500 {
		pageSize = 100
	}
	pagination := models.NewPagination(page, pageSize, total)
	return rows, pagination, nil
}
