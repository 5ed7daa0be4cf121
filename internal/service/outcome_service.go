package service

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/unisel/admissions-api/internal/models"
	appErrors "github.com/unisel/admissions-api/pkg/errors"
)

// Outcome reasons surfaced to applicants. The texts are the ones the
// admissions office publishes and must not be reworded.
const (
	ReasonNotProcessed      = "Resultado Não Processado"
	ReasonEnemNotFound      = "Inscrição do ENEM não Identificada"
	ReasonCPFMismatch       = "Inconsistência no CPF"
	ReasonNameMismatch      = "Inconsistência no Nome"
	ReasonBirthdateMismatch = "Inconsistência na Data de Nascimento"
	ReasonBirthdateMissing  = "Data de Nascimento ausente ou inconsistente"
	ReasonDuplicate         = "Inscrição duplicada"
)

type outcomeApplicationReader interface {
	ListByProcess(ctx context.Context, processSelectionID string) ([]models.Application, error)
}

type enemScoreReader interface {
	ListByProcess(ctx context.Context, processSelectionID string) ([]models.EnemScore, error)
}

type outcomeWriter interface {
	ReplaceForProcess(ctx context.Context, processSelectionID string, outcomes []models.ApplicationOutcome) error
}

type runLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// OutcomeRunSummary reports what an outcome-processing run produced.
type OutcomeRunSummary struct {
	ProcessSelectionID string `json:"process_selection_id"`
	Total              int    `json:"total"`
	Approved           int    `json:"approved"`
	Pending            int    `json:"pending"`
	Rejected           int    `json:"rejected"`
}

// OutcomeService determines the eligibility outcome of every application
// in a selection process by reconciling applications against imported
// ENEM scores.
type OutcomeService struct {
	applications outcomeApplicationReader
	scores       enemScoreReader
	outcomes     outcomeWriter
	locker       runLocker
	lockTTL      time.Duration
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewOutcomeService constructs OutcomeService.
func NewOutcomeService(applications outcomeApplicationReader, scores enemScoreReader, outcomes outcomeWriter, locker runLocker, lockTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *OutcomeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	return &OutcomeService{
		applications: applications,
		scores:       scores,
		outcomes:     outcomes,
		locker:       locker,
		lockTTL:      lockTTL,
		metrics:      metrics,
		logger:       logger,
	}
}

// ProcessOutcomes rebuilds every outcome of the selection process. The
// run is serialized per process and writes through a single transaction,
// so a re-run with unchanged inputs reproduces the same rows.
func (s *OutcomeService) ProcessOutcomes(ctx context.Context, processSelectionID string) (*OutcomeRunSummary, error) {
	if processSelectionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "process selection id required")
	}

	if s.locker != nil {
		lockKey := "outcomes:" + processSelectionID
		acquired, err := s.locker.Acquire(ctx, lockKey, s.lockTTL)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire processing lock")
		}
		if !acquired {
			return nil, appErrors.Clone(appErrors.ErrRunInProgress, "outcome processing already running for this process")
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), lockKey); err != nil {
				s.logger.Warn("failed to release processing lock", zap.String("process_selection_id", processSelectionID), zap.Error(err))
			}
		}()
	}

	start := time.Now()
	summary, err := s.rebuildOutcomes(ctx, processSelectionID)
	s.metrics.RecordOutcomeRun(err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}

	s.logger.Info("outcome run finished",
		zap.String("process_selection_id", processSelectionID),
		zap.Int("total", summary.Total),
		zap.Int("approved", summary.Approved),
		zap.Int("pending", summary.Pending),
		zap.Int("rejected", summary.Rejected),
	)
	return summary, nil
}

func (s *OutcomeService) rebuildOutcomes(ctx context.Context, processSelectionID string) (*OutcomeRunSummary, error) {
	applications, err := s.applications.ListByProcess(ctx, processSelectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}

	byID := make(map[string]models.Application, len(applications))
	outcomes := make(map[string]models.ApplicationOutcome, len(applications))

	// Pass 1: placeholders guarantee one outcome per application before
	// any refinement.
	for _, application := range applications {
		byID[application.ID] = application
		outcomes[application.ID] = placeholderOutcome(application.ID)
	}

	scores, err := s.scores.ListByProcess(ctx, processSelectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enem scores")
	}

	// Pass 2: reconcile score rows against applicant-submitted data.
	scored := make(map[string]bool, len(scores))
	for _, score := range scores {
		application, ok := byID[score.ApplicationID]
		if !ok {
			continue
		}
		scored[application.ID] = true
		outcomes[application.ID] = evaluateScore(application, score)
	}
	for _, application := range applications {
		if !scored[application.ID] {
			outcomes[application.ID] = rejectedOutcome(application.ID, ReasonEnemNotFound)
		}
	}

	// Pass 3: a resubmitting user keeps only the most recent application;
	// older ones are rejected whatever pass 2 computed. Scoped to this
	// selection process.
	markDuplicates(applications, outcomes)

	ordered := make([]models.ApplicationOutcome, 0, len(applications))
	summary := &OutcomeRunSummary{ProcessSelectionID: processSelectionID}
	for _, application := range applications {
		outcome := outcomes[application.ID]
		ordered = append(ordered, outcome)
		summary.Total++
		switch outcome.Status {
		case models.OutcomeStatusApproved:
			summary.Approved++
		case models.OutcomeStatusPending:
			summary.Pending++
		case models.OutcomeStatusRejected:
			summary.Rejected++
		}
	}

	if err := s.outcomes.ReplaceForProcess(ctx, processSelectionID, ordered); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rebuild outcomes")
	}
	return summary, nil
}

func placeholderOutcome(applicationID string) models.ApplicationOutcome {
	reason := ReasonNotProcessed
	return models.ApplicationOutcome{
		ApplicationID: applicationID,
		Status:        models.OutcomeStatusPending,
		Reason:        &reason,
	}
}

func rejectedOutcome(applicationID, reason string) models.ApplicationOutcome {
	return models.ApplicationOutcome{
		ApplicationID: applicationID,
		Status:        models.OutcomeStatusRejected,
		Reason:        &reason,
	}
}

// evaluateScore applies the reconciliation rules for one score row:
// sentinel check, average and bonus computation, then the three identity
// checks feeding the decision table.
func evaluateScore(application models.Application, score models.EnemScore) models.ApplicationOutcome {
	if strings.Contains(score.OriginalScores, models.EnemNotFoundSentinel) {
		return rejectedOutcome(application.ID, ReasonEnemNotFound)
	}

	average := score.Scores.Average()
	final := applyBonus(average, application.FormData.Bonus)

	var reasons []string
	birthdateInconsistency := false

	if score.Scores.CPF != application.FormData.CPF {
		reasons = append(reasons, ReasonCPFMismatch)
	}

	if normalizeName(score.Scores.Name) != normalizeName(application.FormData.Name) {
		reasons = append(reasons, ReasonNameMismatch)
	}

	if application.FormData.Birthdate != "" && score.Scores.Birthdate != "" {
		appDate, appErr := time.Parse("2006-01-02", application.FormData.Birthdate)
		enemDate, enemErr := time.Parse("02/01/2006", score.Scores.Birthdate)
		if appErr != nil || enemErr != nil || !appDate.Equal(enemDate) {
			reasons = append(reasons, ReasonBirthdateMismatch)
			birthdateInconsistency = true
		}
	} else {
		reasons = append(reasons, ReasonBirthdateMissing)
	}

	var status models.OutcomeStatus
	switch {
	case len(reasons) == 3:
		status = models.OutcomeStatusRejected
	case len(reasons) == 1 && birthdateInconsistency:
		status = models.OutcomeStatusApproved
	case len(reasons) > 0:
		status = models.OutcomeStatusPending
	default:
		status = models.OutcomeStatusApproved
	}

	outcome := models.ApplicationOutcome{
		ApplicationID: application.ID,
		Status:        status,
		AverageScore:  average,
		FinalScore:    final,
	}
	if len(reasons) > 0 {
		reason := strings.Join(reasons, "; ")
		outcome.Reason = &reason
	}
	if status == models.OutcomeStatusApproved {
		classification := models.ClassificationClassifiable
		outcome.ClassificationStatus = &classification
	}
	return outcome
}

// applyBonus applies a declared percentage bonus over the average. A
// missing or non-numeric value leaves the average untouched.
func applyBonus(average float64, bonus *models.BonusClaim) float64 {
	if bonus == nil {
		return average
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(bonus.Value), 64)
	if err != nil {
		return average
	}
	return average * (1 + value/100)
}

func markDuplicates(applications []models.Application, outcomes map[string]models.ApplicationOutcome) {
	byUser := make(map[string][]models.Application)
	for _, application := range applications {
		byUser[application.UserID] = append(byUser[application.UserID], application)
	}
	for _, group := range byUser {
		if len(group) < 2 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
		for _, application := range group[:len(group)-1] {
			outcomes[application.ID] = rejectedOutcome(application.ID, ReasonDuplicate)
		}
	}
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// normalizeName upper-cases, strips accents and collapses every
// non-alphanumeric run to a single space before comparison.
func normalizeName(name string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		stripped = name
	}
	collapsed := nonAlphanumeric.ReplaceAllString(stripped, " ")
	return strings.ToUpper(strings.TrimSpace(collapsed))
}
