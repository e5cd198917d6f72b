package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rowanvale/taskengine/internal/domain"
	"github.com/rowanvale/taskengine/internal/domain/recurrence"
	"github.com/rowanvale/taskengine/internal/platform/logger"
	"github.com/rowanvale/taskengine/internal/store"
)

// Recurrence-specific service errors.
var (
	// ErrTemplateNotFound is returned when the task does not exist or is
	// not a recurring template.
	ErrTemplateNotFound = errors.New("recurring template not found")

	// ErrMissingAnchorDate is returned when the template has no due date to
	// anchor the schedule on.
	ErrMissingAnchorDate = errors.New("recurring template has no due date")

	// ErrInvalidRecurrenceRule is returned when the template's rule fails
	// to parse or validate.
	ErrInvalidRecurrenceRule = errors.New("invalid recurrence rule")
)

// RecurrenceService materializes task instances from recurring templates.
type RecurrenceService struct {
	db           *sql.DB
	tasks        store.TaskStore
	maxInstances int
	logger       *slog.Logger
}

// NewRecurrenceService creates a new RecurrenceService. maxInstances caps a
// single generation request; zero or negative falls back to the engine's
// hard ceiling.
func NewRecurrenceService(
	db *sql.DB,
	tasks store.TaskStore,
	maxInstances int,
	logger *slog.Logger,
) *RecurrenceService {
	if db == nil {
		panic("db cannot be nil")
	}
	if tasks == nil {
		panic("tasks cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if maxInstances <= 0 || maxInstances > recurrence.MaxOccurrences {
		maxInstances = recurrence.MaxOccurrences
	}

	return &RecurrenceService{
		db:           db,
		tasks:        tasks,
		maxInstances: maxInstances,
		logger:       logger.With(slog.String("component", "recurrence_service")),
	}
}

// ValidateRule reports whether the rule text parses and can produce at
// least one occurrence from the given anchor.
func (s *RecurrenceService) ValidateRule(rule string, anchor *time.Time) bool {
	return recurrence.ValidateRule(rule, anchor)
}

// DescribeRule renders the rule as a human-readable phrase.
func (s *RecurrenceService) DescribeRule(rule string, anchor *time.Time) string {
	return recurrence.Describe(rule, anchor)
}

// GenerateInstances expands the template's schedule and persists up to max
// new instances, all in one transaction. Each call generates the next batch
// of occurrences after the template's due date; it does not check for
// instances that already exist.
//
// Returns the number of instances created. Returns ErrTemplateNotFound,
// ErrMissingAnchorDate or ErrInvalidRecurrenceRule on precondition
// failures.
func (s *RecurrenceService) GenerateInstances(
	ctx context.Context,
	templateID uuid.UUID,
	max int,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	instances, err := s.buildInstances(ctx, templateID, max)
	if err != nil {
		return 0, err
	}
	if len(instances) == 0 {
		return 0, nil
	}

	err = runInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.tasks.WithTx(tx).CreateInstances(ctx, instances)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to persist recurring instances: %w", err)
	}

	log.Info("recurring instances generated",
		slog.String("template_id", templateID.String()),
		slog.Int("count", len(instances)))
	return len(instances), nil
}

// RegenerateInstances replaces the template's future schedule: not-yet-done
// instances due after now are removed and a fresh batch is generated, all
// in one transaction. Completed instances are never touched.
//
// Returns the number of instances created.
func (s *RecurrenceService) RegenerateInstances(
	ctx context.Context,
	templateID uuid.UUID,
	max int,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	instances, err := s.buildInstances(ctx, templateID, max)
	if err != nil {
		return 0, err
	}

	var removed int
	err = runInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		removed, err = txTasks.DeleteFutureInstances(ctx, templateID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to clear future instances: %w", err)
		}

		if len(instances) == 0 {
			return nil
		}
		return txTasks.CreateInstances(ctx, instances)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to regenerate recurring instances: %w", err)
	}

	log.Info("recurring instances regenerated",
		slog.String("template_id", templateID.String()),
		slog.Int("removed", removed),
		slog.Int("created", len(instances)))
	return len(instances), nil
}

// buildInstances loads the template, expands its schedule and clones an
// instance per occurrence, without persisting anything.
func (s *RecurrenceService) buildInstances(
	ctx context.Context,
	templateID uuid.UUID,
	max int,
) ([]*domain.Task, error) {
	template, err := s.tasks.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if !template.IsRecurringTemplate() {
		return nil, ErrTemplateNotFound
	}
	if template.DueDate == nil {
		return nil, ErrMissingAnchorDate
	}

	rule, err := recurrence.ParseRule(template.RecurrenceRule)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrenceRule, err)
	}

	if max <= 0 || max > s.maxInstances {
		max = s.maxInstances
	}

	schedule := recurrence.NewSchedule(rule, *template.DueDate)
	occurrences := schedule.Occurrences(max)

	instances := make([]*domain.Task, 0, len(occurrences))
	for _, due := range occurrences {
		instances = append(instances, template.CloneForOccurrence(due))
	}
	return instances, nil
}
