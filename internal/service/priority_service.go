package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rowanvale/taskengine/internal/domain"
	"github.com/rowanvale/taskengine/internal/domain/priority"
	"github.com/rowanvale/taskengine/internal/platform/logger"
	"github.com/rowanvale/taskengine/internal/store"
)

// defaultSuggestionWorkers bounds concurrent task scoring when the caller
// does not configure a pool size.
const defaultSuggestionWorkers = 8

// PriorityService orchestrates priority analysis: it assembles per-task
// scoring contexts from the stores, fans the pure scoring engine out over
// them, and shapes the results into suggestions.
type PriorityService struct {
	tasks    store.TaskStore
	deps     store.DependencyStore
	scorer   priority.Service
	patterns priority.PatternSource
	recorder priority.CorrectionRecorder
	workers  int
	logger   *slog.Logger
}

// NewPriorityService creates a new PriorityService. patterns and recorder
// may be nil, in which case the neutral no-op strategies are used. workers
// bounds concurrent scoring; zero or negative selects the default.
func NewPriorityService(
	tasks store.TaskStore,
	deps store.DependencyStore,
	scorer priority.Service,
	patterns priority.PatternSource,
	recorder priority.CorrectionRecorder,
	workers int,
	logger *slog.Logger,
) *PriorityService {
	if tasks == nil {
		panic("tasks cannot be nil")
	}
	if deps == nil {
		panic("deps cannot be nil")
	}
	if scorer == nil {
		panic("scorer cannot be nil")
	}
	if patterns == nil {
		patterns = priority.NoopPatternSource{}
	}
	if recorder == nil {
		recorder = priority.NoopCorrectionRecorder{}
	}
	if workers <= 0 {
		workers = defaultSuggestionWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PriorityService{
		tasks:    tasks,
		deps:     deps,
		scorer:   scorer,
		patterns: patterns,
		recorder: recorder,
		workers:  workers,
		logger:   logger.With(slog.String("component", "priority_service")),
	}
}

// GeneratePrioritySuggestions scores the owner's open tasks in the given
// scope and returns the suggestions whose priority differs from the task's
// current one, ordered by confidence descending.
func (s *PriorityService) GeneratePrioritySuggestions(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.PrioritySuggestion, error) {
	all, err := s.scoreOwnerTasks(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	suggestions := make([]*domain.PrioritySuggestion, 0, len(all))
	for _, suggestion := range all {
		if suggestion.NeedsChange() {
			suggestions = append(suggestions, suggestion)
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	return suggestions, nil
}

// AnalyzeTaskPriorities scores every open task in scope, keeping the ones
// that already sit at their suggested priority, and tallies the batch into
// a summary. A non-empty taskIDs list targets those tasks instead of the
// scope filter.
func (s *PriorityService) AnalyzeTaskPriorities(
	ctx context.Context,
	ownerID uuid.UUID,
	taskIDs []uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.PrioritySuggestion, *domain.AnalysisSummary, error) {
	var all []*domain.PrioritySuggestion
	var err error
	if len(taskIDs) > 0 {
		all, err = s.scoreTargetTasks(ctx, ownerID, taskIDs)
	} else {
		all, err = s.scoreOwnerTasks(ctx, ownerID, filter)
	}
	if err != nil {
		return nil, nil, err
	}

	summary := &domain.AnalysisSummary{TotalTasks: len(all)}
	for _, suggestion := range all {
		if suggestion.NeedsChange() {
			summary.TasksNeedingChange++
		}
		switch {
		case suggestion.Confidence >= 0.7:
			summary.HighConfidence++
		case suggestion.Confidence >= 0.4:
			summary.MediumConfidence++
		default:
			summary.LowConfidence++
		}
	}

	return all, summary, nil
}

// ApplySuggestion writes the suggested priority onto the task.
func (s *PriorityService) ApplySuggestion(
	ctx context.Context,
	taskID uuid.UUID,
	suggested domain.Priority,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.tasks.UpdatePriority(ctx, taskID, suggested); err != nil {
		return err
	}

	log.Info("priority suggestion applied",
		slog.String("task_id", taskID.String()),
		slog.String("priority", string(suggested)))
	return nil
}

// LearnFromCorrections forwards accepted/rejected suggestion feedback to
// the learning strategy. Recorder failures are logged and swallowed:
// feedback is advisory and must never fail the caller's request.
func (s *PriorityService) LearnFromCorrections(
	ctx context.Context,
	ownerID uuid.UUID,
	corrections []domain.PriorityCorrection,
) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(corrections) == 0 {
		return
	}

	accepted := 0
	for _, c := range corrections {
		if c.Accepted {
			accepted++
		}
	}
	log.Info("recording priority corrections",
		slog.String("owner_id", ownerID.String()),
		slog.Int("total", len(corrections)),
		slog.Int("accepted", accepted))

	if err := s.recorder.Record(ctx, ownerID, corrections); err != nil {
		log.Warn("failed to record priority corrections",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
	}
}

// scoreOwnerTasks assembles a scoring context per open task and evaluates
// them concurrently with a bounded worker pool. The result preserves task
// order.
func (s *PriorityService) scoreOwnerTasks(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.PrioritySuggestion, error) {
	filter.ExcludeDone = true
	tasks, err := s.tasks.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for priority analysis: %w", err)
	}
	return s.scoreTasks(ctx, ownerID, tasks)
}

// scoreTargetTasks scores an explicit task-ID list instead of a scope.
// Tasks belonging to other owners or already done are skipped.
func (s *PriorityService) scoreTargetTasks(
	ctx context.Context,
	ownerID uuid.UUID,
	taskIDs []uuid.UUID,
) ([]*domain.PrioritySuggestion, error) {
	fetched, err := s.tasks.ListByIDs(ctx, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks for priority analysis: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(fetched))
	for _, task := range fetched {
		if task.OwnerID != ownerID || task.Status.IsTerminal() {
			continue
		}
		tasks = append(tasks, task)
	}
	return s.scoreTasks(ctx, ownerID, tasks)
}

func (s *PriorityService) scoreTasks(
	ctx context.Context,
	ownerID uuid.UUID,
	tasks []*domain.Task,
) ([]*domain.PrioritySuggestion, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(tasks) == 0 {
		return nil, nil
	}

	contexts, err := s.buildContexts(ctx, ownerID, tasks)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	results := make([]*domain.PrioritySuggestion, len(tasks))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)
	for i := range tasks {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			eval := s.scorer.Evaluate(contexts[i])
			results[i] = &domain.PrioritySuggestion{
				ID:                uuid.New(),
				TaskID:            tasks[i].ID,
				TaskTitle:         tasks[i].Title,
				CurrentPriority:   tasks[i].Priority,
				SuggestedPriority: eval.Suggested,
				Confidence:        eval.Confidence,
				Reasoning:         eval.Reasoning,
				Factors:           eval.Factors,
				GeneratedAt:       now,
			}
		}(i)
	}
	wg.Wait()

	log.Debug("scored tasks for priority analysis",
		slog.String("owner_id", ownerID.String()),
		slog.Int("task_count", len(tasks)))
	return results, nil
}

// buildContexts resolves the dependency state and historical signals each
// task's scoring context needs. Dependency statuses are batch-fetched in
// one query rather than per task.
func (s *PriorityService) buildContexts(
	ctx context.Context,
	ownerID uuid.UUID,
	tasks []*domain.Task,
) ([]priority.Context, error) {
	now := time.Now().UTC()

	dependsOn := make([][]uuid.UUID, len(tasks))
	blocks := make([][]uuid.UUID, len(tasks))
	depIDSet := make(map[uuid.UUID]bool)

	for i, task := range tasks {
		ids, err := s.deps.ListDependsOn(ctx, task.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list dependencies of %s: %w", task.ID, err)
		}
		dependsOn[i] = ids
		for _, id := range ids {
			depIDSet[id] = true
		}

		blockIDs, err := s.deps.ListBlocks(ctx, task.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list blocked tasks of %s: %w", task.ID, err)
		}
		blocks[i] = blockIDs
	}

	// One batch fetch resolves every dependency's completion status.
	statusByID := make(map[uuid.UUID]domain.TaskStatus, len(depIDSet))
	if len(depIDSet) > 0 {
		depIDs := make([]uuid.UUID, 0, len(depIDSet))
		for id := range depIDSet {
			depIDs = append(depIDs, id)
		}
		depTasks, err := s.tasks.ListByIDs(ctx, depIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve dependency statuses: %w", err)
		}
		for _, depTask := range depTasks {
			statusByID[depTask.ID] = depTask.Status
		}
	}

	preference, err := s.patterns.PriorityPreference(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load priority preference: %w", err)
	}

	contexts := make([]priority.Context, len(tasks))
	for i, task := range tasks {
		blocked := false
		for _, depID := range dependsOn[i] {
			// A dependency that is missing or soft-deleted no longer blocks.
			if status, ok := statusByID[depID]; ok && !status.IsTerminal() {
				blocked = true
				break
			}
		}

		weight, err := s.patterns.CategoryWeight(ctx, ownerID, task.Category)
		if err != nil {
			return nil, fmt.Errorf("failed to load category weight: %w", err)
		}

		sctx := priority.Context{
			Now:                 now,
			DueDate:             task.DueDate,
			TimeEstimateMinutes: task.TimeEstimate,
			HasProject:          task.ProjectID != nil || task.Project != nil,
			BlockedByIncomplete: blocked,
			BlocksCount:         len(blocks[i]),
			CategoryAffinity:    priority.AffinityFromWeight(weight),
			PriorityPreference:  preference,
		}
		if task.Project != nil {
			sctx.ProjectName = task.Project.Name
		}
		contexts[i] = sctx
	}
	return contexts, nil
}
