package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rowanvale/taskengine/internal/domain"
	"github.com/rowanvale/taskengine/internal/platform/logger"
	"github.com/rowanvale/taskengine/internal/store"
)

// taskColumns is the canonical column list for SELECTs against tasks.
const taskColumns = `id, owner_id, dashboard_id, business_id, title, description,
	priority, status, category, due_date, end_date, time_estimate,
	actual_time_spent, project_id, assignee_id, recurrence_rule,
	parent_recurring_task_id, created_at, updated_at, deleted_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
// Returns store.ErrInvalidEntity if a referenced entity doesn't exist
// (foreign key violation) and store.ErrDuplicate on an ID collision.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	_, err := s.db.ExecContext(ctx, query, insertArgs(task)...)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("owner_id", task.OwnerID.String()))
		return MapError(err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", task.OwnerID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist or is soft-deleted.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND deleted_at IS NULL
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return task, nil
}

// ListByOwner implements store.TaskStore.ListByOwner
// It builds the WHERE clause from the filter's non-nil fields.
func (s *PostgresTaskStore) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE owner_id = $1 AND deleted_at IS NULL
	`
	args := []any{ownerID}

	addClause := func(clause string, arg any) {
		args = append(args, arg)
		query += fmt.Sprintf(" AND %s $%d", clause, len(args))
	}

	if filter.DashboardID != nil {
		addClause("dashboard_id =", *filter.DashboardID)
	}
	if filter.BusinessID != nil {
		addClause("business_id =", *filter.BusinessID)
	}
	if filter.ProjectID != nil {
		addClause("project_id =", *filter.ProjectID)
	}
	if filter.AssigneeID != nil {
		addClause("assignee_id =", *filter.AssigneeID)
	}
	if filter.Status != nil {
		addClause("status =", string(*filter.Status))
	}
	if filter.Priority != nil {
		addClause("priority =", string(*filter.Priority))
	}
	if filter.DueBefore != nil {
		addClause("due_date <", *filter.DueBefore)
	}
	if filter.DueAfter != nil {
		addClause("due_date >", *filter.DueAfter)
	}
	if filter.ExcludeDone {
		query += " AND status <> 'done'"
	}

	query += " ORDER BY created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks by owner",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// ListByIDs implements store.TaskStore.ListByIDs
// Missing IDs are silently skipped.
func (s *PostgresTaskStore) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = ANY($1) AND deleted_at IS NULL
	`

	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		log.Error("failed to list tasks by IDs",
			slog.String("error", err.Error()),
			slog.Int("id_count", len(ids)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// Update implements store.TaskStore.Update
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, priority = $3, status = $4,
			category = $5, due_date = $6, end_date = $7, time_estimate = $8,
			actual_time_spent = $9, project_id = $10, assignee_id = $11,
			recurrence_rule = $12, updated_at = $13
		WHERE id = $14 AND deleted_at IS NULL
	`

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.Status),
		task.Category,
		nullTime(task.DueDate),
		nullTime(task.EndDate),
		nullInt(task.TimeEstimate),
		nullInt(task.ActualTimeSpent),
		nullUUID(task.ProjectID),
		nullUUID(task.AssigneeID),
		task.RecurrenceRule,
		time.Now().UTC(),
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrUpdateFailed, MapError(err))
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		return store.ErrTaskNotFound
	}
	return nil
}

// UpdatePriority implements store.TaskStore.UpdatePriority
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) UpdatePriority(
	ctx context.Context,
	id uuid.UUID,
	priority domain.Priority,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !priority.IsValid() {
		return domain.ErrInvalidPriority
	}

	query := `
		UPDATE tasks
		SET priority = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, string(priority), time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update task priority",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return fmt.Errorf("%w: %w", store.ErrUpdateFailed, MapError(err))
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		return store.ErrTaskNotFound
	}

	log.Debug("task priority updated",
		slog.String("task_id", id.String()),
		slog.String("priority", string(priority)))
	return nil
}

// Delete implements store.TaskStore.Delete
// It soft-deletes the task. Returns store.ErrTaskNotFound if the task
// does not exist or was already deleted.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return fmt.Errorf("%w: %w", store.ErrDeleteFailed, MapError(err))
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		return store.ErrTaskNotFound
	}
	return nil
}

// CreateInstances implements store.TaskStore.CreateInstances
// Run within a transaction via WithTx so the batch is atomic.
func (s *PostgresTaskStore) CreateInstances(ctx context.Context, instances []*domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return store.NewStoreError("task", "create_instances",
			"failed to prepare insert", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, instance := range instances {
		if err := instance.Validate(); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, insertArgs(instance)...); err != nil {
			log.Error("failed to create recurring instance",
				slog.String("error", err.Error()),
				slog.String("task_id", instance.ID.String()))
			return store.NewStoreError("task", "create_instances",
				"failed to insert instance", MapError(err))
		}
	}

	log.Debug("recurring instances created", slog.Int("count", len(instances)))
	return nil
}

// ListInstances implements store.TaskStore.ListInstances
func (s *PostgresTaskStore) ListInstances(
	ctx context.Context,
	templateID uuid.UUID,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE parent_recurring_task_id = $1 AND deleted_at IS NULL
		ORDER BY due_date ASC
	`
	rows, err := s.db.QueryContext(ctx, query, templateID)
	if err != nil {
		log.Error("failed to list recurring instances",
			slog.String("error", err.Error()),
			slog.String("template_id", templateID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// DeleteFutureInstances implements store.TaskStore.DeleteFutureInstances
// Instances already marked done are left untouched.
func (s *PostgresTaskStore) DeleteFutureInstances(
	ctx context.Context,
	templateID uuid.UUID,
	after time.Time,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET deleted_at = $1, updated_at = $1
		WHERE parent_recurring_task_id = $2
			AND due_date > $3
			AND status <> 'done'
			AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), templateID, after)
	if err != nil {
		log.Error("failed to delete future instances",
			slog.String("error", err.Error()),
			slog.String("template_id", templateID.String()))
		return 0, fmt.Errorf("%w: %w", store.ErrDeleteFailed, MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rowsAffected), nil
}

// insertArgs produces the VALUES arguments matching taskColumns order.
func insertArgs(task *domain.Task) []any {
	return []any{
		task.ID,
		task.OwnerID,
		nullUUID(task.DashboardID),
		nullUUID(task.BusinessID),
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.Status),
		task.Category,
		nullTime(task.DueDate),
		nullTime(task.EndDate),
		nullInt(task.TimeEstimate),
		nullInt(task.ActualTimeSpent),
		nullUUID(task.ProjectID),
		nullUUID(task.AssigneeID),
		task.RecurrenceRule,
		nullUUID(task.ParentRecurringTaskID),
		task.CreatedAt,
		task.UpdatedAt,
		nullTime(task.DeletedAt),
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one row in taskColumns order into a domain Task.
func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task            domain.Task
		dashboardID     uuid.NullUUID
		businessID      uuid.NullUUID
		projectID       uuid.NullUUID
		assigneeID      uuid.NullUUID
		parentID        uuid.NullUUID
		priority        string
		status          string
		dueDate         sql.NullTime
		endDate         sql.NullTime
		deletedAt       sql.NullTime
		timeEstimate    sql.NullInt64
		actualTimeSpent sql.NullInt64
	)

	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&dashboardID,
		&businessID,
		&task.Title,
		&task.Description,
		&priority,
		&status,
		&task.Category,
		&dueDate,
		&endDate,
		&timeEstimate,
		&actualTimeSpent,
		&projectID,
		&assigneeID,
		&task.RecurrenceRule,
		&parentID,
		&task.CreatedAt,
		&task.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Priority = domain.Priority(priority)
	task.Status = domain.TaskStatus(status)
	task.DashboardID = uuidPtr(dashboardID)
	task.BusinessID = uuidPtr(businessID)
	task.ProjectID = uuidPtr(projectID)
	task.AssigneeID = uuidPtr(assigneeID)
	task.ParentRecurringTaskID = uuidPtr(parentID)
	task.DueDate = timePtr(dueDate)
	task.EndDate = timePtr(endDate)
	task.DeletedAt = timePtr(deletedAt)
	task.TimeEstimate = intPtr(timeEstimate)
	task.ActualTimeSpent = intPtr(actualTimeSpent)

	return &task, nil
}

// collectTasks drains the rows into a slice of tasks.
func collectTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task rows: %w", err)
	}
	return tasks, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func uuidPtr(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	value := id.UUID
	return &value
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time
	return &value
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	value := int(n.Int64)
	return &value
}
