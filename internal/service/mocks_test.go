package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rowanvale/taskengine/internal/domain"
	"github.com/rowanvale/taskengine/internal/store"
)

// stubTransactions replaces the transaction runner so orchestration logic
// can run against the in-memory stores. The callback receives a nil *sql.Tx;
// the fakes' WithTx ignores it.
func stubTransactions(t *testing.T) {
	t.Helper()
	orig := runInTransaction
	runInTransaction = func(ctx context.Context, _ *sql.DB, fn store.TxFn) error {
		return fn(ctx, nil)
	}
	t.Cleanup(func() { runInTransaction = orig })
}

// fakeTaskStore is an in-memory store.TaskStore.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task

	createErr error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (f *fakeTaskStore) put(task *domain.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *task
	f.tasks[task.ID] = &copied
}

func (f *fakeTaskStore) WithTx(*sql.Tx) store.TaskStore { return f }

func (f *fakeTaskStore) Create(_ context.Context, task *domain.Task) error {
	if f.createErr != nil {
		return f.createErr
	}
	if err := task.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[task.ID]; ok {
		return store.ErrDuplicate
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok || task.DeletedAt != nil {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) ListByOwner(
	_ context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Task
	for _, task := range f.tasks {
		if task.OwnerID != ownerID || task.DeletedAt != nil {
			continue
		}
		if filter.ExcludeDone && task.IsDone() {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		copied := *task
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeTaskStore) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Task
	for _, id := range ids {
		if task, ok := f.tasks[id]; ok && task.DeletedAt == nil {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) Update(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	copied := *task
	copied.UpdatedAt = time.Now().UTC()
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) UpdatePriority(
	_ context.Context,
	id uuid.UUID,
	priority domain.Priority,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok || task.DeletedAt != nil {
		return store.ErrTaskNotFound
	}
	task.Priority = priority
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok || task.DeletedAt != nil {
		return store.ErrTaskNotFound
	}
	now := time.Now().UTC()
	task.DeletedAt = &now
	return nil
}

func (f *fakeTaskStore) CreateInstances(ctx context.Context, instances []*domain.Task) error {
	for _, instance := range instances {
		if err := f.Create(ctx, instance); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeTaskStore) ListInstances(
	_ context.Context,
	templateID uuid.UUID,
) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Task
	for _, task := range f.tasks {
		if task.DeletedAt != nil || task.ParentRecurringTaskID == nil {
			continue
		}
		if *task.ParentRecurringTaskID != templateID {
			continue
		}
		copied := *task
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DueDate.Before(*out[j].DueDate)
	})
	return out, nil
}

func (f *fakeTaskStore) DeleteFutureInstances(
	_ context.Context,
	templateID uuid.UUID,
	after time.Time,
) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	removed := 0
	now := time.Now().UTC()
	for _, task := range f.tasks {
		if task.DeletedAt != nil || task.ParentRecurringTaskID == nil || task.IsDone() {
			continue
		}
		if *task.ParentRecurringTaskID != templateID {
			continue
		}
		if task.DueDate != nil && task.DueDate.After(after) {
			deletedAt := now
			task.DeletedAt = &deletedAt
			removed++
		}
	}
	return removed, nil
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

type edgeKey struct {
	from, to uuid.UUID
}

// fakeDependencyStore is an in-memory store.DependencyStore.
type fakeDependencyStore struct {
	mu    sync.Mutex
	edges map[edgeKey]domain.DependencyEdge
}

func newFakeDependencyStore() *fakeDependencyStore {
	return &fakeDependencyStore{edges: make(map[edgeKey]domain.DependencyEdge)}
}

func (f *fakeDependencyStore) WithTx(*sql.Tx) store.DependencyStore { return f }

func (f *fakeDependencyStore) Create(_ context.Context, edge *domain.DependencyEdge) error {
	if err := edge.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := edgeKey{from: edge.TaskID, to: edge.DependsOnTaskID}
	if _, ok := f.edges[key]; ok {
		return store.ErrDependencyExists
	}
	f.edges[key] = *edge
	return nil
}

func (f *fakeDependencyStore) Delete(_ context.Context, taskID, dependsOnTaskID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := edgeKey{from: taskID, to: dependsOnTaskID}
	if _, ok := f.edges[key]; !ok {
		return store.ErrDependencyNotFound
	}
	delete(f.edges, key)
	return nil
}

func (f *fakeDependencyStore) Exists(
	_ context.Context,
	taskID, dependsOnTaskID uuid.UUID,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.edges[edgeKey{from: taskID, to: dependsOnTaskID}]
	return ok, nil
}

func (f *fakeDependencyStore) ListDependsOn(
	_ context.Context,
	taskID uuid.UUID,
) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uuid.UUID
	for key := range f.edges {
		if key.from == taskID {
			out = append(out, key.to)
		}
	}
	return out, nil
}

func (f *fakeDependencyStore) ListBlocks(
	_ context.Context,
	taskID uuid.UUID,
) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uuid.UUID
	for key := range f.edges {
		if key.to == taskID {
			out = append(out, key.from)
		}
	}
	return out, nil
}

var _ store.DependencyStore = (*fakeDependencyStore)(nil)

// newTestTask builds a persisted pending task for the given owner.
func newTestTask(t *testing.T, tasks *fakeTaskStore, ownerID uuid.UUID, title string) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(ownerID, title)
	if err != nil {
		t.Fatalf("failed to build test task: %v", err)
	}
	tasks.put(task)
	return task
}
