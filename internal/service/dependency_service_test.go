package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/rowanvale/taskengine/internal/graph"
	"github.com/rowanvale/taskengine/internal/store"
)

func newDependencyFixture(t *testing.T) (*DependencyService, *fakeTaskStore, *fakeDependencyStore) {
	t.Helper()
	stubTransactions(t)

	tasks := newFakeTaskStore()
	deps := newFakeDependencyStore()
	svc := NewDependencyService(&sql.DB{}, tasks, deps, nil)
	return svc, tasks, deps
}

func TestAddDependency(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("creates the edge", func(t *testing.T) {
		svc, tasks, deps := newDependencyFixture(t)
		a := newTestTask(t, tasks, ownerID, "deploy")
		b := newTestTask(t, tasks, ownerID, "build")

		require.NoError(t, svc.AddDependency(ctx, a.ID, b.ID))

		exists, err := deps.Exists(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("rejects self reference", func(t *testing.T) {
		svc, tasks, _ := newDependencyFixture(t)
		a := newTestTask(t, tasks, ownerID, "deploy")

		err := svc.AddDependency(ctx, a.ID, a.ID)
		assert.ErrorIs(t, err, graph.ErrSelfDependency)
	})

	t.Run("rejects missing tasks", func(t *testing.T) {
		svc, tasks, _ := newDependencyFixture(t)
		a := newTestTask(t, tasks, ownerID, "deploy")

		err := svc.AddDependency(ctx, a.ID, uuid.New())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)

		err = svc.AddDependency(ctx, uuid.New(), a.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("rejects duplicate edges", func(t *testing.T) {
		svc, tasks, _ := newDependencyFixture(t)
		a := newTestTask(t, tasks, ownerID, "deploy")
		b := newTestTask(t, tasks, ownerID, "build")

		require.NoError(t, svc.AddDependency(ctx, a.ID, b.ID))
		err := svc.AddDependency(ctx, a.ID, b.ID)
		assert.ErrorIs(t, err, graph.ErrDuplicateDependency)
	})

	t.Run("rejects a direct cycle", func(t *testing.T) {
		svc, tasks, _ := newDependencyFixture(t)
		a := newTestTask(t, tasks, ownerID, "deploy")
		b := newTestTask(t, tasks, ownerID, "build")

		require.NoError(t, svc.AddDependency(ctx, a.ID, b.ID))
		err := svc.AddDependency(ctx, b.ID, a.ID)
		assert.ErrorIs(t, err, graph.ErrCyclicDependency)
	})

	t.Run("rejects a transitive cycle", func(t *testing.T) {
		svc, tasks, _ := newDependencyFixture(t)
		a := newTestTask(t, tasks, ownerID, "deploy")
		b := newTestTask(t, tasks, ownerID, "build")
		c := newTestTask(t, tasks, ownerID, "design")

		require.NoError(t, svc.AddDependency(ctx, a.ID, b.ID))
		require.NoError(t, svc.AddDependency(ctx, b.ID, c.ID))

		err := svc.AddDependency(ctx, c.ID, a.ID)
		assert.ErrorIs(t, err, graph.ErrCyclicDependency)
	})

	t.Run("allows a diamond", func(t *testing.T) {
		svc, tasks, _ := newDependencyFixture(t)
		a := newTestTask(t, tasks, ownerID, "release")
		b := newTestTask(t, tasks, ownerID, "backend")
		c := newTestTask(t, tasks, ownerID, "frontend")
		d := newTestTask(t, tasks, ownerID, "design")

		require.NoError(t, svc.AddDependency(ctx, a.ID, b.ID))
		require.NoError(t, svc.AddDependency(ctx, a.ID, c.ID))
		require.NoError(t, svc.AddDependency(ctx, b.ID, d.ID))
		require.NoError(t, svc.AddDependency(ctx, c.ID, d.ID))
	})
}

func TestRemoveDependency(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("removes the exact direction", func(t *testing.T) {
		svc, tasks, deps := newDependencyFixture(t)
		a := newTestTask(t, tasks, ownerID, "deploy")
		b := newTestTask(t, tasks, ownerID, "build")
		require.NoError(t, svc.AddDependency(ctx, a.ID, b.ID))

		require.NoError(t, svc.RemoveDependency(ctx, a.ID, b.ID))

		exists, err := deps.Exists(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("falls back to the reverse direction", func(t *testing.T) {
		svc, tasks, deps := newDependencyFixture(t)
		a := newTestTask(t, tasks, ownerID, "deploy")
		b := newTestTask(t, tasks, ownerID, "build")
		require.NoError(t, svc.AddDependency(ctx, a.ID, b.ID))

		// Caller names the pair in the opposite order.
		require.NoError(t, svc.RemoveDependency(ctx, b.ID, a.ID))

		exists, err := deps.Exists(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("reports a missing edge", func(t *testing.T) {
		svc, tasks, _ := newDependencyFixture(t)
		a := newTestTask(t, tasks, ownerID, "deploy")
		b := newTestTask(t, tasks, ownerID, "build")

		err := svc.RemoveDependency(ctx, a.ID, b.ID)
		assert.ErrorIs(t, err, graph.ErrDependencyNotFound)
	})
}

func TestWouldCreateCycle_Service(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	svc, tasks, _ := newDependencyFixture(t)
	a := newTestTask(t, tasks, ownerID, "deploy")
	b := newTestTask(t, tasks, ownerID, "build")
	require.NoError(t, svc.AddDependency(ctx, a.ID, b.ID))

	cyclic, err := svc.WouldCreateCycle(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, cyclic)

	cyclic, err = svc.WouldCreateCycle(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, cyclic, "re-adding an existing edge is a duplicate, not a cycle")

	cyclic, err = svc.WouldCreateCycle(ctx, b.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, cyclic)

	cyclic, err = svc.WouldCreateCycle(ctx, a.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, cyclic, "self edge is trivially cyclic")
}
