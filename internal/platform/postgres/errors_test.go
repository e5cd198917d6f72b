package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/rowanvale/taskengine/internal/domain"
	"github.com/rowanvale/taskengine/internal/store"
)

func TestMapError(t *testing.T) {
	t.Run("nil error passes through", func(t *testing.T) {
		assert.NoError(t, MapError(nil))
	})

	t.Run("no rows maps to not found", func(t *testing.T) {
		err := MapError(sql.ErrNoRows)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unique violation maps to duplicate", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: uniqueViolationCode}
		err := MapError(pgErr)
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("foreign key violation maps to invalid entity", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:           foreignKeyViolationCode,
			ConstraintName: "task_dependencies_task_id_fkey",
		}
		err := MapError(pgErr)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.Contains(t, err.Error(), "task_dependencies_task_id_fkey")
	})

	t.Run("check violation maps to invalid entity", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: checkViolationCode}
		err := MapError(pgErr)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("unknown errors pass through unchanged", func(t *testing.T) {
		original := errors.New("connection refused")
		assert.Equal(t, original, MapError(original))
	})
}

func TestViolationPredicates(t *testing.T) {
	uniqueErr := &pgconn.PgError{Code: uniqueViolationCode}
	fkErr := &pgconn.PgError{Code: foreignKeyViolationCode}
	checkErr := &pgconn.PgError{Code: checkViolationCode}

	assert.True(t, IsUniqueViolation(uniqueErr))
	assert.False(t, IsUniqueViolation(fkErr))
	assert.True(t, IsForeignKeyViolation(fkErr))
	assert.False(t, IsForeignKeyViolation(uniqueErr))
	assert.True(t, IsCheckConstraintViolation(checkErr))
	assert.False(t, IsCheckConstraintViolation(fkErr))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
}

func TestMapEdgeInsertError(t *testing.T) {
	edge, err := domain.NewDependencyEdge(uuid.New(), uuid.New())
	require.NoError(t, err)

	t.Run("unique violation maps to dependency exists", func(t *testing.T) {
		mapped := mapEdgeInsertError(edge, &pgconn.PgError{Code: uniqueViolationCode})
		assert.ErrorIs(t, mapped, store.ErrDependencyExists)
	})

	t.Run("foreign key violation maps to task not found", func(t *testing.T) {
		mapped := mapEdgeInsertError(edge, &pgconn.PgError{Code: foreignKeyViolationCode})
		assert.ErrorIs(t, mapped, store.ErrTaskNotFound)
	})

	t.Run("check violation maps to invalid entity", func(t *testing.T) {
		mapped := mapEdgeInsertError(edge, &pgconn.PgError{Code: checkViolationCode})
		assert.ErrorIs(t, mapped, store.ErrInvalidEntity)
	})

	t.Run("other errors fall through to the generic mapping", func(t *testing.T) {
		mapped := mapEdgeInsertError(edge, sql.ErrNoRows)
		assert.ErrorIs(t, mapped, store.ErrNotFound)
	})
}
