package postgres

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostgresTaskStore_WithTx(t *testing.T) {
	// Note: We can't create a real *sql.Tx without a database connection,
	// so we verify the method returns a fresh store bound to the transaction.
	// The actual transaction behavior is tested in integration tests.

	originalDB := &sql.DB{}
	taskStore := NewPostgresTaskStore(originalDB, nil)

	assert.NotNil(t, taskStore)
	assert.Equal(t, originalDB, taskStore.db)

	tx := &sql.Tx{}
	txStore := taskStore.WithTx(tx)
	assert.NotNil(t, txStore)
	assert.NotSame(t, taskStore, txStore)
}

func TestPostgresDependencyStore_WithTx(t *testing.T) {
	originalDB := &sql.DB{}
	depStore := NewPostgresDependencyStore(originalDB, nil)

	assert.NotNil(t, depStore)
	assert.Equal(t, originalDB, depStore.db)

	tx := &sql.Tx{}
	txStore := depStore.WithTx(tx)
	assert.NotNil(t, txStore)
	assert.NotSame(t, depStore, txStore)
}

func TestNewStore_NilDBPanics(t *testing.T) {
	assert.Panics(t, func() { NewPostgresTaskStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresDependencyStore(nil, nil) })
}
