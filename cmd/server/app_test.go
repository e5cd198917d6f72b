package main

import (
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowanvale/taskengine/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:     8080,
			LogLevel: "info",
		},
		Database: config.DatabaseConfig{
			URL:          "postgres://localhost/taskengine_test",
			MaxOpenConns: 5,
			MaxIdleConns: 2,
		},
		Engine: config.EngineConfig{
			SuggestionWorkers:      2,
			MaxRecurrenceInstances: 100,
		},
	}
}

// newTestApplication wires the application against an unopened connection
// handle. Routes that never reach the database can be exercised without a
// running PostgreSQL instance.
func newTestApplication(t *testing.T) *application {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newApplication(testConfig(), logger, &sql.DB{})
}

func TestNewApplication_WiresAllServices(t *testing.T) {
	app := newTestApplication(t)

	assert.NotNil(t, app.taskStore)
	assert.NotNil(t, app.dependencyStore)
	assert.NotNil(t, app.dependencyService)
	assert.NotNil(t, app.recurrenceService)
	assert.NotNil(t, app.priorityService)
}

func TestRouter_HealthCheck(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter_RejectsMalformedTaskID(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	cases := []struct {
		name   string
		method string
		path   string
	}{
		{"add dependency", http.MethodPost, "/api/tasks/not-a-uuid/dependencies"},
		{"generate instances", http.MethodPost, "/api/tasks/not-a-uuid/recurrence/generate"},
		{"apply priority", http.MethodPost, "/api/tasks/not-a-uuid/priority"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRouter_ListSuggestionsRequiresOwner(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/suggestions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
