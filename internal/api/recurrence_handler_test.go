package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/rowanvale/taskengine/internal/platform/postgres"
	"github.com/rowanvale/taskengine/internal/service"
)

func newRecurrenceHandler() *RecurrenceHandler {
	db := &sql.DB{}
	tasks := postgres.NewPostgresTaskStore(db, nil)
	return NewRecurrenceHandler(service.NewRecurrenceService(db, tasks, 0, nil), nil)
}

func TestValidateRuleEndpoint(t *testing.T) {
	handler := newRecurrenceHandler()

	t.Run("valid rule", func(t *testing.T) {
		body := `{"rule":"FREQ=WEEKLY;BYDAY=MO;COUNT=10","anchor":"2025-06-02T09:00:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/recurrence/validate", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		handler.ValidateRule(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ValidateRuleResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Valid)
		assert.Equal(t, "Weekly on Monday, 10 times", resp.Description)
	})

	t.Run("malformed rule is a negative verdict, not an error", func(t *testing.T) {
		body := `{"rule":"FREQ=SOMETIMES","anchor":"2025-06-02T09:00:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/recurrence/validate", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		handler.ValidateRule(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ValidateRuleResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Valid)
		assert.Equal(t, "Does not repeat", resp.Description)
	})

	t.Run("missing rule field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/recurrence/validate", bytes.NewBufferString(`{}`))
		rec := httptest.NewRecorder()

		handler.ValidateRule(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/recurrence/validate", bytes.NewBufferString(`{`))
		rec := httptest.NewRecorder()

		handler.ValidateRule(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGenerateInstances_RejectsBadTemplateID(t *testing.T) {
	handler := newRecurrenceHandler()

	req := httptest.NewRequest(http.MethodPost, "/tasks/not-a-uuid/recurrence/generate", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	handler.GenerateInstances(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
