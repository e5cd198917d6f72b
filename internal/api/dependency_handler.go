// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rowanvale/taskengine/internal/api/shared"
	"github.com/rowanvale/taskengine/internal/platform/logger"
	"github.com/rowanvale/taskengine/internal/service"
)

// DependencyHandler handles task dependency HTTP requests
type DependencyHandler struct {
	deps   *service.DependencyService
	logger *slog.Logger
}

// NewDependencyHandler creates a new DependencyHandler
func NewDependencyHandler(deps *service.DependencyService, logger *slog.Logger) *DependencyHandler {
	if deps == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("deps cannot be nil for DependencyHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DependencyHandler{
		deps:   deps,
		logger: logger.With(slog.String("component", "dependency_handler")),
	}
}

// AddDependencyRequest represents the request body for creating a dependency
type AddDependencyRequest struct {
	DependsOnTaskID string `json:"depends_on_task_id" validate:"required,uuid"`
}

// AddDependency handles POST /tasks/{id}/dependencies requests.
// It links the task to the one it depends on, rejecting self references,
// duplicates and edges that would close a cycle.
func (h *DependencyHandler) AddDependency(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req AddDependencyRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("failed to decode dependency request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "depends_on_task_id must be a UUID")
		return
	}

	dependsOnTaskID, err := uuid.Parse(req.DependsOnTaskID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "depends_on_task_id must be a UUID")
		return
	}

	if err := h.deps.AddDependency(r.Context(), taskID, dependsOnTaskID); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("dependency created via API",
		slog.String("task_id", taskID.String()),
		slog.String("depends_on_task_id", dependsOnTaskID.String()))
	w.WriteHeader(http.StatusCreated)
}

// RemoveDependency handles DELETE /tasks/{id}/dependencies/{dependsOnID}
// requests. The pair may be named in either order.
func (h *DependencyHandler) RemoveDependency(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	dependsOnTaskID, ok := parseIDParam(w, r, "dependsOnID")
	if !ok {
		return
	}

	if err := h.deps.RemoveDependency(r.Context(), taskID, dependsOnTaskID); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CycleCheckResponse reports whether a prospective edge would close a cycle.
type CycleCheckResponse struct {
	WouldCreateCycle bool `json:"would_create_cycle"`
}

// ValidateDependency handles GET /tasks/{id}/dependencies/validate requests.
// It answers whether adding the edge named by the depends_on_task_id query
// parameter would create a cycle, without mutating anything.
func (h *DependencyHandler) ValidateDependency(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	raw := r.URL.Query().Get("depends_on_task_id")
	dependsOnTaskID, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "depends_on_task_id must be a UUID")
		return
	}

	cyclic, err := h.deps.WouldCreateCycle(r.Context(), taskID, dependsOnTaskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to validate dependency", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CycleCheckResponse{WouldCreateCycle: cyclic})
}

// parseIDParam extracts and parses a UUID path parameter, writing a 400
// response when it is missing or malformed.
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
