package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/rowanvale/taskengine/internal/api/shared"
	"github.com/rowanvale/taskengine/internal/domain"
	"github.com/rowanvale/taskengine/internal/platform/logger"
	"github.com/rowanvale/taskengine/internal/service"
	"github.com/rowanvale/taskengine/internal/store"
)

// SuggestionHandler handles priority suggestion HTTP requests
type SuggestionHandler struct {
	priorities *service.PriorityService
	logger     *slog.Logger
}

// NewSuggestionHandler creates a new SuggestionHandler
func NewSuggestionHandler(priorities *service.PriorityService, logger *slog.Logger) *SuggestionHandler {
	if priorities == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("priorities cannot be nil for SuggestionHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SuggestionHandler{
		priorities: priorities,
		logger:     logger.With(slog.String("component", "suggestion_handler")),
	}
}

// ownerScope extracts the owner and optional scope filters from the query
// string: owner_id (required), dashboard_id, business_id.
func ownerScope(w http.ResponseWriter, r *http.Request) (uuid.UUID, store.TaskFilter, bool) {
	ownerID, err := uuid.Parse(r.URL.Query().Get("owner_id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "owner_id must be a UUID")
		return uuid.Nil, store.TaskFilter{}, false
	}

	var filter store.TaskFilter
	if raw := r.URL.Query().Get("dashboard_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "dashboard_id must be a UUID")
			return uuid.Nil, store.TaskFilter{}, false
		}
		filter.DashboardID = &id
	}
	if raw := r.URL.Query().Get("business_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "business_id must be a UUID")
			return uuid.Nil, store.TaskFilter{}, false
		}
		filter.BusinessID = &id
	}
	return ownerID, filter, true
}

// SuggestionsResponse carries a batch of priority suggestions.
type SuggestionsResponse struct {
	Suggestions []*domain.PrioritySuggestion `json:"suggestions"`
}

// ListSuggestions handles GET /suggestions requests.
// It returns the owner's actionable suggestions, highest confidence first.
func (h *SuggestionHandler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, filter, ok := ownerScope(w, r)
	if !ok {
		return
	}

	suggestions, err := h.priorities.GeneratePrioritySuggestions(r.Context(), ownerID, filter)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to generate suggestions", err)
		return
	}
	if suggestions == nil {
		suggestions = []*domain.PrioritySuggestion{}
	}

	log.Debug("suggestions generated via API",
		slog.String("owner_id", ownerID.String()),
		slog.Int("count", len(suggestions)))
	shared.RespondWithJSON(w, r, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

// AnalysisResponse carries the full analysis batch and its summary.
type AnalysisResponse struct {
	Suggestions []*domain.PrioritySuggestion `json:"suggestions"`
	Summary     *domain.AnalysisSummary      `json:"summary"`
}

// AnalyzePrioritiesRequest optionally narrows the analysis to specific
// tasks. An empty body analyzes the whole owner scope.
type AnalyzePrioritiesRequest struct {
	TaskIDs []string `json:"task_ids,omitempty" validate:"omitempty,dive,uuid"`
}

// AnalyzePriorities handles POST /suggestions/analyze requests.
// Unlike ListSuggestions it keeps tasks already at their suggested level.
func (h *SuggestionHandler) AnalyzePriorities(w http.ResponseWriter, r *http.Request) {
	ownerID, filter, ok := ownerScope(w, r)
	if !ok {
		return
	}

	var req AnalyzePrioritiesRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "task_ids must be valid UUIDs")
		return
	}

	taskIDs := make([]uuid.UUID, 0, len(req.TaskIDs))
	for _, raw := range req.TaskIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "task_ids must be valid UUIDs")
			return
		}
		taskIDs = append(taskIDs, id)
	}

	suggestions, summary, err := h.priorities.AnalyzeTaskPriorities(r.Context(), ownerID, taskIDs, filter)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to analyze priorities", err)
		return
	}
	if suggestions == nil {
		suggestions = []*domain.PrioritySuggestion{}
	}
	if summary == nil {
		summary = &domain.AnalysisSummary{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AnalysisResponse{
		Suggestions: suggestions,
		Summary:     summary,
	})
}

// ApplySuggestionRequest represents the request body for applying a suggestion
type ApplySuggestionRequest struct {
	Priority string `json:"priority" validate:"required,oneof=low medium high urgent"`
}

// ApplySuggestion handles POST /tasks/{id}/priority requests.
// It writes the suggested priority onto the task.
func (h *SuggestionHandler) ApplySuggestion(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req ApplySuggestionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"priority must be one of low, medium, high, urgent")
		return
	}

	err := h.priorities.ApplySuggestion(r.Context(), taskID, domain.Priority(req.Priority))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CorrectionsRequest represents the request body for suggestion feedback
type CorrectionsRequest struct {
	OwnerID     string                      `json:"owner_id" validate:"required,uuid"`
	Corrections []domain.PriorityCorrection `json:"corrections" validate:"required,min=1"`
}

// RecordCorrections handles POST /suggestions/corrections requests.
// Feedback is advisory: the response is 202 regardless of whether the
// learning backend accepted it.
func (h *SuggestionHandler) RecordCorrections(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CorrectionsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"owner_id and at least one correction are required")
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "owner_id must be a UUID")
		return
	}

	h.priorities.LearnFromCorrections(r.Context(), ownerID, req.Corrections)

	log.Debug("corrections accepted via API",
		slog.String("owner_id", ownerID.String()),
		slog.Int("count", len(req.Corrections)))
	w.WriteHeader(http.StatusAccepted)
}
