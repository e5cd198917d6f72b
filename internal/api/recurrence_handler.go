package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rowanvale/taskengine/internal/api/shared"
	"github.com/rowanvale/taskengine/internal/platform/logger"
	"github.com/rowanvale/taskengine/internal/service"
)

// RecurrenceHandler handles recurrence rule and instance HTTP requests
type RecurrenceHandler struct {
	recurrence *service.RecurrenceService
	logger     *slog.Logger
}

// NewRecurrenceHandler creates a new RecurrenceHandler
func NewRecurrenceHandler(recurrence *service.RecurrenceService, logger *slog.Logger) *RecurrenceHandler {
	if recurrence == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("recurrence cannot be nil for RecurrenceHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RecurrenceHandler{
		recurrence: recurrence,
		logger:     logger.With(slog.String("component", "recurrence_handler")),
	}
}

// ValidateRuleRequest represents the request body for rule validation
type ValidateRuleRequest struct {
	Rule   string     `json:"rule" validate:"required"`
	Anchor *time.Time `json:"anchor,omitempty"`
}

// ValidateRuleResponse carries the validation verdict and the rule's
// human-readable description.
type ValidateRuleResponse struct {
	Valid       bool   `json:"valid"`
	Description string `json:"description"`
}

// ValidateRule handles POST /recurrence/validate requests.
// A malformed rule is a negative verdict, not an error status.
func (h *RecurrenceHandler) ValidateRule(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ValidateRuleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("failed to decode rule validation request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "rule is required")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ValidateRuleResponse{
		Valid:       h.recurrence.ValidateRule(req.Rule, req.Anchor),
		Description: h.recurrence.DescribeRule(req.Rule, req.Anchor),
	})
}

// GenerateInstancesRequest represents the request body for instance generation
type GenerateInstancesRequest struct {
	Max int `json:"max" validate:"gte=0,lte=366"`
}

// GenerateInstancesResponse reports how many instances a generation created.
type GenerateInstancesResponse struct {
	Created int `json:"created"`
}

// GenerateInstances handles POST /tasks/{id}/recurrence/generate requests.
// It materializes the template's next batch of instances.
func (h *RecurrenceHandler) GenerateInstances(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, h.recurrence.GenerateInstances)
}

// RegenerateInstances handles POST /tasks/{id}/recurrence/regenerate
// requests. It replaces the template's future schedule, keeping completed
// instances.
func (h *RecurrenceHandler) RegenerateInstances(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, h.recurrence.RegenerateInstances)
}

func (h *RecurrenceHandler) generate(
	w http.ResponseWriter,
	r *http.Request,
	run func(ctx context.Context, templateID uuid.UUID, max int) (int, error),
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	templateID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	// The body is optional; an absent or empty body means default limits.
	var req GenerateInstancesRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("failed to decode generation request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "max must be between 0 and 366")
		return
	}

	created, err := run(r.Context(), templateID, req.Max)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("recurrence instances generated via API",
		slog.String("template_id", templateID.String()),
		slog.Int("created", created))
	shared.RespondWithJSON(w, r, http.StatusOK, GenerateInstancesResponse{Created: created})
}
