package domain

import (
	"time"

	"github.com/google/uuid"
)

// SuggestionFactor is one weighted signal that contributed to a priority
// suggestion. Impact is the bounded per-factor contribution in [-1, 1],
// before weighting.
type SuggestionFactor struct {
	Type        string  `json:"type"`
	Impact      float64 `json:"impact"`
	Description string  `json:"description"`
}

// PrioritySuggestion is the scoring engine's recommendation for a single
// task. Suggestions are computed on demand and never persisted by the
// engine; a caller may apply one (writing the task's priority) and later
// feed back acceptance for learning.
type PrioritySuggestion struct {
	ID                uuid.UUID          `json:"id"`
	TaskID            uuid.UUID          `json:"task_id"`
	TaskTitle         string             `json:"task_title"`
	CurrentPriority   Priority           `json:"current_priority"`
	SuggestedPriority Priority           `json:"suggested_priority"`
	Confidence        float64            `json:"confidence"`
	Reasoning         string             `json:"reasoning"`
	Factors           []SuggestionFactor `json:"factors"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// NeedsChange reports whether applying the suggestion would actually move
// the task's priority.
func (s *PrioritySuggestion) NeedsChange() bool {
	return s.SuggestedPriority != s.CurrentPriority
}

// PriorityCorrection records a user's verdict on a suggestion, fed back to
// the (pluggable) learning strategy.
type PriorityCorrection struct {
	SuggestionID   uuid.UUID `json:"suggestion_id"`
	TaskID         uuid.UUID `json:"task_id"`
	Accepted       bool      `json:"accepted"`
	ActualPriority *Priority `json:"actual_priority,omitempty"`
	Category       string    `json:"category,omitempty"`
}

// AnalysisSummary tallies a batch priority analysis: how many tasks were
// scored, how many would change priority, and the confidence distribution
// (high >= 0.7, medium >= 0.4, low below).
type AnalysisSummary struct {
	TotalTasks         int `json:"total_tasks"`
	TasksNeedingChange int `json:"tasks_needing_change"`
	HighConfidence     int `json:"high_confidence"`
	MediumConfidence   int `json:"medium_confidence"`
	LowConfidence      int `json:"low_confidence"`
}
