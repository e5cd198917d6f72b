package priority

import (
	"github.com/rowanvale/taskengine/internal/domain"
)

// Evaluation is the complete result of scoring one task context.
type Evaluation struct {
	Score      float64
	Suggested  domain.Priority
	Confidence float64
	Reasoning  string
	Factors    []domain.SuggestionFactor
}

// Service defines the interface for priority scoring operations. It is a
// pure function of the supplied context: no repository access, no state, no
// transitions, safe to call concurrently.
type Service interface {
	// Evaluate scores a task context and maps the score to a suggested
	// priority with confidence, factors and reasoning.
	Evaluate(sctx Context) Evaluation
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a scoring service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a scoring service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

// Evaluate implements the Service interface.
func (s *defaultService) Evaluate(sctx Context) Evaluation {
	score, factors := computeScore(sctx, s.params)
	suggested := mapPriority(score, s.params)

	return Evaluation{
		Score:      score,
		Suggested:  suggested,
		Confidence: confidence(score, suggested, s.params),
		Reasoning:  buildReasoning(sctx, suggested),
		Factors:    factors,
	}
}
