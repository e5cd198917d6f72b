package priority

import (
	"context"

	"github.com/google/uuid"

	"github.com/rowanvale/taskengine/internal/domain"
)

// PatternSource supplies historical scoring signals per owner. It is a
// pluggable strategy: the default implementation returns neutral values, and
// a learning backend can be substituted without touching the scoring
// formula.
type PatternSource interface {
	// CategoryWeight returns the learned weight for a category in [0, 1];
	// 0.5 is neutral.
	CategoryWeight(ctx context.Context, ownerID uuid.UUID, category string) (float64, error)

	// PriorityPreference returns the owner's learned priority bias in
	// [-1, 1]; 0 is neutral.
	PriorityPreference(ctx context.Context, ownerID uuid.UUID) (float64, error)
}

// CorrectionRecorder accepts accepted/rejected suggestion feedback for a
// future learning backend.
type CorrectionRecorder interface {
	Record(ctx context.Context, ownerID uuid.UUID, corrections []domain.PriorityCorrection) error
}

// NoopPatternSource is the default PatternSource: every signal is neutral.
type NoopPatternSource struct{}

// CategoryWeight implements PatternSource.
func (NoopPatternSource) CategoryWeight(context.Context, uuid.UUID, string) (float64, error) {
	return 0.5, nil
}

// PriorityPreference implements PatternSource.
func (NoopPatternSource) PriorityPreference(context.Context, uuid.UUID) (float64, error) {
	return 0, nil
}

// NoopCorrectionRecorder discards all feedback.
type NoopCorrectionRecorder struct{}

// Record implements CorrectionRecorder.
func (NoopCorrectionRecorder) Record(context.Context, uuid.UUID, []domain.PriorityCorrection) error {
	return nil
}
