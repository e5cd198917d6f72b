package priority

// Params defines all configurable parameters for the priority scoring
// algorithm. The model is additive: scoring starts from Baseline and adds
// each factor's bounded contribution multiplied by its weight, then clamps
// the sum to [0, 1]. The weights are NOT a convex combination and must not
// be renormalized into a weighted average.
type Params struct {
	// Baseline is the neutral starting score.
	Baseline float64

	// Factor weights
	DueDateWeight      float64
	DependencyWeight   float64
	TimePressureWeight float64
	ProjectWeight      float64
	CategoryWeight     float64
	HistoryWeight      float64

	// Priority mapping thresholds (lower bounds). Scores below
	// MediumThreshold map to low.
	UrgentThreshold float64
	HighThreshold   float64
	MediumThreshold float64

	// Dependency signal shape
	BlockedPenalty  float64 // contribution when blocked by incomplete work
	BlockingBase    float64 // base contribution when the task blocks others
	BlockingPerTask float64 // added per blocked task
	BlockingCap     float64 // cap on the per-task portion

	// Time pressure signal shape
	InsufficientTimeSignal float64 // remaining < estimate
	TightTimeSignal        float64 // remaining < TightTimeRatio * estimate
	TightTimeRatio         float64

	// ProjectBonus is the fixed contribution for project membership.
	ProjectBonus float64
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		Baseline: 0.5,

		DueDateWeight:      0.30,
		DependencyWeight:   0.20,
		TimePressureWeight: 0.20,
		ProjectWeight:      0.15,
		CategoryWeight:     0.10,
		HistoryWeight:      0.05,

		UrgentThreshold: 0.8,
		HighThreshold:   0.6,
		MediumThreshold: 0.4,

		BlockedPenalty:  -0.3,
		BlockingBase:    0.2,
		BlockingPerTask: 0.1,
		BlockingCap:     0.3,

		InsufficientTimeSignal: 0.5,
		TightTimeSignal:        0.3,
		TightTimeRatio:         1.5,

		ProjectBonus: 0.1,
	}
}
