package priority

import (
	"fmt"
	"time"

	"github.com/rowanvale/taskengine/internal/domain"
)

// Factor type identifiers, in the order factors are reported.
const (
	FactorDueDate      = "due_date"
	FactorDependencies = "dependencies"
	FactorTimePressure = "time_pressure"
	FactorProject      = "project"
	FactorCategory     = "category"
	FactorHistory      = "history"
)

// Context is the per-task snapshot the scoring algorithm works from. It is
// assembled by the caller (service layer) so the algorithm itself stays a
// pure function with no repository access.
//
// CategoryAffinity and PriorityPreference are already-normalized signals in
// [-1, 1]; the zero value is neutral. AffinityFromWeight converts a raw
// [0, 1] category weight into the affinity form.
type Context struct {
	Now                 time.Time
	DueDate             *time.Time
	TimeEstimateMinutes *int
	HasProject          bool
	ProjectName         string
	BlockedByIncomplete bool
	BlocksCount         int
	CategoryAffinity    float64
	PriorityPreference  float64
}

// AffinityFromWeight maps a historical category weight in [0, 1] (0.5 is
// neutral) to the [-1, 1] affinity signal.
func AffinityFromWeight(weight float64) float64 {
	return (weight - 0.5) * 2
}

// computeScore applies the additive model: baseline plus weighted, bounded
// factor contributions, clamped to [0, 1]. It also returns the ordered list
// of non-neutral factors for the suggestion payload.
func computeScore(sctx Context, params *Params) (float64, []domain.SuggestionFactor) {
	score := params.Baseline
	var factors []domain.SuggestionFactor

	addFactor := func(kind string, weight, contribution float64, description string) {
		contribution = clampSigned(contribution)
		score += weight * contribution
		if contribution != 0 {
			factors = append(factors, domain.SuggestionFactor{
				Type:        kind,
				Impact:      contribution,
				Description: description,
			})
		}
	}

	due := dueDateUrgency(sctx.Now, sctx.DueDate)
	addFactor(FactorDueDate, params.DueDateWeight, due, dueDateDescription(sctx.Now, sctx.DueDate))

	dep := dependencySignal(sctx.BlockedByIncomplete, sctx.BlocksCount, params)
	addFactor(FactorDependencies, params.DependencyWeight, dep, dependencyDescription(sctx.BlockedByIncomplete, sctx.BlocksCount))

	pressure := timePressure(sctx.Now, sctx.DueDate, sctx.TimeEstimateMinutes, params)
	addFactor(FactorTimePressure, params.TimePressureWeight, pressure, timePressureDescription(pressure, params))

	var project float64
	if sctx.HasProject {
		project = params.ProjectBonus
	}
	addFactor(FactorProject, params.ProjectWeight, project, "Task belongs to a project")

	addFactor(FactorCategory, params.CategoryWeight, sctx.CategoryAffinity, "Historical category preference")
	addFactor(FactorHistory, params.HistoryWeight, sctx.PriorityPreference, "Historical priority preference")

	return clampUnit(score), factors
}

// dueDateUrgency is a step function over exact calendar-day boundaries, not
// a continuous decay.
func dueDateUrgency(now time.Time, due *time.Time) float64 {
	if due == nil {
		return 0
	}
	if due.Before(now) {
		return 1.0
	}

	switch days := calendarDaysUntil(now, *due); {
	case days <= 0:
		return 0.9
	case days == 1:
		return 0.8
	case days <= 3:
		return 0.6
	case days <= 7:
		return 0.4
	case days <= 14:
		return 0.2
	default:
		return 0
	}
}

// dependencySignal deprioritizes work that cannot start and rewards work
// that unblocks others, with the per-task reward capped.
func dependencySignal(blocked bool, blocksCount int, params *Params) float64 {
	if blocked {
		return params.BlockedPenalty
	}
	if blocksCount > 0 {
		perTask := float64(blocksCount) * params.BlockingPerTask
		if perTask > params.BlockingCap {
			perTask = params.BlockingCap
		}
		return params.BlockingBase + perTask
	}
	return 0
}

// timePressure compares the remaining time against the estimate. Both a due
// date and an estimate are required; otherwise the signal is neutral.
func timePressure(now time.Time, due *time.Time, estimateMinutes *int, params *Params) float64 {
	if due == nil || estimateMinutes == nil || *estimateMinutes <= 0 {
		return 0
	}

	remaining := due.Sub(now).Hours()
	estimate := float64(*estimateMinutes) / 60

	switch {
	case remaining < estimate:
		return params.InsufficientTimeSignal
	case remaining < params.TightTimeRatio*estimate:
		return params.TightTimeSignal
	default:
		return 0
	}
}

// mapPriority partitions [0, 1] into the four ordinal levels with no gaps
// or overlaps; each threshold is an inclusive lower bound.
func mapPriority(score float64, params *Params) domain.Priority {
	switch {
	case score >= params.UrgentThreshold:
		return domain.PriorityUrgent
	case score >= params.HighThreshold:
		return domain.PriorityHigh
	case score >= params.MediumThreshold:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

// confidence grows with the score's distance from the lower bound of its
// bucket: a score that barely clears its threshold is a low-confidence
// call, a score deep inside its bucket is high confidence.
func confidence(score float64, mapped domain.Priority, params *Params) float64 {
	var threshold float64
	switch mapped {
	case domain.PriorityUrgent:
		threshold = params.UrgentThreshold
	case domain.PriorityHigh:
		threshold = params.HighThreshold
	case domain.PriorityMedium:
		threshold = params.MediumThreshold
	default:
		threshold = 0
	}

	distance := score - threshold
	if distance < 0 {
		distance = -distance
	}

	c := 0.5 + 2*distance
	if c > 1 {
		c = 1
	}
	return c
}

// calendarDaysUntil counts whole calendar days between now's date and due's
// date, ignoring time of day.
func calendarDaysUntil(now, due time.Time) int {
	ny, nm, nd := now.Date()
	dy, dm, dd := due.Date()
	a := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	b := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func dueDateDescription(now time.Time, due *time.Time) string {
	if due == nil {
		return ""
	}
	if due.Before(now) {
		return "Task is overdue"
	}
	switch days := calendarDaysUntil(now, *due); {
	case days <= 0:
		return "Due today"
	case days == 1:
		return "Due tomorrow"
	default:
		return fmt.Sprintf("Due in %d days", days)
	}
}

func dependencyDescription(blocked bool, blocksCount int) string {
	if blocked {
		return "Blocked by incomplete dependencies"
	}
	if blocksCount == 1 {
		return "Unblocks 1 dependent task"
	}
	return fmt.Sprintf("Unblocks %d dependent tasks", blocksCount)
}

func timePressureDescription(signal float64, params *Params) string {
	switch signal {
	case params.InsufficientTimeSignal:
		return "Remaining time is less than the estimate"
	case params.TightTimeSignal:
		return "Remaining time is tight for the estimate"
	default:
		return ""
	}
}

func clampSigned(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
