package priority

import (
	"fmt"
	"strings"

	"github.com/rowanvale/taskengine/internal/domain"
)

// buildReasoning assembles the human-readable justification: a fixed-order
// concatenation of the clauses that apply (due date, dependency state, time
// estimate, project membership), or a generic fallback when none do. The
// output is deterministic for a given context.
func buildReasoning(sctx Context, suggested domain.Priority) string {
	var clauses []string

	if sctx.DueDate != nil {
		if sctx.DueDate.Before(sctx.Now) {
			days := -calendarDaysUntil(sctx.Now, *sctx.DueDate)
			if days <= 0 {
				clauses = append(clauses, "overdue")
			} else if days == 1 {
				clauses = append(clauses, "overdue by 1 day")
			} else {
				clauses = append(clauses, fmt.Sprintf("overdue by %d days", days))
			}
		} else {
			switch days := calendarDaysUntil(sctx.Now, *sctx.DueDate); {
			case days <= 0:
				clauses = append(clauses, "due today")
			case days == 1:
				clauses = append(clauses, "due tomorrow")
			case days <= 7:
				clauses = append(clauses, fmt.Sprintf("due in %d days", days))
			}
		}
	}

	if sctx.BlockedByIncomplete {
		clauses = append(clauses, "blocked by unfinished work")
	}
	if sctx.BlocksCount == 1 {
		clauses = append(clauses, "blocks 1 other task")
	} else if sctx.BlocksCount > 1 {
		clauses = append(clauses, fmt.Sprintf("blocks %d other tasks", sctx.BlocksCount))
	}

	if sctx.TimeEstimateMinutes != nil && *sctx.TimeEstimateMinutes > 0 {
		clauses = append(clauses, fmt.Sprintf("estimated at %s", formatMinutes(*sctx.TimeEstimateMinutes)))
	}

	if sctx.HasProject {
		if sctx.ProjectName != "" {
			clauses = append(clauses, fmt.Sprintf("part of project %q", sctx.ProjectName))
		} else {
			clauses = append(clauses, "part of a project")
		}
	}

	if len(clauses) == 0 {
		return fmt.Sprintf("Suggested %s priority based on task analysis", suggested)
	}
	return fmt.Sprintf("Suggested %s priority: %s", suggested, strings.Join(clauses, ", "))
}

// formatMinutes renders a duration in minutes as "45m", "2h" or "2h 30m".
func formatMinutes(minutes int) string {
	hours := minutes / 60
	rest := minutes % 60
	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", rest)
	case rest == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh %dm", hours, rest)
	}
}
