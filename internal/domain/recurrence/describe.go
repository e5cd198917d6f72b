package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// Describe renders a rule as a deterministic, locale-agnostic phrase, e.g.
// "Weekly on Monday, 10 times" or "Daily until 2025-12-31". It never panics;
// rules that fail ValidateRule get a fixed fallback phrase.
func Describe(rule string, anchor *time.Time) string {
	if anchor == nil {
		return "Does not repeat"
	}

	parsed, err := ParseRule(rule)
	if err != nil {
		return "Does not repeat"
	}

	var b strings.Builder
	b.WriteString(frequencyPhrase(parsed))

	if len(parsed.ByDay) > 0 {
		b.WriteString(" on ")
		b.WriteString(weekdayList(parsed.ByDay))
	}
	if parsed.ByMonthDay > 0 {
		fmt.Fprintf(&b, " on day %d", parsed.ByMonthDay)
	}

	switch {
	case parsed.Count == 1:
		b.WriteString(", once")
	case parsed.Count > 1:
		fmt.Fprintf(&b, ", %d times", parsed.Count)
	case parsed.Until != nil:
		fmt.Fprintf(&b, " until %s", parsed.Until.Format("2006-01-02"))
	}

	return b.String()
}

func frequencyPhrase(rule *Rule) string {
	if rule.Interval == 1 {
		switch rule.Freq {
		case Daily:
			return "Daily"
		case Weekly:
			return "Weekly"
		case Monthly:
			return "Monthly"
		case Yearly:
			return "Yearly"
		}
	}

	unit := map[Frequency]string{
		Daily:   "days",
		Weekly:  "weeks",
		Monthly: "months",
		Yearly:  "years",
	}[rule.Freq]
	return fmt.Sprintf("Every %d %s", rule.Interval, unit)
}

func weekdayList(days []time.Weekday) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	if len(names) == 1 {
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}
