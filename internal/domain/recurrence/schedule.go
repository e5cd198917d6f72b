package recurrence

import (
	"time"
)

// MaxOccurrences is the hard safety ceiling on expansion. A rule that is
// syntactically valid but effectively unbounded can never produce more than
// this many occurrences in one expansion.
const MaxOccurrences = 366

// maxScanDays bounds the day-by-day scan used for weekly BYDAY rules
// (roughly ten years), so a rule whose weekday set never aligns with its
// interval cannot loop forever.
const maxScanDays = 3700

// Schedule expands a parsed rule from an anchor date. Occurrences are
// strictly after the anchor, in chronological order, and keep the anchor's
// time of day.
type Schedule struct {
	rule   *Rule
	anchor time.Time
}

// NewSchedule binds a rule to its anchor date.
func NewSchedule(rule *Rule, anchor time.Time) *Schedule {
	return &Schedule{rule: rule, anchor: anchor}
}

// Occurrences expands the schedule into at most limit occurrences, stopping
// earlier when the rule's own COUNT or UNTIL bound is reached. The result is
// additionally capped at MaxOccurrences.
func (s *Schedule) Occurrences(limit int) []time.Time {
	if limit <= 0 {
		return nil
	}
	if limit > MaxOccurrences {
		limit = MaxOccurrences
	}
	if s.rule.Count > 0 && s.rule.Count < limit {
		limit = s.rule.Count
	}

	var out []time.Time
	it := s.iterate()
	for len(out) < limit {
		occ, ok := it.next()
		if !ok {
			break
		}
		out = append(out, occ)
	}
	return out
}

// Next returns the first occurrence strictly after the given time, or false
// when the rule is exhausted first.
func (s *Schedule) Next(after time.Time) (time.Time, bool) {
	it := s.iterate()
	for i := 0; i < MaxOccurrences; i++ {
		occ, ok := it.next()
		if !ok {
			return time.Time{}, false
		}
		if occ.After(after) {
			return occ, true
		}
	}
	return time.Time{}, false
}

// iterator walks occurrences one at a time. Monthly and yearly steps are
// computed from the anchor by index, not from the previous occurrence, so a
// clamped short month (Jan 31 -> Feb 28) does not permanently shift later
// occurrences off the anchor's day.
type iterator struct {
	s    *Schedule
	k    int       // occurrence index, 1-based
	prev time.Time // previous occurrence (anchor before the first)
}

func (s *Schedule) iterate() *iterator {
	return &iterator{s: s, prev: s.anchor}
}

func (it *iterator) next() (time.Time, bool) {
	rule := it.s.rule
	it.k++

	var occ time.Time
	switch rule.Freq {
	case Daily:
		occ = it.s.anchor.AddDate(0, 0, it.k*rule.Interval)

	case Weekly:
		if len(rule.ByDay) == 0 {
			occ = it.s.anchor.AddDate(0, 0, 7*it.k*rule.Interval)
			break
		}
		scanned, ok := it.s.scanWeekdays(it.prev)
		if !ok {
			return time.Time{}, false
		}
		occ = scanned

	case Monthly:
		occ = addMonthsClamped(it.s.anchor, it.k*rule.Interval, rule.ByMonthDay)

	case Yearly:
		occ = addMonthsClamped(it.s.anchor, 12*it.k*rule.Interval, 0)

	default:
		return time.Time{}, false
	}

	if rule.Until != nil && occ.After(*rule.Until) {
		return time.Time{}, false
	}

	it.prev = occ
	return occ, true
}

// scanWeekdays finds the first day after prev whose weekday is in the BYDAY
// set and whose week is aligned with the rule's interval, counted in whole
// weeks from the anchor's week.
func (s *Schedule) scanWeekdays(prev time.Time) (time.Time, bool) {
	anchorWeek := startOfWeek(s.anchor)

	day := prev.AddDate(0, 0, 1)
	for i := 0; i < maxScanDays; i++ {
		if s.weekdayMatches(day.Weekday()) {
			weeks := int(startOfWeek(day).Sub(anchorWeek).Hours() / (24 * 7))
			if weeks%s.rule.Interval == 0 {
				return day, true
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return time.Time{}, false
}

func (s *Schedule) weekdayMatches(day time.Weekday) bool {
	for _, d := range s.rule.ByDay {
		if d == day {
			return true
		}
	}
	return false
}

// startOfWeek truncates to the Monday of t's week, at t's time of day.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return t.AddDate(0, 0, -offset)
}

// addMonthsClamped adds months to the anchor keeping the anchor's day of
// month (or the explicit day when non-zero), clamped to the target month's
// length. time.AddDate alone would normalize Feb 30 into early March.
func addMonthsClamped(anchor time.Time, months, day int) time.Time {
	if day == 0 {
		day = anchor.Day()
	}

	year, month, _ := anchor.Date()
	first := time.Date(year, month, 1, anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), anchor.Location())
	target := first.AddDate(0, months, 0)

	if last := daysInMonth(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day,
		anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), anchor.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
