package recurrence

import (
	"testing"
	"time"
)

func mustRule(t *testing.T, rule string) *Rule {
	t.Helper()
	parsed, err := ParseRule(rule)
	if err != nil {
		t.Fatalf("failed to parse rule %q: %v", rule, err)
	}
	return parsed
}

func TestOccurrences_DailyUnbounded(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	sched := NewSchedule(mustRule(t, "FREQ=DAILY"), anchor)

	occs := sched.Occurrences(10)
	if len(occs) != 10 {
		t.Fatalf("expected exactly 10 occurrences, got %d", len(occs))
	}

	for i, occ := range occs {
		expected := anchor.AddDate(0, 0, i+1)
		if !occ.Equal(expected) {
			t.Errorf("occurrence %d: expected %v, got %v", i, expected, occ)
		}
	}
}

func TestOccurrences_WeeklyOnMonday(t *testing.T) {
	t.Parallel()
	// 2025-01-01 is a Wednesday; the next Mondays are Jan 6, 13, 20.
	anchor := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sched := NewSchedule(mustRule(t, "FREQ=WEEKLY;BYDAY=MO"), anchor)

	occs := sched.Occurrences(3)
	expected := []time.Time{
		time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
	}

	if len(occs) != len(expected) {
		t.Fatalf("expected %d occurrences, got %d", len(expected), len(occs))
	}
	for i := range expected {
		if !occs[i].Equal(expected[i]) {
			t.Errorf("occurrence %d: expected %v, got %v", i, expected[i], occs[i])
		}
		if occs[i].Weekday() != time.Monday {
			t.Errorf("occurrence %d is a %s, not a Monday", i, occs[i].Weekday())
		}
	}
}

func TestOccurrences_WeeklyWithoutByDay(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)
	sched := NewSchedule(mustRule(t, "FREQ=WEEKLY;INTERVAL=2"), anchor)

	occs := sched.Occurrences(2)
	if len(occs) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(occs))
	}
	if !occs[0].Equal(anchor.AddDate(0, 0, 14)) || !occs[1].Equal(anchor.AddDate(0, 0, 28)) {
		t.Errorf("biweekly stepping wrong: %v", occs)
	}
}

func TestOccurrences_CountBound(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	sched := NewSchedule(mustRule(t, "FREQ=DAILY;COUNT=4"), anchor)

	occs := sched.Occurrences(10)
	if len(occs) != 4 {
		t.Errorf("COUNT=4 must win over a larger request, got %d occurrences", len(occs))
	}
}

func TestOccurrences_UntilBound(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2025, 12, 28, 9, 0, 0, 0, time.UTC)
	sched := NewSchedule(mustRule(t, "FREQ=DAILY;UNTIL=20251231"), anchor)

	occs := sched.Occurrences(10)
	// Dec 29, 30, 31; the UNTIL date itself is included.
	if len(occs) != 3 {
		t.Fatalf("expected 3 occurrences up to the until date, got %d", len(occs))
	}
	last := occs[len(occs)-1]
	if last.Day() != 31 || last.Month() != time.December {
		t.Errorf("expected last occurrence on Dec 31, got %v", last)
	}
}

func TestOccurrences_MonthlyClampsShortMonths(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2025, 1, 31, 8, 30, 0, 0, time.UTC)
	sched := NewSchedule(mustRule(t, "FREQ=MONTHLY"), anchor)

	occs := sched.Occurrences(3)
	if len(occs) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(occs))
	}

	// Feb clamps to 28, but March snaps back to the anchor's day 31.
	if occs[0].Month() != time.February || occs[0].Day() != 28 {
		t.Errorf("expected Feb 28, got %v", occs[0])
	}
	if occs[1].Month() != time.March || occs[1].Day() != 31 {
		t.Errorf("expected Mar 31, got %v", occs[1])
	}
	if occs[2].Month() != time.April || occs[2].Day() != 30 {
		t.Errorf("expected Apr 30, got %v", occs[2])
	}
}

func TestOccurrences_MonthlyByMonthDay(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)
	sched := NewSchedule(mustRule(t, "FREQ=MONTHLY;BYMONTHDAY=15"), anchor)

	occs := sched.Occurrences(2)
	if len(occs) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(occs))
	}
	if occs[0].Day() != 15 || occs[0].Month() != time.June {
		t.Errorf("expected Jun 15, got %v", occs[0])
	}
}

func TestOccurrences_Yearly(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	sched := NewSchedule(mustRule(t, "FREQ=YEARLY"), anchor)

	occs := sched.Occurrences(2)
	if len(occs) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(occs))
	}
	// Non-leap years clamp Feb 29 to Feb 28.
	if occs[0].Year() != 2025 || occs[0].Month() != time.February || occs[0].Day() != 28 {
		t.Errorf("expected 2025-02-28, got %v", occs[0])
	}
}

func TestOccurrences_HardCeiling(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sched := NewSchedule(mustRule(t, "FREQ=DAILY"), anchor)

	occs := sched.Occurrences(100000)
	if len(occs) != MaxOccurrences {
		t.Errorf("expected expansion capped at %d, got %d", MaxOccurrences, len(occs))
	}
}

func TestOccurrences_ChronologicalOrder(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sched := NewSchedule(mustRule(t, "FREQ=WEEKLY;INTERVAL=2;BYDAY=FR,MO"), anchor)

	occs := sched.Occurrences(8)
	for i := 1; i < len(occs); i++ {
		if !occs[i].After(occs[i-1]) {
			t.Fatalf("occurrences out of order at %d: %v then %v", i, occs[i-1], occs[i])
		}
	}
	for _, occ := range occs {
		if occ.Weekday() != time.Monday && occ.Weekday() != time.Friday {
			t.Errorf("unexpected weekday %s", occ.Weekday())
		}
	}
}

func TestNext(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	sched := NewSchedule(mustRule(t, "FREQ=DAILY"), anchor)

	next, ok := sched.Next(anchor.AddDate(0, 0, 3))
	if !ok {
		t.Fatal("expected a next occurrence")
	}
	if !next.Equal(anchor.AddDate(0, 0, 4)) {
		t.Errorf("expected %v, got %v", anchor.AddDate(0, 0, 4), next)
	}

	// Exhausted rule
	bounded := NewSchedule(mustRule(t, "FREQ=DAILY;UNTIL=20250103"), anchor)
	if _, ok := bounded.Next(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)); ok {
		t.Error("expected exhausted schedule to report no next occurrence")
	}
}
