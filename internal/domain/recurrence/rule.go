// Package recurrence validates recurrence rules and deterministically
// expands them into bounded sequences of future occurrences.
//
// The grammar is the RRULE family restricted to what task templates use:
// FREQ (DAILY/WEEKLY/MONTHLY/YEARLY), INTERVAL, COUNT xor UNTIL, BYDAY for
// weekly rules and BYMONTHDAY for monthly rules. A rule is only meaningful
// anchored to a reference date, typically the template's due date.
package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidRule is returned when a rule string does not parse into the
// supported grammar or its parts are internally inconsistent.
var ErrInvalidRule = errors.New("invalid recurrence rule")

// Frequency is the base repetition unit of a rule.
type Frequency string

// Supported frequencies.
const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
	Yearly  Frequency = "YEARLY"
)

// Rule is a parsed recurrence rule.
type Rule struct {
	Freq     Frequency
	Interval int // >= 1
	Count    int // 0 means unbounded
	Until    *time.Time
	ByDay    []time.Weekday // weekly rules only, in rule order
	// ByMonthDay pins monthly rules to a day of month (1..31, clamped to
	// shorter months during expansion). 0 means the anchor's day is used.
	ByMonthDay int
}

var weekdayCodes = map[string]time.Weekday{
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
	"SU": time.Sunday,
}

// ParseRule parses an RRULE-style string such as
// "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE" into a Rule. Keys are
// case-insensitive; an optional leading "RRULE:" prefix is accepted.
// Returns an error wrapping ErrInvalidRule on any grammar violation.
func ParseRule(rule string) (*Rule, error) {
	rule = strings.TrimSpace(rule)
	rule = strings.TrimPrefix(rule, "RRULE:")
	if rule == "" {
		return nil, fmt.Errorf("%w: empty rule", ErrInvalidRule)
	}

	parsed := &Rule{Interval: 1}
	seen := map[string]bool{}

	for _, part := range strings.Split(rule, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, found := strings.Cut(part, "=")
		if !found || value == "" {
			return nil, fmt.Errorf("%w: malformed component %q", ErrInvalidRule, part)
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.ToUpper(strings.TrimSpace(value))

		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate component %q", ErrInvalidRule, key)
		}
		seen[key] = true

		switch key {
		case "FREQ":
			switch Frequency(value) {
			case Daily, Weekly, Monthly, Yearly:
				parsed.Freq = Frequency(value)
			default:
				return nil, fmt.Errorf("%w: unsupported frequency %q", ErrInvalidRule, value)
			}

		case "INTERVAL":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: interval must be a positive integer, got %q", ErrInvalidRule, value)
			}
			parsed.Interval = n

		case "COUNT":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: count must be a positive integer, got %q", ErrInvalidRule, value)
			}
			parsed.Count = n

		case "UNTIL":
			until, err := parseUntil(value)
			if err != nil {
				return nil, fmt.Errorf("%w: bad until date %q", ErrInvalidRule, value)
			}
			parsed.Until = &until

		case "BYDAY":
			for _, code := range strings.Split(value, ",") {
				day, ok := weekdayCodes[strings.TrimSpace(code)]
				if !ok {
					return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidRule, code)
				}
				parsed.ByDay = append(parsed.ByDay, day)
			}

		case "BYMONTHDAY":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 || n > 31 {
				return nil, fmt.Errorf("%w: day of month must be 1..31, got %q", ErrInvalidRule, value)
			}
			parsed.ByMonthDay = n

		default:
			return nil, fmt.Errorf("%w: unsupported component %q", ErrInvalidRule, key)
		}
	}

	if parsed.Freq == "" {
		return nil, fmt.Errorf("%w: missing FREQ", ErrInvalidRule)
	}
	if parsed.Count > 0 && parsed.Until != nil {
		return nil, fmt.Errorf("%w: COUNT and UNTIL are mutually exclusive", ErrInvalidRule)
	}
	if len(parsed.ByDay) > 0 && parsed.Freq != Weekly {
		return nil, fmt.Errorf("%w: BYDAY requires FREQ=WEEKLY", ErrInvalidRule)
	}
	if parsed.ByMonthDay > 0 && parsed.Freq != Monthly {
		return nil, fmt.Errorf("%w: BYMONTHDAY requires FREQ=MONTHLY", ErrInvalidRule)
	}

	return parsed, nil
}

// parseUntil accepts the date and date-time UNTIL forms (20251231,
// 20251231T235959Z). A date-only bound is inclusive of that whole day.
func parseUntil(value string) (time.Time, error) {
	if t, err := time.Parse("20060102T150405Z", value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("20060102", value); err == nil {
		return t.Add(24*time.Hour - time.Second), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized until format")
}

// ValidateRule reports whether the rule can drive instance generation from
// the given anchor. It fails closed: false when the anchor is absent, the
// rule does not parse, or the rule's own bound (UNTIL) predates the anchor.
// No error escapes; callers branch on the boolean.
func ValidateRule(rule string, anchor *time.Time) bool {
	if anchor == nil {
		return false
	}

	parsed, err := ParseRule(rule)
	if err != nil {
		return false
	}

	if parsed.Until != nil && parsed.Until.Before(*anchor) {
		return false
	}

	return true
}
