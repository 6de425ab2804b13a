package timeparse

import (
	"regexp"
	"strconv"
	"strings"
)

// Frequency classifies how often a reminder repeats.
type Frequency string

const (
	FrequencyNone    Frequency = "none"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyCustom  Frequency = "custom"
)

// RecurrenceSpec is the canonical form of a free-text interval phrase.
// IntervalMinutes drives scheduling only for FrequencyCustom; for the named
// classes it carries the informational equivalent (monthly uses a 30-day
// approximation).
type RecurrenceSpec struct {
	Class           Frequency
	IntervalMinutes int
}

var firstIntRe = regexp.MustCompile(`\d+`)

// NormalizeInterval maps phrases like "every 2 hours" or "weekly" to a
// RecurrenceSpec. It never fails: unparsable numeric components use the
// branch default, and unrecognized phrases fall back to daily.
func NormalizeInterval(phrase string) RecurrenceSpec {
	p := strings.ToLower(phrase)
	switch {
	case strings.Contains(p, "minute"):
		return RecurrenceSpec{Class: FrequencyCustom, IntervalMinutes: firstInt(p, 60)}
	case strings.Contains(p, "hour"):
		return RecurrenceSpec{Class: FrequencyCustom, IntervalMinutes: firstInt(p, 1) * 60}
	case strings.Contains(p, "day") || strings.Contains(p, "daily"):
		return RecurrenceSpec{Class: FrequencyDaily, IntervalMinutes: 1440}
	case strings.Contains(p, "week"):
		return RecurrenceSpec{Class: FrequencyWeekly, IntervalMinutes: 10080}
	case strings.Contains(p, "month"):
		return RecurrenceSpec{Class: FrequencyMonthly, IntervalMinutes: 43200}
	default:
		// Deliberate fallback policy, not a parse failure.
		return RecurrenceSpec{Class: FrequencyDaily, IntervalMinutes: 1440}
	}
}

func firstInt(s string, fallback int) int {
	m := firstIntRe.FindString(s)
	if m == "" {
		return fallback
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return fallback
	}
	return n
}

var nDaysRe = regexp.MustCompile(`(\d+)\s+day`)

// DateRangeDays converts a colloquial range ("today", "next 3 days",
// "this week") to a day count for upcoming-item queries.
func DateRangeDays(s string) int {
	if s == "" {
		s = "7 days"
	}
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "today"):
		return 0
	case strings.Contains(s, "tomorrow"):
		return 1
	case strings.Contains(s, "week"):
		return 7
	case strings.Contains(s, "month"):
		return 30
	}
	if m := nDaysRe.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 7
}
