// Package timeparse resolves colloquial English date, time, and recurrence
// phrases into the canonical formats the assistant's services expect. It is
// deliberately narrow: enough coverage for a reminder/calendar bot, with no
// timezone or locale handling.
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Extraction holds the date, time, and recurrence candidates found in a
// message. A field is empty when nothing resolved; the caller decides whether
// to ask the user or apply its own default.
type Extraction struct {
	Date       string // YYYY-MM-DD
	Time       string // HH:MM, 24-hour
	Recurrence string // canonical token, e.g. "daily", "weekly-monday", "every-2-weeks"
}

// Extract parses text against a reference time. It never fails; unresolvable
// fields come back empty.
func Extract(now time.Time, text string) Extraction {
	text = strings.ToLower(text)
	return Extraction{
		Date:       extractDate(now, text),
		Time:       extractTime(text),
		Recurrence: extractRecurrence(text),
	}
}

const (
	weekdayFullAlt = `monday|tuesday|tues|wednesday|thursday|thurs|friday|saturday|sunday`
	// Three-letter forms collide with ordinary prose ("we sat down", "mon
	// ami"), so bare matching only accepts the full names; abbreviations
	// need a scheduling qualifier in front.
	weekdayAbbrevAlt = `mon|tue|wed|thur|thu|fri|sat|sun`
)

var (
	weekdayRe          = regexp.MustCompile(`\b(` + weekdayFullAlt + `)\b`)
	weekdayQualifiedRe = regexp.MustCompile(`\b(?:next|this|on|every)\s+(` + weekdayAbbrevAlt + `)\b`)

	date3Re = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})`)
	date2Re = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})`)
)

var weekdayByToken = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tues": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thurs": time.Thursday, "thur": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

func extractDate(now time.Time, text string) string {
	if strings.Contains(text, "today") {
		return fmtDate(now)
	}
	// "tomorrow" is checked before "day after tomorrow", so any text
	// containing it resolves to +1 day.
	if strings.Contains(text, "tomorrow") {
		return fmtDate(now.AddDate(0, 0, 1))
	}
	if strings.Contains(text, "day after tomorrow") {
		return fmtDate(now.AddDate(0, 0, 2))
	}

	m := weekdayRe.FindStringSubmatch(text)
	if m == nil {
		m = weekdayQualifiedRe.FindStringSubmatch(text)
	}
	if m != nil {
		target := weekdayByToken[m[1]]
		offset := (int(target) - int(now.Weekday()) + 7) % 7
		// Today's own weekday name means the next occurrence, not today.
		// "next <day>" resolves the same way: the nearest future occurrence.
		if offset == 0 {
			offset = 7
		}
		return fmtDate(now.AddDate(0, 0, offset))
	}

	if strings.Contains(text, "next week") || strings.Contains(text, "in a week") {
		return fmtDate(now.AddDate(0, 0, 7))
	}
	if strings.Contains(text, "next month") {
		// Fixed 30-day approximation, not calendar-month arithmetic.
		return fmtDate(now.AddDate(0, 0, 30))
	}

	// MM/DD/YYYY before MM/DD so the year component is not swallowed.
	if m := date3Re.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		if d, ok := calendarDate(year, month, day); ok {
			return d
		}
	}
	if m := date2Re.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year := now.Year()
		// Already passed this year: assume next year.
		if month < int(now.Month()) || (month == int(now.Month()) && day < now.Day()) {
			year++
		}
		if d, ok := calendarDate(year, month, day); ok {
			return d
		}
	}

	return ""
}

// calendarDate validates month/day against the real calendar; time.Date
// normalizes overflow (Feb 30 -> Mar 2), which counts as invalid here.
func calendarDate(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(d.Month()) != month || d.Day() != day {
		return "", false
	}
	return d.Format("2006-01-02"), true
}

var (
	clockAmPmRe = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*([ap])\.?m\.?`)
	hourAmPmRe  = regexp.MustCompile(`(\d{1,2})\s*([ap])\.?m\.?`)
	clock24Re   = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

func extractTime(text string) string {
	if m := clockAmPmRe.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour >= 1 && hour <= 12 && minute <= 59 {
			return fmtClock(to24Hour(hour, m[3]), minute)
		}
	}
	if m := hourAmPmRe.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		if hour >= 1 && hour <= 12 {
			return fmtClock(to24Hour(hour, m[2]), 0)
		}
	}
	if m := clock24Re.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour <= 23 && minute <= 59 {
			return fmtClock(hour, minute)
		}
	}

	// Named periods are defaults, consulted only without an explicit time.
	// "afternoon" must precede "noon" and "midnight" must precede "night",
	// since the shorter words are substrings of the longer ones.
	switch {
	case strings.Contains(text, "afternoon"):
		return "14:00"
	case strings.Contains(text, "noon"):
		return "12:00"
	case strings.Contains(text, "midnight"):
		return "00:00"
	case strings.Contains(text, "morning"):
		return "09:00"
	case strings.Contains(text, "evening"):
		return "18:00"
	case strings.Contains(text, "night"):
		return "20:00"
	}
	return ""
}

func to24Hour(hour int, marker string) int {
	if marker == "p" && hour < 12 {
		return hour + 12
	}
	if marker == "a" && hour == 12 {
		return 0
	}
	return hour
}

var (
	everyDayRe     = regexp.MustCompile(`every\s+day|daily`)
	everyWeekRe    = regexp.MustCompile(`every\s+week|weekly`)
	everyMonthRe   = regexp.MustCompile(`every\s+month|monthly`)
	everyWeekdayRe = regexp.MustCompile(`every\s+(` + weekdayFullAlt + `|` + weekdayAbbrevAlt + `)\b`)
	everyNUnitRe   = regexp.MustCompile(`every\s+(\d+)\s+(day|week|month)`)
)

var weekdayToken = map[time.Weekday]string{
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
	time.Sunday:    "sunday",
}

func extractRecurrence(text string) string {
	switch {
	case everyDayRe.MatchString(text):
		return "daily"
	case everyWeekRe.MatchString(text):
		return "weekly"
	case everyMonthRe.MatchString(text):
		return "monthly"
	}
	if m := everyWeekdayRe.FindStringSubmatch(text); m != nil {
		return "weekly-" + weekdayToken[weekdayByToken[m[1]]]
	}
	if m := everyNUnitRe.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("every-%s-%ss", m[1], m[2])
	}
	return ""
}

func fmtDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func fmtClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
