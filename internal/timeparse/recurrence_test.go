package timeparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeInterval_Minutes(t *testing.T) {
	spec := NormalizeInterval("every 45 minutes")
	assert.Equal(t, FrequencyCustom, spec.Class)
	assert.Equal(t, 45, spec.IntervalMinutes)

	// No digits: minute branch defaults to 60.
	spec = NormalizeInterval("every few minutes")
	assert.Equal(t, FrequencyCustom, spec.Class)
	assert.Equal(t, 60, spec.IntervalMinutes)
}

func TestNormalizeInterval_Hours(t *testing.T) {
	spec := NormalizeInterval("every 2 hours")
	assert.Equal(t, FrequencyCustom, spec.Class)
	assert.Equal(t, 120, spec.IntervalMinutes)

	spec = NormalizeInterval("hourly")
	assert.Equal(t, FrequencyCustom, spec.Class)
	assert.Equal(t, 60, spec.IntervalMinutes)
}

func TestNormalizeInterval_NamedClasses(t *testing.T) {
	assert.Equal(t, RecurrenceSpec{Class: FrequencyDaily, IntervalMinutes: 1440}, NormalizeInterval("daily"))
	assert.Equal(t, RecurrenceSpec{Class: FrequencyWeekly, IntervalMinutes: 10080}, NormalizeInterval("weekly"))
	assert.Equal(t, RecurrenceSpec{Class: FrequencyMonthly, IntervalMinutes: 43200}, NormalizeInterval("monthly"))
}

func TestNormalizeInterval_MultiDayCollapsesToDaily(t *testing.T) {
	// "every 3 days" is the extractor's territory; this normalizer only
	// keys on units, so it lands in the daily class.
	spec := NormalizeInterval("every 3 days")
	assert.Equal(t, FrequencyDaily, spec.Class)
	assert.Equal(t, 1440, spec.IntervalMinutes)
}

func TestNormalizeInterval_UnrecognizedFallsBackToDaily(t *testing.T) {
	spec := NormalizeInterval("whenever mercury is in retrograde")
	assert.Equal(t, FrequencyDaily, spec.Class)
	assert.Equal(t, 1440, spec.IntervalMinutes)
}

func TestDateRangeDays(t *testing.T) {
	cases := map[string]int{
		"":            7,
		"today":       0,
		"tomorrow":    1,
		"this week":   7,
		"next month":  30,
		"next 3 days": 3,
		"10 days":     10,
		"whenever":    7,
	}
	for in, want := range cases {
		assert.Equal(t, want, DateRangeDays(in), "input: %q", in)
	}
}
