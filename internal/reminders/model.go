package reminders

import (
	"time"

	"github.com/google/uuid"

	"github.com/Pbash-js/Pai/internal/timeparse"
)

// Reminder is a scheduled notification, one-shot or recurring.
type Reminder struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	Message         string              `json:"message"`
	ScheduledAt     time.Time           `json:"scheduled_at"`
	Recurring       bool                `json:"recurring"`
	Frequency       timeparse.Frequency `json:"frequency"`
	IntervalMinutes int                 `json:"interval_minutes"`
	Active          bool                `json:"active"`
	CreatedAt       time.Time           `json:"created_at"`
}

// NextOccurrence returns when a recurring reminder fires after the current
// scheduled time. Monthly uses a 30-day approximation.
func (r *Reminder) NextOccurrence() time.Time {
	switch r.Frequency {
	case timeparse.FrequencyDaily:
		return r.ScheduledAt.AddDate(0, 0, 1)
	case timeparse.FrequencyWeekly:
		return r.ScheduledAt.AddDate(0, 0, 7)
	case timeparse.FrequencyMonthly:
		return r.ScheduledAt.AddDate(0, 0, 30)
	default:
		return r.ScheduledAt.Add(time.Duration(r.IntervalMinutes) * time.Minute)
	}
}

// Notification is a due reminder resolved to its delivery target.
type Notification struct {
	ChatID  int64
	Message string
}
