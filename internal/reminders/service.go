package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Pbash-js/Pai/internal/timeparse"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Set creates a reminder from "2006-01-02" / "15:04" strings. A repeat phrase
// other than "none" makes it recurring, normalized via the interval rules.
func (s *Service) Set(ctx context.Context, userID uuid.UUID, message, dateStr, timeStr, repeat string) (*Reminder, error) {
	scheduledAt, err := time.ParseInLocation("2006-01-02 15:04", dateStr+" "+timeStr, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date or time format")
	}

	reminder := &Reminder{
		ID:          uuid.New(),
		UserID:      userID,
		Message:     message,
		ScheduledAt: scheduledAt,
		Frequency:   timeparse.FrequencyNone,
		Active:      true,
		CreatedAt:   s.now(),
	}
	if repeat != "" && repeat != "none" {
		spec := timeparse.NormalizeInterval(repeat)
		reminder.Recurring = true
		reminder.Frequency = spec.Class
		reminder.IntervalMinutes = spec.IntervalMinutes
	}

	if err := s.repo.Create(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// SetRecurring creates a repeating reminder from a free-text interval phrase.
// startTime is an optional "15:04"; when it has already passed today the first
// occurrence moves to tomorrow, and when absent the reminder starts now.
func (s *Service) SetRecurring(ctx context.Context, userID uuid.UUID, message, interval, startTime string) (*Reminder, error) {
	spec := timeparse.NormalizeInterval(interval)

	now := s.now()
	scheduledAt := now
	if startTime != "" {
		if t, err := time.ParseInLocation("15:04", startTime, time.Local); err == nil {
			scheduledAt = time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, time.Local)
			if scheduledAt.Before(now) {
				scheduledAt = scheduledAt.AddDate(0, 0, 1)
			}
		}
	}

	reminder := &Reminder{
		ID:              uuid.New(),
		UserID:          userID,
		Message:         message,
		ScheduledAt:     scheduledAt,
		Recurring:       true,
		Frequency:       spec.Class,
		IntervalMinutes: spec.IntervalMinutes,
		Active:          true,
		CreatedAt:       now,
	}
	if err := s.repo.Create(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// Upcoming lists active reminders within a colloquial date range ("today",
// "next 3 days"); an empty range means the next week.
func (s *Service) Upcoming(ctx context.Context, userID uuid.UUID, dateRange string) ([]Reminder, error) {
	days := timeparse.DateRangeDays(dateRange)
	now := s.now()
	to := now.AddDate(0, 0, days)
	if days == 0 {
		// "today" means through end of day, not this instant.
		to = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	}
	return s.repo.Upcoming(ctx, userID, now, to)
}

// ProcessDue drains reminders whose time has come, advancing recurring ones to
// their next occurrence and deactivating one-shots. It returns the
// notifications to deliver.
func (s *Service) ProcessDue(ctx context.Context) ([]Notification, error) {
	due, err := s.repo.Due(ctx, s.now())
	if err != nil {
		return nil, err
	}

	var notifications []Notification
	for _, d := range due {
		notifications = append(notifications, Notification{
			ChatID:  d.ChatID,
			Message: "REMINDER: " + d.Message,
		})

		if d.Recurring {
			if err := s.repo.Reschedule(ctx, d.ID, d.NextOccurrence()); err != nil {
				return notifications, err
			}
		} else {
			if err := s.repo.Deactivate(ctx, d.ID); err != nil {
				return notifications, err
			}
		}
	}
	return notifications, nil
}
