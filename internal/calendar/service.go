package calendar

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

// Schedule creates an event from "2006-01-02" / "15:04" strings. End time
// defaults to one hour after the start.
func (s *Service) Schedule(ctx context.Context, userID uuid.UUID, title, dateStr, timeStr, location string, participants []string) (*Event, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", dateStr+" "+timeStr, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date or time format")
	}

	event := &Event{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        title,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		Location:     location,
		Participants: participants,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Upcoming lists events within a colloquial date range; empty means the next week.
func (s *Service) Upcoming(ctx context.Context, userID uuid.UUID, dateRange string) ([]Event, error) {
	days := timeparse.DateRangeDays(dateRange)
	now := s.now()
	to := now.AddDate(0, 0, days)
	if days == 0 {
		to = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	}
	return s.repo.Upcoming(ctx, userID, now, to)
}

// Cancel removes the user's event matching the title (case-insensitive).
func (s *Service) Cancel(ctx context.Context, userID uuid.UUID, title string) error {
	event, err := s.repo.FindByTitle(ctx, userID, title)
	if err != nil {
		return err
	}
	if event == nil {
		return fmt.Errorf("event %q not found", title)
	}
	return s.repo.Delete(ctx, event.ID)
}
