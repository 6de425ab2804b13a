package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/Pbash-js/Pai/internal/metrics"
	"github.com/Pbash-js/Pai/internal/reminders"
)

type ReminderProcessor interface {
	ProcessDue(ctx context.Context) ([]reminders.Notification, error)
}

type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Scheduler drains due reminders on a fixed interval and delivers them.
type Scheduler struct {
	reminders ReminderProcessor
	sender    Sender
	interval  time.Duration
	logger    *slog.Logger
}

func New(processor ReminderProcessor, sender Sender, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		reminders: processor,
		sender:    sender,
		interval:  time.Minute,
		logger:    logger,
	}
}

// Run ticks until the context is canceled. Each tick is independent; a failed
// tick is logged and the next one proceeds.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("reminder scheduler started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	notifications, err := s.reminders.ProcessDue(ctx)
	if err != nil {
		s.logger.Error("processing due reminders", "error", err)
		return
	}

	for _, n := range notifications {
		if err := s.sender.SendMessage(ctx, n.ChatID, n.Message); err != nil {
			s.logger.Error("delivering reminder", "chat_id", n.ChatID, "error", err)
			metrics.RemindersDeliveredTotal.WithLabelValues("error").Inc()
			continue
		}
		metrics.RemindersDeliveredTotal.WithLabelValues("success").Inc()
	}
}
