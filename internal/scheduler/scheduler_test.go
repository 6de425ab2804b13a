package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pbash-js/Pai/internal/reminders"
)

type fakeProcessor struct {
	mu            sync.Mutex
	notifications []reminders.Notification
	err           error
	ticks         int
}

func (f *fakeProcessor) ProcessDue(context.Context) ([]reminders.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticks++
	return f.notifications, f.err
}

type fakeSender struct {
	mu   sync.Mutex
	sent []reminders.Notification
	err  error
}

func (f *fakeSender) SendMessage(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, reminders.Notification{ChatID: chatID, Message: text})
	return nil
}

func TestTick_DeliversNotifications(t *testing.T) {
	processor := &fakeProcessor{notifications: []reminders.Notification{
		{ChatID: 42, Message: "REMINDER: buy milk"},
		{ChatID: 7, Message: "REMINDER: standup"},
	}}
	sender := &fakeSender{}
	s := New(processor, sender, slog.New(slog.DiscardHandler))

	s.tick(context.Background())

	require.Len(t, sender.sent, 2)
	assert.Equal(t, int64(42), sender.sent[0].ChatID)
	assert.Equal(t, "REMINDER: buy milk", sender.sent[0].Message)
}

func TestTick_ProcessErrorSendsNothing(t *testing.T) {
	processor := &fakeProcessor{err: fmt.Errorf("db down")}
	sender := &fakeSender{}
	s := New(processor, sender, slog.New(slog.DiscardHandler))

	s.tick(context.Background())
	assert.Empty(t, sender.sent)
}

func TestTick_SendFailureDoesNotStopBatch(t *testing.T) {
	processor := &fakeProcessor{notifications: []reminders.Notification{
		{ChatID: 1, Message: "a"},
		{ChatID: 2, Message: "b"},
	}}
	sender := &fakeSender{err: fmt.Errorf("network")}
	s := New(processor, sender, slog.New(slog.DiscardHandler))

	// Should not panic and should attempt both sends.
	s.tick(context.Background())
	assert.Empty(t, sender.sent)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	processor := &fakeProcessor{}
	s := New(processor, &fakeSender{}, slog.New(slog.DiscardHandler))
	s.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		processor.mu.Lock()
		defer processor.mu.Unlock()
		return processor.ticks >= 2
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
