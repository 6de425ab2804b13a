package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pbash-js/Pai/internal/dispatch"
	"github.com/Pbash-js/Pai/internal/llm"
	"github.com/Pbash-js/Pai/internal/memory"
	"github.com/Pbash-js/Pai/internal/users"
)

type fakeAssistant struct {
	reply *llm.Reply
	err   error
	gate  chan struct{} // when set, Converse blocks until the gate closes
	calls int
	mu    sync.Mutex
}

func (f *fakeAssistant) Converse(_ context.Context, _ []llm.Turn, _ string) (*llm.Reply, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	return f.reply, f.err
}

type fakeDispatcher struct {
	outcomes []dispatch.Outcome
	batches  [][]llm.FunctionCall
}

func (f *fakeDispatcher) Dispatch(_ context.Context, _ *users.User, calls []llm.FunctionCall) []dispatch.Outcome {
	f.batches = append(f.batches, calls)
	return f.outcomes
}

type fakeHistory struct {
	mu      sync.Mutex
	entries map[int64][]memory.Entry
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{entries: make(map[int64][]memory.Entry)}
}

func (f *fakeHistory) Recent(_ context.Context, chatID int64) ([]memory.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]memory.Entry(nil), f.entries[chatID]...), nil
}

func (f *fakeHistory) Append(_ context.Context, chatID int64, entry memory.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[chatID] = append(f.entries[chatID], entry)
	return nil
}

type fakeDirectory struct{}

func (fakeDirectory) Ensure(_ context.Context, chatID int64, firstName, username string) (*users.User, error) {
	return &users.User{ChatID: chatID, FirstName: firstName, Username: username}, nil
}

func newController(assistant *fakeAssistant, dispatcher *fakeDispatcher, history *fakeHistory) *Controller {
	c := NewController(assistant, dispatcher, history, fakeDirectory{}, slog.New(slog.DiscardHandler))
	c.randInt = func(int) int { return 0 }
	return c
}

func okOutcome(name, message string) dispatch.Outcome {
	return dispatch.Outcome{
		Call:   llm.FunctionCall{Name: name},
		Result: dispatch.Result{Status: dispatch.StatusOK, Message: message},
	}
}

func errOutcome(name, message string) dispatch.Outcome {
	return dispatch.Outcome{
		Call:   llm.FunctionCall{Name: name},
		Result: dispatch.Result{Status: dispatch.StatusError, Message: message},
	}
}

func TestProcessTurn_TextOnlyReply(t *testing.T) {
	history := newFakeHistory()
	c := newController(
		&fakeAssistant{reply: &llm.Reply{Text: "Hello! How can I help?"}},
		&fakeDispatcher{},
		history,
	)

	reply := c.ProcessTurn(context.Background(), 42, "Ada", "ada", "hi")
	assert.Equal(t, "Hello! How can I help?", reply)

	entries := history.entries[42]
	require.Len(t, entries, 2)
	assert.Equal(t, "user", entries[0].Role)
	assert.Equal(t, "hi", entries[0].Content)
	assert.Equal(t, "assistant", entries[1].Role)
	assert.Equal(t, "Hello! How can I help?", entries[1].Content)
}

func TestProcessTurn_NoTextUsesFirstSuccessMessage(t *testing.T) {
	c := newController(
		&fakeAssistant{reply: &llm.Reply{Calls: []llm.FunctionCall{{Name: "setReminder"}}}},
		&fakeDispatcher{outcomes: []dispatch.Outcome{
			errOutcome("setReminder", "reminder store unavailable"),
			okOutcome("scheduleEvent", "Event \"Lunch\" scheduled for Fri, Mar 28 at 13:00"),
		}},
		newFakeHistory(),
	)

	reply := c.ProcessTurn(context.Background(), 1, "A", "a", "do things")
	assert.Equal(t, "Event \"Lunch\" scheduled for Fri, Mar 28 at 13:00", reply)
}

func TestProcessTurn_NoTextAllFailedUsesFirstFailure(t *testing.T) {
	c := newController(
		&fakeAssistant{reply: &llm.Reply{Calls: []llm.FunctionCall{{Name: "cancelEvent"}}}},
		&fakeDispatcher{outcomes: []dispatch.Outcome{
			errOutcome("cancelEvent", "event \"Dentist\" not found"),
			errOutcome("cancelEvent", "event \"Doctor\" not found"),
		}},
		newFakeHistory(),
	)

	reply := c.ProcessTurn(context.Background(), 1, "A", "a", "cancel stuff")
	assert.Equal(t, "event \"Dentist\" not found", reply)
}

func TestProcessTurn_NoInformativeMessageUsesAckPool(t *testing.T) {
	c := newController(
		&fakeAssistant{reply: &llm.Reply{}},
		&fakeDispatcher{},
		newFakeHistory(),
	)

	reply := c.ProcessTurn(context.Background(), 1, "A", "a", "hm")
	assert.Equal(t, ackPool[0], reply)
}

func TestProcessTurn_TextWithFailureGetsWarningAnnotation(t *testing.T) {
	c := newController(
		&fakeAssistant{reply: &llm.Reply{
			Text:  "I'll cancel that for you.",
			Calls: []llm.FunctionCall{{Name: "cancelEvent"}},
		}},
		&fakeDispatcher{outcomes: []dispatch.Outcome{
			errOutcome("cancelEvent", "event \"Dentist\" not found"),
		}},
		newFakeHistory(),
	)

	reply := c.ProcessTurn(context.Background(), 1, "A", "a", "cancel dentist")
	assert.Contains(t, reply, "I'll cancel that for you.")
	assert.Contains(t, reply, "⚠️ event \"Dentist\" not found")
}

func TestProcessTurn_TextAppendsOnlyInformativeSuccess(t *testing.T) {
	c := newController(
		&fakeAssistant{reply: &llm.Reply{
			Text:  "On it!",
			Calls: []llm.FunctionCall{{Name: "setReminder"}, {Name: "cancelEvent"}},
		}},
		&fakeDispatcher{outcomes: []dispatch.Outcome{
			okOutcome("setReminder", "Reminder set for Fri, Mar 28 at 08:00: buy milk"),
			okOutcome("cancelEvent", "ok"),
		}},
		newFakeHistory(),
	)

	reply := c.ProcessTurn(context.Background(), 1, "A", "a", "remind me")
	assert.Contains(t, reply, "Reminder set for Fri, Mar 28 at 08:00: buy milk")
	assert.NotContains(t, reply, "\nok")
}

func TestProcessTurn_ModelErrorYieldsApologyAndPersists(t *testing.T) {
	history := newFakeHistory()
	c := newController(
		&fakeAssistant{err: fmt.Errorf("upstream timeout")},
		&fakeDispatcher{},
		history,
	)

	reply := c.ProcessTurn(context.Background(), 7, "A", "a", "hello?")
	assert.Equal(t, apology, reply)

	entries := history.entries[7]
	require.Len(t, entries, 2)
	assert.Equal(t, apology, entries[1].Content)
}

func TestProcessTurn_PassesHistoryToModel(t *testing.T) {
	history := newFakeHistory()
	require.NoError(t, history.Append(context.Background(), 9, memory.Entry{Role: "user", Content: "earlier"}))

	assistant := &fakeAssistant{reply: &llm.Reply{Text: "ok"}}
	c := newController(assistant, &fakeDispatcher{}, history)

	c.ProcessTurn(context.Background(), 9, "A", "a", "now")
	assert.Equal(t, 1, assistant.calls)
}

func TestProcessTurn_SerializedPerChat(t *testing.T) {
	gate := make(chan struct{})
	assistant := &fakeAssistant{reply: &llm.Reply{Text: "ok"}, gate: gate}
	history := newFakeHistory()
	c := newController(assistant, &fakeDispatcher{}, history)

	done := make(chan struct{})
	go func() {
		c.ProcessTurn(context.Background(), 5, "A", "a", "first")
		close(done)
	}()

	// Wait until the first turn holds the chat lock inside the model call.
	require.Eventually(t, func() bool {
		assistant.mu.Lock()
		defer assistant.mu.Unlock()
		return assistant.calls == 1
	}, time.Second, 5*time.Millisecond)

	second := make(chan struct{})
	go func() {
		c.ProcessTurn(context.Background(), 5, "A", "a", "second")
		close(second)
	}()

	// The second turn must not reach the model while the first is in flight.
	time.Sleep(20 * time.Millisecond)
	assistant.mu.Lock()
	assert.Equal(t, 1, assistant.calls)
	assistant.mu.Unlock()

	close(gate)
	<-done
	<-second

	entries := history.entries[5]
	require.Len(t, entries, 4)
	assert.Equal(t, "first", entries[0].Content)
	assert.Equal(t, "second", entries[2].Content)
}
