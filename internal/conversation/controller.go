package conversation

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Pbash-js/Pai/internal/dispatch"
	"github.com/Pbash-js/Pai/internal/llm"
	"github.com/Pbash-js/Pai/internal/memory"
	"github.com/Pbash-js/Pai/internal/metrics"
	"github.com/Pbash-js/Pai/internal/users"
)

type Assistant interface {
	Converse(ctx context.Context, history []llm.Turn, userText string) (*llm.Reply, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, user *users.User, calls []llm.FunctionCall) []dispatch.Outcome
}

type HistoryStore interface {
	Recent(ctx context.Context, chatID int64) ([]memory.Entry, error)
	Append(ctx context.Context, chatID int64, entry memory.Entry) error
}

type UserDirectory interface {
	Ensure(ctx context.Context, chatID int64, firstName, username string) (*users.User, error)
}

const apology = "Sorry, I ran into a problem handling that. Please try again."

var ackPool = []string{
	"Done!",
	"All set!",
	"Got it, taken care of.",
	"Consider it done.",
}

// Controller runs one conversation turn end to end: look up the user, read
// the history window, consult the model, dispatch its function calls, pick
// the final reply, and persist both sides of the exchange.
type Controller struct {
	assistant Assistant
	dispatch  Dispatcher
	history   HistoryStore
	users     UserDirectory
	locks     *chatLocks
	logger    *slog.Logger
	randInt   func(n int) int
	now       func() time.Time
}

func NewController(assistant Assistant, dispatcher Dispatcher, history HistoryStore, directory UserDirectory, logger *slog.Logger) *Controller {
	return &Controller{
		assistant: assistant,
		dispatch:  dispatcher,
		history:   history,
		users:     directory,
		locks:     newChatLocks(),
		logger:    logger,
		randInt:   rand.Intn,
		now:       time.Now,
	}
}

// ProcessTurn handles one inbound message and always returns reply text; on
// internal failure the reply is an apology, never an error code. At most one
// turn runs at a time per chat.
func (c *Controller) ProcessTurn(ctx context.Context, chatID int64, firstName, username, text string) string {
	unlock := c.locks.lock(chatID)
	defer unlock()

	metrics.TurnsTotal.Inc()

	user, err := c.users.Ensure(ctx, chatID, firstName, username)
	if err != nil {
		c.logger.Error("resolving user", "chat_id", chatID, "error", err)
		return c.finish(ctx, chatID, text, apology)
	}

	entries, err := c.history.Recent(ctx, chatID)
	if err != nil {
		c.logger.Warn("reading history", "chat_id", chatID, "error", err)
		entries = nil
	}
	history := make([]llm.Turn, 0, len(entries))
	for _, e := range entries {
		history = append(history, llm.Turn{Role: e.Role, Content: e.Content})
	}

	reply, err := c.assistant.Converse(ctx, history, text)
	if err != nil {
		c.logger.Error("model call failed", "chat_id", chatID, "error", err)
		return c.finish(ctx, chatID, text, apology)
	}

	outcomes := c.dispatch.Dispatch(ctx, user, reply.Calls)
	final := c.reconcile(reply.Text, outcomes)
	return c.finish(ctx, chatID, text, final)
}

// finish persists both turns and returns the reply. Persistence failures are
// logged but never surface to the user.
func (c *Controller) finish(ctx context.Context, chatID int64, userText, replyText string) string {
	now := c.now()
	if err := c.history.Append(ctx, chatID, memory.Entry{Role: "user", Content: userText, Timestamp: now}); err != nil {
		c.logger.Error("persisting user turn", "chat_id", chatID, "error", err)
	}
	if err := c.history.Append(ctx, chatID, memory.Entry{Role: "assistant", Content: replyText, Timestamp: now}); err != nil {
		c.logger.Error("persisting assistant turn", "chat_id", chatID, "error", err)
	}
	return replyText
}

// informative is the threshold above which a result message is worth echoing
// alongside the model's own text.
func informative(message string) bool {
	return len(message) > 20
}

// reconcile picks the final reply from the model's text and the call results.
func (c *Controller) reconcile(text string, outcomes []dispatch.Outcome) string {
	if text != "" {
		for _, o := range outcomes {
			if !o.Result.OK() {
				text += "\n⚠️ " + o.Result.Message
			} else if informative(o.Result.Message) {
				text += "\n" + o.Result.Message
			}
		}
		return text
	}

	for _, o := range outcomes {
		if o.Result.OK() && o.Result.Message != "" {
			return o.Result.Message
		}
	}
	for _, o := range outcomes {
		if !o.Result.OK() && o.Result.Message != "" {
			return o.Result.Message
		}
	}
	return ackPool[c.randInt(len(ackPool))]
}
