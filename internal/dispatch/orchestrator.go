package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Pbash-js/Pai/internal/calendar"
	"github.com/Pbash-js/Pai/internal/llm"
	"github.com/Pbash-js/Pai/internal/metrics"
	"github.com/Pbash-js/Pai/internal/reminders"
	"github.com/Pbash-js/Pai/internal/schema"
	"github.com/Pbash-js/Pai/internal/users"
)

type ReminderService interface {
	Set(ctx context.Context, userID uuid.UUID, message, dateStr, timeStr, repeat string) (*reminders.Reminder, error)
	SetRecurring(ctx context.Context, userID uuid.UUID, message, interval, startTime string) (*reminders.Reminder, error)
	Upcoming(ctx context.Context, userID uuid.UUID, dateRange string) ([]reminders.Reminder, error)
}

type CalendarService interface {
	Schedule(ctx context.Context, userID uuid.UUID, title, dateStr, timeStr, location string, participants []string) (*calendar.Event, error)
	Upcoming(ctx context.Context, userID uuid.UUID, dateRange string) ([]calendar.Event, error)
	Cancel(ctx context.Context, userID uuid.UUID, title string) error
}

type NotionService interface {
	CreateNote(ctx context.Context, token, title, content, parentPageTitle string) (string, error)
	CreateTable(ctx context.Context, token, title, parentPageTitle string, schema map[string]any) (string, error)
	AddTableRow(ctx context.Context, token, databaseTitle string, entryData map[string]any) (string, error)
}

// TokenSource resolves a chat's decrypted Notion access token; empty means
// the chat has not linked Notion.
type TokenSource interface {
	NotionToken(ctx context.Context, chatID int64) (string, error)
}

// LoginLinker delivers the Notion account-link prompt to a chat.
type LoginLinker interface {
	SendNotionLoginLink(ctx context.Context, chatID int64) error
}

// Orchestrator validates, enriches, and executes function calls strictly in
// the order the model issued them.
type Orchestrator struct {
	registry  *schema.Registry
	reminders ReminderService
	calendar  CalendarService
	notion    NotionService
	tokens    TokenSource
	login     LoginLinker
	logger    *slog.Logger
	now       func() time.Time
}

func NewOrchestrator(registry *schema.Registry, rem ReminderService, cal CalendarService, notion NotionService, tokens TokenSource, login LoginLinker, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		registry:  registry,
		reminders: rem,
		calendar:  cal,
		notion:    notion,
		tokens:    tokens,
		login:     login,
		logger:    logger,
		now:       time.Now,
	}
}

const loginRequiredMessage = "Your Notion account isn't linked yet. I've sent you a login link so you can connect it, then just ask me again."

// Dispatch executes calls sequentially. A failing call produces an ERROR
// result for that call only; an unlinked Notion account stops the whole batch
// after sending a login link.
func (o *Orchestrator) Dispatch(ctx context.Context, user *users.User, calls []llm.FunctionCall) []Outcome {
	outcomes := make([]Outcome, 0, len(calls))
	notionToken := ""

	for _, call := range calls {
		if call.Args == nil {
			call.Args = map[string]any{}
		}
		if schema.TimeSensitive(call.Name) {
			enrich(o.now(), call.Args)
		}

		if err := o.registry.Validate(call.Name, call.Args); err != nil {
			o.logger.Warn("function call rejected", "function", call.Name, "error", err)
			metrics.FunctionCallsTotal.WithLabelValues(call.Name, string(StatusError)).Inc()
			outcomes = append(outcomes, Outcome{Call: call, Result: errResult(err.Error())})
			continue
		}

		if schema.NotionOperation(call.Name) && notionToken == "" {
			token, err := o.tokens.NotionToken(ctx, user.ChatID)
			if err != nil {
				o.logger.Error("resolving notion token", "chat_id", user.ChatID, "error", err)
				outcomes = append(outcomes, Outcome{Call: call, Result: errResult("I couldn't check your Notion connection. Please try again.")})
				continue
			}
			if token == "" {
				// Unlinked account aborts the remaining batch.
				if err := o.login.SendNotionLoginLink(ctx, user.ChatID); err != nil {
					o.logger.Error("sending notion login link", "chat_id", user.ChatID, "error", err)
				}
				metrics.FunctionCallsTotal.WithLabelValues(call.Name, string(StatusError)).Inc()
				outcomes = append(outcomes, Outcome{Call: call, Result: errResult(loginRequiredMessage)})
				return outcomes
			}
			notionToken = token
		}

		result := o.execute(ctx, user, notionToken, call)
		metrics.FunctionCallsTotal.WithLabelValues(call.Name, string(result.Status)).Inc()
		outcomes = append(outcomes, Outcome{Call: call, Result: result})
	}
	return outcomes
}

func (o *Orchestrator) execute(ctx context.Context, user *users.User, notionToken string, call llm.FunctionCall) Result {
	args := call.Args
	switch call.Name {
	case schema.OpSetReminder:
		repeat := strArg(args, "repeat")
		if repeat == "" {
			repeat = "none"
		}
		reminder, err := o.reminders.Set(ctx, user.ID, strArg(args, "message"), strArg(args, "date"), strArg(args, "time"), repeat)
		if err != nil {
			return errResult(err.Error())
		}
		msg := fmt.Sprintf("Reminder set for %s: %s", reminder.ScheduledAt.Format("Mon, Jan 2 at 15:04"), reminder.Message)
		if reminder.Recurring {
			msg += fmt.Sprintf(" (repeats %s)", reminder.Frequency)
		}
		return ok(msg)

	case schema.OpGetReminder:
		list, err := o.reminders.Upcoming(ctx, user.ID, strArg(args, "date_range"))
		if err != nil {
			return errResult(err.Error())
		}
		return ok(formatReminders(list))

	case schema.OpScheduleEvent:
		event, err := o.calendar.Schedule(ctx, user.ID, strArg(args, "title"), strArg(args, "date"), strArg(args, "time"),
			strArg(args, "location"), strsArg(args, "participants"))
		if err != nil {
			return errResult(err.Error())
		}
		msg := fmt.Sprintf("Event %q scheduled for %s", event.Title, event.StartTime.Format("Mon, Jan 2 at 15:04"))
		if event.Location != "" {
			msg += " at " + event.Location
		}
		return ok(msg)

	case schema.OpGetUpcomingEvents:
		dateRange := strArg(args, "date_range")
		events, err := o.calendar.Upcoming(ctx, user.ID, dateRange)
		if err != nil {
			return errResult(err.Error())
		}
		rems, err := o.reminders.Upcoming(ctx, user.ID, dateRange)
		if err != nil {
			return errResult(err.Error())
		}
		return ok(formatAgenda(events, rems))

	case schema.OpCancelEvent:
		title := strArg(args, "event_title")
		if err := o.calendar.Cancel(ctx, user.ID, title); err != nil {
			return errResult(err.Error())
		}
		return ok(fmt.Sprintf("Event %q has been canceled.", title))

	case schema.OpSetRecurringReminder:
		reminder, err := o.reminders.SetRecurring(ctx, user.ID, strArg(args, "message"), strArg(args, "interval"), strArg(args, "start_time"))
		if err != nil {
			return errResult(err.Error())
		}
		return ok(fmt.Sprintf("Recurring reminder set (%s, every %d minutes), starting %s: %s",
			reminder.Frequency, reminder.IntervalMinutes, reminder.ScheduledAt.Format("Mon, Jan 2 at 15:04"), reminder.Message))

	case schema.OpCreateNotionNote:
		url, err := o.notion.CreateNote(ctx, notionToken, strArg(args, "title"), strArg(args, "content"), strArg(args, "parent_page_title"))
		if err != nil {
			return errResult(err.Error())
		}
		return ok(fmt.Sprintf("Note %q created in Notion: %s", strArg(args, "title"), url))

	case schema.OpCreateNotionTable:
		url, err := o.notion.CreateTable(ctx, notionToken, strArg(args, "title"), strArg(args, "parent_page_title"), mapArg(args, "properties_schema"))
		if err != nil {
			return errResult(err.Error())
		}
		return ok(fmt.Sprintf("Table %q created in Notion: %s", strArg(args, "title"), url))

	case schema.OpAddNotionTableRow:
		url, err := o.notion.AddTableRow(ctx, notionToken, strArg(args, "database_title"), mapArg(args, "entry_data"))
		if err != nil {
			return errResult(err.Error())
		}
		return ok(fmt.Sprintf("Row added to %q: %s", strArg(args, "database_title"), url))
	}

	return errResult(fmt.Sprintf("Unknown function: %s", call.Name))
}

func formatReminders(list []reminders.Reminder) string {
	if len(list) == 0 {
		return "You have no upcoming reminders."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You have %d upcoming reminder(s):", len(list))
	for _, r := range list {
		fmt.Fprintf(&b, "\n- %s: %s", r.ScheduledAt.Format("Mon, Jan 2 at 15:04"), r.Message)
		if r.Recurring {
			fmt.Fprintf(&b, " (repeats %s)", r.Frequency)
		}
	}
	return b.String()
}

func formatAgenda(events []calendar.Event, rems []reminders.Reminder) string {
	if len(events) == 0 && len(rems) == 0 {
		return "You have nothing scheduled in that period."
	}
	var b strings.Builder
	b.WriteString("Here's what's coming up:")
	for _, e := range events {
		fmt.Fprintf(&b, "\n- %s: %s", e.StartTime.Format("Mon, Jan 2 at 15:04"), e.Title)
		if e.Location != "" {
			fmt.Fprintf(&b, " (%s)", e.Location)
		}
	}
	for _, r := range rems {
		fmt.Fprintf(&b, "\n- %s: %s (reminder)", r.ScheduledAt.Format("Mon, Jan 2 at 15:04"), r.Message)
	}
	return b.String()
}
