package telegram

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Pbash-js/Pai/internal/api"
)

// TurnProcessor runs one conversational turn and returns the reply text.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, chatID int64, firstName, username, text string) string
}

// Sender delivers outbound messages to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

const linkedConfirmation = "✅ Your Notion account has been successfully linked! You can now save notes and tables."

type Handler struct {
	processor TurnProcessor
	sender    Sender
	validate  *validator.Validate
}

func NewHandler(processor TurnProcessor, sender Sender) *Handler {
	return &Handler{
		processor: processor,
		sender:    sender,
		validate:  validator.New(),
	}
}

// Webhook receives Bot API updates. It always answers 200 so Telegram
// does not redeliver the same update on processing failures.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		slog.Warn("webhook: malformed payload", "error", err)
		api.JSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if err := h.validate.Struct(update); err != nil || update.Message.Text == "" {
		// Edits, joins, stickers and other non-text updates are dropped.
		api.JSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID

	// Deep-link return from the OAuth callback.
	if strings.HasPrefix(msg.Text, "/start") {
		parts := strings.Fields(msg.Text)
		if len(parts) > 1 && parts[1] == "notion_linked" {
			if err := h.sender.SendMessage(r.Context(), chatID, linkedConfirmation); err != nil {
				slog.Error("webhook: sending link confirmation", "error", err, "chat_id", chatID)
			}
			api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
	}

	reply := h.processor.ProcessTurn(r.Context(), chatID, msg.From.FirstName, msg.From.Username, msg.Text)
	if reply != "" {
		if err := h.sender.SendMessage(r.Context(), chatID, reply); err != nil {
			slog.Error("webhook: sending reply", "error", err, "chat_id", chatID)
		}
	}

	api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
