package notion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Pbash-js/Pai/internal/api"
	"github.com/Pbash-js/Pai/internal/auth"
)

// AccountLinker stores an exchanged workspace token for a chat.
type AccountLinker interface {
	LinkNotion(ctx context.Context, chatID int64, accessToken, workspace string) error
}

// Handler implements the OAuth account-link endpoints. Login links sent to
// users carry a signed state token binding the flow to their chat id; the
// same token rides through Notion's authorize redirect back to the callback.
type Handler struct {
	oauth       *OAuth
	states      *auth.StateTokens
	linker      AccountLinker
	baseURL     string
	botUsername string
}

func NewHandler(oauth *OAuth, states *auth.StateTokens, linker AccountLinker, serverBaseURL, botUsername string) *Handler {
	return &Handler{
		oauth:       oauth,
		states:      states,
		linker:      linker,
		baseURL:     serverBaseURL,
		botUsername: botUsername,
	}
}

func (h *Handler) redirectURI() string {
	return h.baseURL + "/api/auth/notion/callback"
}

// Login validates the state token from the chat login link and forwards the
// user to Notion's consent screen.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		api.HandleError(w, api.NewBadRequestError("missing state parameter"))
		return
	}
	if _, err := h.states.Validate(state); err != nil {
		api.HandleError(w, api.ErrInvalidState)
		return
	}

	http.Redirect(w, r, h.oauth.AuthorizeURL(h.redirectURI(), state), http.StatusFound)
}

// Callback exchanges Notion's authorization code, stores the workspace token
// for the chat named in the state, and bounces the user back into Telegram.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	code := q.Get("code")
	if code == "" {
		if msg := q.Get("error"); msg != "" {
			api.HandleError(w, api.NewBadRequestError("authorization declined: "+msg))
			return
		}
		api.HandleError(w, api.NewBadRequestError("missing code parameter"))
		return
	}

	chatID, err := h.states.Validate(q.Get("state"))
	if err != nil {
		api.HandleError(w, api.ErrInvalidState)
		return
	}

	token, err := h.oauth.ExchangeCode(r.Context(), code, h.redirectURI())
	if err != nil {
		slog.Error("notion oauth: exchanging code", "error", err, "chat_id", chatID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	if err := h.linker.LinkNotion(r.Context(), chatID, token.AccessToken, token.WorkspaceName); err != nil {
		slog.Error("notion oauth: storing token", "error", err, "chat_id", chatID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	slog.Info("notion workspace linked", "chat_id", chatID, "workspace", token.WorkspaceName)

	if h.botUsername != "" {
		http.Redirect(w, r, fmt.Sprintf("https://t.me/%s?start=notion_linked", h.botUsername), http.StatusFound)
		return
	}
	api.JSONMessage(w, http.StatusOK, "Notion account linked. You can return to your chat.")
}
