package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pbash-js/Pai/internal/auth"
	"github.com/Pbash-js/Pai/internal/config"
)

func TestSendNotionLoginLink(t *testing.T) {
	var sent sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(config.TelegramConfig{BotToken: "t", BaseURL: srv.URL, Timeout: 5 * time.Second})
	states := auth.NewStateTokens("login-test-signing-secret", 10*time.Minute)
	notifier := NewLoginNotifier(client, "https://pai.example.com", states)

	require.NoError(t, notifier.SendNotionLoginLink(context.Background(), 42))

	assert.Equal(t, int64(42), sent.ChatID)
	require.Contains(t, sent.Text, "https://pai.example.com/api/auth/notion/login?state=")

	// The embedded state must round-trip back to the same chat.
	idx := strings.Index(sent.Text, "state=")
	state := sent.Text[idx+len("state="):]
	state, err := url.QueryUnescape(strings.TrimSpace(state))
	require.NoError(t, err)
	chatID, err := states.Validate(state)
	require.NoError(t, err)
	assert.Equal(t, int64(42), chatID)
}
