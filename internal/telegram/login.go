package telegram

import (
	"context"
	"fmt"

	"github.com/Pbash-js/Pai/internal/auth"
)

// LoginNotifier sends a chat the link that starts the Notion OAuth flow.
type LoginNotifier struct {
	client  *Client
	baseURL string
	states  *auth.StateTokens
}

func NewLoginNotifier(client *Client, serverBaseURL string, states *auth.StateTokens) *LoginNotifier {
	return &LoginNotifier{client: client, baseURL: serverBaseURL, states: states}
}

// SendNotionLoginLink messages the chat with a signed, short-lived login URL.
func (n *LoginNotifier) SendNotionLoginLink(ctx context.Context, chatID int64) error {
	state, err := n.states.Generate(chatID)
	if err != nil {
		return fmt.Errorf("generating login state: %w", err)
	}

	url := fmt.Sprintf("%s/api/auth/notion/login?state=%s", n.baseURL, state)
	text := "To save notes and tables I need access to your Notion workspace.\n\n" +
		"Connect it here: " + url
	return n.client.SendMessage(ctx, chatID, text)
}
