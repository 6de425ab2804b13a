package users

import (
	"time"

	"github.com/google/uuid"
)

// User is a Telegram chat identity known to the assistant.
// NotionToken holds the encrypted OAuth access token; empty means unlinked.
type User struct {
	ID              uuid.UUID `json:"id"`
	ChatID          int64     `json:"chat_id"`
	FirstName       string    `json:"first_name"`
	Username        string    `json:"username"`
	NotionToken     string    `json:"-"`
	NotionWorkspace string    `json:"notion_workspace,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NotionLinked reports whether the user has completed the Notion OAuth flow.
func (u *User) NotionLinked() bool {
	return u != nil && u.NotionToken != ""
}
