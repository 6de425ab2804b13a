package memory

import "time"

// Entry is a single message in a chat's conversation history.
type Entry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
