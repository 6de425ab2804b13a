package telegram

// Update is the Bot API webhook payload, trimmed to the fields we use.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message" validate:"required"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	From      *From  `json:"from" validate:"required"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type From struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

type Chat struct {
	ID int64 `json:"id" validate:"required"`
}
