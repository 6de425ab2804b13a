package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	calls     int
	chatID    int64
	firstName string
	username  string
	text      string
	reply     string
}

func (p *fakeProcessor) ProcessTurn(_ context.Context, chatID int64, firstName, username, text string) string {
	p.calls++
	p.chatID = chatID
	p.firstName = firstName
	p.username = username
	p.text = text
	return p.reply
}

type fakeSender struct {
	sent    []string
	chatIDs []int64
	err     error
}

func (s *fakeSender) SendMessage(_ context.Context, chatID int64, text string) error {
	s.sent = append(s.sent, text)
	s.chatIDs = append(s.chatIDs, chatID)
	return s.err
}

func postWebhook(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)
	return rec
}

const updateJSON = `{
	"update_id": 42,
	"message": {
		"message_id": 7,
		"from": {"id": 99, "first_name": "Ana", "username": "ana_b"},
		"chat": {"id": 99},
		"text": "remind me to stretch tomorrow at 9am"
	}
}`

func TestWebhook_ProcessesTurnAndReplies(t *testing.T) {
	proc := &fakeProcessor{reply: "Reminder set for Fri, Mar 28 at 09:00: stretch"}
	sender := &fakeSender{}
	h := NewHandler(proc, sender)

	rec := postWebhook(t, h, updateJSON)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, proc.calls)
	assert.Equal(t, int64(99), proc.chatID)
	assert.Equal(t, "Ana", proc.firstName)
	assert.Equal(t, "ana_b", proc.username)
	assert.Equal(t, "remind me to stretch tomorrow at 9am", proc.text)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, proc.reply, sender.sent[0])
	assert.Equal(t, int64(99), sender.chatIDs[0])
}

func TestWebhook_MalformedPayloadIsIgnored(t *testing.T) {
	proc := &fakeProcessor{}
	sender := &fakeSender{}
	h := NewHandler(proc, sender)

	rec := postWebhook(t, h, `{not json`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, proc.calls)
	assert.Empty(t, sender.sent)
}

func TestWebhook_UpdateWithoutMessageIsIgnored(t *testing.T) {
	proc := &fakeProcessor{}
	h := NewHandler(proc, &fakeSender{})

	rec := postWebhook(t, h, `{"update_id": 43}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, proc.calls)
}

func TestWebhook_NonTextMessageIsIgnored(t *testing.T) {
	proc := &fakeProcessor{}
	h := NewHandler(proc, &fakeSender{})

	rec := postWebhook(t, h, `{
		"update_id": 44,
		"message": {"message_id": 8, "from": {"id": 99}, "chat": {"id": 99}, "text": ""}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, proc.calls)
}

func TestWebhook_StartDeepLinkConfirmsWithoutModel(t *testing.T) {
	proc := &fakeProcessor{}
	sender := &fakeSender{}
	h := NewHandler(proc, sender)

	rec := postWebhook(t, h, `{
		"update_id": 45,
		"message": {"message_id": 9, "from": {"id": 99, "first_name": "Ana"}, "chat": {"id": 99}, "text": "/start notion_linked"}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, proc.calls)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, linkedConfirmation, sender.sent[0])
}

func TestWebhook_PlainStartGoesToModel(t *testing.T) {
	proc := &fakeProcessor{reply: "Hi! I can set reminders, schedule events and save notes."}
	sender := &fakeSender{}
	h := NewHandler(proc, sender)

	rec := postWebhook(t, h, `{
		"update_id": 46,
		"message": {"message_id": 10, "from": {"id": 99}, "chat": {"id": 99}, "text": "/start"}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, proc.calls)
	assert.Equal(t, "/start", proc.text)
}

func TestWebhook_SendFailureStillReturns200(t *testing.T) {
	proc := &fakeProcessor{reply: "All set!"}
	sender := &fakeSender{err: errors.New("telegram down")}
	h := NewHandler(proc, sender)

	rec := postWebhook(t, h, updateJSON)

	require.Equal(t, http.StatusOK, rec.Code)
}
