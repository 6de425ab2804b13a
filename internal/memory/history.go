package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Pbash-js/Pai/internal/config"
)

// History keeps a bounded per-chat conversation window in Redis lists.
type History struct {
	client   *redis.Client
	maxTurns int
	ttl      time.Duration
}

// NewHistory creates a conversation history store.
func NewHistory(client *redis.Client, cfg config.HistoryConfig) *History {
	return &History{client: client, maxTurns: cfg.MaxTurns, ttl: cfg.TTL}
}

func convKey(chatID int64) string {
	return fmt.Sprintf("conv:%d", chatID)
}

// Recent returns the conversation window for the given chat, oldest first.
func (h *History) Recent(ctx context.Context, chatID int64) ([]Entry, error) {
	key := convKey(chatID)

	vals, err := h.client.LRange(ctx, key, int64(-h.maxTurns), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	entries := make([]Entry, 0, len(vals))
	for _, v := range vals {
		var entry Entry
		if err := json.Unmarshal([]byte(v), &entry); err != nil {
			continue // skip malformed entries
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Append adds an entry to the chat's window, trims to maxTurns, and refreshes the TTL.
func (h *History) Append(ctx context.Context, chatID int64, entry Entry) error {
	key := convKey(chatID)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}

	pipe := h.client.Pipeline()
	pipe.RPush(ctx, key, string(data))
	pipe.LTrim(ctx, key, int64(-h.maxTurns), -1)
	pipe.Expire(ctx, key, h.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec for %s: %w", key, err)
	}
	return nil
}

// Clear deletes the conversation window for the given chat.
func (h *History) Clear(ctx context.Context, chatID int64) error {
	return h.client.Del(ctx, convKey(chatID)).Err()
}
