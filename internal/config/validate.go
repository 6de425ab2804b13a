package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	if c.LLM.APIKey == "" {
		errs = append(errs, "GEMINI_API_KEY is required")
	}
	if c.Telegram.BotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}

	// Encryption key: must be exactly 64 hex chars (32 bytes)
	if c.Encryption.Key == "" {
		errs = append(errs, "ENCRYPTION_KEY is required")
	} else if len(c.Encryption.Key) != 64 {
		errs = append(errs, "ENCRYPTION_KEY must be exactly 64 hex characters (32 bytes)")
	} else if _, err := hex.DecodeString(c.Encryption.Key); err != nil {
		errs = append(errs, "ENCRYPTION_KEY must be valid hex")
	}

	if c.Auth.StateSecret == "" {
		errs = append(errs, "AUTH_STATE_SECRET is required")
	} else if len(c.Auth.StateSecret) < 32 {
		errs = append(errs, "AUTH_STATE_SECRET must be at least 32 characters")
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	if c.LLM.MaxConcurrent < 1 || c.LLM.MaxConcurrent > 9 {
		errs = append(errs, fmt.Sprintf("LLM_MAX_CONCURRENT must be 1-9, got %d", c.LLM.MaxConcurrent))
	}
	if c.History.MaxTurns < 1 {
		errs = append(errs, fmt.Sprintf("HISTORY_MAX_TURNS must be positive, got %d", c.History.MaxTurns))
	}

	// Notion credentials are a warning, not an error. The assistant works
	// without Notion, account linking just stays unavailable.
	if c.Notion.ClientID == "" || c.Notion.ClientSecret == "" {
		slog.Warn("Notion OAuth credentials not configured, note/table functions will prompt for linking that cannot complete")
	}
	if c.Server.BaseURL == "" {
		slog.Warn("SERVER_BASE_URL is empty, login links sent to users will be relative")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
