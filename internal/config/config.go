package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	LLM        LLMConfig
	Telegram   TelegramConfig
	Notion     NotionConfig
	History    HistoryConfig
	Encryption EncryptionConfig
	Auth       AuthConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string // public URL the Telegram webhook and OAuth callback resolve against
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32

	MigrationsPath string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LLMConfig struct {
	APIKey        string
	Model         string
	BaseURL       string
	Temperature   float64
	Timeout       time.Duration
	MaxConcurrent int
}

type TelegramConfig struct {
	BotToken    string
	BotUsername string
	BaseURL     string
	Timeout     time.Duration
}

type NotionConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration
}

// HistoryConfig bounds the per-chat conversation window kept in Redis.
type HistoryConfig struct {
	MaxTurns int
	TTL      time.Duration
}

type EncryptionConfig struct {
	Key string
}

// AuthConfig signs the short-lived OAuth state tokens embedded in login links.
type AuthConfig struct {
	StateSecret string
	StateExpiry time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:    k.String("server.host"),
			Port:    k.Int("server.port"),
			BaseURL: k.String("server.base.url"),
		},
		DB: DBConfig{
			Host:     k.String("db.host"),
			Port:     k.Int("db.port"),
			User:     k.String("db.user"),
			Password: k.String("db.password"),
			Name:     k.String("db.name"),
			SSLMode:  k.String("db.sslmode"),
			MaxConns: int32(k.Int("db.max.conns")),

			MigrationsPath: k.String("db.migrations.path"),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		LLM: LLMConfig{
			APIKey:        k.String("gemini.api.key"),
			Model:         k.String("llm.model"),
			BaseURL:       k.String("llm.base.url"),
			Temperature:   k.Float64("llm.temperature"),
			MaxConcurrent: k.Int("llm.max.concurrent"),
		},
		Telegram: TelegramConfig{
			BotToken:    k.String("telegram.bot.token"),
			BotUsername: k.String("telegram.bot.username"),
			BaseURL:     k.String("telegram.base.url"),
		},
		Notion: NotionConfig{
			ClientID:     k.String("notion.client.id"),
			ClientSecret: k.String("notion.client.secret"),
			BaseURL:      k.String("notion.base.url"),
		},
		History: HistoryConfig{
			MaxTurns: k.Int("history.max.turns"),
		},
		Encryption: EncryptionConfig{
			Key: k.String("encryption.key"),
		},
		Auth: AuthConfig{
			StateSecret: k.String("auth.state.secret"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "pai"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "pai"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 10
	}
	if cfg.DB.MigrationsPath == "" {
		cfg.DB.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gemini-2.0-flash"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	if cfg.LLM.MaxConcurrent == 0 {
		cfg.LLM.MaxConcurrent = 5
	}
	if cfg.Telegram.BaseURL == "" {
		cfg.Telegram.BaseURL = "https://api.telegram.org"
	}
	if cfg.Notion.BaseURL == "" {
		cfg.Notion.BaseURL = "https://api.notion.com"
	}
	if cfg.History.MaxTurns == 0 {
		cfg.History.MaxTurns = 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "debug"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	cfg.LLM.Timeout, err = parseDuration(k.String("llm.timeout"), "30s")
	if err != nil {
		return nil, fmt.Errorf("parsing llm timeout: %w", err)
	}
	cfg.Telegram.Timeout, err = parseDuration(k.String("telegram.timeout"), "10s")
	if err != nil {
		return nil, fmt.Errorf("parsing telegram timeout: %w", err)
	}
	cfg.Notion.Timeout, err = parseDuration(k.String("notion.timeout"), "15s")
	if err != nil {
		return nil, fmt.Errorf("parsing notion timeout: %w", err)
	}
	cfg.History.TTL, err = parseDuration(k.String("history.ttl"), "1h")
	if err != nil {
		return nil, fmt.Errorf("parsing history ttl: %w", err)
	}
	cfg.Auth.StateExpiry, err = parseDuration(k.String("auth.state.expiry"), "10m")
	if err != nil {
		return nil, fmt.Errorf("parsing auth state expiry: %w", err)
	}

	return cfg, nil
}

func parseDuration(s, fallback string) (time.Duration, error) {
	if s == "" {
		s = fallback
	}
	return time.ParseDuration(s)
}
