package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/Pbash-js/Pai/internal/api"
	"github.com/Pbash-js/Pai/internal/auth"
	"github.com/Pbash-js/Pai/internal/calendar"
	"github.com/Pbash-js/Pai/internal/config"
	"github.com/Pbash-js/Pai/internal/conversation"
	"github.com/Pbash-js/Pai/internal/database"
	"github.com/Pbash-js/Pai/internal/dispatch"
	"github.com/Pbash-js/Pai/internal/llm"
	"github.com/Pbash-js/Pai/internal/memory"
	"github.com/Pbash-js/Pai/internal/middleware"
	"github.com/Pbash-js/Pai/internal/notion"
	iredis "github.com/Pbash-js/Pai/internal/redis"
	"github.com/Pbash-js/Pai/internal/reminders"
	"github.com/Pbash-js/Pai/internal/scheduler"
	"github.com/Pbash-js/Pai/internal/schema"
	"github.com/Pbash-js/Pai/internal/server"
	"github.com/Pbash-js/Pai/internal/telegram"
	"github.com/Pbash-js/Pai/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
		slog.Error("migrating database", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Secrets
	encryptor, err := auth.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		slog.Error("initializing encryptor", "error", err)
		os.Exit(1)
	}
	states := auth.NewStateTokens(cfg.Auth.StateSecret, cfg.Auth.StateExpiry)

	// Users
	userRepo := users.NewRepository(pool)
	userSvc := users.NewService(userRepo, encryptor)

	// Domain services
	reminderSvc := reminders.NewService(reminders.NewRepository(pool))
	calendarSvc := calendar.NewService(calendar.NewRepository(pool))
	notionSvc := notion.NewService(notion.NewClient(cfg.Notion))

	// Telegram
	tgClient := telegram.NewClient(cfg.Telegram)
	loginNotifier := telegram.NewLoginNotifier(tgClient, cfg.Server.BaseURL, states)

	// Model and dispatch
	registry := schema.NewRegistry()
	assistant := llm.NewClient(cfg.LLM, registry)
	orchestrator := dispatch.NewOrchestrator(registry, reminderSvc, calendarSvc, notionSvc, userSvc, loginNotifier, slog.Default())

	// Conversation turn controller
	history := memory.NewHistory(redisClient, cfg.History)
	controller := conversation.NewController(assistant, orchestrator, history, userSvc, slog.Default())

	// Reminder delivery loop
	sched := scheduler.New(reminderSvc, tgClient, slog.Default())
	go sched.Run(ctx)

	// HTTP handlers
	webhookHandler := telegram.NewHandler(controller, tgClient)
	oauthHandler := notion.NewHandler(notion.NewOAuth(cfg.Notion), states, userSvc, cfg.Server.BaseURL, cfg.Telegram.BotUsername)

	oauthLimiter := middleware.NewRateLimiter(redisClient, 10, 60)

	router := api.NewRouter(pool, redisClient, api.RouterConfig{
		OAuthRateLimiter: oauthLimiter.Middleware,
	}, api.HandlerSet{
		Webhook:        webhookHandler.Webhook,
		NotionLogin:    oauthHandler.Login,
		NotionCallback: oauthHandler.Callback,
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
