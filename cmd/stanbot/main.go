package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	stanbot "github.com/set-night/stanbot"
	"github.com/set-night/stanbot/internal/config"
	"github.com/set-night/stanbot/internal/handler"
	"github.com/set-night/stanbot/internal/middleware"
	"github.com/set-night/stanbot/internal/repository"
	"github.com/set-night/stanbot/internal/repository/sqlc"
	"github.com/set-night/stanbot/internal/service"
	"github.com/set-night/stanbot/internal/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open transcript store", "error", err, "driver", cfg.StoreDriver)
		os.Exit(1)
	}
	defer closeStore()

	chat := service.NewChatService(store, newGateway(cfg), service.ChatOptions{
		Instructions: config.SystemPrompt,
		Window:       service.NewWindowPolicy(cfg.HistoryWindow),
	})

	// Telegram is optional
	if cfg.BotToken != "" {
		if err := startBot(ctx, cfg, chat); err != nil {
			slog.Error("failed to start bot", "error", err)
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           web.NewServer(chat).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown", "error", err)
		}
	}()

	slog.Info("starting http server",
		"addr", srv.Addr,
		"store", cfg.StoreDriver,
		"provider", cfg.Provider,
		"model", cfg.ModelName(),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown
	slog.Info("stopped gracefully")
}

func openStore(ctx context.Context, cfg *config.Config) (service.TranscriptStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := migrateFS(cfg.DatabaseURL, "migrations/postgres"); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return service.NewPostgresTranscriptStore(sqlc.New(pool)), pool.Close, nil

	default:
		db, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := migrateFS(repository.SQLiteMigrationURL(cfg.SQLitePath), "migrations/sqlite"); err != nil {
			db.Close()
			return nil, nil, err
		}
		return service.NewSQLiteTranscriptStore(db), func() { db.Close() }, nil
	}
}

func migrateFS(databaseURL, dir string) error {
	migrationsFS, err := fs.Sub(stanbot.MigrationsFS, dir)
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	return repository.RunMigrations(databaseURL, migrationsFS)
}

func newGateway(cfg *config.Config) service.Gateway {
	if cfg.Provider == config.ProviderAnthropic {
		return service.NewAnthropicService(cfg.AnthropicKey, cfg.AnthropicURL, cfg.ModelName(), cfg.Temperature)
	}
	return service.NewOpenRouterService(cfg.OpenRouterKey, cfg.OpenRouterURL, cfg.ModelName(), cfg.Temperature)
}

func startBot(ctx context.Context, cfg *config.Config, chat *service.ChatService) error {
	// Handler pointer for use in default handler closure
	var h *handler.Handler

	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.IdentityLoader(),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil {
				return
			}
			h.DefaultHandler(ctx, b, update)
		}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("get bot info: %w", err)
	}
	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			return fmt.Errorf("drop pending updates: %w", err)
		}
	}

	h = handler.New(handler.Deps{Bot: b, Chat: chat})
	h.Register()

	go func() {
		slog.Info("starting bot")
		b.Start(ctx)
		slog.Info("bot stopped")
	}()
	return nil
}
