// Package main contains the entrypoint for the DiarioBot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/diariobot/internal/auth"
	"github.com/edgard/diariobot/internal/bot"
	"github.com/edgard/diariobot/internal/bot/handlers"
	"github.com/edgard/diariobot/internal/bot/tasks"
	"github.com/edgard/diariobot/internal/config"
	"github.com/edgard/diariobot/internal/diary"
	"github.com/edgard/diariobot/internal/gemini"
	"github.com/edgard/diariobot/internal/logger"
	"github.com/edgard/diariobot/internal/session"
	"github.com/edgard/diariobot/internal/store"
	"github.com/edgard/diariobot/internal/telegram"
	"github.com/edgard/diariobot/internal/tts"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components, handles
// graceful shutdown, and returns an exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	st, err := store.New(cfg.Storage.DataDir, log)
	if err != nil {
		log.Error("Failed to initialize entry store", "data_dir", cfg.Storage.DataDir, "error", err)
		return 1
	}

	gate := auth.NewGate(cfg.Telegram.AllowedUserIDs)
	sessions := session.NewManager(log)

	gemClient, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return 1
	}
	ttsClient := tts.NewClient(cfg.TTS, log)

	svc, err := diary.New(log, st, sessions, gemClient, ttsClient, gate, cfg)
	if err != nil {
		log.Error("Failed to initialize diary service", "error", err)
		return 1
	}

	hDeps := handlers.HandlerDeps{
		Logger:  log,
		Config:  cfg,
		Gate:    gate,
		Service: svc,
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Config: cfg,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewTextHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, cfg, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
