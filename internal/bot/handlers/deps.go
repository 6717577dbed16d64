package handlers

import (
	"log/slog"

	"github.com/edgard/diariobot/internal/auth"
	"github.com/edgard/diariobot/internal/config"
	"github.com/edgard/diariobot/internal/diary"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Gate    *auth.Gate
	Service *diary.Service
}
