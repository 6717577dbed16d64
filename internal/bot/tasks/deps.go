// Package tasks implements scheduled tasks for the DiarioBot Telegram
// bot. It includes task definitions, dependencies, and registration.
package tasks

import (
	"log/slog"

	"github.com/edgard/diariobot/internal/config"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Config *config.Config
}
