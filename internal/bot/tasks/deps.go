// Package tasks implements the recurring maintenance jobs of the bot.
package tasks

import (
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/edgard/guardbot/internal/config"
	"github.com/edgard/guardbot/internal/database"
)

// TaskDeps contains the dependencies shared by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
	Clock  clockwork.Clock
}
