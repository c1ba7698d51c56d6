package handlers

import (
	"context"
	"iter"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/edgard/guardbot/internal/config"
	"github.com/edgard/guardbot/internal/database"
	"github.com/edgard/guardbot/internal/moderation"
	"github.com/edgard/guardbot/internal/youtube"
)

// Searcher finds videos. The returned sequence is lazy and may be ranged
// over once.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) iter.Seq2[youtube.Video, error]
}

// HandlerDeps provides dependencies for Telegram update handlers.
type HandlerDeps struct {
	Logger     *slog.Logger
	Config     *config.Config
	Store      database.Store
	Search     Searcher
	Filter     *moderation.Filter
	Remediator *moderation.Remediator
	Clock      clockwork.Clock
}
