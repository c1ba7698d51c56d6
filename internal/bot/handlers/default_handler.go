package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewDefaultHandler returns the handler for updates no other handler
// matched. Stray callback queries are answered so the client stops waiting.
func NewDefaultHandler(deps HandlerDeps) bot.HandlerFunc {
	log := deps.Logger.With("handler", "default")

	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		route := Classify(update)
		log.DebugContext(ctx, "Ignoring update", "update_id", update.ID, "route", route.String())

		if update.CallbackQuery != nil {
			if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID}); err != nil {
				log.WarnContext(ctx, "Failed to answer unknown callback query", "error", err)
			}
		}
	}
}
