// Package handlers contains the Telegram update handlers, their registration
// metadata, and the update router.
package handlers

import (
	"context"
	"runtime/debug"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Recover keeps a panicking handler from taking the bot down. The panic is
// logged and, for commands, the generic error text is sent back.
func Recover(deps HandlerDeps) tgbot.Middleware {
	log := deps.Logger.With("middleware", "Recover")

	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				var chatID, userID int64
				if m := update.Message; m != nil {
					chatID = m.Chat.ID
					if m.From != nil {
						userID = m.From.ID
					}
				}
				log.ErrorContext(ctx, "Handler panicked", "panic", r, "update_id", update.ID,
					"chat_id", chatID, "user_id", userID, "stack", string(debug.Stack()))

				if chatID == 0 || b == nil || Classify(update) != RouteCommand {
					return
				}
				if _, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
					ChatID: chatID,
					Text:   deps.Config.Messages.GeneralError,
				}); err != nil {
					log.ErrorContext(ctx, "Failed to send error message", "error", err, "chat_id", chatID)
				}
			}()

			next(ctx, b, update)
		}
	}
}
