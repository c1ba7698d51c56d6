package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/guardbot/internal/platform"
)

// NewModerationHandler returns the handler that checks group text messages
// and remediates violations.
func NewModerationHandler(deps HandlerDeps) bot.HandlerFunc {
	return moderationHandler{deps}.Handle
}

type moderationHandler struct {
	deps HandlerDeps
}

func (h moderationHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "moderation")

	msg, err := platform.MessageFromTelegram(update.Message)
	if err != nil {
		log.DebugContext(ctx, "Skipping message that cannot be moderated", "update_id", update.ID, "error", err)
		return
	}
	if !msg.Chat.IsGroup() {
		return
	}

	verdict := h.deps.Filter.Evaluate(msg)
	if !verdict.Violates() {
		if verdict.SuspiciousLink != "" {
			log.DebugContext(ctx, "Suspicious link noticed, no action taken",
				"chat_id", msg.Chat.ID, "user_id", msg.Sender.ID, "link", verdict.SuspiciousLink)
		}
		return
	}

	h.deps.Remediator.Remediate(ctx, platform.NewTelegram(b), msg, verdict)
}
