package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// CallbackAddToGroup is the callback data of the add-to-group button.
const CallbackAddToGroup = "add_to_group"

// NewCallbackHandler returns the handler for the add-to-group button.
func NewCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return callbackHandler{deps}.Handle
}

type callbackHandler struct {
	deps HandlerDeps
}

func (h callbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "callback")

	q := update.CallbackQuery
	if q == nil {
		return
	}
	log = log.With("user_id", q.From.ID, "data", q.Data)

	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: q.ID}); err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", err)
	}

	m := q.Message.Message
	if m == nil {
		log.DebugContext(ctx, "Callback message is no longer accessible")
		return
	}

	params := &bot.EditMessageTextParams{
		ChatID:    m.Chat.ID,
		MessageID: m.ID,
		Text:      h.deps.Config.Messages.AddToGroupAck,
		ParseMode: models.ParseModeHTML,
	}
	if u := addToGroupURL(h.deps); u != "" {
		params.ReplyMarkup = &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: h.deps.Config.Messages.AddToGroupLabel, URL: u}},
		}}
	}

	if _, err := b.EditMessageText(ctx, params); err != nil {
		log.ErrorContext(ctx, "Failed to edit callback message", "error", err, "chat_id", m.Chat.ID)
	}
}
