package handlers

import (
	"context"
	"fmt"
	"html"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/guardbot/internal/platform"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler greets the user and offers to add the bot to a group.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /start command", "chat_id", update.Message.Chat.ID, "user_id", update.Message.From.ID)

	welcome := fmt.Sprintf(h.deps.Config.Messages.Welcome, html.EscapeString(platform.DisplayName(update.Message.From)))
	params := &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      welcome,
		ParseMode: models.ParseModeHTML,
	}
	if kb := startKeyboard(h.deps); kb != nil {
		params.ReplyMarkup = kb
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		log.ErrorContext(ctx, "Failed to send welcome message", "error", err, "chat_id", update.Message.Chat.ID)
	} else {
		log.DebugContext(ctx, "Successfully sent welcome message", "chat_id", update.Message.Chat.ID)
	}
}

// addToGroupURL opens the group picker for the bot, empty when the bot
// username is unknown.
func addToGroupURL(deps HandlerDeps) string {
	info := deps.Config.Telegram.BotInfo
	if info == nil || info.Username == "" {
		return ""
	}
	return "https://t.me/" + info.Username + "?startgroup=true"
}

func startKeyboard(deps HandlerDeps) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	if u := addToGroupURL(deps); u != "" {
		rows = append(rows, []models.InlineKeyboardButton{{Text: deps.Config.Messages.AddToGroupLabel, URL: u}})
	}
	if u := deps.Config.Telegram.ChannelURL; u != "" {
		rows = append(rows, []models.InlineKeyboardButton{{Text: deps.Config.Messages.ChannelLabel, URL: u}})
	}
	if len(rows) == 0 {
		return nil
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
