// Package platform binds the moderation core to the Telegram Bot API: it maps
// inbound Telegram messages to moderation values and performs the outbound
// delete and send calls.
package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ErrNotDeleted is returned when Telegram answers a delete with false.
var ErrNotDeleted = errors.New("telegram refused to delete the message")

// Telegram implements moderation.Platform on a go-telegram bot.
type Telegram struct {
	b *bot.Bot
}

// NewTelegram wraps b.
func NewTelegram(b *bot.Bot) *Telegram {
	return &Telegram{b: b}
}

// DeleteMessage deletes messageID from chatID.
func (t *Telegram) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	ok, err := t.b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: messageID})
	if err != nil {
		return fmt.Errorf("deleteMessage: %w", err)
	}
	if !ok {
		return ErrNotDeleted
	}
	return nil
}

// SendMessage posts HTML text to chatID and returns the new message id.
func (t *Telegram) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	m, err := t.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return 0, fmt.Errorf("sendMessage: %w", err)
	}
	return m.ID, nil
}
