package handlers

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/guardbot/internal/platform"
)

// NewIDHandler returns a handler for the /id command. It describes the
// sender, or the author of the replied-to message.
func NewIDHandler(deps HandlerDeps) bot.HandlerFunc {
	return idHandler{deps}.Handle
}

type idHandler struct {
	deps HandlerDeps
}

func (h idHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "id")

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.WarnContext(ctx, "ID handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /id command", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          msg.Chat.ID,
		Text:            describeIdentity(msg),
		ParseMode:       models.ParseModeHTML,
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send id info", "error", err, "chat_id", msg.Chat.ID)
	}
}

// describeIdentity renders the /id reply for msg.
func describeIdentity(msg *models.Message) string {
	if r := msg.ReplyToMessage; r != nil && r.From != nil {
		return formatUser("User info", r.From) +
			"\n💬 <b>In the group:</b>\n" +
			fmt.Sprintf("📛 <b>Group name:</b> %s\n", html.EscapeString(r.Chat.Title)) +
			fmt.Sprintf("🆔 <b>Group ID:</b> <code>%d</code>", r.Chat.ID)
	}

	return formatUser("Your info", msg.From) +
		"\n💬 <b>Current chat:</b>\n" +
		fmt.Sprintf("📛 <b>Type:</b> %s\n", html.EscapeString(string(msg.Chat.Type))) +
		fmt.Sprintf("🆔 <b>ID:</b> <code>%d</code>", msg.Chat.ID)
}

func formatUser(heading string, u *models.User) string {
	username := "none"
	if u.Username != "" {
		username = "@" + html.EscapeString(u.Username)
	}
	isBot := "no"
	if u.IsBot {
		isBot = "yes"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🆔 <b>%s:</b>\n\n", heading)
	fmt.Fprintf(&sb, "👤 <b>Name:</b> <code>%s</code>\n", html.EscapeString(platform.DisplayName(u)))
	fmt.Fprintf(&sb, "📝 <b>Username:</b> %s\n", username)
	fmt.Fprintf(&sb, "🆔 <b>ID:</b> <code>%d</code>\n", u.ID)
	fmt.Fprintf(&sb, "🤖 <b>Bot?</b> %s\n", isBot)
	return sb.String()
}
