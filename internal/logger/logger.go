// Package logger builds the process slog logger and the update logging
// middleware.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const textPreviewLen = 50

// NewLogger creates the process logger writing to stdout and installs it as
// the slog default. Unknown levels fall back to info.
func NewLogger(levelStr string, jsonOutput bool) *slog.Logger {
	logger := newLogger(os.Stdout, levelStr, jsonOutput)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, levelStr string, jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(levelStr)}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Middleware logs every update before and after it is handled. Message text
// is truncated to a short preview.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			startTime := time.Now()

			logEntry := log.With(append([]any{"update_id", update.ID}, describeUpdate(update)...)...)
			logEntry.DebugContext(ctx, "Processing update")

			next(ctx, b, update)

			logEntry.DebugContext(ctx, "Finished processing update", "duration", time.Since(startTime))
		}
	}
}

// describeUpdate returns slog attributes identifying the update.
func describeUpdate(update *models.Update) []any {
	switch {
	case update.Message != nil:
		m := update.Message
		var userID int64
		if m.From != nil {
			userID = m.From.ID
		}
		return []any{
			"update_type", "message",
			"message_id", m.ID,
			"chat_id", m.Chat.ID,
			"chat_type", string(m.Chat.Type),
			"user_id", userID,
			"text_preview", truncateString(m.Text, textPreviewLen),
		}
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		attrs := []any{
			"update_type", "callback_query",
			"callback_query_id", q.ID,
			"user_id", q.From.ID,
			"data", q.Data,
		}
		switch {
		case q.Message.Message != nil:
			attrs = append(attrs, "chat_id", q.Message.Message.Chat.ID, "message_accessible", true)
		case q.Message.InaccessibleMessage != nil:
			attrs = append(attrs, "chat_id", q.Message.InaccessibleMessage.Chat.ID, "message_accessible", false)
		}
		return attrs
	default:
		return []any{"update_type", "other"}
	}
}

// truncateString shortens s to at most maxLen runes including the ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}
