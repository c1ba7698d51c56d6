package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "...", truncateString("abcdef", 2))
	assert.Equal(t, "مرحبا ب...", truncateString("مرحبا بالجميع", 10), "cuts on rune boundaries")
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := newLogger(&buf, "debug", true)

	called := false
	h := Middleware(log)(func(context.Context, *bot.Bot, *models.Update) { called = true })
	h(context.Background(), nil, &models.Update{
		ID: 9,
		Message: &models.Message{
			ID:   3,
			Text: strings.Repeat("x", 80),
			From: &models.User{ID: 42},
			Chat: models.Chat{ID: -100, Type: models.ChatTypeGroup},
		},
	})
	require.True(t, called)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "Processing update", entry["msg"])
	assert.Equal(t, "message", entry["update_type"])
	assert.EqualValues(t, -100, entry["chat_id"])
	assert.EqualValues(t, 42, entry["user_id"])
	assert.Len(t, entry["text_preview"], textPreviewLen)
}

func TestDescribeUpdate(t *testing.T) {
	t.Parallel()

	t.Run("inaccessible callback message", func(t *testing.T) {
		t.Parallel()
		attrs := describeUpdate(&models.Update{CallbackQuery: &models.CallbackQuery{
			ID:   "q",
			From: models.User{ID: 1},
			Data: "add_to_group",
			Message: models.MaybeInaccessibleMessage{
				InaccessibleMessage: &models.InaccessibleMessage{Chat: models.Chat{ID: 5}},
			},
		}})
		assert.Contains(t, attrs, "callback_query")
		assert.Contains(t, attrs, false)
	})

	t.Run("callback without message", func(t *testing.T) {
		t.Parallel()
		attrs := describeUpdate(&models.Update{CallbackQuery: &models.CallbackQuery{ID: "q"}})
		assert.NotContains(t, attrs, "chat_id")
	})

	t.Run("other", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []any{"update_type", "other"}, describeUpdate(&models.Update{}))
	})
}
