package platform

import (
	"context"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/guardbot/internal/moderation"
	"github.com/edgard/guardbot/internal/platform/platformtest"
)

func TestMessageFromTelegram(t *testing.T) {
	t.Parallel()

	t.Run("maps fields", func(t *testing.T) {
		t.Parallel()
		got, err := MessageFromTelegram(&models.Message{
			ID:   7,
			Text: "hello https://example.com",
			From: &models.User{ID: 42, FirstName: "Sara", Username: "sara"},
			Chat: models.Chat{ID: -1001, Type: models.ChatTypeSupergroup, Title: "Music"},
			Entities: []models.MessageEntity{
				{Type: models.MessageEntityTypeURL, Offset: 6, Length: 19},
				{Type: models.MessageEntityTypeBold, Offset: 0, Length: 5},
				{Type: models.MessageEntityTypeTextLink, Offset: 0, Length: 5, URL: "https://bit.ly/x"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, moderation.Message{
			ID:     7,
			Text:   "hello https://example.com",
			Sender: moderation.UserRef{ID: 42, DisplayName: "Sara", Username: "sara"},
			Chat:   moderation.ChatRef{ID: -1001, Title: "Music", Kind: moderation.ChatSupergroup},
			Entities: []moderation.Entity{
				{Kind: moderation.EntityURL, Offset: 6, Length: 19},
				{Kind: moderation.EntityTextLink, Offset: 0, Length: 5, URL: "https://bit.ly/x"},
			},
		}, got)
		assert.True(t, got.Chat.IsGroup())
	})

	errorCases := []struct {
		name string
		msg  *models.Message
	}{
		{name: "nil message", msg: nil},
		{name: "no sender", msg: &models.Message{ID: 1, Chat: models.Chat{ID: 1}}},
		{name: "zero message id", msg: &models.Message{From: &models.User{ID: 1}, Chat: models.Chat{ID: 1}}},
		{name: "zero chat id", msg: &models.Message{ID: 1, From: &models.User{ID: 1}}},
		{name: "zero user id", msg: &models.Message{ID: 1, From: &models.User{}, Chat: models.Chat{ID: 1}}},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := MessageFromTelegram(tc.msg)
			assert.ErrorIs(t, err, ErrMalformedMessage)
		})
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Sara", DisplayName(&models.User{FirstName: " Sara "}))
	assert.Equal(t, "@sara", DisplayName(&models.User{Username: "sara"}))
	assert.Equal(t, "user", DisplayName(&models.User{}))
}

func TestTelegram(t *testing.T) {
	t.Parallel()

	t.Run("send and delete", func(t *testing.T) {
		t.Parallel()
		srv := platformtest.New(t)
		tg := NewTelegram(srv.Bot(t))

		id, err := tg.SendMessage(context.Background(), -100, "<b>hi</b>")
		require.NoError(t, err)
		assert.NotZero(t, id)
		require.NoError(t, tg.DeleteMessage(context.Background(), -100, id))

		calls := srv.Calls()
		require.Len(t, calls, 2)
		assert.Equal(t, "sendMessage", calls[0].Method)
		assert.Equal(t, "-100", calls[0].Form.Get("chat_id"))
		assert.Equal(t, "HTML", calls[0].Form.Get("parse_mode"))
		assert.Equal(t, "deleteMessage", calls[1].Method)
	})

	t.Run("errors are returned", func(t *testing.T) {
		t.Parallel()
		srv := platformtest.New(t)
		srv.Fail("deleteMessage", "Bad Request: message to delete not found")
		srv.Fail("sendMessage", "Bad Request: not enough rights")
		tg := NewTelegram(srv.Bot(t))

		assert.Error(t, tg.DeleteMessage(context.Background(), -100, 1))
		_, err := tg.SendMessage(context.Background(), -100, "x")
		assert.Error(t, err)
	})
}

func TestTelegramImplementsPlatform(t *testing.T) {
	t.Parallel()

	var _ moderation.Platform = (*Telegram)(nil)
}
