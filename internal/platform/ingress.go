package platform

import (
	"errors"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/guardbot/internal/moderation"
)

// ErrMalformedMessage is returned for messages that cannot be moderated.
var ErrMalformedMessage = errors.New("malformed message")

// MessageFromTelegram converts a Telegram message into a moderation.Message.
// It rejects messages without a sender or with zero identifiers.
func MessageFromTelegram(m *models.Message) (moderation.Message, error) {
	switch {
	case m == nil:
		return moderation.Message{}, errors.Join(ErrMalformedMessage, errors.New("nil message"))
	case m.From == nil:
		return moderation.Message{}, errors.Join(ErrMalformedMessage, errors.New("no sender"))
	case m.ID == 0 || m.Chat.ID == 0 || m.From.ID == 0:
		return moderation.Message{}, errors.Join(ErrMalformedMessage, errors.New("zero identifier"))
	}

	entities := make([]moderation.Entity, 0, len(m.Entities))
	for _, e := range m.Entities {
		kind, ok := entityKind(e.Type)
		if !ok {
			continue
		}
		entities = append(entities, moderation.Entity{
			Kind:   kind,
			Offset: e.Offset,
			Length: e.Length,
			URL:    e.URL,
		})
	}

	return moderation.Message{
		ID:       m.ID,
		Text:     m.Text,
		Sender:   UserFromTelegram(m.From),
		Chat:     ChatFromTelegram(m.Chat),
		Entities: entities,
	}, nil
}

// UserFromTelegram maps a Telegram user.
func UserFromTelegram(u *models.User) moderation.UserRef {
	if u == nil {
		return moderation.UserRef{}
	}
	return moderation.UserRef{
		ID:          u.ID,
		DisplayName: DisplayName(u),
		Username:    u.Username,
		IsBot:       u.IsBot,
	}
}

// ChatFromTelegram maps a Telegram chat.
func ChatFromTelegram(c models.Chat) moderation.ChatRef {
	return moderation.ChatRef{
		ID:    c.ID,
		Title: c.Title,
		Kind:  moderation.ChatKind(c.Type),
	}
}

// DisplayName is the first name, or the username when the first name is
// blank.
func DisplayName(u *models.User) string {
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "user"
}

func entityKind(t models.MessageEntityType) (moderation.EntityKind, bool) {
	switch t {
	case models.MessageEntityTypeBotCommand:
		return moderation.EntityBotCommand, true
	case models.MessageEntityTypeURL:
		return moderation.EntityURL, true
	case models.MessageEntityTypeTextLink:
		return moderation.EntityTextLink, true
	default:
		return "", false
	}
}
