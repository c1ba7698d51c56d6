package handlers

import (
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/guardbot/internal/config"
)

// Route is the destination of an inbound update.
type Route int

const (
	RouteIgnore Route = iota
	RouteCommand
	RouteCallback
	RouteModeration
)

func (r Route) String() string {
	switch r {
	case RouteCommand:
		return "command"
	case RouteCallback:
		return "callback"
	case RouteModeration:
		return "moderation"
	default:
		return "ignore"
	}
}

// Classify decides where an update goes from its shape alone. Only plain
// text messages in groups and supergroups are moderated. A message is a
// command when it opens with a bot_command entity, even when no handler
// knows it; a bare leading slash is plain text.
func Classify(update *models.Update) Route {
	switch {
	case update == nil:
		return RouteIgnore
	case update.CallbackQuery != nil:
		return RouteCallback
	case update.Message == nil:
		return RouteIgnore
	}

	m := update.Message
	if isCommand(m) {
		return RouteCommand
	}
	if m.Text == "" || m.From == nil {
		return RouteIgnore
	}
	if m.Chat.Type != models.ChatTypeGroup && m.Chat.Type != models.ChatTypeSupergroup {
		return RouteIgnore
	}
	return RouteModeration
}

// IsModeration is the match predicate of the moderation handler.
func IsModeration(update *models.Update) bool {
	return Classify(update) == RouteModeration
}

func isCommand(m *models.Message) bool {
	for _, e := range m.Entities {
		if e.Type == models.MessageEntityTypeBotCommand && e.Offset == 0 {
			return true
		}
	}
	return false
}

// leadingCommand splits the opening bot_command entity of m into the command
// name and the optional @bot suffix.
func leadingCommand(m *models.Message) (name, target string, ok bool) {
	for _, e := range m.Entities {
		if e.Type != models.MessageEntityTypeBotCommand || e.Offset != 0 {
			continue
		}
		if e.Length < 2 || e.Length > len(m.Text) || m.Text[0] != '/' {
			return "", "", false
		}
		name, target, _ = strings.Cut(m.Text[1:e.Length], "@")
		return name, target, true
	}
	return "", "", false
}

// MatchCommand matches messages opening with /name or /name@bot where bot is
// this bot's username. Commands addressed to other bots do not match.
func MatchCommand(cfg *config.Config, name string) tgbot.MatchFunc {
	return func(update *models.Update) bool {
		if update == nil || update.Message == nil {
			return false
		}
		cmd, target, ok := leadingCommand(update.Message)
		if !ok || !strings.EqualFold(cmd, name) {
			return false
		}
		return target == "" || strings.EqualFold(target, botUsername(cfg))
	}
}

func botUsername(cfg *config.Config) string {
	if cfg == nil || cfg.Telegram.BotInfo == nil {
		return ""
	}
	return cfg.Telegram.BotInfo.Username
}

// commandArgs returns the text after the leading command token.
func commandArgs(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return ""
	}
	return strings.Join(fields[1:], " ")
}
