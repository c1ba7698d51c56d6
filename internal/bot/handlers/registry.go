package handlers

import (
	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// RegisteredHandler describes one handler and how it is matched. When
// MatchFunc is set it is used instead of HandlerType, Pattern and MatchType;
// command entries keep those fields to name their menu entry.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
	MatchFunc   tgbot.MatchFunc

	// Description is shown in the command menu; empty hides the entry.
	Description string
}

// Command name of the handler for the command menu, empty for non-commands.
func (h RegisteredHandler) Command() string {
	if h.HandlerType != tgbot.HandlerTypeMessageText || h.MatchType != tgbot.MatchTypeCommandStartOnly {
		return ""
	}
	return h.Pattern
}

// RegisterAllCommands returns every update handler keyed by a unique name.
// Match predicates are disjoint because go-telegram/bot tries handlers in
// no particular order.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		MatchFunc:   MatchCommand(deps.Config, "start"),
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Description: "Welcome message",
	}
	handlers["/help"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "help",
		MatchFunc:   MatchCommand(deps.Config, "help"),
		Handler:     NewHelpHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Description: "List commands",
	}
	handlers["/search"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "search",
		MatchFunc:   MatchCommand(deps.Config, "search"),
		Handler:     NewSearchHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Description: "Search YouTube",
	}
	handlers["/id"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "id",
		MatchFunc:   MatchCommand(deps.Config, "id"),
		Handler:     NewIDHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Description: "Show user and chat info",
	}
	handlers["callback:"+CallbackAddToGroup] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     CallbackAddToGroup,
		Handler:     NewCallbackHandler(deps),
		MatchType:   tgbot.MatchTypeExact,
	}
	handlers["moderation"] = RegisteredHandler{
		Handler:   NewModerationHandler(deps),
		MatchFunc: IsModeration,
	}

	return handlers
}

// BotCommands lists the menu entries of the registered commands.
func BotCommands(registered map[string]RegisteredHandler) []models.BotCommand {
	var commands []models.BotCommand
	for _, name := range []string{"/start", "/search", "/id", "/help"} {
		h, ok := registered[name]
		if !ok || h.Command() == "" || h.Description == "" {
			continue
		}
		commands = append(commands, models.BotCommand{Command: h.Command(), Description: h.Description})
	}
	return commands
}
