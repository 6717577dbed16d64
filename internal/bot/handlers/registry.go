package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its matching rules
// and middleware. It encapsulates all information needed to register a
// command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all available bot
// commands. Every command carries the allow-list middleware: this bot has
// no public surface.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	allowedMiddleware := []tgbot.Middleware{AllowedOnly(deps)}

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  allowedMiddleware,
	}
	handlers["/help"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "help",
		Handler:     NewHelpHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  allowedMiddleware,
	}
	handlers["/diary"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "diary",
		Handler:     NewDiaryHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  allowedMiddleware,
	}
	handlers["/setbio"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "setbio",
		Handler:     NewSetBioHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  allowedMiddleware,
	}
	handlers["/mydiary"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "mydiary",
		Handler:     NewMyDiaryHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  allowedMiddleware,
	}
	// Deep commands like /read_20250830 are matched by prefix; the date
	// token is extracted and validated downstream.
	handlers["/read_"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "/read_",
		Handler:     NewReadHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
		Middleware:  allowedMiddleware,
	}

	return handlers
}
