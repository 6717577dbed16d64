package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSetBioHandler returns a handler for the /setbio command. An inline
// argument saves the bio directly; without one the bot prompts for it.
func NewSetBioHandler(deps HandlerDeps) bot.HandlerFunc {
	return setBioHandler{deps}.Handle
}

type setBioHandler struct {
	deps HandlerDeps
}

func (h setBioHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "setbio")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "SetBio handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	arg := commandArgument(update.Message.Text)
	log.InfoContext(ctx, "Handling /setbio command", "user_id", update.Message.From.ID, "inline_arg", arg != "")
	h.deps.Service.BeginBio(ctx, NewSink(b), update.Message.From.ID, arg)
}

// commandArgument strips the leading "/command" (including a possible
// @botname suffix) and returns the rest of the message.
func commandArgument(text string) string {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
