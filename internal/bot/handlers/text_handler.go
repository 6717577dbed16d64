package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewTextHandler returns the default handler for non-command messages.
// It drives the conversation state machine. Registered as the bot's
// default handler, it bypasses per-command middleware, so it wraps
// itself with the allow-list check.
func NewTextHandler(deps HandlerDeps) bot.HandlerFunc {
	h := textHandler{deps}
	return AllowedOnly(deps)(h.Handle)
}

type textHandler struct {
	deps HandlerDeps
}

func (h textHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "text")

	if update.Message == nil || update.Message.From == nil {
		return
	}

	text := update.Message.Text
	// Unknown commands fall through to the default handler; they are not
	// conversation input.
	if strings.HasPrefix(strings.TrimSpace(text), "/") {
		return
	}

	log.DebugContext(ctx, "Handling free-text message", "user_id", update.Message.From.ID, "text_len", len(text))
	h.deps.Service.HandleText(ctx, NewSink(b), update.Message.From.ID, text)
}
