package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const readCommandPrefix = "/read_"

// NewReadHandler returns a handler for /read_YYYYMMDD deep commands. The
// raw suffix goes to the service untouched; validation happens there,
// before any path is built from it.
func NewReadHandler(deps HandlerDeps) bot.HandlerFunc {
	return readHandler{deps}.Handle
}

type readHandler struct {
	deps HandlerDeps
}

func (h readHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "read")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Read handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	text := strings.TrimSpace(update.Message.Text)
	token := strings.TrimPrefix(text, readCommandPrefix)
	// Strip a possible @botname suffix from the deep command.
	if idx := strings.IndexByte(token, '@'); idx >= 0 {
		token = token[:idx]
	}

	log.InfoContext(ctx, "Handling /read_ command", "user_id", update.Message.From.ID, "token", token)
	h.deps.Service.Read(ctx, NewSink(b), update.Message.From.ID, token)
}
