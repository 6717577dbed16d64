package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewDiaryHandler returns a handler for the /diary command, which starts
// a new diary entry regardless of the current conversation state.
func NewDiaryHandler(deps HandlerDeps) bot.HandlerFunc {
	return diaryHandler{deps}.Handle
}

type diaryHandler struct {
	deps HandlerDeps
}

func (h diaryHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "diary")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Diary handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /diary command", "user_id", update.Message.From.ID)
	h.deps.Service.BeginEntry(ctx, NewSink(b), update.Message.From.ID)
}
