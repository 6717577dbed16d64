package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewMyDiaryHandler returns a handler for the /mydiary command, which
// lists the user's most recent analyzed entries.
func NewMyDiaryHandler(deps HandlerDeps) bot.HandlerFunc {
	return myDiaryHandler{deps}.Handle
}

type myDiaryHandler struct {
	deps HandlerDeps
}

func (h myDiaryHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "mydiary")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "MyDiary handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /mydiary command", "user_id", update.Message.From.ID)
	h.deps.Service.Recent(ctx, NewSink(b), update.Message.From.ID)
}
