package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/diariobot/internal/diary"
)

// telegramSink adapts the go-telegram bot instance to the reply sink the
// diary service expects. Private chats are assumed, so the chat ID is
// the user ID.
type telegramSink struct {
	bot *tgbot.Bot
}

// NewSink wraps a bot instance as a reply sink.
func NewSink(b *tgbot.Bot) diary.Sink {
	return telegramSink{bot: b}
}

func (s telegramSink) Reply(ctx context.Context, userID int64, text string) error {
	_, err := s.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: userID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

func (s telegramSink) ReplyChoices(ctx context.Context, userID int64, text string, choices []string) error {
	row := make([]models.KeyboardButton, 0, len(choices))
	for _, choice := range choices {
		row = append(row, models.KeyboardButton{Text: choice})
	}

	_, err := s.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: userID,
		Text:   text,
		ReplyMarkup: &models.ReplyKeyboardMarkup{
			Keyboard:        [][]models.KeyboardButton{row},
			ResizeKeyboard:  true,
			OneTimeKeyboard: true,
		},
	})
	if err != nil {
		return fmt.Errorf("sending message with choices: %w", err)
	}
	return nil
}

func (s telegramSink) ReplyVoice(ctx context.Context, userID int64, voicePath, caption string) error {
	f, err := os.Open(voicePath)
	if err != nil {
		return fmt.Errorf("opening voice file: %w", err)
	}
	defer f.Close()

	_, err = s.bot.SendVoice(ctx, &tgbot.SendVoiceParams{
		ChatID:  userID,
		Voice:   &models.InputFileUpload{Filename: filepath.Base(voicePath), Data: f},
		Caption: caption,
	})
	if err != nil {
		return fmt.Errorf("sending voice message: %w", err)
	}
	return nil
}
