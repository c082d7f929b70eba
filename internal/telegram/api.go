package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"interview-bot/internal/interview"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type botAPISender struct{ api *tgbotapi.BotAPI }

func (s botAPISender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return s.api.Send(c)
}

// Interviewer is the conversation backend the bot forwards to.
type Interviewer interface {
	Start(ctx context.Context, userID int64) []interview.Prompt
	Cancel(ctx context.Context, userID int64) []interview.Prompt
	Handle(ctx context.Context, userID int64, text string) ([]interview.Prompt, error)
	Export(ctx context.Context) (path string, total int, err error)
	Stats(ctx context.Context) string
}
