package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"interview-bot/internal/aggregate"
	"interview-bot/internal/interview"
	"interview-bot/internal/metrics"
)

// maxMessageRunes keeps outgoing texts under Telegram's 4096 limit.
const maxMessageRunes = 4000

const (
	textOnlyText   = "Пожалуйста, отправьте ответ текстом."
	sendFailedText = "⚠️ Не удалось отправить сообщение. Попробуйте еще раз."
)

const helpText = "🎓 Бот для интервью о студенческом дне\n\n" +
	"Команды:\n" +
	"/start - начать новое интервью\n" +
	"/cancel - отменить текущее интервью\n" +
	"/export_all - скачать таблицу Excel со всеми респондентами\n" +
	"/stats - посмотреть статистику\n" +
	"/help - показать эту подсказку"

type Bot struct {
	api         *tgbotapi.BotAPI
	s           sender
	svc         Interviewer
	metrics     *metrics.Metrics
	logger      *slog.Logger
	adminUserID int64
	pollTimeout int
	queue       *dispatcher
	now         func() time.Time
}

type Option func(*Bot)

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bot) { b.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) { b.logger = l }
}

// WithAdmin sets the user that receives scheduled stats reports.
func WithAdmin(userID int64) Option {
	return func(b *Bot) { b.adminUserID = userID }
}

func WithPollTimeout(seconds int) Option {
	return func(b *Bot) { b.pollTimeout = seconds }
}

func New(botToken string, svc Interviewer, debug bool, opts ...Option) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	api.Debug = debug

	b := newBot(botAPISender{api: api}, svc, opts...)
	b.api = api
	b.logger.Info("🤖 Authorized on account", "username", api.Self.UserName)
	return b, nil
}

func newBot(s sender, svc Interviewer, opts ...Option) *Bot {
	b := &Bot{
		s:           s,
		svc:         svc,
		logger:      slog.Default(),
		pollTimeout: 60,
		queue:       newDispatcher(),
		now:         time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Start polls for updates until ctx is cancelled, then waits for the
// in-flight messages to finish.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("🚀 Bot started", "commands", "/start, /export_all, /stats, /cancel, /help")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.queue.Wait()
			b.logger.Info("🛑 Bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				b.queue.Wait()
				return
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	b.queue.Submit(msg.From.ID, func() {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("panic while handling message", "user_id", msg.From.ID, "panic", r)
			}
		}()
		b.handleIncomingMessage(ctx, msg)
	})
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	if msg.IsCommand() {
		b.logger.Debug("command", "user_id", userID, "command", msg.Command())
		switch msg.Command() {
		case "start":
			b.sendPrompts(chatID, b.svc.Start(ctx, userID))
		case "cancel":
			b.sendPrompts(chatID, b.svc.Cancel(ctx, userID))
		case "export_all":
			b.sendExport(ctx, chatID)
		case "stats":
			b.sendText(chatID, b.svc.Stats(ctx), nil)
		default:
			b.sendText(chatID, helpText, nil)
		}
		return
	}

	if strings.TrimSpace(msg.Text) == "" {
		b.logger.Debug("ignoring non-text message", "user_id", userID)
		b.sendText(chatID, textOnlyText, nil)
		return
	}

	b.logger.Debug("incoming message", "user_id", userID, "username", msg.From.UserName, "text", msg.Text)
	prompts, err := b.svc.Handle(ctx, userID, msg.Text)
	if err != nil {
		b.logger.Error("failed to handle message", "user_id", userID, "error", err)
	}
	b.sendPrompts(chatID, prompts)
}

func (b *Bot) sendPrompts(chatID int64, prompts []interview.Prompt) {
	for _, p := range prompts {
		b.sendText(chatID, p.Text, markup(p))
	}
}

// sendText splits text into chunks and attaches the keyboard to the last one.
func (b *Bot) sendText(chatID int64, text string, kb any) {
	chunks := splitText(text, maxMessageRunes)
	for i, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if i == len(chunks)-1 && kb != nil {
			msg.ReplyMarkup = kb
		}
		if _, err := b.s.Send(msg); err != nil {
			b.logger.Error("failed to send message", "chat_id", chatID, "chunk", i, "error", err)
			b.metrics.SendFailed("text")
			if _, err := b.s.Send(tgbotapi.NewMessage(chatID, sendFailedText)); err != nil {
				b.logger.Error("failed to send failure notice", "chat_id", chatID, "error", err)
			}
			return
		}
	}
}

func (b *Bot) sendExport(ctx context.Context, chatID int64) {
	path, total, err := b.svc.Export(ctx)
	switch {
	case errors.Is(err, aggregate.ErrNoData):
		b.sendText(chatID, "❌ Нет данных для экспорта.\nСначала проведи несколько интервью через /start", nil)
		return
	case err != nil:
		b.sendText(chatID, "❌ Ошибка при создании файла Excel.\nПроверьте логи для подробностей.", nil)
		return
	}

	if err := b.sendFile(chatID, path, total); err != nil {
		b.logger.Error("failed to send export", "chat_id", chatID, "path", path, "error", err)
		b.metrics.SendFailed("file")
		b.sendText(chatID, fmt.Sprintf("❌ Ошибка при отправке файла.\n"+
			"Проверьте, что файл не слишком большой.\n"+
			"Всего записей: %d", total), nil)
	}
}

func (b *Bot) sendFile(chatID int64, path string, total int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{
		Name:   "все_интервью_" + b.now().Format("20060102_150405") + ".xlsx",
		Reader: f,
	})
	doc.Caption = fmt.Sprintf("📊 ОБЩАЯ ТАБЛИЦА\n\n"+
		"Всего респондентов: %d\n"+
		"Файл обновляется автоматически", total)
	_, err = b.s.Send(doc)
	return err
}

// SendStatsToAdmin delivers the stats summary to the configured admin.
func (b *Bot) SendStatsToAdmin(ctx context.Context) error {
	if b.adminUserID == 0 {
		return errors.New("admin user is not configured")
	}
	msg := tgbotapi.NewMessage(b.adminUserID, b.svc.Stats(ctx))
	if _, err := b.s.Send(msg); err != nil {
		b.metrics.SendFailed("text")
		return err
	}
	return nil
}

func markup(p interview.Prompt) any {
	if len(p.Menu) > 0 {
		rows := make([][]tgbotapi.KeyboardButton, 0, len(p.Menu))
		for _, r := range p.Menu {
			row := make([]tgbotapi.KeyboardButton, 0, len(r))
			for _, label := range r {
				row = append(row, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, row)
		}
		kb := tgbotapi.NewReplyKeyboard(rows...)
		kb.OneTimeKeyboard = true
		kb.ResizeKeyboard = true
		return kb
	}
	if p.ClearMenu {
		return tgbotapi.NewRemoveKeyboard(true)
	}
	return nil
}

func splitText(text string, limit int) []string {
	r := []rune(text)
	if len(r) <= limit {
		return []string{text}
	}
	var out []string
	for len(r) > 0 {
		n := limit
		if n > len(r) {
			n = len(r)
		}
		out = append(out, string(r[:n]))
		r = r[n:]
	}
	return out
}
