package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"feed-summary-bot/internal/domain"
)

// Notifier отправляет уведомления в настроенный чат.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

var _ domain.Notifier = (*Notifier)(nil)

// NewNotifier создаёт транспорт уведомлений.
func NewNotifier(bot *tgbotapi.BotAPI, chatID int64) *Notifier {
	return &Notifier{bot: bot, chatID: chatID}
}

// SendText отправляет текст, разбивая его по лимиту Telegram.
func (n *Notifier) SendText(ctx context.Context, text string) error {
	for _, chunk := range SplitMessage(text) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(n.chatID, chunk)
		if _, err := n.bot.Send(msg); err != nil {
			return fmt.Errorf("отправка сообщения: %w", err)
		}
	}
	return nil
}

// SendAudio отправляет аудиофайл как вложение.
func (n *Notifier) SendAudio(ctx context.Context, path, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	audio := tgbotapi.NewAudio(n.chatID, tgbotapi.FilePath(path))
	audio.Title = title
	if _, err := n.bot.Send(audio); err != nil {
		return fmt.Errorf("отправка аудио: %w", err)
	}
	return nil
}
