package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"feed-summary-bot/internal/adapters/telegram"
	"feed-summary-bot/internal/domain"
	"feed-summary-bot/internal/infra/metrics"
	"feed-summary-bot/internal/usecase/catalog"
)

// Runner — один проход сканирования или доставки.
type Runner interface {
	Run(ctx context.Context) (int, error)
}

// sender — минимальная поверхность Bot API, нужная обработчику.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Handler обслуживает команды оператора.
type Handler struct {
	bot      sender
	log      zerolog.Logger
	catalog  *catalog.Service
	scanner  Runner
	delivery Runner
	speech   domain.SpeechRenderer
}

// NewHandler создаёт обработчик. speech может быть nil, тогда /tts
// отвечает, что озвучка не настроена.
func NewHandler(bot sender, log zerolog.Logger, catalogUC *catalog.Service, scanner, delivery Runner, speech domain.SpeechRenderer) *Handler {
	return &Handler{bot: bot, log: log, catalog: catalogUC, scanner: scanner, delivery: delivery, speech: speech}
}

// HandleUpdate обрабатывает входящий апдейт.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	h.handleMessage(ctx, upd.Message)
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	switch {
	case strings.HasPrefix(text, "/ping"):
		h.reply(msg.Chat.ID, "Бот работает")
	case strings.HasPrefix(text, "/scan"):
		h.handleScan(ctx, msg.Chat.ID)
	case strings.HasPrefix(text, "/send"):
		h.handleSend(ctx, msg.Chat.ID)
	case strings.HasPrefix(text, "/tts"):
		h.handleTTS(ctx, msg.Chat.ID, strings.TrimSpace(strings.TrimPrefix(text, "/tts")))
	case strings.HasPrefix(text, "/add_feed"):
		h.handleAddFeed(ctx, msg.Chat.ID, commandArgs(text, "/add_feed"))
	case strings.HasPrefix(text, "/delete_feed"):
		h.handleDeleteFeed(ctx, msg.Chat.ID, commandArgs(text, "/delete_feed"))
	case strings.HasPrefix(text, "/add_model"):
		h.handleAddModel(ctx, msg.Chat.ID, commandArgs(text, "/add_model"))
	case strings.HasPrefix(text, "/delete_model"):
		h.handleDeleteModel(ctx, msg.Chat.ID, commandArgs(text, "/delete_model"))
	case strings.HasPrefix(text, "/help"), strings.HasPrefix(text, "/start"):
		h.handleHelp(msg.Chat.ID)
	default:
		h.reply(msg.Chat.ID, "Неизвестная команда. Используйте /help")
	}
}

func commandArgs(text, command string) []string {
	rest := strings.TrimSpace(strings.TrimPrefix(text, command))
	if rest == "" {
		return nil
	}
	return strings.Fields(rest)
}

func (h *Handler) handleScan(ctx context.Context, chatID int64) {
	h.reply(chatID, "Сканируем ленты...")
	count, err := h.scanner.Run(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("bot: сканирование завершилось с ошибкой")
		h.reply(chatID, "Сканирование завершилось с ошибкой: "+err.Error())
		return
	}
	h.reply(chatID, fmt.Sprintf("Получено новых резюме: %d", count))
}

func (h *Handler) handleSend(ctx context.Context, chatID int64) {
	count, err := h.delivery.Run(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("bot: доставка завершилась с ошибкой")
		h.reply(chatID, "Доставка завершилась с ошибкой: "+err.Error())
		return
	}
	if count == 0 {
		h.reply(chatID, "Новых резюме нет")
		return
	}
	h.reply(chatID, fmt.Sprintf("Отправлено резюме: %d", count))
}

func (h *Handler) handleTTS(ctx context.Context, chatID int64, text string) {
	if text == "" {
		h.reply(chatID, "Использование: /tts <текст>")
		return
	}
	if h.speech == nil {
		h.reply(chatID, "Озвучка не настроена")
		return
	}
	path, err := h.speech.Render(ctx, text, "")
	if err != nil {
		h.log.Error().Err(err).Msg("bot: не удалось озвучить текст")
		h.reply(chatID, "Не удалось озвучить текст")
		return
	}
	audio := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(path))
	start := time.Now()
	_, err = h.bot.Send(audio)
	metrics.ObserveNetworkRequest("telegram_bot", "send_audio", strconv.FormatInt(chatID, 10), start, err)
	if err != nil {
		h.log.Error().Err(err).Msg("bot: не удалось отправить аудио")
		h.reply(chatID, "Не удалось отправить аудио")
	}
}

func (h *Handler) handleAddFeed(ctx context.Context, chatID int64, args []string) {
	if len(args) != 2 {
		h.reply(chatID, "Использование: /add_feed <имя> <url>")
		return
	}
	err := h.catalog.AddFeed(ctx, args[0], args[1])
	switch {
	case errors.Is(err, domain.ErrConflict):
		h.reply(chatID, "Лента уже существует")
	case err != nil:
		h.log.Error().Err(err).Msg("bot: не удалось добавить ленту")
		h.reply(chatID, "Не удалось добавить ленту")
	default:
		h.reply(chatID, fmt.Sprintf("Добавлена лента %s: %s", args[0], args[1]))
	}
}

func (h *Handler) handleDeleteFeed(ctx context.Context, chatID int64, args []string) {
	if len(args) != 1 {
		h.reply(chatID, "Использование: /delete_feed <имя>")
		return
	}
	if err := h.catalog.DeactivateFeed(ctx, args[0]); err != nil {
		h.log.Error().Err(err).Msg("bot: не удалось выключить ленту")
		h.reply(chatID, "Не удалось выключить ленту")
		return
	}
	h.reply(chatID, fmt.Sprintf("Лента %s выключена", args[0]))
}

func (h *Handler) handleAddModel(ctx context.Context, chatID int64, args []string) {
	if len(args) != 3 {
		h.reply(chatID, "Использование: /add_model <имя> <провайдер> <идентификатор>")
		return
	}
	err := h.catalog.AddModel(ctx, args[0], args[1], args[2])
	switch {
	case errors.Is(err, domain.ErrConflict):
		h.reply(chatID, "Модель уже существует")
	case errors.Is(err, catalog.ErrUnknownProvider):
		h.reply(chatID, err.Error())
	case err != nil:
		h.log.Error().Err(err).Msg("bot: не удалось добавить модель")
		h.reply(chatID, "Не удалось добавить модель")
	default:
		h.reply(chatID, fmt.Sprintf("Добавлена модель %s (%s, %s)", args[0], args[1], args[2]))
	}
}

func (h *Handler) handleDeleteModel(ctx context.Context, chatID int64, args []string) {
	if len(args) != 1 {
		h.reply(chatID, "Использование: /delete_model <имя>")
		return
	}
	if err := h.catalog.DeactivateModel(ctx, args[0]); err != nil {
		h.log.Error().Err(err).Msg("bot: не удалось выключить модель")
		h.reply(chatID, "Не удалось выключить модель")
		return
	}
	h.reply(chatID, fmt.Sprintf("Модель %s выключена", args[0]))
}

func (h *Handler) handleHelp(chatID int64) {
	h.reply(chatID, strings.Join([]string{
		"/ping — проверить, что бот жив",
		"/scan — просканировать ленты сейчас",
		"/send — отправить накопленные резюме",
		"/tts <текст> — озвучить произвольный текст",
		"/add_feed <имя> <url> — добавить ленту",
		"/delete_feed <имя> — выключить ленту",
		"/add_model <имя> <провайдер> <идентификатор> — добавить модель",
		"/delete_model <имя> — выключить модель",
	}, "\n"))
}

func (h *Handler) reply(chatID int64, text string) {
	for _, part := range telegram.SplitMessage(text) {
		msg := tgbotapi.NewMessage(chatID, part)
		start := time.Now()
		_, err := h.bot.Send(msg)
		metrics.ObserveNetworkRequest("telegram_bot", "send_message", strconv.FormatInt(chatID, 10), start, err)
		if err != nil {
			h.log.Error().Err(err).Msg("не удалось отправить сообщение")
			return
		}
	}
}
