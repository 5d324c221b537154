package delivery

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"feed-summary-bot/internal/domain"
	"feed-summary-bot/internal/infra/metrics"
)

// Service доставляет неотправленные резюме через транспорт бота.
type Service struct {
	ledger   domain.Ledger
	notifier domain.Notifier
	batch    int
	log      zerolog.Logger
}

// NewService создаёт сервис доставки. batch ограничивает число отправок
// за один вызов, чтобы не упираться в лимиты транспорта.
func NewService(ledger domain.Ledger, notifier domain.Notifier, batch int, log zerolog.Logger) *Service {
	if batch <= 0 {
		batch = 10
	}
	return &Service{ledger: ledger, notifier: notifier, batch: batch, log: log}
}

// Run отправляет до batch неотправленных резюме в порядке вставки и
// помечает отправленные. Сбой отправки одного резюме не блокирует
// остальные: строка остаётся в очереди до следующего вызова.
func (s *Service) Run(ctx context.Context) (int, error) {
	unsent, err := s.ledger.UnsentSummaries(ctx)
	if err != nil {
		return 0, fmt.Errorf("выборка неотправленных: %w", err)
	}
	s.log.Info().Int("unsent", len(unsent)).Msg("delivery: неотправленных резюме")
	if len(unsent) == 0 {
		return 0, nil
	}
	// Анонс перед пакетом: оператор видит, сколько резюме накопилось,
	// даже если часть уйдёт только на следующих проходах.
	if err := s.notifier.SendText(ctx, fmt.Sprintf("Доступно новых резюме: %d", len(unsent))); err != nil {
		s.log.Warn().Err(err).Msg("delivery: не удалось отправить анонс")
	}
	if len(unsent) > s.batch {
		unsent = unsent[:s.batch]
	}

	sent := 0
	for _, summary := range unsent {
		if err := s.notifier.SendText(ctx, FormatMessage(summary)); err != nil {
			metrics.SendErrors.Inc()
			s.log.Error().Err(err).Str("feed", summary.FeedName).Str("entry", summary.EntryID).Msg("delivery: не удалось отправить резюме")
			continue
		}
		if summary.AudioPath != "" {
			if err := s.notifier.SendAudio(ctx, summary.AudioPath, summary.Title); err != nil {
				// Текст уже доставлен, аудио — сопутствующее вложение.
				metrics.SendErrors.Inc()
				s.log.Warn().Err(err).Str("entry", summary.EntryID).Msg("delivery: не удалось отправить аудио")
			}
		}
		if err := s.ledger.MarkSent(ctx, summary.FeedName, summary.ModelName, summary.EntryID); err != nil {
			s.log.Error().Err(err).Str("entry", summary.EntryID).Msg("delivery: не удалось отметить отправку")
			continue
		}
		metrics.SummariesSent.Inc()
		sent++
		s.log.Info().Str("feed", summary.FeedName).Str("entry", summary.EntryID).Msg("delivery: резюме отправлено")
	}
	return sent, nil
}

// FormatMessage строит текст уведомления по резюме.
func FormatMessage(summary domain.Summary) string {
	return fmt.Sprintf("Feed: %s\n\n%s\n\nSummary: %s\n\nLink: %s",
		summary.FeedName, summary.Title, summary.Content, summary.EntryID)
}
