package scan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"feed-summary-bot/internal/domain"
	"feed-summary-bot/internal/infra/metrics"
)

// viableContentLength — минимальная длина описания, при которой его имеет
// смысл отдавать в суммаризацию вместо полного содержимого.
const viableContentLength = 100

// Service обходит активные модели и ленты и строит резюме для новых элементов.
type Service struct {
	feeds   domain.FeedRepo
	models  domain.ModelRepo
	ledger  domain.Ledger
	source  domain.FeedSource
	factory domain.SummarizerFactory
	speech  domain.SpeechRenderer
	log     zerolog.Logger
}

// NewService создаёт сервис сканирования. speech может быть nil —
// тогда резюме записываются без аудио.
func NewService(feeds domain.FeedRepo, models domain.ModelRepo, ledger domain.Ledger, source domain.FeedSource, factory domain.SummarizerFactory, speech domain.SpeechRenderer, log zerolog.Logger) *Service {
	return &Service{feeds: feeds, models: models, ledger: ledger, source: source, factory: factory, speech: speech, log: log}
}

// Run выполняет один проход по всем парам (модель, лента) и возвращает
// количество новых резюме. Сбои отдельных элементов изолируются и не
// прерывают соседние единицы работы.
func (s *Service) Run(ctx context.Context) (int, error) {
	metrics.ScanRuns.Inc()

	activeModels, err := s.models.ActiveModels(ctx)
	if err != nil {
		return 0, fmt.Errorf("выборка моделей: %w", err)
	}
	activeFeeds, err := s.feeds.ActiveFeeds(ctx)
	if err != nil {
		return 0, fmt.Errorf("выборка лент: %w", err)
	}

	var total atomic.Int64
	for _, model := range activeModels {
		summarizer, err := s.factory.Build(model)
		if err != nil {
			// Неизвестный провайдер — конфигурация сломана, молча
			// продолжать нельзя.
			return int(total.Load()), fmt.Errorf("модель %s: %w", model.Name, err)
		}
		s.log.Info().Str("model", model.Name).Str("provider", model.Provider).Msg("scan: обрабатываем модель")

		var wg sync.WaitGroup
		for _, f := range activeFeeds {
			wg.Add(1)
			go func(model domain.Model, f domain.Feed) {
				defer wg.Done()
				count := s.processFeed(ctx, summarizer, model, f)
				total.Add(int64(count))
			}(model, f)
		}
		wg.Wait()
	}
	return int(total.Load()), nil
}

func (s *Service) processFeed(ctx context.Context, summarizer domain.Summarizer, model domain.Model, f domain.Feed) int {
	entries, err := s.source.Fetch(ctx, f.URL)
	if err != nil {
		metrics.ScanErrors.Inc()
		s.log.Error().Err(err).Str("feed", f.Name).Msg("scan: не удалось загрузить ленту")
		return 0
	}
	s.log.Info().Str("feed", f.Name).Int("entries", len(entries)).Msg("scan: получены элементы ленты")

	var count atomic.Int64
	var wg sync.WaitGroup
	for _, entry := range entries {
		wg.Add(1)
		go func(entry domain.Entry) {
			defer wg.Done()
			created, err := s.processEntry(ctx, summarizer, model, f, entry)
			if err != nil {
				metrics.ScanErrors.Inc()
				s.log.Error().Err(err).Str("feed", f.Name).Str("entry", entry.GUID()).Str("model", model.Name).Msg("scan: элемент не обработан")
				return
			}
			if created {
				metrics.SummariesCreated.WithLabelValues(model.Name).Inc()
				count.Add(1)
			}
		}(entry)
	}
	wg.Wait()
	return int(count.Load())
}

// processEntry прогоняет один элемент через машину состояний:
// проверка леджера → захват сырого содержимого → суммаризация →
// озвучка → запись резюме. Возвращает true, если создано новое резюме.
func (s *Service) processEntry(ctx context.Context, summarizer domain.Summarizer, model domain.Model, f domain.Feed, entry domain.Entry) (bool, error) {
	guid := entry.GUID()
	if guid == "" {
		return false, fmt.Errorf("элемент без идентификатора и ссылки")
	}

	exists, err := s.ledger.HasSummary(ctx, f.Name, guid, model.Name)
	if err != nil {
		return false, fmt.Errorf("проверка резюме: %w", err)
	}
	if exists {
		s.log.Debug().Str("feed", f.Name).Str("entry", guid).Str("model", model.Name).Msg("scan: резюме уже есть, пропускаем")
		return false, nil
	}

	if err := s.captureRaw(ctx, f, entry, guid); err != nil {
		return false, err
	}

	text, ok := summarizableText(entry)
	if !ok {
		// Содержимое ленты может улучшиться — элемент останется
		// кандидатом на следующий проход.
		s.log.Info().Str("feed", f.Name).Str("entry", guid).Msg("scan: нет пригодного текста для суммаризации")
		return false, nil
	}

	summaryText, err := summarizer.Summarize(ctx, text)
	if err != nil {
		return false, fmt.Errorf("суммаризация: %w", err)
	}

	audioPath := s.renderAudio(ctx, summaryText, entry.Title, guid)

	err = s.ledger.PutSummary(ctx, domain.Summary{
		FeedName:  f.Name,
		ModelName: model.Name,
		EntryID:   guid,
		Title:     entry.Title,
		Content:   summaryText,
		AudioPath: audioPath,
	})
	if errors.Is(err, domain.ErrConflict) {
		// Проигрыш гонки конкурентному обработчику — работа уже сделана.
		s.log.Info().Str("feed", f.Name).Str("entry", guid).Str("model", model.Name).Msg("scan: резюме записал другой обработчик")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("запись резюме: %w", err)
	}
	s.log.Info().Str("feed", f.Name).Str("entry", guid).Str("model", model.Name).Msg("scan: создано новое резюме")
	return true, nil
}

// captureRaw сохраняет сырое содержимое элемента один раз, независимо от
// модели и от исхода суммаризации.
func (s *Service) captureRaw(ctx context.Context, f domain.Feed, entry domain.Entry, guid string) error {
	exists, err := s.ledger.HasRawEntry(ctx, f.Name, guid)
	if err != nil {
		return fmt.Errorf("проверка сырого элемента: %w", err)
	}
	if exists {
		return nil
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("сериализация элемента: %w", err)
	}
	if err := s.ledger.PutRawEntry(ctx, domain.RawEntry{FeedName: f.Name, EntryID: guid, RawContent: raw}); err != nil {
		return fmt.Errorf("сохранение сырого элемента: %w", err)
	}
	s.log.Debug().Str("feed", f.Name).Str("entry", guid).Msg("scan: сохранено сырое содержимое")
	return nil
}

func (s *Service) renderAudio(ctx context.Context, summaryText, title, guid string) string {
	if s.speech == nil {
		return ""
	}
	path, err := s.speech.Render(ctx, summaryText, title)
	if err != nil {
		// Озвучка — необязательное улучшение: резюме записывается и без неё.
		s.log.Warn().Err(err).Str("entry", guid).Msg("scan: озвучка не удалась, продолжаем без аудио")
		return ""
	}
	return path
}

// summarizableText выбирает текст для суммаризации: полное содержимое,
// иначе описание достаточной длины. Порог считается в символах,
// а не в байтах, иначе кириллический текст проходил бы его вдвое короче.
func summarizableText(entry domain.Entry) (string, bool) {
	if entry.Content != "" {
		return entry.Content, true
	}
	if utf8.RuneCountInString(entry.Description) > viableContentLength {
		return entry.Description, true
	}
	return "", false
}
