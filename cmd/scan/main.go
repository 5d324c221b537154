package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"feed-summary-bot/internal/adapters/feed"
	"feed-summary-bot/internal/adapters/repo"
	"feed-summary-bot/internal/adapters/summarizer"
	"feed-summary-bot/internal/adapters/tts"
	"feed-summary-bot/internal/domain"
	"feed-summary-bot/internal/infra/config"
	"feed-summary-bot/internal/infra/db"
	"feed-summary-bot/internal/usecase/scan"
)

// Одноразовый проход сканирования: полезен для cron-окружений, где
// постоянный процесс бота не нужен.
func main() {
	cfg := config.Load()
	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("scan: нет подключения к БД")
	}
	defer pool.Close()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("scan: не удалось подготовить схему БД")
	}

	repoAdapter := repo.NewPostgres(pool)
	registry := summarizer.NewRegistry(summarizer.Credentials{
		OllamaHost:           cfg.Providers.OllamaHost,
		OpenRouterAPIKey:     cfg.Providers.OpenRouterAPIKey,
		CloudflareBaseURL:    cfg.Providers.CloudflareBaseURL,
		CloudflareAPIKey:     cfg.Providers.CloudflareAPIKey,
		CloudflareGatewayKey: cfg.Providers.CloudflareGatewayKey,
	})

	var speech domain.SpeechRenderer
	if cfg.Audio.KokoroBaseURL != "" {
		speech = tts.NewKokoro(cfg.Audio.KokoroBaseURL, cfg.Audio.Dir, 0)
	}

	service := scan.NewService(repoAdapter, repoAdapter, repoAdapter, feed.NewHTTPSource(nil), registry, speech, log.Logger)
	count, err := service.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("scan: проход завершился с ошибкой")
	}
	log.Info().Int("new", count).Msg("scan: проход завершён")
}
