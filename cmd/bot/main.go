package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"feed-summary-bot/internal/adapters/bot"
	"feed-summary-bot/internal/adapters/feed"
	"feed-summary-bot/internal/adapters/repo"
	"feed-summary-bot/internal/adapters/summarizer"
	"feed-summary-bot/internal/adapters/telegram"
	"feed-summary-bot/internal/adapters/tts"
	"feed-summary-bot/internal/domain"
	"feed-summary-bot/internal/infra/config"
	"feed-summary-bot/internal/infra/db"
	applog "feed-summary-bot/internal/infra/log"
	"feed-summary-bot/internal/infra/metrics"
	"feed-summary-bot/internal/usecase/catalog"
	"feed-summary-bot/internal/usecase/delivery"
	"feed-summary-bot/internal/usecase/scan"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось подключиться к БД")
	}
	defer pool.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("не удалось подготовить схему БД")
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

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

	source := feed.NewHTTPSource(nil)
	scanService := scan.NewService(repoAdapter, repoAdapter, repoAdapter, source, registry, speech, logger)
	catalogService := catalog.NewService(repoAdapter, repoAdapter, registry)

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось создать бота")
	}
	notifier := telegram.NewNotifier(botAPI, cfg.Telegram.ChatID)
	deliveryService := delivery.NewService(repoAdapter, notifier, cfg.Limits.SendBatch, logger)

	h := bot.NewHandler(botAPI, logger, catalogService, scanService, deliveryService, speech)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %ds", cfg.Intervals.Scan), func() {
		count, err := scanService.Run(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("плановое сканирование завершилось с ошибкой")
			return
		}
		logger.Info().Int("new", count).Msg("плановое сканирование завершено")
	}); err != nil {
		logger.Fatal().Err(err).Msg("не удалось запланировать сканирование")
	}
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %ds", cfg.Intervals.Send), func() {
		count, err := deliveryService.Run(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("плановая доставка завершилась с ошибкой")
			return
		}
		if count > 0 {
			logger.Info().Int("sent", count).Msg("плановая доставка завершена")
		}
	}); err != nil {
		logger.Fatal().Err(err).Msg("не удалось запланировать доставку")
	}
	scheduler.Start()
	defer scheduler.Stop()

	r := chi.NewRouter()
	r.Post("/bot/webhook", func(w http.ResponseWriter, req *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.HandleUpdate(req.Context(), update)
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	if cfg.Telegram.WebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.Telegram.WebhookURL + "/bot/webhook")
		if err != nil {
			logger.Fatal().Err(err).Msg("не удалось собрать вебхук")
		}
		if _, err := botAPI.Request(wh); err != nil {
			logger.Fatal().Err(err).Msg("не удалось установить вебхук")
		}
	}

	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: r}
	go func() {
		logger.Info().Int("port", cfg.Port).Msg("bot: запускаем HTTP-сервер")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP-сервер остановился с ошибкой")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("bot: получен сигнал остановки")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("не удалось корректно остановить HTTP-сервер")
		os.Exit(1)
	}
}
