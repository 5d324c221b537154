package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	Telegram struct {
		Token      string `envconfig:"TG_BOT_TOKEN"`
		ChatID     int64  `envconfig:"TG_CHAT_ID"`
		WebhookURL string `envconfig:"TG_WEBHOOK_URL"`
	} `envconfig:""`

	PGDSN string `envconfig:"PG_DSN"`

	Providers struct {
		OllamaHost           string `envconfig:"OLLAMA_HOST" default:"http://localhost:11434"`
		OpenRouterAPIKey     string `envconfig:"OPENROUTER_API_KEY"`
		CloudflareBaseURL    string `envconfig:"CLOUDFLARE_AI_API_BASE_URL"`
		CloudflareAPIKey     string `envconfig:"CLOUDFLARE_AI_API_KEY"`
		CloudflareGatewayKey string `envconfig:"CLOUDFLARE_AI_GATEWAY_API_KEY"`
	} `envconfig:""`

	Audio struct {
		KokoroBaseURL string `envconfig:"KOKORO_BASE_URL"`
		Dir           string `envconfig:"AUDIO_DIR" default:"/tmp/feed-summary-audio"`
	} `envconfig:""`

	Intervals struct {
		Scan int `envconfig:"SCAN_INTERVAL" default:"900"`
		Send int `envconfig:"SEND_INTERVAL" default:"60"`
	} `envconfig:""`

	Limits struct {
		SendBatch int `envconfig:"SEND_BATCH_LIMIT" default:"10"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
