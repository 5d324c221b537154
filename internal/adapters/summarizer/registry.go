package summarizer

import (
	"fmt"
	"sort"
	"time"

	"feed-summary-bot/internal/domain"
)

// Поддерживаемые виды провайдеров.
const (
	ProviderOllama     = "ollama"
	ProviderOpenRouter = "openrouter"
	ProviderCloudflare = "cloudflare"
)

// Credentials содержит реквизиты всех бэкендов суммаризации.
type Credentials struct {
	OllamaHost           string
	OpenRouterAPIKey     string
	CloudflareBaseURL    string
	CloudflareAPIKey     string
	CloudflareGatewayKey string
	Timeout              time.Duration
}

// Registry сопоставляет вид провайдера с конструктором адаптера.
// Неизвестный вид — конфигурационная ошибка, а не сбой в глубине пайплайна.
type Registry struct {
	factories map[string]func(modelID string) domain.Summarizer
}

var _ domain.SummarizerFactory = (*Registry)(nil)

// NewRegistry создаёт реестр провайдеров.
func NewRegistry(creds Credentials) *Registry {
	return &Registry{factories: map[string]func(string) domain.Summarizer{
		ProviderOllama: func(modelID string) domain.Summarizer {
			return NewOllama(creds.OllamaHost, modelID, creds.Timeout)
		},
		ProviderOpenRouter: func(modelID string) domain.Summarizer {
			return NewOpenRouter(creds.OpenRouterAPIKey, modelID, creds.Timeout)
		},
		ProviderCloudflare: func(modelID string) domain.Summarizer {
			return NewCloudflare(creds.CloudflareBaseURL, creds.CloudflareAPIKey, creds.CloudflareGatewayKey, modelID, creds.Timeout)
		},
	}}
}

// Known сообщает, зарегистрирован ли вид провайдера.
func (r *Registry) Known(provider string) bool {
	_, ok := r.factories[provider]
	return ok
}

// Providers возвращает зарегистрированные виды провайдеров.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build создаёт адаптер для модели.
func (r *Registry) Build(model domain.Model) (domain.Summarizer, error) {
	factory, ok := r.factories[model.Provider]
	if !ok {
		return nil, fmt.Errorf("неизвестный провайдер %q у модели %q", model.Provider, model.Name)
	}
	return factory(model.ProviderModelID), nil
}
