package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"feed-summary-bot/internal/domain"
)

// ErrUnknownProvider возвращается при попытке добавить модель с
// незарегистрированным видом провайдера.
var ErrUnknownProvider = errors.New("неизвестный вид провайдера")

// ErrInvalidArgs возвращается при пустых обязательных параметрах.
var ErrInvalidArgs = errors.New("некорректные параметры")

// ProviderCatalog отвечает на вопрос, зарегистрирован ли вид провайдера.
type ProviderCatalog interface {
	Known(provider string) bool
	Providers() []string
}

// Service — операторская поверхность каталога лент и моделей.
type Service struct {
	feeds     domain.FeedRepo
	models    domain.ModelRepo
	providers ProviderCatalog
}

// NewService создаёт сервис каталога.
func NewService(feeds domain.FeedRepo, models domain.ModelRepo, providers ProviderCatalog) *Service {
	return &Service{feeds: feeds, models: models, providers: providers}
}

// AddFeed добавляет ленту.
func (s *Service) AddFeed(ctx context.Context, name, url string) error {
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)
	if name == "" || url == "" {
		return ErrInvalidArgs
	}
	return s.feeds.AddFeed(ctx, name, url)
}

// DeactivateFeed выключает ленту; история резюме сохраняется.
func (s *Service) DeactivateFeed(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidArgs
	}
	return s.feeds.DeactivateFeed(ctx, name)
}

// AddModel добавляет модель. Вид провайдера проверяется сразу, чтобы
// ошибка конфигурации не всплыла позже в глубине пайплайна.
func (s *Service) AddModel(ctx context.Context, name, provider, providerModelID string) error {
	name = strings.TrimSpace(name)
	provider = strings.TrimSpace(provider)
	providerModelID = strings.TrimSpace(providerModelID)
	if name == "" || provider == "" || providerModelID == "" {
		return ErrInvalidArgs
	}
	if !s.providers.Known(provider) {
		return fmt.Errorf("%w: %s (доступны: %s)", ErrUnknownProvider, provider, strings.Join(s.providers.Providers(), ", "))
	}
	return s.models.AddModel(ctx, name, provider, providerModelID)
}

// DeactivateModel выключает модель; история резюме сохраняется.
func (s *Service) DeactivateModel(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidArgs
	}
	return s.models.DeactivateModel(ctx, name)
}
