package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"feed-summary-bot/internal/domain"
	openai "feed-summary-bot/internal/infra/openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenRouter реализует Summarizer через облачный Chat Completions API.
type OpenRouter struct {
	client chatClient
	model  string
}

var _ domain.Summarizer = (*OpenRouter)(nil)

// NewOpenRouter создаёт облачного провайдера суммаризации.
func NewOpenRouter(apiKey, model string, timeout time.Duration) *OpenRouter {
	return &OpenRouter{
		client: openai.NewClient(apiKey, openRouterBaseURL, timeout, nil),
		model:  model,
	}
}

// Summarize строит резюме текста.
func (s *OpenRouter) Summarize(ctx context.Context, text string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: systemPrompt},
			{Role: openai.RoleUser, Content: userPrompt(text)},
		},
	}
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: openrouter: %v", ErrProvider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openrouter: пустой ответ", ErrBadResponse)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: openrouter: пустое сообщение", ErrBadResponse)
	}
	return content, nil
}
