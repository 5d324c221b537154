package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"feed-summary-bot/internal/domain"
	"feed-summary-bot/internal/infra/metrics"
)

// Ollama реализует Summarizer через локальный inference-сервер.
type Ollama struct {
	http  *http.Client
	host  string
	model string
}

var _ domain.Summarizer = (*Ollama)(nil)

// NewOllama создаёт провайдера локальной суммаризации.
func NewOllama(host, model string, timeout time.Duration) *Ollama {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Ollama{
		http:  &http.Client{Timeout: timeout},
		host:  strings.TrimRight(host, "/"),
		model: model,
	}
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
}

// Summarize строит резюме текста через /api/chat.
func (o *Ollama) Summarize(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(ollamaChatRequest{
		Model: o.model,
		Messages: []ollamaChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(text)},
		},
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := o.http.Do(req)
	if err != nil {
		metrics.ObserveNetworkRequest("ollama", "chat", o.model, start, err)
		return "", fmt.Errorf("%w: ollama: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveNetworkRequest("ollama", "chat", o.model, start, err)
		return "", fmt.Errorf("%w: ollama: чтение ответа: %v", ErrProvider, err)
	}
	if resp.StatusCode >= 400 {
		err := fmt.Errorf("%w: ollama: статус %d", ErrProvider, resp.StatusCode)
		metrics.ObserveNetworkRequest("ollama", "chat", o.model, start, err)
		return "", err
	}
	metrics.ObserveNetworkRequest("ollama", "chat", o.model, start, nil)
	metrics.LLMGenerationDuration.WithLabelValues(o.model).Observe(time.Since(start).Seconds())

	var parsed ollamaChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: ollama: %v", ErrBadResponse, err)
	}
	content := strings.TrimSpace(parsed.Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: ollama: пустое сообщение", ErrBadResponse)
	}
	return content, nil
}
