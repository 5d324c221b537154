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

// Cloudflare реализует Summarizer через AI-шлюз Cloudflare: к запросу
// добавляется отдельный заголовок авторизации шлюза поверх ключа API.
type Cloudflare struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	gatewayKey string
	model      string
}

var _ domain.Summarizer = (*Cloudflare)(nil)

// NewCloudflare создаёт провайдера за AI-шлюзом.
func NewCloudflare(baseURL, apiKey, gatewayKey, model string, timeout time.Duration) *Cloudflare {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Cloudflare{
		http:       &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/") + "/",
		apiKey:     apiKey,
		gatewayKey: gatewayKey,
		model:      model,
	}
}

type cloudflareRequest struct {
	Messages []cloudflareMessage `json:"messages"`
}

type cloudflareMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type cloudflareResponse struct {
	Result struct {
		Response string `json:"response"`
	} `json:"result"`
}

// Summarize строит резюме текста.
func (c *Cloudflare) Summarize(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(cloudflareRequest{
		Messages: []cloudflareMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(text)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("cloudflare: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.model, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("cloudflare: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("cf-aig-authorization", "Bearer "+c.gatewayKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveNetworkRequest("cloudflare", "run", c.model, start, err)
		return "", fmt.Errorf("%w: cloudflare: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveNetworkRequest("cloudflare", "run", c.model, start, err)
		return "", fmt.Errorf("%w: cloudflare: чтение ответа: %v", ErrProvider, err)
	}
	if resp.StatusCode >= 400 {
		err := fmt.Errorf("%w: cloudflare: статус %d", ErrProvider, resp.StatusCode)
		metrics.ObserveNetworkRequest("cloudflare", "run", c.model, start, err)
		return "", err
	}
	metrics.ObserveNetworkRequest("cloudflare", "run", c.model, start, nil)
	metrics.LLMGenerationDuration.WithLabelValues(c.model).Observe(time.Since(start).Seconds())

	var parsed cloudflareResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: cloudflare: %v", ErrBadResponse, err)
	}
	content := strings.TrimSpace(parsed.Result.Response)
	if content == "" {
		return "", fmt.Errorf("%w: cloudflare: пустой ответ", ErrBadResponse)
	}
	return content, nil
}
