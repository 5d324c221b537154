package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"feed-summary-bot/internal/domain"
	"feed-summary-bot/internal/infra/metrics"
)

const (
	kokoroModel = "kokoro"
	kokoroVoice = "af_bella"
)

// Kokoro озвучивает резюме через OpenAI-совместимый TTS-сервер
// и складывает mp3-файлы в локальный каталог.
type Kokoro struct {
	http    *http.Client
	baseURL string
	dir     string
}

var _ domain.SpeechRenderer = (*Kokoro)(nil)

// NewKokoro создаёт рендерер речи.
func NewKokoro(baseURL, dir string, timeout time.Duration) *Kokoro {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Kokoro{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		dir:     dir,
	}
}

type speechRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
	Input string `json:"input"`
}

// Render озвучивает текст с заголовком и возвращает путь к файлу.
// Пустой заголовок допустим: текст озвучивается как есть.
func (k *Kokoro) Render(ctx context.Context, text, title string) (string, error) {
	input := text
	if title != "" {
		input = fmt.Sprintf("Title: %s. %s", title, text)
	}
	body, err := json.Marshal(speechRequest{Model: kokoroModel, Voice: kokoroVoice, Input: input})
	if err != nil {
		return "", fmt.Errorf("kokoro: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.baseURL+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("kokoro: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := k.http.Do(req)
	if err != nil {
		metrics.ObserveNetworkRequest("kokoro", "speech", kokoroModel, start, err)
		return "", fmt.Errorf("kokoro: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		err := fmt.Errorf("kokoro: статус %d", resp.StatusCode)
		metrics.ObserveNetworkRequest("kokoro", "speech", kokoroModel, start, err)
		return "", err
	}

	if err := os.MkdirAll(k.dir, 0o755); err != nil {
		return "", fmt.Errorf("kokoro: каталог аудио: %w", err)
	}
	path := filepath.Join(k.dir, uuid.New().String()+".mp3")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("kokoro: создание файла: %w", err)
	}
	defer file.Close()
	if _, err := io.Copy(file, resp.Body); err != nil {
		os.Remove(path)
		metrics.ObserveNetworkRequest("kokoro", "speech", kokoroModel, start, err)
		return "", fmt.Errorf("kokoro: запись файла: %w", err)
	}
	metrics.ObserveNetworkRequest("kokoro", "speech", kokoroModel, start, nil)
	return path, nil
}
