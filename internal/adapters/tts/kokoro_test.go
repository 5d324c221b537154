package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRenderWritesAudioFile(t *testing.T) {
	var got speechRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Fatalf("неожиданный путь: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("не удалось разобрать запрос: %v", err)
		}
		w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	dir := t.TempDir()
	renderer := NewKokoro(server.URL, dir, time.Second)

	path, err := renderer.Render(context.Background(), "текст резюме", "Заголовок")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if filepath.Dir(path) != dir || filepath.Ext(path) != ".mp3" {
		t.Fatalf("неожиданный путь к файлу: %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("файл не записан: %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Fatalf("неожиданное содержимое файла: %q", data)
	}
	if got.Model != kokoroModel || got.Voice != kokoroVoice {
		t.Fatalf("неожиданные параметры озвучки: %+v", got)
	}
	if !strings.Contains(got.Input, "Заголовок") || !strings.Contains(got.Input, "текст резюме") {
		t.Fatalf("во входе нет заголовка или текста: %q", got.Input)
	}
}

func TestRenderWithoutTitle(t *testing.T) {
	var got speechRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("не удалось разобрать запрос: %v", err)
		}
		w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	renderer := NewKokoro(server.URL, t.TempDir(), time.Second)
	if _, err := renderer.Render(context.Background(), "произвольный текст", ""); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got.Input != "произвольный текст" {
		t.Fatalf("без заголовка текст должен озвучиваться как есть: %q", got.Input)
	}
}

func TestRenderHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	renderer := NewKokoro(server.URL, t.TempDir(), time.Second)
	if _, err := renderer.Render(context.Background(), "текст", "t"); err == nil {
		t.Fatal("ошибка сервера должна возвращаться вызывающему")
	}
}

func TestRenderUnreachable(t *testing.T) {
	renderer := NewKokoro("http://127.0.0.1:1", t.TempDir(), 100*time.Millisecond)
	if _, err := renderer.Render(context.Background(), "текст", "t"); err == nil {
		t.Fatal("недоступный сервер должен давать ошибку")
	}
}
