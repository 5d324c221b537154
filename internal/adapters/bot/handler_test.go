package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

type fakeSpeech struct {
	texts  []string
	titles []string
	path   string
	err    error
}

func (f *fakeSpeech) Render(_ context.Context, text, title string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.texts = append(f.texts, text)
	f.titles = append(f.titles, title)
	return f.path, nil
}

func message(text string) *tgbotapi.Message {
	return &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: 1}}
}

func lastText(t *testing.T, sender *fakeSender) string {
	t.Helper()
	if len(sender.sent) == 0 {
		t.Fatal("бот ничего не отправил")
	}
	msg, ok := sender.sent[len(sender.sent)-1].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("ожидали текстовое сообщение, получили %T", sender.sent[len(sender.sent)-1])
	}
	return msg.Text
}

func TestCommandArgs(t *testing.T) {
	args := commandArgs("/add_feed  news   https://example.com/rss ", "/add_feed")
	if len(args) != 2 {
		t.Fatalf("ожидали 2 аргумента, получили %d", len(args))
	}
	if args[0] != "news" || args[1] != "https://example.com/rss" {
		t.Fatalf("неожиданные аргументы: %v", args)
	}
}

func TestCommandArgsEmpty(t *testing.T) {
	if args := commandArgs("/scan", "/scan"); args != nil {
		t.Fatalf("ожидали nil, получили %v", args)
	}
}

func TestTTSCommandSendsAudio(t *testing.T) {
	sender := &fakeSender{}
	speech := &fakeSpeech{path: "/tmp/voice.mp3"}
	h := NewHandler(sender, zerolog.Nop(), nil, nil, nil, speech)

	h.handleMessage(context.Background(), message("/tts привет мир"))

	if len(speech.texts) != 1 || speech.texts[0] != "привет мир" {
		t.Fatalf("озвучка должна получить текст команды, получила %v", speech.texts)
	}
	if speech.titles[0] != "" {
		t.Fatalf("произвольный текст озвучивается без заголовка, получили %q", speech.titles[0])
	}
	if len(sender.sent) != 1 {
		t.Fatalf("ожидали одно отправленное вложение, получили %d", len(sender.sent))
	}
	audio, ok := sender.sent[0].(tgbotapi.AudioConfig)
	if !ok {
		t.Fatalf("ожидали аудио-вложение, получили %T", sender.sent[0])
	}
	if audio.File != tgbotapi.FilePath("/tmp/voice.mp3") {
		t.Fatalf("неожиданный файл вложения: %v", audio.File)
	}
}

func TestTTSWithoutRenderer(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, zerolog.Nop(), nil, nil, nil, nil)

	h.handleMessage(context.Background(), message("/tts привет"))

	if got := lastText(t, sender); !strings.Contains(got, "не настроена") {
		t.Fatalf("без рендерера бот должен отвечать текстом об отключённой озвучке: %q", got)
	}
}

func TestTTSWithoutText(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, zerolog.Nop(), nil, nil, nil, &fakeSpeech{path: "/tmp/voice.mp3"})

	h.handleMessage(context.Background(), message("/tts"))

	if got := lastText(t, sender); !strings.Contains(got, "Использование") {
		t.Fatalf("команда без текста должна возвращать подсказку: %q", got)
	}
}

func TestTTSRenderFailure(t *testing.T) {
	sender := &fakeSender{}
	speech := &fakeSpeech{err: errors.New("tts недоступен")}
	h := NewHandler(sender, zerolog.Nop(), nil, nil, nil, speech)

	h.handleMessage(context.Background(), message("/tts привет"))

	if got := lastText(t, sender); !strings.Contains(got, "Не удалось озвучить") {
		t.Fatalf("сбой озвучки должен сообщаться оператору: %q", got)
	}
}
