package domain

import "context"

// FeedRepo управляет каталогом лент.
type FeedRepo interface {
	AddFeed(ctx context.Context, name, url string) error
	DeactivateFeed(ctx context.Context, name string) error
	ActiveFeeds(ctx context.Context) ([]Feed, error)
}

// ModelRepo управляет каталогом моделей.
type ModelRepo interface {
	AddModel(ctx context.Context, name, provider, providerModelID string) error
	DeactivateModel(ctx context.Context, name string) error
	ActiveModels(ctx context.Context) ([]Model, error)
}

// Ledger отвечает на вопрос «что уже сделано» и фиксирует результаты пайплайна.
// Вся координация конкурентных обработчиков идёт через конфликт первичного
// ключа в хранилище, без внутрипроцессных блокировок.
type Ledger interface {
	HasSummary(ctx context.Context, feedName, entryID, modelName string) (bool, error)
	HasRawEntry(ctx context.Context, feedName, entryID string) (bool, error)
	// PutRawEntry идемпотентна: повторная вставка того же ключа — no-op.
	PutRawEntry(ctx context.Context, entry RawEntry) error
	// PutSummary возвращает ErrConflict, если ключ уже занят.
	PutSummary(ctx context.Context, summary Summary) error
	// UnsentSummaries возвращает неотправленные резюме в порядке вставки.
	UnsentSummaries(ctx context.Context) ([]Summary, error)
	// MarkSent помечает резюме отправленным; отсутствие строки — не ошибка.
	MarkSent(ctx context.Context, feedName, modelName, entryID string) error
}

// FeedSource загружает элементы ленты по URL.
type FeedSource interface {
	Fetch(ctx context.Context, url string) ([]Entry, error)
}

// Summarizer строит ограниченное по длине резюме текста.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// SummarizerFactory создаёт Summarizer по записи модели.
// Неизвестный вид провайдера — конфигурационная ошибка.
type SummarizerFactory interface {
	Build(model Model) (Summarizer, error)
}

// SpeechRenderer озвучивает резюме и возвращает путь к аудиофайлу.
// Ошибка озвучки не должна блокировать запись текстового резюме.
type SpeechRenderer interface {
	Render(ctx context.Context, text, title string) (string, error)
}

// Notifier отправляет уведомления через транспорт бота.
type Notifier interface {
	SendText(ctx context.Context, text string) error
	SendAudio(ctx context.Context, path, title string) error
}
