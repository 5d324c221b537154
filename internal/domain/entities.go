package domain

import "time"

// Feed описывает RSS/Atom-ленту в каталоге.
type Feed struct {
	Name      string
	URL       string
	Active    bool
	CreatedAt time.Time
}

// Model описывает LLM-модель и её провайдера.
type Model struct {
	Name            string
	Provider        string
	ProviderModelID string
	Active          bool
	CreatedAt       time.Time
}

// Entry представляет один элемент ленты после загрузки.
type Entry struct {
	ID          string
	Link        string
	Title       string
	Content     string
	Description string
}

// GUID возвращает стабильный идентификатор элемента: родной ID ленты или ссылку.
func (e Entry) GUID() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Link
}

// RawEntry хранит сырое содержимое элемента ленты.
// Записывается не более одного раза на пару (лента, элемент).
type RawEntry struct {
	FeedName   string
	EntryID    string
	RawContent []byte
	CreatedAt  time.Time
}

// Summary содержит готовое резюме элемента ленты для конкретной модели.
type Summary struct {
	FeedName  string
	ModelName string
	EntryID   string
	Title     string
	Content   string
	AudioPath string
	Sent      bool
	CreatedAt time.Time
}
