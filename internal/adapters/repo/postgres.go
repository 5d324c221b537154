package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"feed-summary-bot/internal/domain"
)

// Postgres реализует репозитории каталога и леджер на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.FeedRepo  = (*Postgres)(nil)
	_ domain.ModelRepo = (*Postgres)(nil)
	_ domain.Ledger    = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// AddFeed добавляет ленту в каталог.
func (p *Postgres) AddFeed(ctx context.Context, name, url string) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	_, err := p.pool.Exec(ctx, `INSERT INTO rss_feeds(name, url, active) VALUES($1, $2, true)`, name, url)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("вставка ленты: %w", err)
	}
	return nil
}

// DeactivateFeed выключает ленту, не удаляя историю.
func (p *Postgres) DeactivateFeed(ctx context.Context, name string) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	_, err := p.pool.Exec(ctx, `UPDATE rss_feeds SET active = false WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("деактивация ленты: %w", err)
	}
	return nil
}

// ActiveFeeds возвращает активные ленты.
func (p *Postgres) ActiveFeeds(ctx context.Context) ([]domain.Feed, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	rows, err := p.pool.Query(ctx, `SELECT name, url, active, created_at FROM rss_feeds WHERE active = true ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("выборка лент: %w", err)
	}
	defer rows.Close()
	var feeds []domain.Feed
	for rows.Next() {
		var f domain.Feed
		if err := rows.Scan(&f.Name, &f.URL, &f.Active, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("чтение ленты: %w", err)
		}
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}

// AddModel добавляет модель в каталог.
func (p *Postgres) AddModel(ctx context.Context, name, provider, providerModelID string) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	_, err := p.pool.Exec(ctx,
		`INSERT INTO models(name, provider, provider_model_id, active) VALUES($1, $2, $3, true)`,
		name, provider, providerModelID)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("вставка модели: %w", err)
	}
	return nil
}

// DeactivateModel выключает модель, не удаляя историю.
func (p *Postgres) DeactivateModel(ctx context.Context, name string) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	_, err := p.pool.Exec(ctx, `UPDATE models SET active = false WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("деактивация модели: %w", err)
	}
	return nil
}

// ActiveModels возвращает активные модели.
func (p *Postgres) ActiveModels(ctx context.Context) ([]domain.Model, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	rows, err := p.pool.Query(ctx, `SELECT name, provider, provider_model_id, active, created_at FROM models WHERE active = true ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("выборка моделей: %w", err)
	}
	defer rows.Close()
	var models []domain.Model
	for rows.Next() {
		var m domain.Model
		if err := rows.Scan(&m.Name, &m.Provider, &m.ProviderModelID, &m.Active, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("чтение модели: %w", err)
		}
		models = append(models, m)
	}
	return models, rows.Err()
}

// HasSummary сообщает, есть ли уже резюме для ключа (лента, элемент, модель).
func (p *Postgres) HasSummary(ctx context.Context, feedName, entryID, modelName string) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM summaries WHERE feed_name = $1 AND model_name = $2 AND entry_id = $3)`,
		feedName, modelName, entryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("проверка резюме: %w", err)
	}
	return exists, nil
}

// HasRawEntry сообщает, сохранено ли сырое содержимое элемента.
func (p *Postgres) HasRawEntry(ctx context.Context, feedName, entryID string) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM rss_entries WHERE feed_name = $1 AND entry_id = $2)`,
		feedName, entryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("проверка сырого элемента: %w", err)
	}
	return exists, nil
}

// PutRawEntry сохраняет сырое содержимое. Повторная вставка того же ключа — no-op.
func (p *Postgres) PutRawEntry(ctx context.Context, entry domain.RawEntry) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	_, err := p.pool.Exec(ctx,
		`INSERT INTO rss_entries(feed_name, entry_id, raw_content) VALUES($1, $2, $3)
ON CONFLICT (feed_name, entry_id) DO NOTHING`,
		entry.FeedName, entry.EntryID, entry.RawContent)
	if err != nil {
		return fmt.Errorf("вставка сырого элемента: %w", err)
	}
	return nil
}

// PutSummary вставляет новое резюме. Конфликт ключа возвращается как ErrConflict.
func (p *Postgres) PutSummary(ctx context.Context, summary domain.Summary) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	var audio any
	if summary.AudioPath != "" {
		audio = summary.AudioPath
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO summaries(feed_name, model_name, entry_id, title, content, audio_path, sent)
VALUES($1, $2, $3, $4, $5, $6, false)`,
		summary.FeedName, summary.ModelName, summary.EntryID, summary.Title, summary.Content, audio)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("вставка резюме: %w", err)
	}
	return nil
}

// UnsentSummaries возвращает неотправленные резюме в порядке вставки.
func (p *Postgres) UnsentSummaries(ctx context.Context) ([]domain.Summary, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	rows, err := p.pool.Query(ctx,
		`SELECT feed_name, model_name, entry_id, COALESCE(title, ''), COALESCE(content, ''), COALESCE(audio_path, ''), sent, created_at
FROM summaries WHERE sent = false ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("выборка неотправленных: %w", err)
	}
	defer rows.Close()
	var summaries []domain.Summary
	for rows.Next() {
		var s domain.Summary
		if err := rows.Scan(&s.FeedName, &s.ModelName, &s.EntryID, &s.Title, &s.Content, &s.AudioPath, &s.Sent, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("чтение резюме: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// MarkSent помечает резюме отправленным. Отсутствие строки — не ошибка:
// повтор доставки должен быть безопасен.
func (p *Postgres) MarkSent(ctx context.Context, feedName, modelName, entryID string) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	_, err := p.pool.Exec(ctx,
		`UPDATE summaries SET sent = true WHERE feed_name = $1 AND model_name = $2 AND entry_id = $3`,
		feedName, modelName, entryID)
	if err != nil {
		return fmt.Errorf("отметка отправки: %w", err)
	}
	return nil
}
