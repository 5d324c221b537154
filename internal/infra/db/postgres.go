package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect создаёт пул подключений к Postgres.
func Connect(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 5
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS rss_feeds (
		name VARCHAR(128) PRIMARY KEY,
		url VARCHAR(512) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS models (
		name VARCHAR(128) PRIMARY KEY,
		provider VARCHAR(128) NOT NULL,
		provider_model_id VARCHAR(512) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS rss_entries (
		feed_name VARCHAR(128) NOT NULL REFERENCES rss_feeds(name),
		entry_id TEXT NOT NULL,
		raw_content JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (feed_name, entry_id)
	)`,
	`CREATE TABLE IF NOT EXISTS summaries (
		feed_name VARCHAR(128) NOT NULL REFERENCES rss_feeds(name),
		model_name VARCHAR(128) NOT NULL REFERENCES models(name),
		entry_id TEXT NOT NULL,
		title TEXT,
		content TEXT,
		audio_path TEXT,
		sent BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (feed_name, model_name, entry_id)
	)`,
}

// EnsureSchema создаёт таблицы пайплайна, если их ещё нет.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("создание схемы: %w", err)
		}
	}
	return nil
}
