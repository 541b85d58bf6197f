package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mikey/mail-insight/internal/core"
	"go.uber.org/zap"
)

// PostgresCache is a PostgreSQL implementation of the ResponseCache interface
type PostgresCache struct {
	pool    *pgxpool.Pool
	logger  *zap.Logger
	janitor *janitor
}

// NewPostgresCache connects to PostgreSQL and creates the cache table when missing
func NewPostgresCache(ctx context.Context, dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*PostgresCache, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS response_cache (
			cache_key TEXT PRIMARY KEY,
			response TEXT NOT NULL,
			model TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_response_cache_expires_at ON response_cache(expires_at);
	`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &PostgresCache{
		pool:   pool,
		logger: logger,
	}
	cache.janitor = startJanitor(cleanupFreq, cache.Cleanup, logger)
	return cache, nil
}

// Get retrieves a live cache entry
func (c *PostgresCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	var entry core.CacheEntry
	err := c.pool.QueryRow(ctx, `
		SELECT cache_key, response, model, created_at, expires_at
		FROM response_cache
		WHERE cache_key = $1 AND expires_at > NOW()
	`, key).Scan(&entry.Key, &entry.Response, &entry.Model, &entry.CreatedAt, &entry.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}
	return &entry, nil
}

// Set stores a cache entry, replacing any existing entry with the same key
func (c *PostgresCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO response_cache (cache_key, response, model, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cache_key) DO UPDATE SET
			response = EXCLUDED.response,
			model = EXCLUDED.model,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
	`, entry.Key, entry.Response, entry.Model, entry.CreatedAt, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *PostgresCache) Delete(ctx context.Context, key string) error {
	if _, err := c.pool.Exec(ctx, `DELETE FROM response_cache WHERE cache_key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *PostgresCache) Cleanup(ctx context.Context) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM response_cache WHERE expires_at <= NOW()`)
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}
	c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", tag.RowsAffected()))
	return nil
}

// Stop stops the background cleanup task and closes the pool
func (c *PostgresCache) Stop() {
	c.janitor.stop()
	c.pool.Close()
}
