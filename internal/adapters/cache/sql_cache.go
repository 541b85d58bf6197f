package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mikey/mail-insight/internal/core"
	"go.uber.org/zap"
)

// dialect holds the statements that differ between SQL backends
type dialect struct {
	name   string
	schema []string
	upsert string
}

type cacheRow struct {
	Key       string `db:"cache_key"`
	Response  string `db:"response"`
	Model     string `db:"model"`
	CreatedAt int64  `db:"created_at"`
	ExpiresAt int64  `db:"expires_at"`
}

// sqlCache implements the ResponseCache interface on top of a database/sql driver.
// Timestamps are stored as unix milliseconds.
type sqlCache struct {
	db      *sqlx.DB
	dialect dialect
	logger  *zap.Logger
	janitor *janitor
	now     func() time.Time
}

func newSQLCache(db *sqlx.DB, d dialect, logger *zap.Logger, cleanupFreq time.Duration) (*sqlCache, error) {
	for _, stmt := range d.schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create %s cache schema: %w", d.name, err)
		}
	}

	cache := &sqlCache{
		db:      db,
		dialect: d,
		logger:  logger,
		now:     time.Now,
	}
	cache.janitor = startJanitor(cleanupFreq, cache.Cleanup, logger)
	return cache, nil
}

// Get retrieves a live cache entry
func (c *sqlCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	var row cacheRow
	err := c.db.GetContext(ctx, &row, c.db.Rebind(`
		SELECT cache_key, response, model, created_at, expires_at
		FROM response_cache
		WHERE cache_key = ? AND expires_at > ?
	`), key, c.now().UnixMilli())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	return &core.CacheEntry{
		Key:       row.Key,
		Response:  row.Response,
		Model:     row.Model,
		CreatedAt: time.UnixMilli(row.CreatedAt),
		ExpiresAt: time.UnixMilli(row.ExpiresAt),
	}, nil
}

// Set stores a cache entry, replacing any existing entry with the same key
func (c *sqlCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	_, err := c.db.ExecContext(ctx, c.db.Rebind(c.dialect.upsert),
		entry.Key, entry.Response, entry.Model, entry.CreatedAt.UnixMilli(), entry.ExpiresAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *sqlCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, c.db.Rebind(`DELETE FROM response_cache WHERE cache_key = ?`), key)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *sqlCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, c.db.Rebind(`DELETE FROM response_cache WHERE expires_at <= ?`), c.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries",
			zap.String("backend", c.dialect.name),
			zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

// Stop stops the background cleanup task and closes the database connection
func (c *sqlCache) Stop() {
	c.janitor.stop()
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close cache database", zap.String("backend", c.dialect.name), zap.Error(err))
	}
}
