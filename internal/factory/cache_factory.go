package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/mail-insight/internal/adapters/cache"
	"github.com/mikey/mail-insight/internal/config"
	"github.com/mikey/mail-insight/internal/core"
	"go.uber.org/zap"
)

// ResponseCache is a response cache owning background resources
type ResponseCache interface {
	core.ResponseCache
	Stop()
}

// CacheFactory creates response caches based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateResponseCache creates the configured cache, or returns nil when caching is disabled
func (f *CacheFactory) CreateResponseCache(ctx context.Context) (ResponseCache, error) {
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return nil, &core.ConfigError{Problems: []string{err.Error()}}
	}
	if !cacheCfg.Enabled {
		f.logger.Debug("Response cache disabled")
		return nil, nil
	}

	f.logger.Info("Creating response cache", zap.String("type", cacheCfg.Type), zap.Duration("ttl", cacheCfg.TTL))

	var c ResponseCache
	switch cacheCfg.Type {
	case "memory":
		c = cache.NewMemoryCache(f.logger, cacheCfg.CleanupFrequency)
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cacheCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		c, err = cache.NewSQLiteCache(cacheCfg.SQLitePath, f.logger, cacheCfg.CleanupFrequency)
	case "mysql":
		c, err = cache.NewMySQLCache(cacheCfg.MySQLDSN, f.logger, cacheCfg.CleanupFrequency)
	case "postgres":
		c, err = cache.NewPostgresCache(ctx, cacheCfg.PostgresDSN, f.logger, cacheCfg.CleanupFrequency)
	case "redis":
		c, err = cache.NewRedisCache(ctx, cacheCfg.RedisAddr, cacheCfg.RedisPassword, cacheCfg.RedisDB, f.logger)
	default:
		return nil, &core.ConfigError{Problems: []string{"unsupported cache.type: " + cacheCfg.Type}}
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
