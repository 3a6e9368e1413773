package cache

import (
	"errors"
	"fmt"
	"time"

	"cafe-directory/config"

	utilscache "github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// Store caches serialized values for a limited time.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(keys ...string)
	Close()
}

// InitializeCache returns the configured cache, or nil when caching is off.
func InitializeCache(cfg *config.Config) (Store, error) {
	if cfg.CacheType == "" {
		logger.Info("Listing cache disabled")
		return nil, nil
	}

	c, err := utilscache.New(utilscache.Config{
		Type:          cfg.CacheType,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize %s cache: %w", cfg.CacheType, err)
	}

	logger.Info("Listing cache initialized", zap.String("type", cfg.CacheType), zap.String("addr", cfg.RedisAddr))
	return &utilsStore{cache: c}, nil
}

// utilsStore hands values to go-utils as strings: the redis backend
// JSON-encodes whatever it is given and would turn a []byte into base64 text.
type utilsStore struct {
	cache utilscache.Cache
}

func (s *utilsStore) Get(key string) ([]byte, bool) {
	raw, err := s.cache.Get(key)
	if err != nil {
		if !errors.Is(err, utilscache.ErrKeyNotFound) {
			logger.Error("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	v, ok := raw.(string)
	if !ok {
		logger.Debug("Unexpected cached value type", zap.String("key", key), zap.String("type", fmt.Sprintf("%T", raw)))
		return nil, false
	}
	return []byte(v), true
}

func (s *utilsStore) Set(key string, value []byte, ttl time.Duration) {
	if err := s.cache.Set(key, string(value), ttl); err != nil {
		logger.Error("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes every key it can; a key that could not be removed stays
// stale until its TTL runs out.
func (s *utilsStore) Delete(keys ...string) {
	for _, key := range keys {
		if err := s.cache.Delete(key); err != nil {
			logger.Error("Cache invalidation failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *utilsStore) Close() {
	if err := s.cache.Close(); err != nil {
		logger.Error("Cache close failed", zap.Error(err))
	}
}
