package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache implements TokenCache using Redis as a distributed cache
type RedisCache struct {
	client     redis.UniversalClient
	config     *RedisConfig
	serializer Serializer
	logger     *zap.Logger
	hits       uint64
	misses     uint64
}

// Serializer defines how values are serialized/deserialized
type Serializer interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// JSONSerializer uses JSON for serialization
type JSONSerializer struct{}

func (s *JSONSerializer) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (s *JSONSerializer) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(config *RedisConfig, logger *zap.Logger) (*RedisCache, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	var client redis.UniversalClient

	if config.ClusterEnabled {
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        []string{net.JoinHostPort(config.Host, fmt.Sprintf("%d", config.Port))},
			Password:     config.Password,
			PoolSize:     config.PoolSize,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			DialTimeout:  config.DialTimeout,
			TLSConfig:    config.TLS,
		})
	} else if config.SentinelEnabled && len(config.SentinelMasters) > 0 {
		sentinelAddrs := make([]string, len(config.SentinelMasters))
		for i, master := range config.SentinelMasters {
			sentinelAddrs[i] = fmt.Sprintf("%s:%d", master, config.Port)
		}
		client = redis.NewFailoverClient(&redis.FailoverOptions{
			SentinelAddrs: sentinelAddrs,
			MasterName:    "mymaster",
			Password:      config.Password,
			DB:            config.DB,
			PoolSize:      config.PoolSize,
			ReadTimeout:   config.ReadTimeout,
			WriteTimeout:  config.WriteTimeout,
			DialTimeout:   config.DialTimeout,
			TLSConfig:     config.TLS,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:         net.JoinHostPort(config.Host, fmt.Sprintf("%d", config.Port)),
			Password:     config.Password,
			DB:           config.DB,
			PoolSize:     config.PoolSize,
			PoolTimeout:  config.PoolTimeout,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			DialTimeout:  config.DialTimeout,
			TLSConfig:    config.TLS,
		})
	}

	// Verify connection
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, ErrConnectionFailed(err)
	}

	return &RedisCache{
		client:     client,
		config:     config,
		serializer: &JSONSerializer{},
		logger:     logger,
	}, nil
}

// NewRedisCacheFromClient wraps an existing client; used by tests
func NewRedisCacheFromClient(client redis.UniversalClient, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{
		client:     client,
		config:     DefaultRedisConfig(),
		serializer: &JSONSerializer{},
		logger:     logger,
	}
}

// Get reads the value under key into dest. Any failure, including a value
// that no longer deserializes, counts as a miss.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Cache read failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		atomic.AddUint64(&c.misses, 1)
		return false
	}

	if err := c.serializer.Unmarshal(data, dest); err != nil {
		c.logger.Warn("Cache value failed to deserialize",
			zap.String("key", key),
			zap.Error(err),
		)
		atomic.AddUint64(&c.misses, 1)
		return false
	}

	atomic.AddUint64(&c.hits, 1)
	return true
}

// Set writes value under key with the given TTL. Failures are logged and
// skipped; the next read simply misses.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := c.serializer.Marshal(value)
	if err != nil {
		c.logger.Warn("Cache value failed to serialize",
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// Delete removes a key from the cache
func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("Cache delete failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// DeleteByPrefix removes all entries under a key prefix
func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) int {
	pattern := prefix + "*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("Cache scan failed",
			zap.String("pattern", pattern),
			zap.Error(err),
		)
	}

	if len(keys) > 0 {
		c.client.Del(ctx, keys...)
	}
	return len(keys)
}

// Client exposes the underlying Redis client for pub/sub consumers
func (c *RedisCache) Client() redis.UniversalClient {
	return c.client
}

// Stats returns cache statistics
func (c *RedisCache) Stats() Stats {
	hits := atomic.LoadUint64(&c.hits)
	misses := atomic.LoadUint64(&c.misses)
	total := hits + misses

	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate,
	}
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
