package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client, nil)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	stored := testToken{AccessToken: "tok-abc", ExpiresIn: 100}
	c.Set(ctx, "gw:core:client:no-exchange:api.read:v0", stored, 70*time.Second)

	var got testToken
	require.True(t, c.Get(ctx, "gw:core:client:no-exchange:api.read:v0", &got))
	assert.Equal(t, stored, got)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(0), stats.Misses)
}

func TestRedisCacheTTLExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "key", testToken{AccessToken: "tok"}, 70*time.Second)

	var got testToken
	require.True(t, c.Get(ctx, "key", &got))

	// Before the TTL elapses the entry survives
	mr.FastForward(60 * time.Second)
	require.True(t, c.Get(ctx, "key", &got))

	// After the TTL elapses it is gone
	mr.FastForward(11 * time.Second)
	assert.False(t, c.Get(ctx, "key", &got))
}

func TestRedisCacheMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var got testToken
	assert.False(t, c.Get(context.Background(), "absent", &got))
	assert.Equal(t, uint64(1), c.Stats().Misses)
}

func TestRedisCacheCorruptValueIsMiss(t *testing.T) {
	c, mr := newTestCache(t)

	require.NoError(t, mr.Set("corrupt", "{not json"))

	var got testToken
	assert.False(t, c.Get(context.Background(), "corrupt", &got))
	assert.Equal(t, uint64(1), c.Stats().Misses)
}

func TestRedisCacheDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "key", testToken{AccessToken: "tok"}, time.Minute)
	c.Delete(ctx, "key")

	var got testToken
	assert.False(t, c.Get(ctx, "key", &got))
}

func TestRedisCacheDeleteByPrefix(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "gw:core:client:exchange:aaa_scope:v0", testToken{}, time.Minute)
	c.Set(ctx, "gw:core:client:exchange:bbb_scope:v0", testToken{}, time.Minute)
	c.Set(ctx, "gw:core:client:no-exchange:scope:v0", testToken{}, time.Minute)

	removed := c.DeleteByPrefix(ctx, "gw:core:client:exchange:")
	assert.Equal(t, 2, removed)

	var got testToken
	assert.False(t, c.Get(ctx, "gw:core:client:exchange:aaa_scope:v0", &got))
	assert.True(t, c.Get(ctx, "gw:core:client:no-exchange:scope:v0", &got))
}

func TestRedisCacheReadErrorDegradesToMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(client, nil)

	mock.ExpectGet("key").SetErr(errors.New("connection reset"))

	var got testToken
	assert.False(t, c.Get(context.Background(), "key", &got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RedisConfig)
		wantErr bool
	}{
		{"defaults are valid", func(c *RedisConfig) {}, false},
		{"missing host", func(c *RedisConfig) { c.Host = "" }, true},
		{"invalid port", func(c *RedisConfig) { c.Port = 99999 }, true},
		{"zero pool size", func(c *RedisConfig) { c.PoolSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRedisConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
