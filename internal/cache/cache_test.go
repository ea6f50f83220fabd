package cache

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/stockline/internal/config"
	"github.com/andresuchdata/stockline/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecastKey(t *testing.T) {
	lastSale := time.Date(2025, time.March, 4, 11, 0, 0, 0, time.UTC)
	key := ForecastKey{
		ArticleID:   42,
		WindowStart: time.Date(2025, time.February, 8, 0, 0, 0, 0, time.UTC),
		StockOnHand: 10,
		Sales:       domain.SalesFingerprint{Lines: 3, Quantity: 16, LastSoldAt: &lastSale},
	}

	got := key.String()
	assert.Contains(t, got, "stockline:forecast:42:2025-02-08:stock=10:lines=3:qty=16:last=")
	assert.Equal(t, forecastArticlePrefix(42), got[:len(forecastArticlePrefix(42))])
	assert.NotContains(t, got, forecastArticlePrefix(4))
}

func TestForecastKeyChangesWithInputs(t *testing.T) {
	base := ForecastKey{
		ArticleID:   1,
		WindowStart: time.Date(2025, time.February, 8, 0, 0, 0, 0, time.UTC),
		StockOnHand: 10,
	}
	lastSale := time.Date(2025, time.March, 4, 11, 0, 0, 0, time.UTC)

	restocked := base
	restocked.StockOnHand = 4

	newSale := base
	newSale.Sales = domain.SalesFingerprint{Lines: 1, Quantity: 6, LastSoldAt: &lastSale}

	editedSale := newSale
	editedSale.Sales.Quantity = 7

	keys := map[string]struct{}{}
	for _, k := range []ForecastKey{base, restocked, newSale, editedSale} {
		keys[k.String()] = struct{}{}
	}
	assert.Len(t, keys, 4)
	assert.Contains(t, base.String(), "last=none")
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = redisOptions(config.CacheConfig{})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)

	opts, err = redisOptions(config.CacheConfig{RedisURL: "redis://:secret@redis.local:6379/3"})
	require.NoError(t, err)
	assert.Equal(t, "redis.local:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = redisOptions(config.CacheConfig{RedisURL: "://bad"})
	assert.Error(t, err)
}

func TestExpiry(t *testing.T) {
	assert.Equal(t, defaultTTL, expiry(0))
	assert.Equal(t, 90*time.Second, expiry(90))
}

func TestDisabledForecastCacheIsNoop(t *testing.T) {
	ctx := context.Background()
	forecasts, err := NewForecastCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	key := ForecastKey{ArticleID: 1}
	require.NoError(t, forecasts.Set(ctx, key, &domain.DemandForecast{ArticleID: 1}))

	_, ok, err := forecasts.Get(ctx, key)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, forecasts.Invalidate(ctx, 1))
}
