package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/stockline/internal/config"
	"github.com/andresuchdata/stockline/internal/domain"
)

const forecastKeyPrefix = "stockline:forecast"

// ForecastKey identifies a forecast by every input it was computed from. A new sale,
// an edited sale line or a stock movement yields a different key.
type ForecastKey struct {
	ArticleID   int64
	WindowStart time.Time
	StockOnHand int
	Sales       domain.SalesFingerprint
}

func (k ForecastKey) String() string {
	last := "none"
	if k.Sales.LastSoldAt != nil {
		last = fmt.Sprintf("%d", k.Sales.LastSoldAt.UnixNano())
	}
	return strings.Join([]string{
		forecastArticlePrefix(k.ArticleID) + k.WindowStart.Format("2006-01-02"),
		fmt.Sprintf("stock=%d", k.StockOnHand),
		fmt.Sprintf("lines=%d", k.Sales.Lines),
		fmt.Sprintf("qty=%d", k.Sales.Quantity),
		"last=" + last,
	}, ":")
}

// ForecastCache keeps demand forecasts keyed by their inputs
type ForecastCache interface {
	Get(ctx context.Context, key ForecastKey) (*domain.DemandForecast, bool, error)
	Set(ctx context.Context, key ForecastKey, forecast *domain.DemandForecast) error
	// Invalidate drops every cached forecast of the article
	Invalidate(ctx context.Context, articleID int64) error
}

type redisForecastCache struct {
	docs *jsonStore
}

type noopForecastCache struct{}

// NewForecastCache connects to Redis when caching is enabled and returns a no-op cache otherwise
func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return NewNoopForecastCache(), nil
	}

	docs, err := dialJSONStore(cfg, cfg.ForecastTTLSeconds)
	if err != nil {
		return nil, err
	}
	return &redisForecastCache{docs: docs}, nil
}

func NewNoopForecastCache() ForecastCache {
	return noopForecastCache{}
}

func (c *redisForecastCache) Get(ctx context.Context, key ForecastKey) (*domain.DemandForecast, bool, error) {
	var forecast domain.DemandForecast
	found, err := c.docs.load(ctx, key.String(), &forecast)
	if err != nil || !found {
		return nil, false, err
	}
	return &forecast, true, nil
}

func (c *redisForecastCache) Set(ctx context.Context, key ForecastKey, forecast *domain.DemandForecast) error {
	return c.docs.store(ctx, key.String(), forecast)
}

func (c *redisForecastCache) Invalidate(ctx context.Context, articleID int64) error {
	return c.docs.purge(ctx, forecastArticlePrefix(articleID))
}

func (noopForecastCache) Get(context.Context, ForecastKey) (*domain.DemandForecast, bool, error) {
	return nil, false, nil
}

func (noopForecastCache) Set(context.Context, ForecastKey, *domain.DemandForecast) error {
	return nil
}

func (noopForecastCache) Invalidate(context.Context, int64) error {
	return nil
}

func forecastArticlePrefix(articleID int64) string {
	return fmt.Sprintf("%s:%d:", forecastKeyPrefix, articleID)
}
