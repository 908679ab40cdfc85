package datafeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"EdgeRunner/internal/domain/models"
	domrepo "EdgeRunner/internal/domain/repository"
	"EdgeRunner/internal/service/cache"
)

// CachedProvider decorates a DataProvider with a short-TTL cache so the
// pipeline can poll several symbols without hammering the upstream.
// Range loads are not cached; backtests fetch each window once.
type CachedProvider struct {
	inner    domrepo.DataProvider
	cache    cache.BytesCache
	quoteTTL time.Duration
	barTTL   time.Duration
}

var _ domrepo.DataProvider = (*CachedProvider)(nil)

func NewCachedProvider(inner domrepo.DataProvider, c cache.BytesCache, quoteTTL, barTTL time.Duration) *CachedProvider {
	return &CachedProvider{inner: inner, cache: c, quoteTTL: quoteTTL, barTTL: barTTL}
}

func (p *CachedProvider) GetBars(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.Bar, error) {
	key := fmt.Sprintf("bars:%s:%s:%d", symbol, tf, limit)
	if b, ok, err := p.cache.GetBytes(key); err == nil && ok {
		var bars []models.Bar
		if err := json.Unmarshal(b, &bars); err == nil {
			return bars, nil
		}
	}

	bars, err := p.inner.GetBars(ctx, symbol, tf, limit)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(bars); err == nil {
		_ = p.cache.SetBytes(key, b, p.barTTL)
	}
	return bars, nil
}

func (p *CachedProvider) GetBarsRange(ctx context.Context, symbol string, tf models.Timeframe, from, to time.Time) ([]models.Bar, error) {
	return p.inner.GetBarsRange(ctx, symbol, tf, from, to)
}

func (p *CachedProvider) GetQuote(ctx context.Context, symbol string) (models.Quote, error) {
	key := "quote:" + symbol
	if b, ok, err := p.cache.GetBytes(key); err == nil && ok {
		var q models.Quote
		if err := json.Unmarshal(b, &q); err == nil {
			return q, nil
		}
	}

	q, err := p.inner.GetQuote(ctx, symbol)
	if err != nil {
		return models.Quote{}, err
	}
	if b, err := json.Marshal(q); err == nil {
		_ = p.cache.SetBytes(key, b, p.quoteTTL)
	}
	return q, nil
}
