// Package datafeed provides market data access backed by the Yahoo
// chart API, with host fallback, retry on throttling and an optional
// caching layer in front.
package datafeed

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"EdgeRunner/internal/domain/models"
	domrepo "EdgeRunner/internal/domain/repository"
	"EdgeRunner/internal/service/ratelimit"
	pkghttp "EdgeRunner/pkg/http"
	applogger "EdgeRunner/pkg/logger"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// 4h has no native interval upstream; it is aggregated from hourly bars.
var (
	tfInterval = map[models.Timeframe]string{
		models.TF5m:  "5m",
		models.TF15m: "15m",
		models.TF1h:  "1h",
		models.TF1d:  "1d",
	}
	tfRange = map[models.Timeframe]string{
		models.TF5m:  "60d",
		models.TF15m: "60d",
		models.TF1h:  "2y",
		models.TF1d:  "2y",
	}
)

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// YahooProvider implements DataProvider against the Yahoo chart API.
type YahooProvider struct {
	hosts   []string
	http    *pkghttp.Client
	limiter *ratelimit.Limiter
	l       *applogger.Logger
}

var _ domrepo.DataProvider = (*YahooProvider)(nil)

// NewYahooProvider creates a provider. baseURL and fallbackURL are full
// scheme+host prefixes; requests alternate between them across retries.
func NewYahooProvider(baseURL, fallbackURL string, timeout time.Duration, l *applogger.Logger) *YahooProvider {
	hosts := []string{baseURL}
	if fallbackURL != "" && fallbackURL != baseURL {
		hosts = append(hosts, fallbackURL)
	}
	return &YahooProvider{
		hosts:   hosts,
		http:    pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		limiter: ratelimit.New(),
		l:       l,
	}
}

func (p *YahooProvider) GetBars(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.Bar, error) {
	fetchTf := tf
	if tf == models.TF4h {
		fetchTf = models.TF1h
	}

	resp, err := p.fetchChart(ctx, symbol, map[string]string{
		"interval": tfInterval[fetchTf],
		"range":    tfRange[fetchTf],
	})
	if err != nil {
		return nil, fmt.Errorf("get bars %s %s: %w", symbol, tf, err)
	}

	bars := parseBars(resp, symbol, fetchTf)
	if tf == models.TF4h {
		bars = aggregate(bars, 4, models.TF4h)
	}
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	if p.l != nil {
		p.l.Debug("yahoo bars fetched",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("count", len(bars)),
		)
	}
	return bars, nil
}

// GetBarsRange loads a historical window. Intraday requests are chunked
// into 7-day slices with a pause between chunks to stay under the
// upstream throttle; daily requests go out as a single call.
func (p *YahooProvider) GetBarsRange(ctx context.Context, symbol string, tf models.Timeframe, from, to time.Time) ([]models.Bar, error) {
	fetchTf := tf
	if tf == models.TF4h {
		fetchTf = models.TF1h
	}

	var all []models.Bar
	if fetchTf == models.TF1d {
		resp, err := p.fetchChart(ctx, symbol, rangeParams(fetchTf, from, to))
		if err != nil {
			return nil, fmt.Errorf("get bars range %s %s: %w", symbol, tf, err)
		}
		all = parseBars(resp, symbol, fetchTf)
	} else {
		const chunk = 7 * 24 * time.Hour
		for cursor := from; cursor.Before(to); {
			chunkEnd := cursor.Add(chunk)
			if chunkEnd.After(to) {
				chunkEnd = to
			}
			resp, err := p.fetchChart(ctx, symbol, rangeParams(fetchTf, cursor, chunkEnd))
			if err != nil {
				return nil, fmt.Errorf("get bars range %s %s: %w", symbol, tf, err)
			}
			all = append(all, parseBars(resp, symbol, fetchTf)...)
			cursor = chunkEnd
			if cursor.Before(to) {
				if err := sleepCtx(ctx, time.Second); err != nil {
					return nil, err
				}
			}
		}
	}

	all = dedupeSort(all)
	if tf == models.TF4h {
		all = aggregate(all, 4, models.TF4h)
	}
	if p.l != nil {
		p.l.Debug("yahoo range fetched",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("count", len(all)),
		)
	}
	return all, nil
}

func (p *YahooProvider) GetQuote(ctx context.Context, symbol string) (models.Quote, error) {
	resp, err := p.fetchChart(ctx, symbol, map[string]string{
		"interval": "1d",
		"range":    "5d",
	})
	if err != nil {
		return models.Quote{}, fmt.Errorf("get quote %s: %w", symbol, err)
	}
	if len(resp.Chart.Result) == 0 {
		return models.Quote{}, fmt.Errorf("get quote %s: empty chart", symbol)
	}
	return models.Quote{
		Symbol:    symbol,
		Price:     resp.Chart.Result[0].Meta.RegularMarketPrice,
		Timestamp: time.Now().UTC(),
	}, nil
}

// fetchChart performs one chart request with up to 4 attempts,
// alternating hosts and backing off on 429 responses.
func (p *YahooProvider) fetchChart(ctx context.Context, symbol string, params map[string]string) (*chartResponse, error) {
	query := make(map[string][]string, len(params))
	for k, v := range params {
		query[k] = []string{v}
	}

	var lastErr error
	for attempt := 0; attempt < 4; attempt++ {
		for !p.limiter.Allow("yahoo", 5, 2) {
			if err := sleepCtx(ctx, 200*time.Millisecond); err != nil {
				return nil, err
			}
		}

		host := p.hosts[attempt%len(p.hosts)]
		var out chartResponse
		err := p.http.SendAndParse(ctx, &pkghttp.RequestOptions{
			Method:      pkghttp.MethodGet,
			URL:         fmt.Sprintf("%s/v8/finance/chart/%s", host, url.PathEscape(symbol)),
			Headers:     map[string]string{"User-Agent": userAgent},
			QueryParams: query,
		}, &out)
		if err == nil {
			return &out, nil
		}
		lastErr = err

		if throttled(err) {
			if p.l != nil {
				p.l.Debug("yahoo throttled, backing off",
					applogger.String("symbol", symbol),
					applogger.Int("attempt", attempt),
				)
			}
			if serr := sleepCtx(ctx, time.Duration(attempt+1)*5*time.Second); serr != nil {
				return nil, serr
			}
			continue
		}
		if attempt < 3 {
			if serr := sleepCtx(ctx, 2*time.Second); serr != nil {
				return nil, serr
			}
			continue
		}
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func throttled(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "Too Many")
}

func rangeParams(tf models.Timeframe, from, to time.Time) map[string]string {
	return map[string]string{
		"interval": tfInterval[tf],
		"period1":  strconv.FormatInt(from.Unix(), 10),
		"period2":  strconv.FormatInt(to.Unix(), 10),
	}
}

// parseBars flattens a chart response, dropping rows with missing OHLC
// and flooring timestamps onto the timeframe grid.
func parseBars(resp *chartResponse, symbol string, tf models.Timeframe) []models.Bar {
	if len(resp.Chart.Result) == 0 {
		return nil
	}
	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	q := result.Indicators.Quote[0]
	d := tf.Duration()

	bars := make([]models.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Open) || i >= len(q.High) || i >= len(q.Low) || i >= len(q.Close) {
			break
		}
		if q.Open[i] == nil || q.High[i] == nil || q.Low[i] == nil || q.Close[i] == nil {
			continue
		}
		var vol float64
		if i < len(q.Volume) && q.Volume[i] != nil {
			vol = *q.Volume[i]
		}
		bars = append(bars, models.Bar{
			Timestamp: time.Unix(ts, 0).UTC().Truncate(d),
			Open:      *q.Open[i],
			High:      *q.High[i],
			Low:       *q.Low[i],
			Close:     *q.Close[i],
			Volume:    vol,
			Timeframe: tf,
			Symbol:    symbol,
		})
	}
	return bars
}

func dedupeSort(bars []models.Bar) []models.Bar {
	seen := make(map[int64]bool, len(bars))
	out := make([]models.Bar, 0, len(bars))
	for _, b := range bars {
		k := b.Timestamp.Unix()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// aggregate merges fixed-size groups of consecutive bars; a trailing
// partial group is dropped.
func aggregate(bars []models.Bar, factor int, target models.Timeframe) []models.Bar {
	var out []models.Bar
	for i := 0; i+factor <= len(bars); i += factor {
		chunk := bars[i : i+factor]
		agg := models.Bar{
			Timestamp: chunk[0].Timestamp,
			Open:      chunk[0].Open,
			High:      chunk[0].High,
			Low:       chunk[0].Low,
			Close:     chunk[len(chunk)-1].Close,
			Timeframe: target,
			Symbol:    chunk[0].Symbol,
		}
		for _, b := range chunk {
			if b.High > agg.High {
				agg.High = b.High
			}
			if b.Low < agg.Low {
				agg.Low = b.Low
			}
			agg.Volume += b.Volume
		}
		out = append(out, agg)
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
