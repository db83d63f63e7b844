package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/simaogato/investfolio-backend/internal/logger"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// ErrNoResult is returned when the chart response carries no result
var ErrNoResult = errors.New("yahoo: no result")

// YahooOptions configures a YahooClient
type YahooOptions struct {
	BaseURL   string
	Timeout   time.Duration
	CacheTTL  time.Duration
	RateLimit float64 // requests per second
}

// YahooClient reads prices from the Yahoo Finance v8 chart endpoint.
// Responses are cached for CacheTTL and outbound requests are paced by a shared limiter.
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	limiter    *rate.Limiter
}

// NewYahooClient creates a client with a cookie jar, a TTL cache and a rate limiter
func NewYahooClient(opts YahooOptions) (*YahooClient, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	burst := max(int(opts.RateLimit), 1)
	return &YahooClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: opts.Timeout,
		},
		cache:   cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), burst),
	}, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice decimal.NullDecimal `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []decimal.NullDecimal `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// CurrentPrice returns the regular market price, falling back to the last non-zero close.
// An unknown symbol is not an error: ok is false.
func (c *YahooClient) CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, bool, error) {
	symbol := normalizeSymbol(ticker)
	if symbol == "" {
		return decimal.Zero, false, nil
	}

	key := "current:" + symbol
	if cached, found := c.cache.Get(key); found {
		return cached.(decimal.Decimal), true, nil
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", "5d")

	chart, found, err := c.fetchChart(ctx, symbol, params)
	if err != nil || !found {
		return decimal.Zero, false, err
	}

	r := chart.Chart.Result[0]
	price := decimal.Zero
	if r.Meta.RegularMarketPrice.Valid {
		price = r.Meta.RegularMarketPrice.Decimal
	}
	if price.LessThanOrEqual(decimal.Zero) && len(r.Indicators.Quote) > 0 {
		closes := r.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if closes[i].Valid && closes[i].Decimal.GreaterThan(decimal.Zero) {
				price = closes[i].Decimal
				break
			}
		}
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false, nil
	}

	c.cache.SetDefault(key, price)
	return price, true, nil
}

// HistoricalPrices returns daily closes in [start, end] keyed by calendar date
func (c *YahooClient) HistoricalPrices(ctx context.Context, ticker string, start, end time.Time) (domain.PriceSeries, error) {
	symbol := normalizeSymbol(ticker)
	series := domain.PriceSeries{}
	if symbol == "" {
		return series, nil
	}

	start, end = domain.Day(start), domain.Day(end)
	key := fmt.Sprintf("history:%s:%s:%s", symbol, domain.DateKey(start), domain.DateKey(end))
	if cached, found := c.cache.Get(key); found {
		return cached.(domain.PriceSeries), nil
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))

	chart, found, err := c.fetchChart(ctx, symbol, params)
	if err != nil {
		return nil, err
	}
	if !found {
		return series, nil
	}

	r := chart.Chart.Result[0]
	if len(r.Indicators.Quote) > 0 {
		closes := r.Indicators.Quote[0].Close
		for i, ts := range r.Timestamp {
			if i >= len(closes) || !closes[i].Valid || !closes[i].Decimal.GreaterThan(decimal.Zero) {
				continue
			}
			day := domain.Day(time.Unix(ts, 0).UTC())
			if day.Before(start) || day.After(end) {
				continue
			}
			series.Set(day, closes[i].Decimal)
		}
	}

	c.cache.SetDefault(key, series)
	return series, nil
}

// fetchChart performs one paced chart request. found is false for unknown symbols.
func (c *YahooClient) fetchChart(ctx context.Context, symbol string, params url.Values) (*chartResponse, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, fmt.Errorf("yahoo rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build yahoo request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("yahoo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		logger.FromContext(ctx).Debug("yahoo symbol not found", "symbol", symbol)
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("yahoo http %d for %s", resp.StatusCode, symbol)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, false, fmt.Errorf("failed to decode yahoo response: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, false, fmt.Errorf("yahoo error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, false, ErrNoResult
	}
	return &chart, true, nil
}

func normalizeSymbol(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
