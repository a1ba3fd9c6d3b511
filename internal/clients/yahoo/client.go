// Package yahoo fetches fundamentals, market snapshots, and price history
// from the Yahoo Finance JSON API, with persistent cache-first behavior.
package yahoo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/beacon/internal/clientdata"
	"github.com/aristath/beacon/internal/domain"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"

	maxAttempts    = 3
	retryBaseDelay = 500 * time.Millisecond
)

// Client for the Yahoo Finance JSON API.
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new Yahoo Finance client.
// baseURL is overridable for tests; empty means the production endpoint.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
		log:       log.With().Str("client", "yahoo").Logger(),
		cacheRepo: cacheRepo,
	}
}

// FetchStatements returns the three annual statement tables for a ticker.
// Fresh cache entries are served without a network call; when the API
// fails, stale cached statements are returned as a fallback.
func (c *Client) FetchStatements(ticker string) (domain.Statements, error) {
	if cached, ok := c.fromCache("yahoo_statements", ticker); ok {
		var stmts domain.Statements
		if err := json.Unmarshal(cached, &stmts); err == nil {
			c.log.Debug().Str("ticker", ticker).Msg("Statements cache hit")
			return stmts, nil
		}
	}

	endpoint := fmt.Sprintf(
		"%s/ws/fundamentals-timeseries/v1/finance/timeseries/%s?%s",
		c.baseURL, url.PathEscape(ticker), timeseriesQuery(),
	)

	var resp timeseriesResponse
	if err := c.getJSON(endpoint, &resp); err != nil {
		if stale, ok := c.staleFromCache("yahoo_statements", ticker); ok {
			var stmts domain.Statements
			if jsonErr := json.Unmarshal(stale, &stmts); jsonErr == nil {
				c.log.Warn().Err(err).Str("ticker", ticker).Msg("API failed, using stale cached statements")
				return stmts, nil
			}
		}
		return domain.Statements{}, fmt.Errorf("failed to fetch statements for %s: %w", ticker, err)
	}

	stmts, err := transformStatements(resp)
	if err != nil {
		return domain.Statements{}, fmt.Errorf("failed to transform statements for %s: %w", ticker, err)
	}

	c.toCache("yahoo_statements", ticker, stmts, clientdata.TTLStatements)
	c.log.Info().Str("ticker", ticker).Msg("Fetched statements")
	return stmts, nil
}

// FetchSnapshot returns the current market snapshot for a ticker.
func (c *Client) FetchSnapshot(ticker string) (domain.MarketSnapshot, error) {
	if cached, ok := c.fromCache("yahoo_snapshot", ticker); ok {
		var snap domain.MarketSnapshot
		if err := json.Unmarshal(cached, &snap); err == nil {
			c.log.Debug().Str("ticker", ticker).Msg("Snapshot cache hit")
			return snap, nil
		}
	}

	endpoint := fmt.Sprintf(
		"%s/v10/finance/quoteSummary/%s?modules=summaryDetail,defaultKeyStatistics,financialData,summaryProfile",
		c.baseURL, url.PathEscape(ticker),
	)

	var resp quoteSummaryResponse
	if err := c.getJSON(endpoint, &resp); err != nil {
		if stale, ok := c.staleFromCache("yahoo_snapshot", ticker); ok {
			var snap domain.MarketSnapshot
			if jsonErr := json.Unmarshal(stale, &snap); jsonErr == nil {
				c.log.Warn().Err(err).Str("ticker", ticker).Msg("API failed, using stale cached snapshot")
				return snap, nil
			}
		}
		return domain.MarketSnapshot{}, fmt.Errorf("failed to fetch snapshot for %s: %w", ticker, err)
	}

	snap, err := transformSnapshot(ticker, resp)
	if err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("failed to transform snapshot for %s: %w", ticker, err)
	}

	c.toCache("yahoo_snapshot", ticker, snap, clientdata.TTLSnapshot)
	c.log.Info().Str("ticker", ticker).Msg("Fetched snapshot")
	return snap, nil
}

// FetchDailyPrices returns about a year of daily close bars for a ticker,
// oldest first.
func (c *Client) FetchDailyPrices(ticker string) ([]domain.DailyPrice, error) {
	if cached, ok := c.fromCache("yahoo_prices", ticker); ok {
		var prices []domain.DailyPrice
		if err := json.Unmarshal(cached, &prices); err == nil {
			c.log.Debug().Str("ticker", ticker).Msg("Prices cache hit")
			return prices, nil
		}
	}

	endpoint := fmt.Sprintf(
		"%s/v8/finance/chart/%s?range=1y&interval=1d",
		c.baseURL, url.PathEscape(ticker),
	)

	var resp chartResponse
	if err := c.getJSON(endpoint, &resp); err != nil {
		if stale, ok := c.staleFromCache("yahoo_prices", ticker); ok {
			var prices []domain.DailyPrice
			if jsonErr := json.Unmarshal(stale, &prices); jsonErr == nil {
				c.log.Warn().Err(err).Str("ticker", ticker).Msg("API failed, using stale cached prices")
				return prices, nil
			}
		}
		return nil, fmt.Errorf("failed to fetch prices for %s: %w", ticker, err)
	}

	prices, err := transformDailyPrices(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to transform prices for %s: %w", ticker, err)
	}

	c.toCache("yahoo_prices", ticker, prices, clientdata.TTLDailyPrices)
	c.log.Info().Str("ticker", ticker).Int("bars", len(prices)).Msg("Fetched daily prices")
	return prices, nil
}

// getJSON performs a GET with retry and exponential backoff. Transient
// failures (network errors, 429, 5xx) are retried; other statuses fail
// immediately.
func (c *Client) getJSON(endpoint string, out interface{}) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := retryBaseDelay * time.Duration(1<<(attempt-2))
			c.log.Debug().
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying request")
			time.Sleep(delay)
		}

		req, err := http.NewRequest(http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		// Yahoo rejects requests without a browser-like user agent.
		req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			err = json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			return nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("API returned status %d", resp.StatusCode)
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return lastErr
		}
	}

	return lastErr
}

func (c *Client) fromCache(table, ticker string) (json.RawMessage, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}
	data, err := c.cacheRepo.GetIfFresh(table, ticker)
	if err != nil || data == nil {
		return nil, false
	}
	return data, true
}

func (c *Client) staleFromCache(table, ticker string) (json.RawMessage, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}
	data, err := c.cacheRepo.Get(table, ticker)
	if err != nil || data == nil {
		return nil, false
	}
	return data, true
}

func (c *Client) toCache(table, ticker string, data interface{}, ttl time.Duration) {
	if c.cacheRepo == nil {
		return
	}
	if err := c.cacheRepo.Store(table, ticker, data, ttl); err != nil {
		c.log.Warn().Err(err).Str("table", table).Str("ticker", ticker).Msg("Failed to cache response")
	}
}

// timeseriesQuery builds the type list and period window for the
// fundamentals-timeseries endpoint: five years of annual reports.
func timeseriesQuery() string {
	types := make([]string, 0, len(timeseriesLabels))
	for t := range timeseriesLabels {
		types = append(types, t)
	}

	now := time.Now()
	v := url.Values{}
	v.Set("type", strings.Join(sortedStrings(types), ","))
	v.Set("period1", fmt.Sprintf("%d", now.AddDate(-5, 0, 0).Unix()))
	v.Set("period2", fmt.Sprintf("%d", now.Unix()))
	v.Set("merge", "false")
	return v.Encode()
}
