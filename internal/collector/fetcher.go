package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"MarketLens/internal/model"
)

// Fetcher retrieves raw daily bars for a symbol within a date range.
// Implementations need not sort or validate; Ingest does that.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, r model.DateRange) ([]model.OHLCV, error)
	Name() string
}

// HTTPOptions configures the client shared by the HTTP fetchers.
type HTTPOptions struct {
	BaseURL           string
	Timeout           time.Duration
	Proxy             string
	RequestsPerMinute float64
}

func newHTTPClient(timeout time.Duration, proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

func newLimiter(perMinute float64) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perMinute/60), 1)
}

// getBody waits on the limiter, performs a GET and returns the body of a 200 response.
// Transport failures and non-200 statuses wrap ErrUpstreamFetch.
func getBody(ctx context.Context, client *http.Client, limiter *rate.Limiter, source, endpoint string) ([]byte, error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s rate limit: %w", source, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s fetch: %w: %w", source, model.ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s read body: %w: %w", source, model.ErrUpstreamFetch, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d, body: %s: %w", source, resp.StatusCode, truncate(body, 200), model.ErrUpstreamFetch)
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
