package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"MarketLens/internal/model"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// compactDays is roughly how far back the compact output (100 trading days) reaches.
const compactDays = 140

// AlphaVantageFetcher implements Fetcher using the TIME_SERIES_DAILY endpoint.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Now     func() time.Time

	limiter *rate.Limiter
}

// NewAlphaVantageFetcher creates a fetcher throttled to the plan's request rate.
func NewAlphaVantageFetcher(apiKey string, opts HTTPOptions) *AlphaVantageFetcher {
	base := opts.BaseURL
	if base == "" {
		base = alphaVantageBaseURL
	}
	return &AlphaVantageFetcher{
		BaseURL: strings.TrimRight(base, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(opts.Timeout, opts.Proxy),
		Now:     time.Now,
		limiter: newLimiter(opts.RequestsPerMinute),
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

type avBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type avResponse struct {
	Series       map[string]avBar `json:"Time Series (Daily)"`
	ErrorMessage string           `json:"Error Message"`
	Note         string           `json:"Note"`
	Information  string           `json:"Information"`
}

// FetchDailyBars downloads the daily series and keeps the bars inside r.
func (f *AlphaVantageFetcher) FetchDailyBars(ctx context.Context, symbol string, r model.DateRange) ([]model.OHLCV, error) {
	outputSize := "compact"
	if r.From.IsZero() || f.Now().Sub(r.From) > compactDays*24*time.Hour {
		outputSize = "full"
	}

	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("outputsize", outputSize)
	q.Set("apikey", f.APIKey)
	body, err := getBody(ctx, f.Client, f.limiter, f.Name(), f.BaseURL+"/query?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp avResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w: %w", model.ErrUpstreamFetch, err)
	}
	switch {
	case resp.ErrorMessage != "":
		return nil, fmt.Errorf("alphavantage error: %s: %w", resp.ErrorMessage, model.ErrUpstreamFetch)
	case resp.Note != "":
		return nil, fmt.Errorf("alphavantage throttled: %s: %w", resp.Note, model.ErrUpstreamFetch)
	case resp.Information != "":
		return nil, fmt.Errorf("alphavantage: %s: %w", resp.Information, model.ErrUpstreamFetch)
	case len(resp.Series) == 0:
		return nil, fmt.Errorf("alphavantage: no data returned for %s: %w", symbol, model.ErrUpstreamFetch)
	}

	bars := make([]model.OHLCV, 0, len(resp.Series))
	for day, raw := range resp.Series {
		t, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, fmt.Errorf("alphavantage date %q: %w: %w", day, model.ErrUpstreamFetch, err)
		}
		if !r.Contains(t) {
			continue
		}
		bar, err := raw.toOHLCV(t)
		if err != nil {
			return nil, fmt.Errorf("alphavantage %s: %w", day, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func (b avBar) toOHLCV(t time.Time) (model.OHLCV, error) {
	fields := [5]string{b.Open, b.High, b.Low, b.Close, b.Volume}
	var vals [5]float64
	for i, s := range fields {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return model.OHLCV{}, fmt.Errorf("parse %q: %w: %w", s, model.ErrUpstreamFetch, err)
		}
		vals[i] = d.InexactFloat64()
	}
	return model.OHLCV{Time: t, Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3], Volume: vals[4]}, nil
}
