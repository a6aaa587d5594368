package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"MarketLens/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker

	limiter *rate.Limiter
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(opts HTTPOptions) *YahooFetcher {
	base := opts.BaseURL
	if base == "" {
		base = yahooBaseURL
	}
	return &YahooFetcher{
		BaseURL: strings.TrimRight(base, "/"),
		Client:  newHTTPClient(opts.Timeout, opts.Proxy),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
		limiter: newLimiter(opts.RequestsPerMinute),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[strings.ToUpper(symbol)]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
// Quote arrays hold nulls on holidays and halted sessions.
type yahooChart struct {
	Chart struct {
		Result []struct {
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
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyBars requests 1d bars between r.From and r.To. An open To means now.
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, r model.DateRange) ([]model.OHLCV, error) {
	to := r.To
	if to.IsZero() {
		to = time.Now()
	}
	// period2 is exclusive
	to = to.AddDate(0, 0, 1)

	var from int64
	if !r.From.IsZero() {
		from = r.From.Unix()
	}

	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", fmt.Sprint(from))
	q.Set("period2", fmt.Sprint(to.Unix()))
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), q.Encode())

	body, err := getBody(ctx, f.Client, f.limiter, f.Name(), endpoint)
	if err != nil {
		return nil, err
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w: %w", model.ErrUpstreamFetch, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s: %w", chart.Chart.Error.Description, model.ErrUpstreamFetch)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s: %w", symbol, model.ErrUpstreamFetch)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n || len(quote.Close) != n {
		return nil, fmt.Errorf("yahoo: quote arrays do not match %d timestamps: %w", n, model.ErrUpstreamFetch)
	}

	bars := make([]model.OHLCV, 0, n)
	for i, ts := range result.Timestamp {
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			continue // skip null bars (holidays etc.)
		}
		var vol float64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			vol = *quote.Volume[i]
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   *quote.Open[i],
			High:   *quote.High[i],
			Low:    *quote.Low[i],
			Close:  *quote.Close[i],
			Volume: vol,
		})
	}
	return bars, nil
}
