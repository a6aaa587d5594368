package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"MarketLens/internal/calculator"
	"MarketLens/internal/metrics"
	"MarketLens/internal/model"
	"MarketLens/internal/strategy"
)

// DefaultLookback is the range used when a request leaves From open.
const DefaultLookback = 182 * 24 * time.Hour

// Collector orchestrates data fetching, ingestion and indicator computation.
type Collector struct {
	Fetcher  Fetcher
	Params   calculator.Params
	Lookback time.Duration
	Retries  int
	Backoff  time.Duration
	Metrics  *metrics.Metrics
	Log      logrus.FieldLogger
	Now      func() time.Time
}

// NewCollector creates a Collector with the default lookback and retry policy.
func NewCollector(fetcher Fetcher, params calculator.Params, log logrus.FieldLogger) *Collector {
	return &Collector{
		Fetcher:  fetcher,
		Params:   params,
		Lookback: DefaultLookback,
		Retries:  2,
		Backoff:  time.Second,
		Log:      log,
		Now:      time.Now,
	}
}

// resolve fills an open range with the default lookback ending now.
func (c *Collector) resolve(r model.DateRange) model.DateRange {
	if r.To.IsZero() {
		r.To = c.Now()
	}
	if r.From.IsZero() {
		r.From = r.To.Add(-c.Lookback)
	}
	return r
}

// Fetch retrieves and validates the daily series for symbol.
func (c *Collector) Fetch(ctx context.Context, symbol string, r model.DateRange) (*model.PriceSeries, error) {
	r = c.resolve(r)
	if r.From.After(r.To) {
		return nil, fmt.Errorf("range %s..%s: %w", r.From.Format("2006-01-02"), r.To.Format("2006-01-02"), model.ErrInvalidInput)
	}
	log := c.Log.WithFields(logrus.Fields{"symbol": symbol, "source": c.Fetcher.Name()})

	raw, err := withRetry(ctx, log, c.Retries, c.Backoff, func() ([]model.OHLCV, error) {
		start := time.Now()
		bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, r)
		c.Metrics.ObserveFetch(c.Fetcher.Name(), err, time.Since(start))
		return bars, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}

	series, err := Ingest(symbol, raw)
	if err != nil {
		return nil, err
	}
	series.FetchedAt = c.Now()
	c.Metrics.ObserveBars(symbol, len(series.Bars))
	log.WithField("bars", len(series.Bars)).Debug("series ingested")
	return series, nil
}

// Analyze fetches a symbol and computes its indicators, summary and signal.
func (c *Collector) Analyze(ctx context.Context, symbol string, r model.DateRange) (*model.Analysis, error) {
	a, err := c.analyze(ctx, symbol, r)
	var rsi float64
	var valid bool
	if a != nil {
		if last, ok := a.Indicators.Last(); ok {
			rsi, valid = last.RSI.Float64, last.RSI.Valid
		}
	}
	c.Metrics.ObserveAnalysis(symbol, err, rsi, valid)
	return a, err
}

func (c *Collector) analyze(ctx context.Context, symbol string, r model.DateRange) (*model.Analysis, error) {
	series, err := c.Fetch(ctx, symbol, r)
	if err != nil {
		return nil, err
	}
	return c.AnalyzeSeries(series)
}

// AnalyzeSeries computes indicators, summary and signal for an already validated series.
func (c *Collector) AnalyzeSeries(series *model.PriceSeries) (*model.Analysis, error) {
	ind, err := calculator.Compute(series, c.Params)
	if err != nil {
		return nil, fmt.Errorf("compute indicators: %w", err)
	}

	summary, err := calculator.Summarize(series)
	if err != nil {
		if !errors.Is(err, model.ErrInsufficientData) {
			return nil, fmt.Errorf("summarize: %w", err)
		}
		c.Log.WithField("symbol", series.Symbol).WithError(err).Warn("summary incomplete")
		last := series.Bars[len(series.Bars)-1]
		summary = model.Summary{
			StartPrice: series.Bars[0].Close,
			EndPrice:   last.Close,
			High:       last.High,
			Low:        last.Low,
			Position:   0.5,
			Bars:       len(series.Bars),
		}
	}

	a := &model.Analysis{Series: series, Indicators: ind, Summary: summary}
	if last, ok := ind.Last(); ok {
		a.Signal = strategy.Evaluate(last)
	}
	return a, nil
}
