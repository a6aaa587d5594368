package collector

import (
	"fmt"
	"math"
	"sort"
	"time"

	"MarketLens/internal/model"
)

// Ingest validates raw bars and returns an ascending series with one bar per
// calendar date. When a date repeats, the row that came last wins.
func Ingest(symbol string, raw []model.OHLCV) (*model.PriceSeries, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("ingest %s: empty payload: %w", symbol, model.ErrUpstreamFetch)
	}
	for i, b := range raw {
		if err := validateBar(b); err != nil {
			return nil, fmt.Errorf("ingest %s bar %d: %w", symbol, i, err)
		}
	}

	type keyed struct {
		day string
		bar model.OHLCV
	}
	rows := make([]keyed, len(raw))
	for i, b := range raw {
		rows[i] = keyed{day: b.Time.Format("2006-01-02"), bar: b}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].day < rows[j].day })

	bars := make([]model.OHLCV, 0, len(rows))
	for i, r := range rows {
		if i+1 < len(rows) && rows[i+1].day == r.day {
			continue
		}
		bars = append(bars, r.bar)
	}

	return &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: time.Now()}, nil
}

func validateBar(b model.OHLCV) error {
	if b.Time.IsZero() {
		return fmt.Errorf("zero timestamp: %w", model.ErrInvalidInput)
	}
	prices := [4]float64{b.Open, b.High, b.Low, b.Close}
	for _, p := range prices {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return fmt.Errorf("price %v at %s: %w", p, b.Time.Format("2006-01-02"), model.ErrInvalidInput)
		}
	}
	if b.High < b.Low {
		return fmt.Errorf("high %.4f below low %.4f at %s: %w", b.High, b.Low, b.Time.Format("2006-01-02"), model.ErrInvalidInput)
	}
	if math.IsNaN(b.Volume) || math.IsInf(b.Volume, 0) || b.Volume < 0 {
		return fmt.Errorf("volume %v at %s: %w", b.Volume, b.Time.Format("2006-01-02"), model.ErrInvalidInput)
	}
	return nil
}
