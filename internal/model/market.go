package model

import "time"

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds validated, ascending price data for one symbol.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Closes returns the close prices of the series in order.
func (s *PriceSeries) Closes() []float64 {
	return Closes(s.Bars)
}

// Closes extracts close prices from bars.
func Closes(bars []OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// DateRange bounds a fetch. A zero From or To leaves that side open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range, bounds inclusive by calendar day.
func (r DateRange) Contains(t time.Time) bool {
	day := truncateDay(t)
	if !r.From.IsZero() && day.Before(truncateDay(r.From)) {
		return false
	}
	if !r.To.IsZero() && day.After(truncateDay(r.To)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
