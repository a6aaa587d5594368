package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// IndicatorPoint holds the derived values aligned to one bar.
// SMA and RSI are invalid where the lookback is not yet full.
type IndicatorPoint struct {
	Time  time.Time  `json:"time"`
	Close float64    `json:"close"`
	SMA   null.Float `json:"sma"`
	EMA   float64    `json:"ema"`
	RSI   null.Float `json:"rsi"`
}

// IndicatorSeries is aligned index by index with the bars it was computed from.
type IndicatorSeries []IndicatorPoint

// Last returns the most recent point, or false when the series is empty.
func (s IndicatorSeries) Last() (IndicatorPoint, bool) {
	if len(s) == 0 {
		return IndicatorPoint{}, false
	}
	return s[len(s)-1], true
}

// Summary is the headline statistics block for a price series.
type Summary struct {
	StartPrice float64
	EndPrice   float64
	ReturnPct  float64
	High       float64
	Low        float64
	Position   float64 // 0.0 ~ 1.0 within [Low, High]
	Bars       int
}

// Analysis is the full result of analyzing one symbol.
type Analysis struct {
	Series     *PriceSeries
	Indicators IndicatorSeries
	Summary    Summary
	Signal     *Signal
}
