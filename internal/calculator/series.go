package calculator

import (
	"fmt"

	"MarketLens/internal/model"
)

// Params selects the windows used by Compute.
type Params struct {
	SMAWindow   int
	EMASpan     int
	RSIWindow   int
	FillNeutral bool
}

// DefaultParams matches the dashboard defaults: SMA20, EMA20, RSI14 filled with 50.
func DefaultParams() Params {
	return Params{SMAWindow: 20, EMASpan: 20, RSIWindow: 14, FillNeutral: true}
}

// Compute derives the indicator series for a price series. Bars must be
// strictly ascending by time; the bars slice is not modified.
func Compute(series *model.PriceSeries, p Params) (model.IndicatorSeries, error) {
	if series == nil || len(series.Bars) == 0 {
		return nil, fmt.Errorf("compute indicators on empty series: %w", model.ErrInvalidInput)
	}
	if err := checkAscending(series.Bars); err != nil {
		return nil, err
	}

	closes := series.Closes()
	sma, err := SMA(closes, p.SMAWindow)
	if err != nil {
		return nil, err
	}
	ema, err := EMA(closes, p.EMASpan)
	if err != nil {
		return nil, err
	}
	rsi, err := RSIWithFill(closes, p.RSIWindow, p.FillNeutral)
	if err != nil {
		return nil, err
	}

	out := make(model.IndicatorSeries, len(closes))
	for i, b := range series.Bars {
		out[i] = model.IndicatorPoint{
			Time:  b.Time,
			Close: b.Close,
			SMA:   sma[i],
			EMA:   ema[i],
			RSI:   rsi[i],
		}
	}
	return out, nil
}

// Summarize computes the headline statistics of a series.
func Summarize(series *model.PriceSeries) (model.Summary, error) {
	if series == nil || len(series.Bars) == 0 {
		return model.Summary{}, fmt.Errorf("summarize empty series: %w", model.ErrInvalidInput)
	}
	closes := series.Closes()
	ret, err := PeriodReturn(closes)
	if err != nil {
		return model.Summary{}, err
	}
	high, low, err := PriceRange(series.Bars, 0)
	if err != nil {
		return model.Summary{}, err
	}
	end := closes[len(closes)-1]
	pos, err := RangePosition(end, high, low)
	if err != nil {
		return model.Summary{}, err
	}
	return model.Summary{
		StartPrice: closes[0],
		EndPrice:   end,
		ReturnPct:  ret,
		High:       high,
		Low:        low,
		Position:   pos,
		Bars:       len(closes),
	}, nil
}

func checkAscending(bars []model.OHLCV) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return fmt.Errorf("bar %d at %s not after %s: %w",
				i, bars[i].Time.Format("2006-01-02"), bars[i-1].Time.Format("2006-01-02"), model.ErrInvalidInput)
		}
	}
	return nil
}
