package calculator

import (
	"fmt"

	"github.com/guregu/null/v6"

	"MarketLens/internal/model"
)

// SMA computes the simple moving average of prices over window.
// Index i holds the mean of prices[i-window+1 : i+1] once i >= window-1 and is
// invalid before that. A window longer than the series yields an all-invalid series.
func SMA(prices []float64, window int) ([]null.Float, error) {
	if window <= 0 {
		return nil, fmt.Errorf("sma window %d: %w", window, model.ErrInvalidInput)
	}
	out := make([]null.Float, len(prices))
	for i := window - 1; i < len(prices); i++ {
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += prices[j]
		}
		out[i] = null.FloatFrom(sum / float64(window))
	}
	return out, nil
}

// EMA computes the exponential moving average with alpha = 2/(span+1),
// seeded with the first price. Every position is defined.
func EMA(prices []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, fmt.Errorf("ema span %d: %w", span, model.ErrInvalidInput)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("ema of empty series: %w", model.ErrInvalidInput)
	}
	alpha := 2.0 / float64(span+1)
	out := make([]float64, len(prices))
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = alpha*prices[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}
