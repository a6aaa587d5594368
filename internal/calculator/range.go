package calculator

import (
	"fmt"
	"math"

	"MarketLens/internal/model"
)

// PriceRange scans the most recent lookback bars and returns the high and low.
// A lookback of zero or more than len(bars) scans the whole series.
func PriceRange(bars []model.OHLCV, lookback int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, fmt.Errorf("price range of empty series: %w", model.ErrInvalidInput)
	}
	n := len(bars)
	start := 0
	if lookback > 0 && lookback < n {
		start = n - lookback
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// RangePosition returns where current sits within [low, high] (0.0~1.0).
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, fmt.Errorf("high %.4f below low %.4f: %w", high, low, model.ErrInvalidInput)
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
