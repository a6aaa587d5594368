package calculator

import (
	"fmt"

	"github.com/guregu/null/v6"

	"MarketLens/internal/model"
)

// NeutralRSI is the value used for flat windows and for filled leading gaps.
const NeutralRSI = 50.0

// RawRSI computes the relative strength index using simple (not Wilder)
// averages of the last window gains and losses. Positions before index window
// have no full lookback and are invalid.
func RawRSI(prices []float64, window int) ([]null.Float, error) {
	if window <= 0 {
		return nil, fmt.Errorf("rsi window %d: %w", window, model.ErrInvalidInput)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("rsi of empty series: %w", model.ErrInvalidInput)
	}

	gains := make([]float64, len(prices))
	losses := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	out := make([]null.Float, len(prices))
	for i := window; i < len(prices); i++ {
		var sumGain, sumLoss float64
		for j := i - window + 1; j <= i; j++ {
			sumGain += gains[j]
			sumLoss += losses[j]
		}
		out[i] = null.FloatFrom(rsiFromAverages(sumGain/float64(window), sumLoss/float64(window)))
	}
	return out, nil
}

// RSI is RawRSI with the leading gap filled with NeutralRSI so the series is dense.
func RSI(prices []float64, window int) ([]float64, error) {
	raw, err := RawRSI(prices, window)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = v.ValueOrZero()
		if !v.Valid {
			out[i] = NeutralRSI
		}
	}
	return out, nil
}

// RSIWithFill returns RawRSI, or RSI wrapped as valid values when fillNeutral is set.
func RSIWithFill(prices []float64, window int, fillNeutral bool) ([]null.Float, error) {
	if !fillNeutral {
		return RawRSI(prices, window)
	}
	dense, err := RSI(prices, window)
	if err != nil {
		return nil, err
	}
	out := make([]null.Float, len(dense))
	for i, v := range dense {
		out[i] = null.FloatFrom(v)
	}
	return out, nil
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return NeutralRSI
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
