package strategy

import (
	"fmt"

	"MarketLens/internal/model"
)

func factor(name string, score, weight float64, commentary string) model.FactorScore {
	return model.FactorScore{
		Name:       name,
		RawScore:   score,
		Weight:     weight,
		Weighted:   score * weight,
		Commentary: commentary,
	}
}

// scoreRSI scores the RSI reading, rewarding oversold and penalising overbought.
// Weight: 0.40
func scoreRSI(p model.IndicatorPoint) model.FactorScore {
	const weight = 0.40
	if !p.RSI.Valid {
		return factor("RSI", 0, weight, "RSI unavailable")
	}
	rsi := p.RSI.Float64
	var score float64
	switch {
	case rsi <= 25:
		score = 2.0
	case rsi <= 30:
		score = 1.5
	case rsi <= 40:
		score = 1.0
	case rsi <= 45:
		score = 0.5
	case rsi <= 55:
		score = 0
	case rsi <= 60:
		score = -0.5
	case rsi <= 70:
		score = -1.0
	case rsi <= 80:
		score = -1.5
	default:
		score = -2.0
	}
	return factor("RSI", score, weight, fmt.Sprintf("RSI=%.0f", rsi))
}

// scoreSMADeviation scores how far the close sits from its SMA.
// Weight: 0.35
func scoreSMADeviation(p model.IndicatorPoint) model.FactorScore {
	const weight = 0.35
	if !p.SMA.Valid || p.SMA.Float64 == 0 {
		return factor("SMA deviation", 0, weight, "SMA unavailable")
	}
	deviation := (p.Close - p.SMA.Float64) / p.SMA.Float64 * 100 // percentage

	var score float64
	switch {
	case deviation <= -10:
		score = 2.0
	case deviation <= -5:
		score = 1.5
	case deviation <= -2.5:
		score = 1.0
	case deviation <= 0:
		score = 0.5
	case deviation <= 2.5:
		score = 0
	case deviation <= 5:
		score = -0.5
	case deviation <= 7.5:
		score = -1.0
	case deviation <= 10:
		score = -1.5
	default:
		score = -2.0
	}
	return factor("SMA deviation", score, weight, fmt.Sprintf("deviation %+.1f%%", deviation))
}

// scoreTrend scores the alignment of close, EMA and SMA.
// Weight: 0.25
// Bull alignment: close > EMA > SMA
// Bear alignment: close < EMA < SMA
func scoreTrend(p model.IndicatorPoint) model.FactorScore {
	const weight = 0.25
	if !p.SMA.Valid {
		return factor("Trend", 0, weight, "SMA unavailable")
	}
	sma := p.SMA.Float64
	switch {
	case p.Close > p.EMA && p.EMA > sma:
		return factor("Trend", 1.0, weight, "bullish alignment")
	case p.Close < p.EMA && p.EMA < sma:
		return factor("Trend", -1.0, weight, "bearish alignment")
	default:
		return factor("Trend", 0, weight, "range bound")
	}
}
