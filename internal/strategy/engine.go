package strategy

import (
	"fmt"

	"MarketLens/internal/model"
)

// RSI bands used for zone classification.
const (
	OversoldRSI   = 30.0
	OverboughtRSI = 70.0
)

// Tiers defines the 5-level signal mapping, highest first.
var Tiers = []model.SignalTier{
	{Label: "Strong Buy", MinScore: 1.0},
	{Label: "Buy", MinScore: 0.4},
	{Label: "Hold", MinScore: -0.4},
	{Label: "Sell", MinScore: -1.0},
}

// DefaultTier is the lowest tier for scores < -1.0.
var DefaultTier = model.SignalTier{Label: "Strong Sell", MinScore: -2.0}

// mapTier maps a total score to a SignalTier.
func mapTier(totalScore float64) model.SignalTier {
	for _, t := range Tiers {
		if totalScore >= t.MinScore {
			return t
		}
	}
	return DefaultTier
}

// Zone classifies an RSI reading. An undefined reading is neutral.
func Zone(rsi float64, valid bool) model.RSIZone {
	switch {
	case !valid:
		return model.ZoneNeutral
	case rsi > OverboughtRSI:
		return model.ZoneOverbought
	case rsi < OversoldRSI:
		return model.ZoneOversold
	default:
		return model.ZoneNeutral
	}
}

// Evaluate scores the latest indicator point.
func Evaluate(point model.IndicatorPoint) *model.Signal {
	factors := []model.FactorScore{
		scoreRSI(point),
		scoreSMADeviation(point),
		scoreTrend(point),
	}

	var total float64
	for _, f := range factors {
		total += f.Weighted
	}

	signal := &model.Signal{
		Factors:    factors,
		TotalScore: total,
		Tier:       mapTier(total),
		Zone:       Zone(point.RSI.Float64, point.RSI.Valid),
	}

	switch signal.Zone {
	case model.ZoneOverbought:
		signal.WarningMsg = fmt.Sprintf("RSI %.1f above %.0f: overbought, consider taking profit", point.RSI.Float64, OverboughtRSI)
	case model.ZoneOversold:
		signal.WarningMsg = fmt.Sprintf("RSI %.1f below %.0f: oversold", point.RSI.Float64, OversoldRSI)
	}
	return signal
}
