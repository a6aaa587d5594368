package model

// RSIZone classifies momentum against the 30/70 bands.
type RSIZone string

const (
	ZoneOversold   RSIZone = "OVERSOLD"
	ZoneNeutral    RSIZone = "NEUTRAL"
	ZoneOverbought RSIZone = "OVERBOUGHT"
)

// FactorScore represents a single factor's scoring result.
type FactorScore struct {
	Name       string
	RawScore   float64
	Weight     float64
	Weighted   float64
	Commentary string
}

// SignalTier maps a total score range to a label.
type SignalTier struct {
	Label    string
	MinScore float64
}

// Signal is the strategy engine's reading of the latest indicator point.
type Signal struct {
	Factors    []FactorScore
	TotalScore float64
	Tier       SignalTier
	Zone       RSIZone
	WarningMsg string
}
