package export

import "MarketLens/internal/model"

// Row is the flat DTO written by every exporter: one bar with its indicators.
// Undefined indicator values are nil.
type Row struct {
	Date   string   `json:"date" parquet:"date"`
	Open   float64  `json:"open" parquet:"open"`
	High   float64  `json:"high" parquet:"high"`
	Low    float64  `json:"low" parquet:"low"`
	Close  float64  `json:"close" parquet:"close"`
	Volume float64  `json:"volume" parquet:"volume"`
	SMA    *float64 `json:"sma" parquet:"sma,optional"`
	EMA    float64  `json:"ema" parquet:"ema"`
	RSI    *float64 `json:"rsi" parquet:"rsi,optional"`
}

// Rows flattens an analysis. Bars and indicators are index aligned.
func Rows(a *model.Analysis) []Row {
	if a == nil || a.Series == nil {
		return nil
	}
	rows := make([]Row, 0, len(a.Series.Bars))
	for i, b := range a.Series.Bars {
		r := Row{
			Date:   b.Time.Format("2006-01-02"),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
		if i < len(a.Indicators) {
			p := a.Indicators[i]
			r.SMA = p.SMA.Ptr()
			r.EMA = p.EMA
			r.RSI = p.RSI.Ptr()
		}
		rows = append(rows, r)
	}
	return rows
}
