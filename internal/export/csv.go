package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"MarketLens/internal/model"
)

// CSVExporter writes rows as CSV (header: date,open,high,low,close,volume,sma,ema,rsi).
// Undefined values are empty cells.
type CSVExporter struct{}

func (CSVExporter) Extension() string { return "csv" }

func (CSVExporter) Save(rows []Row, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteRowsCSV(f, rows)
}

// WriteRowsCSV writes rows to w.
func WriteRowsCSV(out io.Writer, rows []Row) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"date", "open", "high", "low", "close", "volume", "sma", "ema", "rsi"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{
			r.Date,
			floatStr(r.Open),
			floatStr(r.High),
			floatStr(r.Low),
			floatStr(r.Close),
			floatStr(r.Volume),
			optStr(r.SMA),
			floatStr(r.EMA),
			optStr(r.RSI),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteRecommendationsCSV writes ranked items (header: rank,id,name,category,score).
func WriteRecommendationsCSV(out io.Writer, recs []model.Recommendation) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"rank", "id", "name", "category", "score"}); err != nil {
		return err
	}
	for i, r := range recs {
		if err := w.Write([]string{
			strconv.Itoa(i + 1),
			strconv.Itoa(r.Item.ID),
			r.Item.Name,
			r.Item.Category,
			strconv.FormatFloat(r.Score, 'f', 4, 64),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func optStr(f *float64) string {
	if f == nil {
		return ""
	}
	return floatStr(*f)
}
