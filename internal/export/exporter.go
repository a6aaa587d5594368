package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"MarketLens/internal/model"
)

// SeriesExporter writes indicator rows to a file.
type SeriesExporter interface {
	Save(rows []Row, path string) error
	Extension() string
}

// NewSeriesExporter creates an implementation by format (csv, parquet, json).
func NewSeriesExporter(format string) (SeriesExporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVExporter{}, nil
	case "parquet":
		return ParquetExporter{}, nil
	case "json":
		return JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("export format %q (use csv, parquet, json): %w", format, model.ErrInvalidInput)
	}
}

// WriteAnalysis saves an analysis under dir as SYMBOL_FROM_TO.ext and returns the path.
func WriteAnalysis(dir string, a *model.Analysis, e SeriesExporter) (string, error) {
	if a == nil || a.Series == nil || len(a.Series.Bars) == 0 {
		return "", fmt.Errorf("export empty analysis: %w", model.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	bars := a.Series.Bars
	name := fmt.Sprintf("%s_%s_%s.%s", sanitize(a.Series.Symbol),
		bars[0].Time.Format("20060102"), bars[len(bars)-1].Time.Format("20060102"), e.Extension())
	path := filepath.Join(dir, name)
	if err := e.Save(Rows(a), path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

// sanitize keeps tickers like ^GSPC or BRK/B safe as file names.
func sanitize(symbol string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, symbol)
}
