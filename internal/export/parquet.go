package export

import (
	"github.com/parquet-go/parquet-go"
)

// ParquetExporter writes rows as Parquet; sma and rsi are optional columns.
type ParquetExporter struct{}

func (ParquetExporter) Extension() string { return "parquet" }

func (ParquetExporter) Save(rows []Row, path string) error {
	return parquet.WriteFile(path, rows)
}
