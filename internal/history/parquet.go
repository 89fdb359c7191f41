package history

import (
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/rotisserie/eris"
)

// runRecord is the Parquet row layout of a Run.
type runRecord struct {
	ID                string    `parquet:"id,snappy"`
	Dataset           string    `parquet:"dataset,snappy"`
	Rows              int64     `parquet:"row_count,snappy"`
	Columns           int32     `parquet:"column_count,snappy"`
	NumericColumns    int32     `parquet:"numeric_columns,snappy"`
	Charts            int32     `parquet:"charts,snappy"`
	CorrelationStatus string    `parquet:"correlation_status,snappy"`
	OutliersStatus    string    `parquet:"outliers_status,snappy"`
	Narrative         bool      `parquet:"narrative,snappy"`
	OutputDir         string    `parquet:"output_dir,snappy"`
	StartedAt         time.Time `parquet:"started_at,snappy"`
	DurationMs        int64     `parquet:"duration_ms,snappy"`
}

func toRecords(runs []Run) []runRecord {
	out := make([]runRecord, len(runs))
	for i, r := range runs {
		out[i] = runRecord{
			ID:                r.ID,
			Dataset:           r.Dataset,
			Rows:              int64(r.Rows),
			Columns:           int32(r.Columns),
			NumericColumns:    int32(r.NumericColumns),
			Charts:            int32(r.Charts),
			CorrelationStatus: r.CorrelationStatus,
			OutliersStatus:    r.OutliersStatus,
			Narrative:         r.Narrative,
			OutputDir:         r.OutputDir,
			StartedAt:         r.StartedAt,
			DurationMs:        r.Duration.Milliseconds(),
		}
	}
	return out
}

// ExportParquet writes runs to a Parquet file at path.
func ExportParquet(runs []Run, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "history: create parquet file")
	}

	writer := parquet.NewGenericWriter[runRecord](file)
	if _, err := writer.Write(toRecords(runs)); err != nil {
		_ = writer.Close()
		_ = file.Close()
		return eris.Wrap(err, "history: write parquet rows")
	}
	if err := writer.Close(); err != nil {
		_ = file.Close()
		return eris.Wrap(err, "history: close parquet writer")
	}
	if err := file.Close(); err != nil {
		return eris.Wrap(err, "history: close parquet file")
	}
	return nil
}
