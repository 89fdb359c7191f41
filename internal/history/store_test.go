package history

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRun(dataset string, started time.Time) Run {
	return Run{
		Dataset: dataset, Rows: 10, Columns: 3, NumericColumns: 2, Charts: 3,
		CorrelationStatus: "computed", OutliersStatus: "computed", Narrative: true,
		OutputDir: "out", StartedAt: started, Duration: 1500 * time.Millisecond,
	}
}

func TestRecordAndList(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	id1, err := s.Record(ctx, sampleRun("a.csv", base))
	require.NoError(t, err)
	assert.NotEmpty(t, id1)
	id2, err := s.Record(ctx, sampleRun("b.csv", base.Add(time.Hour)))
	require.NoError(t, err)

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, id2, runs[0].ID, "newest first")
	assert.Equal(t, "b.csv", runs[0].Dataset)
	assert.Equal(t, 1500*time.Millisecond, runs[0].Duration)
	assert.True(t, runs[0].Narrative)
	assert.True(t, runs[1].StartedAt.Equal(base))

	limited, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecordDuplicateID(t *testing.T) {
	s := openTemp(t)
	r := sampleRun("a.csv", time.Now())
	r.ID = "fixed"
	_, err := s.Record(context.Background(), r)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), r)
	assert.Error(t, err)
}

func TestExportParquet(t *testing.T) {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	runs := []Run{sampleRun("a.csv", started), sampleRun("b.csv", started.Add(time.Minute))}
	runs[0].ID, runs[1].ID = "r1", "r2"

	path := filepath.Join(t.TempDir(), "runs.parquet")
	require.NoError(t, ExportParquet(runs, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	reader := parquet.NewGenericReader[runRecord](f)
	defer reader.Close()

	got := make([]runRecord, reader.NumRows())
	n, err := reader.Read(got)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, 2, n)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, "b.csv", got[1].Dataset)
	assert.Equal(t, int64(1500), got[0].DurationMs)
	assert.Equal(t, int32(2), got[0].NumericColumns)
}
