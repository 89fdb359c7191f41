package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/autolysis-cli/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestLoadCSV(t *testing.T) {
	p := writeFile(t, "media.csv", []byte("date,language,overall,quality\n2024-01-01,en,3,4\n2024-01-02,fr,,5\n2024-01-03,en,4,\n"))
	tbl, err := Load(p, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "media.csv", tbl.Name)
	assert.Equal(t, 3, tbl.Rows())
	assert.Equal(t, 4, tbl.Width())

	overall, ok := tbl.Column("overall")
	require.True(t, ok)
	assert.Equal(t, table.Numeric, overall.Type)
	assert.Equal(t, 1, overall.Missing())

	date, _ := tbl.Column("date")
	assert.Equal(t, table.Datetime, date.Type)
}

func TestLoadTSVSniffsDelimiter(t *testing.T) {
	p := writeFile(t, "x.tsv", []byte("a\tb\n1\tx\n2\ty\n"))
	tbl, err := Load(p, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Width())
}

func TestLoadLatin1FallsBack(t *testing.T) {
	// "Café" encoded as ISO-8859-1 is not valid UTF-8.
	p := writeFile(t, "x.csv", []byte("name,v\nCaf\xe9,1\n"))
	tbl, err := Load(p, DefaultOptions())
	require.NoError(t, err)
	name, _ := tbl.Column("name")
	assert.Equal(t, []string{"Café"}, name.Present())
}

func TestLoadUTF8BOM(t *testing.T) {
	p := writeFile(t, "x.csv", []byte("\xef\xbb\xbfid,v\n1,2\n"))
	tbl, err := Load(p, DefaultOptions())
	require.NoError(t, err)
	_, ok := tbl.Column("id")
	assert.True(t, ok)
}

func TestLoadHeaderOnly(t *testing.T) {
	p := writeFile(t, "x.csv", []byte("a,b\n"))
	tbl, err := Load(p, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Rows())
	assert.Equal(t, 2, tbl.Width())
}

func TestLoadMaxRows(t *testing.T) {
	p := writeFile(t, "x.csv", []byte("a\n1\n2\n3\n"))
	opt := DefaultOptions()
	opt.MaxRows = 2
	tbl, err := Load(p, opt)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Rows())
}

func TestLoadFailures(t *testing.T) {
	cases := map[string]string{
		"empty.csv": "",
		"long.csv":  "a,b\n1,2,3\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, name, []byte(body)), DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrLoad))
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"), DefaultOptions())
	assert.True(t, errors.Is(err, ErrLoad))

	_, err = Load(writeFile(t, "x.parquet", []byte("PAR1")), DefaultOptions())
	assert.True(t, errors.Is(err, ErrUnsupported))

	opt := DefaultOptions()
	opt.Encoding = "no-such-charset"
	_, err = Load(writeFile(t, "x.csv", []byte("a\n1\n")), opt)
	assert.True(t, errors.Is(err, ErrLoad))
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Data", "A1", &[]any{"group", "score"}))
	require.NoError(t, f.SetSheetRow("Data", "A2", &[]any{"a", 1.5}))
	require.NoError(t, f.SetSheetRow("Data", "A3", &[]any{"b", 2}))
	p := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(p))

	opt := DefaultOptions()
	opt.Sheet = "Data"
	tbl, err := Load(p, opt)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Rows())
	score, ok := tbl.Column("score")
	require.True(t, ok)
	assert.Equal(t, table.Numeric, score.Type)
	assert.Equal(t, []float64{1.5, 2}, score.NonMissing())

	opt.Sheet = "Nope"
	_, err = Load(p, opt)
	assert.True(t, errors.Is(err, ErrLoad))
}

func TestDatasetName(t *testing.T) {
	assert.Equal(t, "goodreads", DatasetName("/data/goodreads.csv"))
}
