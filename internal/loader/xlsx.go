package loader

import (
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/autolysis-cli/internal/table"
	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
)

type xlsxSource struct{}

func (xlsxSource) CanLoad(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

func (xlsxSource) Load(path string, opt Options) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	defer f.Close()

	sheet := opt.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, eris.New("xlsx: workbook has no sheets")
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, eris.Errorf("xlsx: sheet %q not found", sheet)
	}

	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: read sheet %q", sheet)
	}
	if len(grid) == 0 {
		return nil, eris.Errorf("xlsx: sheet %q is empty", sheet)
	}
	header := grid[0]
	rows := grid[1:]
	if opt.MaxRows > 0 && len(rows) > opt.MaxRows {
		rows = rows[:opt.MaxRows]
	}
	// GetRows trims trailing empty cells, so only overlong rows need checking.
	for i, rec := range rows {
		if len(rec) > len(header) {
			return nil, eris.Errorf("xlsx: row %d has %d cells, expected %d", i+1, len(rec), len(header))
		}
	}
	return table.Infer(filepath.Base(path)+":"+sheet, header, rows, opt.infer())
}
