package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/autolysis-cli/internal/table"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

type csvSource struct{}

func (csvSource) CanLoad(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (csvSource) Load(path string, opt Options) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "csv: read file")
	}
	dec, err := pickDecoder(data, opt.Encoding)
	if err != nil {
		return nil, err
	}
	text, err := dec.Bytes(data)
	if err != nil {
		return nil, eris.Wrap(err, "csv: decode")
	}

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, eris.New("csv: empty file")
		}
		return nil, eris.Wrap(err, "csv: read header")
	}
	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrapf(err, "csv: read row %d", len(rows)+1)
		}
		if len(rec) > len(header) {
			return nil, eris.Errorf("csv: row %d has %d fields, expected %d", len(rows)+1, len(rec), len(header))
		}
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			break
		}
		rows = append(rows, rec)
	}
	return table.Infer(filepath.Base(path), header, rows, opt.infer())
}

// pickDecoder resolves the text encoding. "auto" keeps valid UTF-8 (dropping a BOM)
// and falls back to ISO-8859-1, which decodes any byte sequence.
func pickDecoder(data []byte, label string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "auto":
		if utf8.Valid(data) {
			return &encoding.Decoder{Transformer: unicode.BOMOverride(unicode.UTF8.NewDecoder())}, nil
		}
		return charmap.ISO8859_1.NewDecoder(), nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: unsupported encoding %q", label)
	}
	return enc.NewDecoder(), nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
