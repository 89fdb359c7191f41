package loader

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/autolysis-cli/internal/table"
	"github.com/rotisserie/eris"
)

// ErrLoad marks unreadable or malformed input. It is fatal and never retried.
var ErrLoad = errors.New("load failed")

// ErrUnsupported indicates no registered source handles the file.
var ErrUnsupported = errors.New("unsupported dataset format")

// Options controls how a dataset file is read and typed.
type Options struct {
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// Encoding is "auto" (UTF-8 when valid, else ISO-8859-1) or any WHATWG label.
	Encoding string
	// Sheet selects an XLSX sheet by name; empty means the first sheet.
	Sheet string
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Locale-aware numbers, forwarded to type inference.
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// DefaultOptions returns the loader defaults.
func DefaultOptions() Options {
	return Options{Encoding: "auto"}
}

func (o Options) infer() table.InferOptions {
	return table.InferOptions{DecimalSeparator: o.DecimalSeparator, ThousandsSeparator: o.ThousandsSeparator}
}

// Source reads one family of file formats into a typed table.
type Source interface {
	CanLoad(path string) bool
	Load(path string, opt Options) (*table.Table, error)
}

var registry []Source

// Register adds a source implementation to the registry.
func Register(s Source) {
	registry = append(registry, s)
}

// Load selects a source by file name and returns the typed table.
func Load(path string, opt Options) (*table.Table, error) {
	for _, s := range registry {
		if s.CanLoad(path) {
			t, err := s.Load(path, opt)
			if err != nil {
				return nil, eris.Wrapf(errors.Join(ErrLoad, err), "load %s", filepath.Base(path))
			}
			return t, nil
		}
	}
	return nil, eris.Wrapf(errors.Join(ErrLoad, ErrUnsupported), "load %s", filepath.Base(path))
}

// DatasetName is the file name without directory or extension; analyze uses
// it as the default output directory.
func DatasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func init() {
	Register(csvSource{})
	Register(xlsxSource{})
}
