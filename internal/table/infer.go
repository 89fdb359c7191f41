package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// InferOptions controls how raw cells are classified.
type InferOptions struct {
	// DecimalSeparator enables locale-aware numbers when non-zero (e.g. ',' for "1.234,5").
	DecimalSeparator rune
	// ThousandsSeparator is stripped before parsing; 0 auto-detects when DecimalSeparator is set.
	ThousandsSeparator rune
}

// naTokens mirrors the default set of strings pandas reads as missing.
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {}, "-NaN": {}, "-nan": {},
	"1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {},
	"n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a raw cell should be treated as null.
func IsMissing(s string) bool {
	_, ok := naTokens[strings.TrimSpace(s)]
	return ok
}

// Infer classifies every column of a raw string grid and returns a typed table.
// Empty header names become "Unnamed: i"; repeated names get ".1", ".2" suffixes.
// Rows shorter than the header are padded with missing cells.
func Infer(name string, header []string, rows [][]string, opt InferOptions) (*Table, error) {
	names := uniqueNames(header)
	cols := make([]*Column, len(names))
	for j, colName := range names {
		raw := make([]string, len(rows))
		for i, rec := range rows {
			if j < len(rec) {
				raw[i] = strings.TrimSpace(rec[j])
			}
		}
		cols[j] = inferColumn(colName, raw, opt)
	}
	t, err := New(name, cols...)
	if err != nil {
		return nil, eris.Wrap(err, "table: infer")
	}
	return t, nil
}

func inferColumn(name string, raw []string, opt InferOptions) *Column {
	null := make([]bool, len(raw))
	present := 0
	for i, v := range raw {
		if IsMissing(v) {
			null[i] = true
			continue
		}
		present++
	}

	// An all-missing column reads as float NaN.
	if nums, integral, ok := parseAllNumeric(raw, null, opt); ok {
		c := &Column{Name: name, Type: Numeric, DType: DTypeFloat, Nums: nums, Null: null}
		if integral && present == len(raw) && present > 0 {
			c.DType = DTypeInt
		}
		return c
	}

	strs := make([]string, len(raw))
	copy(strs, raw)
	c := &Column{Name: name, Strs: strs, Null: null}
	switch {
	case allMatch(raw, null, isBool):
		c.Type, c.DType = Boolean, DTypeBool
	case allMatch(raw, null, func(s string) bool { _, ok := parseTimeMaybe(s); return ok }):
		c.Type, c.DType = Datetime, DTypeObject
	default:
		c.Type, c.DType = Text, DTypeObject
	}
	return c
}

func parseAllNumeric(raw []string, null []bool, opt InferOptions) ([]float64, bool, bool) {
	nums := make([]float64, len(raw))
	integral := true
	for i, v := range raw {
		if null[i] {
			nums[i] = math.NaN()
			continue
		}
		x, ok := parseNumeric(v, opt)
		if !ok {
			return nil, false, false
		}
		if x != math.Trunc(x) || math.IsInf(x, 0) || strings.ContainsAny(v, ".eE") {
			integral = false
		}
		nums[i] = x
	}
	return nums, integral, true
}

func allMatch(raw []string, null []bool, fn func(string) bool) bool {
	seen := false
	for i, v := range raw {
		if null[i] {
			continue
		}
		if !fn(v) {
			return false
		}
		seen = true
	}
	return seen
}

func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	}
	return false
}

func uniqueNames(header []string) []string {
	out := make([]string, len(header))
	count := map[string]int{}
	for i, h := range header {
		n := strings.TrimSpace(h)
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		base := n
		for {
			if _, dup := count[n]; !dup {
				break
			}
			count[base]++
			n = fmt.Sprintf("%s.%d", base, count[base])
		}
		count[n] = 0
		out[i] = n
	}
	return out
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseNumeric is strict unless a decimal separator was configured, in which case
// thousands separators are removed and the decimal mark normalized to '.'.
func parseNumeric(s string, opt InferOptions) (float64, bool) {
	raw := strings.TrimSpace(s)
	if opt.DecimalSeparator == 0 {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
