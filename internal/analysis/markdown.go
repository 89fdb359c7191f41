package analysis

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// JSON returns the indented JSON rendering of the result. NaN values are null.
func (r *AnalysisResult) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Markdown renders a compact, prompt-friendly summary of the result.
func (r *AnalysisResult) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Shape.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", r.Shape.Columns))

	b.WriteString("[SCHEMA]\n")
	for _, name := range r.ColumnOrder {
		missing := r.Missing[name]
		missPct := 0.0
		if r.Shape.Rows > 0 {
			missPct = float64(missing) * 100.0 / float64(r.Shape.Rows)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (missing %d, %.1f%%)", safeName(name), r.Columns[name], missing, missPct))
		if cs, ok := r.Summary.Get(name); ok {
			switch {
			case cs.IsNumeric() && cs.Count > 0:
				b.WriteString(fmt.Sprintf(" — mean %.4g, std %.4g, min %.4g, 25%% %.4g, 50%% %.4g, 75%% %.4g, max %.4g",
					cs.Mean, cs.Std, cs.Min, cs.Q1, cs.Median, cs.Q3, cs.Max))
			case !cs.IsNumeric() && cs.Count > 0:
				b.WriteString(fmt.Sprintf(" — %s, unique %d, top %s(%d)", cs.Kind, cs.Unique, safeVal(cs.Top), cs.Freq))
			}
		}
		b.WriteString("\n")
	}

	if pairs := r.TopCorrelations(10); len(pairs) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}

	if r.Outliers != nil {
		b.WriteString("\n[OUTLIERS]\n")
		if len(*r.Outliers) == 0 {
			b.WriteString("- no values outside the IQR fences\n")
		} else {
			b.WriteString(fmt.Sprintf("- %d rows with at least one value outside the IQR fences\n", len(*r.Outliers)))
			counts := r.Outliers.CountByColumn()
			for _, name := range r.ColumnOrder {
				if n := counts[name]; n > 0 {
					b.WriteString(fmt.Sprintf("  • %s: %d\n", name, n))
				}
			}
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		ws := append([]FieldWarning(nil), r.Warnings...)
		sort.SliceStable(ws, func(i, j int) bool { return ws[i].Field < ws[j].Field })
		for _, w := range ws {
			b.WriteString(fmt.Sprintf("- %s unavailable: %s\n", w.Field, w.Err))
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
