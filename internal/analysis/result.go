package analysis

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/KaramelBytes/autolysis-cli/internal/table"
)

// Shape is the (rows, columns) size of the profiled table.
type Shape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// ColumnStats holds type-appropriate descriptive statistics for one column.
// Numeric columns fill Mean..Max (NaN when undefined); other columns fill Unique/Top/Freq.
type ColumnStats struct {
	Column string
	Kind   table.ColumnType
	Count  int
	// Non-numeric
	Unique int
	Top    string
	Freq   int
	// Numeric
	Mean   float64
	Std    float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// IsNumeric reports whether the record carries numeric descriptors.
func (s ColumnStats) IsNumeric() bool { return s.Kind == table.Numeric }

// MarshalJSON emits describe()-style keys; undefined numbers become null.
func (s ColumnStats) MarshalJSON() ([]byte, error) {
	if s.IsNumeric() {
		return json.Marshal(struct {
			Count  int      `json:"count"`
			Mean   *float64 `json:"mean"`
			Std    *float64 `json:"std"`
			Min    *float64 `json:"min"`
			Q1     *float64 `json:"25%"`
			Median *float64 `json:"50%"`
			Q3     *float64 `json:"75%"`
			Max    *float64 `json:"max"`
		}{s.Count, finite(s.Mean), finite(s.Std), finite(s.Min), finite(s.Q1), finite(s.Median), finite(s.Q3), finite(s.Max)})
	}
	out := struct {
		Count  int     `json:"count"`
		Unique int     `json:"unique"`
		Top    *string `json:"top"`
		Freq   *int    `json:"freq"`
	}{Count: s.Count, Unique: s.Unique}
	if s.Count > 0 {
		top, freq := s.Top, s.Freq
		out.Top, out.Freq = &top, &freq
	}
	return json.Marshal(out)
}

// SummaryStatistics is one record per column, in table order.
type SummaryStatistics []ColumnStats

// Get returns the record for a column name.
func (s SummaryStatistics) Get(name string) (ColumnStats, bool) {
	for _, cs := range s {
		if cs.Column == name {
			return cs, true
		}
	}
	return ColumnStats{}, false
}

// MarshalJSON keys the records by column name.
func (s SummaryStatistics) MarshalJSON() ([]byte, error) {
	m := make(map[string]ColumnStats, len(s))
	for _, cs := range s {
		m[cs.Column] = cs
	}
	return json.Marshal(m)
}

// CorrelationMatrix is a symmetric Pearson matrix over numeric columns.
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// At returns the coefficient for two column names; ok is false if either is unknown.
func (m *CorrelationMatrix) At(a, b string) (float64, bool) {
	ia, ib := m.index(a), m.index(b)
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return m.Values[ia][ib], true
}

func (m *CorrelationMatrix) index(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// MarshalJSON emits a nested column → column → r mapping with NaN as null.
func (m *CorrelationMatrix) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]*float64, len(m.Columns))
	for i, a := range m.Columns {
		row := make(map[string]*float64, len(m.Columns))
		for j, b := range m.Columns {
			row[b] = finite(m.Values[i][j])
		}
		out[a] = row
	}
	return json.Marshal(out)
}

// PairCorr is a single off-diagonal coefficient.
type PairCorr struct {
	A, B string
	R    float64
}

// OutlierRow is a row with at least one value outside the IQR fences.
// Values holds only the offending cells, keyed by column name.
type OutlierRow struct {
	Row    int                `json:"row"`
	Values map[string]float64 `json:"values"`
}

// MarshalJSON writes infinite values as null.
func (o OutlierRow) MarshalJSON() ([]byte, error) {
	vals := make(map[string]*float64, len(o.Values))
	for k, v := range o.Values {
		vals[k] = finite(v)
	}
	return json.Marshal(struct {
		Row    int                 `json:"row"`
		Values map[string]*float64 `json:"values"`
	}{o.Row, vals})
}

// OutlierSet is ordered by row index.
type OutlierSet []OutlierRow

// FieldStatus reports what happened to an optional result field.
type FieldStatus string

const (
	StatusComputed      FieldStatus = "computed"
	StatusNotApplicable FieldStatus = "not_applicable"
	StatusFailed        FieldStatus = "failed"
)

// FieldWarning records a recoverable failure of an optional field.
type FieldWarning struct {
	Field string `json:"field"`
	Err   string `json:"error"`
}

// Optional field names.
const (
	FieldCorrelation = "correlation_matrix"
	FieldOutliers    = "outliers"
)

// AnalysisResult is the immutable outcome of profiling one table. Correlation and
// Outliers are nil when not computed; their status fields say why.
type AnalysisResult struct {
	Name              string             `json:"name"`
	Shape             Shape              `json:"shape"`
	ColumnOrder       []string           `json:"column_order"`
	Columns           map[string]string  `json:"columns"`
	Missing           map[string]int     `json:"missing_values"`
	Summary           SummaryStatistics  `json:"summary_statistics"`
	Correlation       *CorrelationMatrix `json:"correlation_matrix,omitempty"`
	Outliers          *OutlierSet        `json:"outliers,omitempty"`
	CorrelationStatus FieldStatus        `json:"correlation_status"`
	OutliersStatus    FieldStatus        `json:"outliers_status"`
	Warnings          []FieldWarning     `json:"warnings,omitempty"`
}

// HasOutliers reports whether outlier detection ran and found at least one row.
func (r *AnalysisResult) HasOutliers() bool {
	return r.Outliers != nil && len(*r.Outliers) > 0
}

// TopCorrelations returns up to n off-diagonal pairs ordered by |r|, skipping undefined ones.
func (r *AnalysisResult) TopCorrelations(n int) []PairCorr {
	if r.Correlation == nil {
		return nil
	}
	m := r.Correlation
	var pairs []PairCorr
	for i := 0; i < len(m.Columns); i++ {
		for j := i + 1; j < len(m.Columns); j++ {
			v := m.Values[i][j]
			if math.IsNaN(v) {
				continue
			}
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: v})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if n > 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
