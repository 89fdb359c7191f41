package analysis

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/autolysis-cli/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var nan = math.NaN()

func sample(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New("sample.csv",
		table.NumericColumn("a", []float64{1, 2, 3, 4, 100}),
		table.NumericColumn("b", []float64{2, 4, 6, 8, 10}),
		table.TextColumn("c", []string{"x", "y", "x", "", "z"}),
	)
	require.NoError(t, err)
	return tbl
}

func quiet() Options {
	opt := DefaultOptions()
	opt.Logger = zap.NewNop()
	return opt
}

func TestQuantileLinear(t *testing.T) {
	vals := []float64{100, 1, 3, 2, 4}
	assert.Equal(t, 2.0, Quantile(vals, 0.25))
	assert.Equal(t, 3.0, Quantile(vals, 0.5))
	assert.Equal(t, 4.0, Quantile(vals, 0.75))
	assert.InDelta(t, 1.75, Quantile([]float64{1, 2, 3, 4}, 0.25), 1e-12)
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
	assert.Equal(t, 2.0, Quantile([]float64{nan, 2}, 0.5))

	lo, hi := IQRBounds(vals, 1.5)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 7.0, hi)
}

func TestAnalyzeMandatoryFields(t *testing.T) {
	res, err := Analyze(sample(t), quiet())
	require.NoError(t, err)

	assert.Equal(t, Shape{Rows: 5, Columns: 3}, res.Shape)
	assert.Equal(t, []string{"a", "b", "c"}, res.ColumnOrder)
	assert.Equal(t, map[string]string{"a": "int64", "b": "int64", "c": "object"}, res.Columns)
	assert.Equal(t, map[string]int{"a": 0, "b": 0, "c": 1}, res.Missing)

	a, ok := res.Summary.Get("a")
	require.True(t, ok)
	assert.Equal(t, 5, a.Count)
	assert.InDelta(t, 22.0, a.Mean, 1e-12)
	assert.InDelta(t, 43.6176570, a.Std, 1e-6)
	assert.Equal(t, 1.0, a.Min)
	assert.Equal(t, 2.0, a.Q1)
	assert.Equal(t, 3.0, a.Median)
	assert.Equal(t, 4.0, a.Q3)
	assert.Equal(t, 100.0, a.Max)

	c, _ := res.Summary.Get("c")
	assert.False(t, c.IsNumeric())
	assert.Equal(t, 4, c.Count)
	assert.Equal(t, 3, c.Unique)
	assert.Equal(t, "x", c.Top)
	assert.Equal(t, 2, c.Freq)
}

func TestAnalyzeCorrelationSymmetric(t *testing.T) {
	res, err := Analyze(sample(t), quiet())
	require.NoError(t, err)
	require.NotNil(t, res.Correlation)
	assert.Equal(t, StatusComputed, res.CorrelationStatus)

	m := res.Correlation
	assert.Equal(t, []string{"a", "b"}, m.Columns)
	for i := range m.Columns {
		assert.Equal(t, 1.0, m.Values[i][i])
		for j := range m.Columns {
			assert.Equal(t, m.Values[i][j], m.Values[j][i])
			assert.LessOrEqual(t, math.Abs(m.Values[i][j]), 1.0)
		}
	}
	r, ok := m.At("a", "b")
	require.True(t, ok)
	assert.Greater(t, r, 0.5)
	_, ok = m.At("a", "c")
	assert.False(t, ok)
}

func TestAnalyzeOutliers(t *testing.T) {
	res, err := Analyze(sample(t), quiet())
	require.NoError(t, err)
	require.NotNil(t, res.Outliers)
	assert.Equal(t, StatusComputed, res.OutliersStatus)
	assert.Equal(t, OutlierSet{{Row: 4, Values: map[string]float64{"a": 100}}}, *res.Outliers)
	assert.True(t, res.HasOutliers())
}

func TestOutliersIgnoreMissingCells(t *testing.T) {
	cols := []*table.Column{
		table.NumericColumn("a", []float64{1, 2, 3, 4, 100}),
		table.NumericColumn("b", []float64{nan, 1, 1, 1, nan}),
	}
	set := DetectOutliers(cols, DefaultIQRFactor)
	require.Len(t, set, 1)
	assert.Equal(t, 4, set[0].Row)
	assert.Equal(t, map[string]float64{"a": 100}, set[0].Values)
}

func TestOutliersFencesAndCounts(t *testing.T) {
	// Fences for a are [-2.5, 7.5]; a constant b has zero-width fences and no outliers.
	cols := []*table.Column{
		table.NumericColumn("a", []float64{1, 2, 3, 4, 7, -5}),
		table.NumericColumn("b", []float64{10, 10, 10, 10, 10, 10}),
	}
	set := DetectOutliers(cols, DefaultIQRFactor)
	lo, hi := IQRBounds(cols[0].NonMissing(), DefaultIQRFactor)
	for _, row := range set {
		for _, v := range row.Values {
			assert.True(t, v < lo || v > hi)
		}
	}
	require.Len(t, set, 1)
	assert.Equal(t, 5, set[0].Row)
	assert.Equal(t, map[string]int{"a": 1}, set.CountByColumn())
}

func TestOutliersUndefinedFencesFlagNothing(t *testing.T) {
	// Q3 interpolates between two infinities, so both fences are NaN.
	inf := math.Inf(1)
	set := DetectOutliers([]*table.Column{table.NumericColumn("a", []float64{1, inf, inf, inf})}, DefaultIQRFactor)
	assert.NotNil(t, set)
	assert.Empty(t, set)
}

func TestOutliersNoneFlagged(t *testing.T) {
	set := DetectOutliers([]*table.Column{table.NumericColumn("a", []float64{1, 2, 3})}, DefaultIQRFactor)
	assert.NotNil(t, set)
	assert.Empty(t, set)
}

func TestAnalyzeWithoutNumericColumns(t *testing.T) {
	tbl, err := table.New("t", table.TextColumn("name", []string{"a", "b"}))
	require.NoError(t, err)
	res, err := Analyze(tbl, quiet())
	require.NoError(t, err)
	assert.Nil(t, res.Correlation)
	assert.Nil(t, res.Outliers)
	assert.Equal(t, StatusNotApplicable, res.CorrelationStatus)
	assert.Equal(t, StatusNotApplicable, res.OutliersStatus)
	assert.Empty(t, res.Warnings)
}

func TestAnalyzeAllMissingColumn(t *testing.T) {
	tbl, err := table.New("t",
		table.NumericColumn("x", []float64{1, 2, 3}),
		table.NumericColumn("empty", []float64{nan, nan, nan}),
	)
	require.NoError(t, err)
	res, err := Analyze(tbl, quiet())
	require.NoError(t, err)

	e, _ := res.Summary.Get("empty")
	assert.Equal(t, 0, e.Count)
	assert.True(t, math.IsNaN(e.Mean))
	assert.Equal(t, 3, res.Missing["empty"])

	r, _ := res.Correlation.At("x", "empty")
	assert.True(t, math.IsNaN(r))
	d, _ := res.Correlation.At("empty", "empty")
	assert.True(t, math.IsNaN(d))

	raw, err := res.JSON()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	stats := decoded["summary_statistics"].(map[string]any)["empty"].(map[string]any)
	assert.Nil(t, stats["mean"])
}

func TestAnalyzeZeroRows(t *testing.T) {
	tbl, err := table.Infer("t", []string{"a", "b"}, nil, table.InferOptions{})
	require.NoError(t, err)
	res, err := Analyze(tbl, quiet())
	require.NoError(t, err)
	assert.Equal(t, Shape{Rows: 0, Columns: 2}, res.Shape)
	assert.Equal(t, 0, res.Missing["a"])
	assert.NotEmpty(t, res.Markdown())
}

func TestAnalyzeOptionalFailureKeepsResult(t *testing.T) {
	orig := correlate
	t.Cleanup(func() { correlate = orig })
	correlate = func([]*table.Column) (*CorrelationMatrix, error) { panic("boom") }

	res, err := Analyze(sample(t), quiet())
	require.NoError(t, err)
	assert.Nil(t, res.Correlation)
	assert.Equal(t, StatusFailed, res.CorrelationStatus)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, FieldCorrelation, res.Warnings[0].Field)
	assert.Contains(t, res.Warnings[0].Err, "boom")

	require.NotNil(t, res.Outliers)
	assert.Equal(t, StatusComputed, res.OutliersStatus)
	assert.Contains(t, res.Markdown(), "correlation_matrix unavailable")
}

func TestAnalyzeOutlierFailure(t *testing.T) {
	orig := outliers
	t.Cleanup(func() { outliers = orig })
	outliers = func([]*table.Column, float64) (OutlierSet, error) { return nil, errors.New("no fences") }

	res, err := Analyze(sample(t), quiet())
	require.NoError(t, err)
	assert.Nil(t, res.Outliers)
	assert.Equal(t, StatusFailed, res.OutliersStatus)
	assert.NotNil(t, res.Correlation)
}

func TestAnalyzeMandatoryFailure(t *testing.T) {
	bad := &table.Table{Name: "bad", Columns: []*table.Column{
		table.NumericColumn("a", []float64{1, 2}),
		table.NumericColumn("b", []float64{1}),
	}}
	res, err := Analyze(bad, quiet())
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMandatory))
	assert.True(t, errors.Is(err, table.ErrInvalidTable))
}

func TestAnalyzeDeterministic(t *testing.T) {
	first, err := Analyze(sample(t), quiet())
	require.NoError(t, err)
	second, err := Analyze(sample(t), quiet())
	require.NoError(t, err)
	a, err := first.JSON()
	require.NoError(t, err)
	b, err := second.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
	assert.Equal(t, first.Markdown(), second.Markdown())
}

func TestCorrelationPairwiseCompleteRows(t *testing.T) {
	cols := []*table.Column{
		table.NumericColumn("x", []float64{1, 2, 3, nan}),
		table.NumericColumn("y", []float64{2, 4, 6, 100}),
		table.NumericColumn("only", []float64{nan, nan, 5, 9}),
		table.NumericColumn("flat", []float64{7, 7, 7, 7}),
	}
	m, err := PairwiseCorrelation(cols)
	require.NoError(t, err)
	r, _ := m.At("x", "y")
	assert.InDelta(t, 1.0, r, 1e-12)
	r, _ = m.At("x", "only")
	assert.True(t, math.IsNaN(r), "one shared row")
	r, _ = m.At("y", "flat")
	assert.True(t, math.IsNaN(r), "constant column")
	d, _ := m.At("flat", "flat")
	assert.True(t, math.IsNaN(d))

	_, err = PairwiseCorrelation([]*table.Column{table.TextColumn("t", []string{"a"})})
	assert.Error(t, err)
}

func TestTopCorrelations(t *testing.T) {
	tbl, err := table.New("t",
		table.NumericColumn("a", []float64{1, 2, 3, 4}),
		table.NumericColumn("b", []float64{1, 2, 3, 5}),
		table.NumericColumn("c", []float64{4, 1, 3, 2}),
	)
	require.NoError(t, err)
	res, err := Analyze(tbl, quiet())
	require.NoError(t, err)
	pairs := res.TopCorrelations(2)
	require.Len(t, pairs, 2)
	assert.Equal(t, "a", pairs[0].A)
	assert.Equal(t, "b", pairs[0].B)
	assert.GreaterOrEqual(t, math.Abs(pairs[0].R), math.Abs(pairs[1].R))
}

func TestMarkdownSections(t *testing.T) {
	res, err := Analyze(sample(t), quiet())
	require.NoError(t, err)
	md := res.Markdown()
	for _, want := range []string{"[DATASET SUMMARY]", "File: sample.csv", "Rows: 5", "[SCHEMA]", "- a: int64", "[CORRELATIONS]", "[OUTLIERS]", "• a: 1"} {
		assert.True(t, strings.Contains(md, want), "missing %q", want)
	}
}

func TestCategoricalTopTieBreak(t *testing.T) {
	tbl, err := table.New("t", table.TextColumn("c", []string{"b", "a", "a", "b"}))
	require.NoError(t, err)
	s := Describe(tbl)
	require.Len(t, s, 1)
	assert.Equal(t, "a", s[0].Top)
	assert.Equal(t, 2, s[0].Freq)
}
