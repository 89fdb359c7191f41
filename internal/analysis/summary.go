package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/autolysis-cli/internal/table"
	"github.com/montanaflynn/stats"
)

// Describe computes per-column statistics in table order.
func Describe(t *table.Table) SummaryStatistics {
	out := make(SummaryStatistics, 0, t.Width())
	for _, c := range t.Columns {
		if c.IsNumeric() {
			out = append(out, describeNumeric(c))
		} else {
			out = append(out, describeCategorical(c))
		}
	}
	return out
}

func describeNumeric(c *table.Column) ColumnStats {
	vals := c.NonMissing()
	cs := ColumnStats{Column: c.Name, Kind: c.Type, Count: len(vals)}
	nan := math.NaN()
	cs.Mean, cs.Std, cs.Min, cs.Q1, cs.Median, cs.Q3, cs.Max = nan, nan, nan, nan, nan, nan, nan
	if len(vals) == 0 {
		return cs
	}
	if m, err := stats.Mean(vals); err == nil {
		cs.Mean = m
	}
	if len(vals) > 1 {
		if sd, err := stats.StandardDeviationSample(vals); err == nil {
			cs.Std = sd
		}
	}
	if v, err := stats.Min(vals); err == nil {
		cs.Min = v
	}
	if v, err := stats.Max(vals); err == nil {
		cs.Max = v
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	cs.Q1 = quantile(sorted, 0.25)
	cs.Median = quantile(sorted, 0.5)
	cs.Q3 = quantile(sorted, 0.75)
	return cs
}

// describeCategorical counts distinct values; ties for the most frequent value
// go to the value that reached the count first.
func describeCategorical(c *table.Column) ColumnStats {
	vals := c.Present()
	cs := ColumnStats{Column: c.Name, Kind: c.Type, Count: len(vals)}
	counts := make(map[string]int, len(vals))
	for _, v := range vals {
		counts[v]++
		if n := counts[v]; n > cs.Freq {
			cs.Top, cs.Freq = v, n
		}
	}
	cs.Unique = len(counts)
	return cs
}
