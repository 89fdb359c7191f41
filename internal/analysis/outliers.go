package analysis

import (
	"math"

	"github.com/KaramelBytes/autolysis-cli/internal/table"
)

// DefaultIQRFactor is the Tukey fence multiplier.
const DefaultIQRFactor = 1.5

// DetectOutliers flags cells outside [Q1 - k*IQR, Q3 + k*IQR], with quartiles taken
// per column over present values. Missing cells are never flagged. The result holds
// one entry per row with at least one flagged cell, in row order.
func DetectOutliers(cols []*table.Column, k float64) OutlierSet {
	type fence struct{ lo, hi float64 }
	fences := make([]fence, len(cols))
	rows := 0
	for i, c := range cols {
		vals := c.NonMissing()
		if len(vals) == 0 {
			fences[i] = fence{math.Inf(-1), math.Inf(1)}
		} else {
			lo, hi := IQRBounds(vals, k)
			fences[i] = fence{lo, hi}
		}
		if c.Len() > rows {
			rows = c.Len()
		}
	}

	out := OutlierSet{}
	for r := 0; r < rows; r++ {
		var flagged map[string]float64
		for i, c := range cols {
			if r >= c.Len() || c.Null[r] {
				continue
			}
			v := c.Nums[r]
			if math.IsNaN(v) || !(v < fences[i].lo || v > fences[i].hi) {
				continue
			}
			if flagged == nil {
				flagged = make(map[string]float64)
			}
			flagged[c.Name] = v
		}
		if flagged != nil {
			out = append(out, OutlierRow{Row: r, Values: flagged})
		}
	}
	return out
}

// CountByColumn returns the number of flagged cells per column name.
func (s OutlierSet) CountByColumn() map[string]int {
	out := make(map[string]int)
	for _, row := range s {
		for name := range row.Values {
			out[name]++
		}
	}
	return out
}
