package analysis

import (
	"math"

	"github.com/KaramelBytes/autolysis-cli/internal/table"
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"
)

// PairwiseCorrelation builds the Pearson matrix over the given numeric columns.
// Each pair uses only rows where both values are present; pairs with fewer than
// two such rows, or with a constant side, are NaN. The diagonal is 1 for columns
// with variance and NaN otherwise.
func PairwiseCorrelation(cols []*table.Column) (*CorrelationMatrix, error) {
	n := len(cols)
	m := &CorrelationMatrix{Columns: make([]string, n), Values: make([][]float64, n)}
	for i, c := range cols {
		if !c.IsNumeric() {
			return nil, eris.Errorf("correlation: column %q is not numeric", c.Name)
		}
		m.Columns[i] = c.Name
		m.Values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		if varies(cols[i].NonMissing()) {
			m.Values[i][i] = 1
		} else {
			m.Values[i][i] = math.NaN()
		}
		for j := i + 1; j < n; j++ {
			r := pearson(cols[i], cols[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

func pearson(a, b *table.Column) float64 {
	var x, y []float64
	for k := 0; k < a.Len() && k < b.Len(); k++ {
		if a.Null[k] || b.Null[k] || math.IsNaN(a.Nums[k]) || math.IsNaN(b.Nums[k]) {
			continue
		}
		x = append(x, a.Nums[k])
		y = append(y, b.Nums[k])
	}
	if len(x) < 2 || !varies(x) || !varies(y) {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return r
	}
	return math.Max(-1, math.Min(1, r))
}

func varies(vals []float64) bool {
	if len(vals) < 2 {
		return false
	}
	for _, v := range vals[1:] {
		if v != vals[0] {
			return true
		}
	}
	return false
}
