package analysis

import (
	"math"
	"sort"
)

// Quantile returns the q-th quantile of vals using linear interpolation between
// closest ranks (position q*(n-1)). NaN values are ignored; an empty input yields NaN.
func Quantile(vals []float64, q float64) float64 {
	sorted := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	sort.Float64s(sorted)
	return quantile(sorted, q)
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// IQRBounds returns the lower and upper fences Q1 - k*IQR and Q3 + k*IQR.
func IQRBounds(vals []float64, k float64) (lo, hi float64) {
	q1 := Quantile(vals, 0.25)
	q3 := Quantile(vals, 0.75)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr
}
