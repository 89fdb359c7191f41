package analysis

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/autolysis-cli/internal/table"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrMandatory marks a failure of a required result field (shape, types,
// missing counts or summary). No partial result is returned in that case.
var ErrMandatory = errors.New("mandatory analysis failed")

// Options controls profiling behavior.
type Options struct {
	// IQRFactor is the fence multiplier for outlier detection. 0 means DefaultIQRFactor.
	IQRFactor float64
	// Logger receives warnings for optional fields that failed. nil means zap.L().
	Logger *zap.Logger
}

// DefaultOptions returns the profiling defaults.
func DefaultOptions() Options {
	return Options{IQRFactor: DefaultIQRFactor}
}

// Swapped in tests to exercise the optional-failure path.
var (
	correlate = PairwiseCorrelation
	outliers  = func(cols []*table.Column, k float64) (OutlierSet, error) { return DetectOutliers(cols, k), nil }
)

// Analyze profiles t. Mandatory fields either all succeed or Analyze returns an
// error wrapping ErrMandatory. Correlation and outliers are computed only when the
// table has numeric columns; their failures are recorded as warnings.
func Analyze(t *table.Table, opt Options) (*AnalysisResult, error) {
	log := opt.Logger
	if log == nil {
		log = zap.L()
	}
	k := opt.IQRFactor
	if k <= 0 {
		k = DefaultIQRFactor
	}

	var res *AnalysisResult
	if err := safely(func() error {
		var err error
		res, err = mandatory(t)
		return err
	}); err != nil {
		return nil, eris.Wrap(errors.Join(ErrMandatory, err), "analysis: profile table")
	}

	numeric := t.Numeric()
	if len(numeric) == 0 {
		res.CorrelationStatus = StatusNotApplicable
		res.OutliersStatus = StatusNotApplicable
		return res, nil
	}

	if err := safely(func() error {
		m, err := correlate(numeric)
		if err != nil {
			return err
		}
		res.Correlation = m
		return nil
	}); err != nil {
		res.CorrelationStatus = StatusFailed
		res.Warnings = append(res.Warnings, FieldWarning{Field: FieldCorrelation, Err: err.Error()})
		log.Warn("correlation matrix failed", zap.String("table", t.Name), zap.Error(err))
	} else {
		res.CorrelationStatus = StatusComputed
	}

	if err := safely(func() error {
		set, err := outliers(numeric, k)
		if err != nil {
			return err
		}
		res.Outliers = &set
		return nil
	}); err != nil {
		res.OutliersStatus = StatusFailed
		res.Warnings = append(res.Warnings, FieldWarning{Field: FieldOutliers, Err: err.Error()})
		log.Warn("outlier detection failed", zap.String("table", t.Name), zap.Error(err))
	} else {
		res.OutliersStatus = StatusComputed
	}
	return res, nil
}

func mandatory(t *table.Table) (*AnalysisResult, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	res := &AnalysisResult{
		Name:        t.Name,
		Shape:       Shape{Rows: t.Rows(), Columns: t.Width()},
		ColumnOrder: make([]string, 0, t.Width()),
		Columns:     make(map[string]string, t.Width()),
		Missing:     make(map[string]int, t.Width()),
	}
	for _, c := range t.Columns {
		res.ColumnOrder = append(res.ColumnOrder, c.Name)
		res.Columns[c.Name] = c.DType
		res.Missing[c.Name] = c.Missing()
	}
	res.Summary = Describe(t)
	return res, nil
}

// safely runs fn and converts a panic into an error.
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
