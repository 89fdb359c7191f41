// Package chart renders PNG visualizations of a table's numeric columns.
package chart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/autolysis-cli/internal/table"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// MaxDistributionCharts caps how many numeric columns get a distribution chart.
const MaxDistributionCharts = 3

// HeatmapFile is the file name of the correlation heatmap.
const HeatmapFile = "correlation_matrix.png"

// Kind identifies what an artifact depicts.
type Kind string

const (
	KindDistribution Kind = "distribution"
	KindHeatmap      Kind = "correlation_heatmap"
)

// Artifact is a chart written to disk. Column is empty for the heatmap.
type Artifact struct {
	Kind   Kind   `json:"kind"`
	Column string `json:"column,omitempty"`
	Path   string `json:"path"`
}

// Name is the artifact's file name without directory.
func (a Artifact) Name() string { return filepath.Base(a.Path) }

// Options controls chart generation.
type Options struct {
	// MaxDistributions overrides MaxDistributionCharts when > 0.
	MaxDistributions int
	// Width and Height in inches; 0 means 6.
	Width, Height float64
	Logger        *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxDistributions <= 0 {
		o.MaxDistributions = MaxDistributionCharts
	}
	if o.Width <= 0 {
		o.Width = 6
	}
	if o.Height <= 0 {
		o.Height = 6
	}
	if o.Logger == nil {
		o.Logger = zap.L()
	}
	return o
}

// Generate writes a distribution chart for each of the first MaxDistributions
// numeric columns that has data, then a correlation heatmap when there are at
// least two numeric columns. A chart that fails to render is logged and left out.
// The only returned error is failure to create outDir.
func Generate(t *table.Table, outDir string, opt Options) ([]Artifact, error) {
	opt = opt.withDefaults()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "chart: create output dir %s", outDir)
	}
	log := opt.Logger

	numeric := t.Numeric()
	var out []Artifact
	limit := opt.MaxDistributions
	if limit > len(numeric) {
		limit = len(numeric)
	}
	for _, c := range numeric[:limit] {
		vals := c.NonMissing()
		if len(vals) == 0 {
			log.Debug("skipping distribution of empty column", zap.String("column", c.Name))
			continue
		}
		path := filepath.Join(outDir, DistributionFile(c.Name))
		if err := render(func() error { return renderDistribution(c.Name, vals, path, opt) }); err != nil {
			log.Warn("distribution chart failed", zap.String("column", c.Name), zap.Error(err))
			continue
		}
		out = append(out, Artifact{Kind: KindDistribution, Column: c.Name, Path: path})
	}

	if len(numeric) > 1 {
		path := filepath.Join(outDir, HeatmapFile)
		if err := render(func() error { return renderHeatmap(numeric, path, opt) }); err != nil {
			log.Warn("correlation heatmap failed", zap.Error(err))
		} else {
			out = append(out, Artifact{Kind: KindHeatmap, Path: path})
		}
	}
	return out, nil
}

// DistributionFile returns the file name used for a column's distribution chart.
func DistributionFile(column string) string {
	r := strings.NewReplacer("/", "_", "\\", "_")
	return r.Replace(column) + "_distribution.png"
}

func render(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while rendering: %v", r)
		}
	}()
	return fn()
}
