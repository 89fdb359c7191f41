package chart

import (
	"fmt"
	"image/color"
	"math"

	"github.com/KaramelBytes/autolysis-cli/internal/analysis"
	"github.com/KaramelBytes/autolysis-cli/internal/table"
	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// corrGrid adapts a correlation matrix to plotter.GridXYZ. Rows are flipped
// so the first column is drawn at the top.
type corrGrid struct{ m *analysis.CorrelationMatrix }

func (g corrGrid) Dims() (c, r int) { n := len(g.m.Columns); return n, n }
func (g corrGrid) Z(c, r int) float64 {
	return g.m.Values[len(g.m.Columns)-1-r][c]
}
func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }
func (g corrGrid) Min() float64    { return -1 }
func (g corrGrid) Max() float64    { return 1 }

func renderHeatmap(cols []*table.Column, path string, opt Options) error {
	m, err := analysis.PairwiseCorrelation(cols)
	if err != nil {
		return err
	}
	grid := corrGrid{m: m}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	hm := plotter.NewHeatMap(grid, cm.Palette(255))
	hm.NaN = color.Gray{Y: 220}

	n := len(m.Columns)
	xys := make(plotter.XYs, 0, n*n)
	labels := make([]string, 0, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			v := grid.Z(c, r)
			xys = append(xys, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			if math.IsNaN(v) {
				labels = append(labels, "nan")
			} else {
				labels = append(labels, fmt.Sprintf("%.2f", v))
			}
		}
	}
	lbls, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return eris.Wrap(err, "chart: heatmap labels")
	}
	for i := range lbls.TextStyle {
		lbls.TextStyle[i].XAlign = draw.XCenter
		lbls.TextStyle[i].YAlign = draw.YCenter
	}

	p := plot.New()
	p.Title.Text = "Correlation Matrix"
	p.Add(hm, lbls)
	p.NominalX(m.Columns...)
	rev := make([]string, n)
	for i, name := range m.Columns {
		rev[n-1-i] = name
	}
	p.NominalY(rev...)

	if err := p.Save(vg.Length(opt.Width)*vg.Inch, vg.Length(opt.Height)*vg.Inch, path); err != nil {
		return eris.Wrapf(err, "chart: save %s", path)
	}
	return nil
}
