package chart

import (
	"image/color"
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const kdePoints = 200

var (
	histFill = color.RGBA{R: 76, G: 114, B: 176, A: 200}
	kdeLine  = color.RGBA{R: 196, G: 78, B: 82, A: 255}
)

func renderDistribution(name string, vals []float64, path string, opt Options) error {
	p := plot.New()
	p.Title.Text = "Distribution of " + name
	p.X.Label.Text = name
	p.Y.Label.Text = "Count"

	finite, err := plotter.CopyValues(plotter.Values(vals))
	if err != nil {
		return eris.Wrap(err, "chart: histogram values")
	}
	bins := sturges(len(finite))
	h, err := plotter.NewHist(finite, bins)
	if err != nil {
		return eris.Wrap(err, "chart: histogram")
	}
	h.FillColor = histFill
	p.Add(h)

	if curve := kde(finite, h.Width); curve != nil {
		l, err := plotter.NewLine(curve)
		if err != nil {
			return eris.Wrap(err, "chart: kde line")
		}
		l.LineStyle.Color = kdeLine
		l.LineStyle.Width = vg.Points(2)
		p.Add(l)
	}

	if err := p.Save(vg.Length(opt.Width)*vg.Inch, vg.Length(opt.Height)*vg.Inch, path); err != nil {
		return eris.Wrapf(err, "chart: save %s", path)
	}
	return nil
}

// sturges returns ceil(log2 n) + 1.
func sturges(n int) int {
	if n < 2 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}

// kde evaluates a Gaussian kernel density estimate with Scott's bandwidth,
// scaled to histogram counts. It returns nil when the data has no spread.
func kde(vals []float64, binWidth float64) plotter.XYs {
	n := len(vals)
	if n < 2 {
		return nil
	}
	sd := stat.StdDev(vals, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	bw := sd * math.Pow(float64(n), -0.2)
	lo, hi := floats.Min(vals)-3*bw, floats.Max(vals)+3*bw
	step := (hi - lo) / float64(kdePoints-1)
	scale := float64(n) * binWidth

	kernels := make([]distuv.Normal, n)
	for i, v := range vals {
		kernels[i] = distuv.Normal{Mu: v, Sigma: bw}
	}
	pts := make(plotter.XYs, kdePoints)
	for i := range pts {
		x := lo + float64(i)*step
		var d float64
		for _, k := range kernels {
			d += k.Prob(x)
		}
		pts[i].X = x
		pts[i].Y = d / float64(n) * scale
	}
	return pts
}
