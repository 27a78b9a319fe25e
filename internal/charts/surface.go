package charts

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"

	"github.com/servolab/servosim/internal/fuzzy"
)

// surfaceGrid samples the rule map over the error × delta-error plane.
type surfaceGrid struct {
	ctrl     *fuzzy.Controller
	errVar   fuzzy.Variable
	deltaVar fuzzy.Variable
	cols     int
	rows     int
}

func (g surfaceGrid) Dims() (c, r int) { return g.cols, g.rows }

func (g surfaceGrid) X(c int) float64 {
	return g.errVar.Min + float64(c)*(g.errVar.Max-g.errVar.Min)/float64(g.cols-1)
}

func (g surfaceGrid) Y(r int) float64 {
	return g.deltaVar.Min + float64(r)*(g.deltaVar.Max-g.deltaVar.Min)/float64(g.rows-1)
}

func (g surfaceGrid) Z(c, r int) float64 { return g.ctrl.Infer(g.X(c), g.Y(r)) }

// SaveSurface renders the crisp rule-map output over the full input
// plane as a heat map. The integral trim is excluded so the surface
// shows the rule base alone. Non-positive grid sizes fall back to a
// 61 × 41 grid.
func SaveSurface(path string, ctrl *fuzzy.Controller, cols, rows int) error {
	if cols < 2 {
		cols = 61
	}
	if rows < 2 {
		rows = 41
	}
	errVar, deltaVar, _ := ctrl.Variables()
	g := surfaceGrid{ctrl: ctrl, errVar: errVar, deltaVar: deltaVar, cols: cols, rows: rows}

	p := plot.New()
	p.Title.Text = "Control Surface"
	p.X.Label.Text = errVar.Name + " (deg)"
	p.Y.Label.Text = deltaVar.Name + " (deg)"
	stylePlot(p)

	p.Add(plotter.NewHeatMap(g, moreland.Kindlmann().Palette(255)))

	return savePlotPNG(p, 8, 6, path)
}
