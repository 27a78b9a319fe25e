package charts

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/servolab/servosim/internal/sim"
)

// SaveSummary renders a bar chart of the run's initial, target and
// final positions, with the outcome in the title.
func SaveSummary(path string, res *sim.Result) error {
	if len(res.Records) == 0 {
		return fmt.Errorf("charts: empty trace")
	}
	first, last := res.Records[0], res.Final()

	bars, err := plotter.NewBarChart(plotter.Values{first.Actual, last.Target, last.Actual}, vg.Points(40))
	if err != nil {
		return err
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = colorActual

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Run Summary (%s after %d steps)", res.Status, res.Steps)
	p.Y.Label.Text = "position (deg)"
	stylePlot(p)
	p.Add(bars)
	p.NominalX("initial", "target", "final")

	return savePlotPNG(p, 6, 5, path)
}
