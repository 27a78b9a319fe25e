package charts

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/servolab/servosim/internal/fuzzy"
)

var setColors = [3]color.Color{colorActual, colorControl, colorError}

// SaveMembership renders one chart per controller variable showing its
// membership functions across the variable's universe.
func SaveMembership(dir string, ctrl *fuzzy.Controller) error {
	errVar, deltaVar, outVar := ctrl.Variables()
	for _, v := range []fuzzy.Variable{errVar, deltaVar, outVar} {
		name := "membership_" + strings.ReplaceAll(v.Name, " ", "_") + ".png"
		if err := saveMembershipPlot(filepath.Join(dir, name), v); err != nil {
			return err
		}
	}
	return nil
}

func saveMembershipPlot(path string, v fuzzy.Variable) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Membership: %s", v.Name)
	p.X.Label.Text = v.Name
	p.Y.Label.Text = "membership"
	stylePlot(p)
	p.Y.Min, p.Y.Max = 0, 1.05

	for i, set := range v.Sets {
		pts := make(plotter.XYs, 0, int(v.Max-v.Min)+1)
		for x := v.Min; x <= v.Max; x++ {
			pts = append(pts, plotter.XY{X: x, Y: set.Shape.Membership(x)})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(2)
		line.Color = setColors[i]
		p.Add(line)
		p.Legend.Add(set.Name, line)
	}
	p.Legend.Top = true
	return savePlotPNG(p, 8, 5, path)
}
