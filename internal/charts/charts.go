// Package charts renders run traces and controller internals to
// high-resolution PNG files.
package charts

import (
	"bufio"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/servolab/servosim/internal/sim"
)

var (
	colorActual   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorMeasured = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	colorTarget   = color.RGBA{R: 127, G: 127, B: 127, A: 255}
	colorError    = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	colorControl  = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

// series is one named line on a chart.
type series struct {
	name   string
	color  color.Color
	dashed bool
	xs, ys []float64
}

// SaveRun renders the position, error, control and control-vs-error
// charts for a finished run into dir.
func SaveRun(dir string, res *sim.Result) error {
	if len(res.Records) == 0 {
		return fmt.Errorf("charts: empty trace")
	}
	times := res.Series(func(r sim.TraceRecord) float64 { return r.Time })
	actual := res.Series(func(r sim.TraceRecord) float64 { return r.Actual })
	measured := res.Series(func(r sim.TraceRecord) float64 { return r.Measured })
	target := res.Series(func(r sim.TraceRecord) float64 { return r.Target })
	errs := res.Series(func(r sim.TraceRecord) float64 { return r.Error })
	control := res.Series(func(r sim.TraceRecord) float64 { return r.Control })

	if err := saveSeriesPlot(filepath.Join(dir, "position.png"),
		"Position Response", "time (s)", "position (deg)",
		[]series{
			{name: "actual", color: colorActual, xs: times, ys: actual},
			{name: "measured", color: colorMeasured, xs: times, ys: measured},
			{name: "target", color: colorTarget, dashed: true, xs: times, ys: target},
		}); err != nil {
		return err
	}
	if err := saveSeriesPlot(filepath.Join(dir, "error.png"),
		"Position Error", "time (s)", "error (deg)",
		[]series{{color: colorError, xs: times, ys: errs}}); err != nil {
		return err
	}
	if err := saveSeriesPlot(filepath.Join(dir, "control.png"),
		"Controller Output", "time (s)", "control (rule units)",
		[]series{{color: colorControl, xs: times, ys: control}}); err != nil {
		return err
	}
	return saveSeriesPlot(filepath.Join(dir, "control_vs_error.png"),
		"Control vs Error", "error (deg)", "control (rule units)",
		[]series{{color: colorControl, xs: errs, ys: control}})
}

func saveSeriesPlot(path, title, xlabel, ylabel string, ss []series) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	stylePlot(p)

	legend := false
	for _, s := range ss {
		pts := make(plotter.XYs, len(s.xs))
		for i := range s.xs {
			pts[i].X = s.xs[i]
			pts[i].Y = s.ys[i]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(2)
		line.Color = s.color
		if s.dashed {
			line.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		}
		p.Add(line)
		if s.name != "" {
			p.Legend.Add(s.name, line)
			legend = true
		}
	}
	if legend {
		p.Legend.Top = true
	}
	return savePlotPNG(p, 8, 6, path)
}

func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)
		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(18)
	p.Title.Padding = vg.Points(8)

	p.X.Label.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Padding = vg.Points(8)
	p.Y.Label.Padding = vg.Points(8)

	p.X.Tick.Label.Font.Size = vg.Points(11)
	p.Y.Tick.Label.Font.Size = vg.Points(11)
	p.X.Tick.Marker = limitedTicker(9, "%.3g")
	p.Y.Tick.Marker = limitedTicker(9, "%.3g")
}

func savePlotPNG(p *plot.Plot, widthIn, heightIn float64, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("charts: creating directory: %w", err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(300),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("charts: creating %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("charts: writing %s: %w", path, err)
	}
	return bw.Flush()
}
