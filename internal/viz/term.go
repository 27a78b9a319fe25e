package viz

import "github.com/guptarohit/asciigraph"

// Chart renders a series as a terminal line chart with a caption.
// Returns an empty string when there is nothing to plot.
func Chart(data []float64, caption string) string {
	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Caption(caption),
	)
}
