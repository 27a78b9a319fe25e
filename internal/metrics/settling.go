package metrics

import (
	"math"

	"github.com/servolab/servosim/internal/sim"
)

// Settling reports the step index from which the error magnitude stayed
// inside the band to the end of the run. A value one past the step
// count means the error was still outside the band at the final step.
type Settling struct {
	band      float64
	n         int
	lastBreak int
}

var _ sim.Metric = (*Settling)(nil)

// NewSettling builds a settling-step metric with the given error band
// in degrees.
func NewSettling(band float64) *Settling {
	return &Settling{band: band}
}

func (m *Settling) Name() string { return "settling_steps" }

func (m *Settling) Observe(rec sim.TraceRecord) {
	m.n++
	if math.Abs(rec.Error) >= m.band {
		m.lastBreak = m.n
	}
}

func (m *Settling) Value() float64 { return float64(m.lastBreak + 1) }

func (m *Settling) Reset() {
	m.n = 0
	m.lastBreak = 0
}
