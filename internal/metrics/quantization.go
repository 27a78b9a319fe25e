package metrics

import (
	"math"

	"github.com/servolab/servosim/internal/sim"
)

// Quantization reports the RMS difference between the true and the
// measured position, capturing how much the encoder's grid and noise
// distorted what the controller saw.
type Quantization struct {
	sumSq float64
	n     int
}

var _ sim.Metric = (*Quantization)(nil)

func (m *Quantization) Name() string { return "quantization_rms" }

func (m *Quantization) Observe(rec sim.TraceRecord) {
	d := rec.Measured - rec.Actual
	m.sumSq += d * d
	m.n++
}

func (m *Quantization) Value() float64 {
	if m.n == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.n))
}

func (m *Quantization) Reset() {
	m.sumSq = 0
	m.n = 0
}
