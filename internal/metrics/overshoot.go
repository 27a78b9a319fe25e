package metrics

import "github.com/servolab/servosim/internal/sim"

// Overshoot reports how far the plant travelled past the target in the
// direction of initial motion, in degrees. Zero when the response never
// crossed the target.
type Overshoot struct {
	dir    float64
	peak   float64
	primed bool
}

var _ sim.Metric = (*Overshoot)(nil)

func (m *Overshoot) Name() string { return "overshoot" }

func (m *Overshoot) Observe(rec sim.TraceRecord) {
	if !m.primed {
		m.primed = true
		switch {
		case rec.Error > 0:
			m.dir = 1
		case rec.Error < 0:
			m.dir = -1
		}
	}
	if excess := (rec.Actual - rec.Target) * m.dir; excess > m.peak {
		m.peak = excess
	}
}

func (m *Overshoot) Value() float64 { return m.peak }

func (m *Overshoot) Reset() {
	m.dir = 0
	m.peak = 0
	m.primed = false
}
