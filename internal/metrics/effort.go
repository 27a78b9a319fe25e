// Package metrics provides run statistics computed incrementally from
// trace records. Each metric implements [sim.Metric] and is attached to
// a driver before the run; values are read back by name from the
// result's metric map.
package metrics

import (
	"math"

	"github.com/servolab/servosim/internal/sim"
)

// ControlEffort reports the mean absolute controller output over the
// run, a proxy for how hard the controller worked.
type ControlEffort struct {
	sum float64
	n   int
}

var _ sim.Metric = (*ControlEffort)(nil)

func (m *ControlEffort) Name() string { return "control_effort" }

func (m *ControlEffort) Observe(rec sim.TraceRecord) {
	m.sum += math.Abs(rec.Control)
	m.n++
}

func (m *ControlEffort) Value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

func (m *ControlEffort) Reset() {
	m.sum = 0
	m.n = 0
}
