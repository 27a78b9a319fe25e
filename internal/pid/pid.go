// Package pid implements a positional PID controller with
// derivative-on-measurement and integral anti-windup via output-range
// clamping.
package pid

import (
	"fmt"
	"math"
)

const (
	DefaultKp = 2.0
	DefaultKi = 0.5
	DefaultKd = 0.1

	DefaultOutputMin = -100.0
	DefaultOutputMax = 100.0
)

// Controller computes output = Kp·e + Ki·∫e·dt + Kd·de/dt against an
// explicit setpoint. The derivative acts on the measured input rather
// than the error, which is equivalent for a constant setpoint and
// avoids derivative kick on setpoint changes. The integral term and the
// final output are both clamped to the output range.
type Controller struct {
	kp, ki, kd float64
	setpoint   float64

	outMin, outMax float64

	pTerm, iTerm, dTerm float64
	lastInput           float64
	primed              bool
}

// New builds a controller with the given gains and the default output
// range. dt is always supplied explicitly per update; there is no
// wall-clock fallback, so identical call sequences produce identical
// outputs.
func New(kp, ki, kd float64) *Controller {
	return &Controller{
		kp:     kp,
		ki:     ki,
		kd:     kd,
		outMin: DefaultOutputMin,
		outMax: DefaultOutputMax,
	}
}

func (c *Controller) SetSetpoint(v float64) { c.setpoint = v }
func (c *Controller) Setpoint() float64     { return c.setpoint }

// Tunings returns the current gains.
func (c *Controller) Tunings() (kp, ki, kd float64) { return c.kp, c.ki, c.kd }

// SetTunings replaces the gains without resetting accumulated state, so
// gains can be adjusted mid-run.
func (c *Controller) SetTunings(kp, ki, kd float64) {
	c.kp, c.ki, c.kd = kp, ki, kd
}

// SetOutputLimits replaces the clamp range. The integral term is
// re-clamped so a narrowed range takes effect immediately.
func (c *Controller) SetOutputLimits(min, max float64) error {
	if min >= max {
		return fmt.Errorf("pid: output limits inverted: [%g, %g]", min, max)
	}
	c.outMin, c.outMax = min, max
	c.iTerm = clamp(c.iTerm, min, max)
	return nil
}

// Update computes the control output for a measured input. dt must be
// positive; the simulation driver guarantees that.
func (c *Controller) Update(input, dt float64) float64 {
	err := c.setpoint - input

	var dInput float64
	if c.primed {
		dInput = input - c.lastInput
	}

	c.pTerm = c.kp * err
	c.iTerm = clamp(c.iTerm+c.ki*err*dt, c.outMin, c.outMax)
	c.dTerm = -c.kd * dInput / dt

	c.lastInput = input
	c.primed = true

	return clamp(c.pTerm+c.iTerm+c.dTerm, c.outMin, c.outMax)
}

// Compute adapts Update to the driver's error-based contract: the
// measured position is reconstructed from the setpoint and the
// delta-error input is ignored.
func (c *Controller) Compute(errDeg, _ float64, dt float64) float64 {
	return c.Update(c.setpoint-errDeg, dt)
}

// Components returns the proportional, integral and derivative terms of
// the last update, for diagnostics.
func (c *Controller) Components() (p, i, d float64) {
	return c.pTerm, c.iTerm, c.dTerm
}

// Reset clears accumulated state, keeping gains, setpoint and limits.
func (c *Controller) Reset() {
	c.pTerm, c.iTerm, c.dTerm = 0, 0, 0
	c.lastInput = 0
	c.primed = false
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
