// Package motor models the electromechanical dynamics of a small brushed
// DC motor:
//
//	di/dt = (v − R·i − K_b·ω) / L
//	dω/dt = (K_m·i − K_f·ω) / J
//	dθ/dt = ω
//
// State is advanced by semi-implicit Euler: each step updates the current
// from the previous velocity, the velocity from the new current, and the
// position from the new velocity. The ordering matters: it keeps the
// scheme stable at step sizes where fully explicit Euler already
// diverges.
package motor

import "math"

// Default parameters for a small brushed DC positioning motor.
const (
	DefaultResistance = 4.0    // armature resistance R (ohm)
	DefaultInductance = 0.001  // armature inductance L (H)
	DefaultTorque     = 0.03   // torque constant K_m (N·m/A)
	DefaultBackEMF    = 0.03   // back-EMF constant K_b (V·s/rad)
	DefaultInertia    = 3.2e-6 // rotor inertia J (kg·m²)
	DefaultFriction   = 3.5e-6 // viscous friction K_f (N·m·s/rad)
)

const degPerRad = 180.0 / math.Pi

// Params holds the motor's physical constants. Immutable for the
// lifetime of a Motor.
type Params struct {
	Resistance float64 // R (ohm)
	Inductance float64 // L (H)
	Torque     float64 // K_m (N·m/A)
	BackEMF    float64 // K_b (V·s/rad)
	Inertia    float64 // J (kg·m²)
	Friction   float64 // K_f (N·m·s/rad)
}

func DefaultParams() Params {
	return Params{
		Resistance: DefaultResistance,
		Inductance: DefaultInductance,
		Torque:     DefaultTorque,
		BackEMF:    DefaultBackEMF,
		Inertia:    DefaultInertia,
		Friction:   DefaultFriction,
	}
}

// ElectricalTimeConstant returns L/R, the tighter of the two stability
// bounds on the integration step.
func (p Params) ElectricalTimeConstant() float64 {
	return p.Inductance / p.Resistance
}

// MechanicalTimeConstant returns J/(K_f + K_m·K_b/R), the effective
// mechanical settling constant including back-EMF braking.
func (p Params) MechanicalTimeConstant() float64 {
	return p.Inertia / (p.Friction + p.Torque*p.BackEMF/p.Resistance)
}

// SteadyStateVelocity returns the no-load angular velocity in rad/s
// reached under a constant applied voltage.
func (p Params) SteadyStateVelocity(voltage float64) float64 {
	return p.Torque * voltage / (p.Resistance*p.Friction + p.Torque*p.BackEMF)
}

// Motor integrates the plant state. Position accumulates without
// wraparound and may exceed ±360°.
type Motor struct {
	params   Params
	current  float64 // armature current (A)
	omega    float64 // angular velocity (rad/s)
	position float64 // angular position (rad)
}

// New places a motor at the given position, at rest and unenergized.
func New(params Params, initialDeg float64) *Motor {
	return &Motor{params: params, position: initialDeg / degPerRad}
}

// Step advances the state by dt seconds at the applied voltage and
// returns the new position in degrees. Callers must supply dt > 0 and a
// finite voltage; Step performs no validation of its own.
func (m *Motor) Step(voltage, dt float64) float64 {
	p := m.params
	m.current += dt * (voltage - p.Resistance*m.current - p.BackEMF*m.omega) / p.Inductance
	m.omega += dt * (p.Torque*m.current - p.Friction*m.omega) / p.Inertia
	m.position += dt * m.omega
	return m.position * degPerRad
}

func (m *Motor) Position() float64 { return m.position * degPerRad }
func (m *Motor) Velocity() float64 { return m.omega * degPerRad }
func (m *Motor) Current() float64  { return m.current }
func (m *Motor) Params() Params    { return m.params }

// Reset places the motor at a new position with zero velocity and
// current, keeping its parameters.
func (m *Motor) Reset(positionDeg float64) {
	m.position = positionDeg / degPerRad
	m.omega = 0
	m.current = 0
}
