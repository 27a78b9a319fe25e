package sim

import (
	"fmt"

	"github.com/servolab/servosim/internal/encoder"
	"github.com/servolab/servosim/internal/motor"
)

// Loop defaults.
const (
	DefaultDt       = 0.001 // outer control step (s)
	DefaultSubsteps = 10
	DefaultMaxSteps = 300

	DefaultPositionThreshold = 0.5 // deg
	DefaultDeltaThreshold    = 0.5 // deg

	DefaultDeltaErrorMin = -50.0 // deg
	DefaultDeltaErrorMax = 50.0

	DefaultVoltageScale = 0.082 // control signal units → volts

	DefaultPositionMin = -180.0 // deg
	DefaultPositionMax = 180.0
)

// Config carries every knob of the control loop. The zero value is not
// runnable; start from DefaultConfig.
type Config struct {
	Dt       float64 // outer control step (s)
	Substeps int     // plant integration substeps per outer step
	MaxSteps int     // step budget guaranteeing termination

	PositionThreshold float64 // convergence bound on |error| (deg)
	DeltaThreshold    float64 // convergence bound on |delta error| (deg)

	DeltaErrorMin float64 // clamp band on the per-step error change (deg)
	DeltaErrorMax float64

	VoltageScale float64 // control signal → applied voltage

	PositionMin float64 // legal range for initial and target positions (deg)
	PositionMax float64

	Motor    motor.Params
	PPR      int     // encoder pulses per revolution
	NoiseStd float64 // encoder noise σ (deg); 0 disables noise
	Seed     int64   // noise seed; 0 draws a time-based seed
}

func DefaultConfig() Config {
	return Config{
		Dt:                DefaultDt,
		Substeps:          DefaultSubsteps,
		MaxSteps:          DefaultMaxSteps,
		PositionThreshold: DefaultPositionThreshold,
		DeltaThreshold:    DefaultDeltaThreshold,
		DeltaErrorMin:     DefaultDeltaErrorMin,
		DeltaErrorMax:     DefaultDeltaErrorMax,
		VoltageScale:      DefaultVoltageScale,
		PositionMin:       DefaultPositionMin,
		PositionMax:       DefaultPositionMax,
		Motor:             motor.DefaultParams(),
		PPR:               encoder.DefaultPPR,
		NoiseStd:          encoder.DefaultNoiseStd,
	}
}

// SubstepDt returns the effective plant integration step.
func (c Config) SubstepDt() float64 {
	return c.Dt / float64(c.Substeps)
}

// Validate rejects configurations that cannot parameterize a run. All
// failures wrap ErrInvalidConfig. Numerical stability is deliberately
// not checked here: dt too large for the plant's time constants
// manifests as a diverging trace, documented behavior rather than an
// error.
func (c Config) Validate() error {
	switch {
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	case c.Substeps < 1:
		return fmt.Errorf("%w: substeps must be at least 1, got %d", ErrInvalidConfig, c.Substeps)
	case c.MaxSteps < 1:
		return fmt.Errorf("%w: max steps must be at least 1, got %d", ErrInvalidConfig, c.MaxSteps)
	case c.PositionThreshold <= 0:
		return fmt.Errorf("%w: position threshold must be positive, got %g", ErrInvalidConfig, c.PositionThreshold)
	case c.DeltaThreshold <= 0:
		return fmt.Errorf("%w: delta threshold must be positive, got %g", ErrInvalidConfig, c.DeltaThreshold)
	case c.DeltaErrorMin >= c.DeltaErrorMax:
		return fmt.Errorf("%w: delta error band inverted: [%g, %g]", ErrInvalidConfig, c.DeltaErrorMin, c.DeltaErrorMax)
	case c.VoltageScale <= 0:
		return fmt.Errorf("%w: voltage scale must be positive, got %g", ErrInvalidConfig, c.VoltageScale)
	case c.PositionMin >= c.PositionMax:
		return fmt.Errorf("%w: position range inverted: [%g, %g]", ErrInvalidConfig, c.PositionMin, c.PositionMax)
	case c.PPR <= 0:
		return fmt.Errorf("%w: encoder PPR must be positive, got %d", ErrInvalidConfig, c.PPR)
	case c.NoiseStd < 0:
		return fmt.Errorf("%w: noise standard deviation must be non-negative, got %g", ErrInvalidConfig, c.NoiseStd)
	}

	m := c.Motor
	switch {
	case m.Resistance <= 0, m.Inductance <= 0, m.Inertia <= 0:
		return fmt.Errorf("%w: motor resistance, inductance and inertia must be positive", ErrInvalidConfig)
	case m.Torque < 0, m.BackEMF < 0, m.Friction < 0:
		return fmt.Errorf("%w: motor torque, back-EMF and friction constants must be non-negative", ErrInvalidConfig)
	}
	return nil
}
