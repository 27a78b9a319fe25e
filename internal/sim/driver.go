package sim

import (
	"fmt"
	"math"

	"github.com/servolab/servosim/internal/encoder"
	"github.com/servolab/servosim/internal/motor"
)

// Driver owns one plant, one sensor and one controller for the duration
// of a run and advances the closed loop to a terminal status.
type Driver struct {
	cfg    Config
	motor  *motor.Motor
	sensor *encoder.Encoder
	ctrl   Controller
	target float64

	measured float64
	prevErr  float64
	status   Status
	steps    int

	records   []TraceRecord
	observers []Observer
	metrics   []Metric
}

// New validates the configuration and positions, builds a fresh plant
// and sensor, takes the first reading and appends the initial trace
// record. The controller is used as given: its setpoint or accumulated
// state is the caller's responsibility.
func New(cfg Config, ctrl Controller, initialDeg, targetDeg float64) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ctrl == nil {
		return nil, ErrNilController
	}
	if initialDeg < cfg.PositionMin || initialDeg > cfg.PositionMax {
		return nil, fmt.Errorf("%w: initial %g outside [%g, %g]",
			ErrPositionRange, initialDeg, cfg.PositionMin, cfg.PositionMax)
	}
	if targetDeg < cfg.PositionMin || targetDeg > cfg.PositionMax {
		return nil, fmt.Errorf("%w: target %g outside [%g, %g]",
			ErrPositionRange, targetDeg, cfg.PositionMin, cfg.PositionMax)
	}

	sensor, err := encoder.New(cfg.PPR, cfg.NoiseStd, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	d := &Driver{
		cfg:    cfg,
		motor:  motor.New(cfg.Motor, initialDeg),
		sensor: sensor,
		ctrl:   ctrl,
		target: targetDeg,
		status: Running,
	}

	d.measured = d.sensor.Read(d.motor.Position())
	d.prevErr = targetDeg - d.measured
	d.records = append(d.records, TraceRecord{
		Actual:   d.motor.Position(),
		Measured: d.measured,
		Target:   targetDeg,
		Error:    d.prevErr,
		Count:    d.sensor.Count(),
	})
	return d, nil
}

func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }
func (d *Driver) AddMetric(m Metric)     { d.metrics = append(d.metrics, m) }

// Status reports the driver's current state.
func (d *Driver) Status() Status { return d.status }

// Target reports the run's target position in degrees.
func (d *Driver) Target() float64 { return d.target }

// Run executes the loop to a terminal status and returns the result.
// Work is bounded by MaxSteps × Substeps plant steps; Run never blocks
// and never fails. Calling Run on a finished driver returns the same
// result again without stepping.
func (d *Driver) Run() *Result {
	if d.status == Running {
		for _, m := range d.metrics {
			m.Reset()
		}
	}

	subDt := d.cfg.SubstepDt()

	for d.status == Running && d.steps < d.cfg.MaxSteps {
		err := d.target - d.measured
		deltaErr := clamp(err-d.prevErr, d.cfg.DeltaErrorMin, d.cfg.DeltaErrorMax)

		control := d.ctrl.Compute(err, deltaErr, d.cfg.Dt)
		voltage := control * d.cfg.VoltageScale

		// Voltage is held constant across all substeps: the controller's
		// cadence stays decoupled from the plant's stability requirement.
		for i := 0; i < d.cfg.Substeps; i++ {
			d.motor.Step(voltage, subDt)
		}

		d.measured = d.sensor.Read(d.motor.Position())
		d.steps++

		rec := TraceRecord{
			Time:     float64(d.steps) * d.cfg.Dt,
			Actual:   d.motor.Position(),
			Measured: d.measured,
			Target:   d.target,
			Error:    err,
			Control:  control,
			Voltage:  voltage,
			Current:  d.motor.Current(),
			Velocity: d.motor.Velocity(),
			Count:    d.sensor.Count(),
		}
		d.records = append(d.records, rec)
		d.prevErr = err

		for _, m := range d.metrics {
			m.Observe(rec)
		}
		for _, o := range d.observers {
			o.OnStep(rec)
		}

		if math.Abs(err) < d.cfg.PositionThreshold && math.Abs(deltaErr) < d.cfg.DeltaThreshold {
			d.status = Converged
		}
	}

	if d.status == Running {
		d.status = StepLimitReached
	}

	res := &Result{
		Records: d.records,
		Status:  d.status,
		Steps:   d.steps,
		Metrics: make(map[string]float64, len(d.metrics)),
	}
	for _, m := range d.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res
}

// Simulate is the one-call entry point: construct a driver, run it to a
// terminal status, and return the trace.
func Simulate(cfg Config, ctrl Controller, initialDeg, targetDeg float64) (*Result, error) {
	d, err := New(cfg, ctrl, initialDeg, targetDeg)
	if err != nil {
		return nil, err
	}
	return d.Run(), nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
