package sim

import "fmt"

// Controller turns a tracking error, its per-step change and the step
// increment into a bounded control signal. Reset clears accumulated
// state (integral and derivative memory) without discarding tuning.
//
// Implementations that track their own setpoint may ignore the
// delta-error input.
type Controller interface {
	Compute(errDeg, deltaErrDeg, dt float64) float64
	Reset()
}

// TraceRecord captures every observable quantity of one control cycle.
// Error and Control hold the values computed at the top of the step;
// plant state and measurement are read after substep integration.
type TraceRecord struct {
	Time     float64 // since run start (s)
	Actual   float64 // true plant position (deg)
	Measured float64 // encoder reading (deg)
	Target   float64 // deg
	Error    float64 // target − measured, pre-integration (deg)
	Control  float64 // controller output
	Voltage  float64 // applied to the plant (V)
	Current  float64 // armature current (A)
	Velocity float64 // plant velocity (deg/s)
	Count    int64   // encoder count
}

// Observer is notified synchronously after each appended record. The
// initial pre-loop record is not observed.
type Observer interface {
	OnStep(rec TraceRecord)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(TraceRecord)

func (f ObserverFunc) OnStep(rec TraceRecord) { f(rec) }

// Metric accumulates a scalar summary over a run's records.
type Metric interface {
	Name() string
	Observe(rec TraceRecord)
	Value() float64
	Reset()
}

// Status is the driver's state machine: a run is Running until it
// transitions to exactly one of the terminal states.
type Status int

const (
	Running Status = iota
	Converged
	StepLimitReached
)

func (s Status) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Converged:
		return "CONVERGED"
	case StepLimitReached:
		return "STEP_LIMIT_REACHED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the sole output artifact of a run. Records holds the
// initial state plus one record per executed step, in time order.
type Result struct {
	Records []TraceRecord
	Status  Status
	Steps   int
	Metrics map[string]float64
}

// Final returns the last trace record.
func (r *Result) Final() TraceRecord {
	return r.Records[len(r.Records)-1]
}

// Series extracts one field across all records, for rendering.
func (r *Result) Series(field func(TraceRecord) float64) []float64 {
	out := make([]float64, len(r.Records))
	for i, rec := range r.Records {
		out[i] = field(rec)
	}
	return out
}
