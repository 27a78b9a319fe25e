package fuzzy

const (
	DefaultKi = 0.1

	// integralLimit bounds the accumulated error·dt in degree·seconds.
	integralLimit = 300.0
)

// Controller is a Mamdani fuzzy controller with integral trim. It
// satisfies the simulation driver's controller contract.
type Controller struct {
	err   Variable
	dErr  Variable
	out   Variable
	rules [3][3]int // rules[errorSet][deltaSet] = output set

	ki       float64
	integral float64
}

// NewController builds the controller with the fixed membership tables
// and rule base, and the given integral trim gain.
func NewController(ki float64) *Controller {
	return &Controller{
		err: Variable{
			Name: "error", Min: -180, Max: 180,
			Sets: [3]Set{
				{Name: "N", Shape: Trapezoid{-180, -180, -30, -5}},
				{Name: "Z", Shape: Triangle{-8, 0, 8}},
				{Name: "P", Shape: Trapezoid{5, 30, 180, 180}},
			},
		},
		dErr: Variable{
			Name: "delta error", Min: -50, Max: 50,
			Sets: [3]Set{
				{Name: "N", Shape: Trapezoid{-50, -50, -6, -1}},
				{Name: "Z", Shape: Triangle{-2, 0, 2}},
				{Name: "P", Shape: Trapezoid{1, 6, 50, 50}},
			},
		},
		out: Variable{
			Name: "control", Min: -100, Max: 100,
			Sets: [3]Set{
				{Name: "N", Shape: Trapezoid{-100, -100, -35, -10}},
				{Name: "Z", Shape: Triangle{-15, 0, 15}},
				{Name: "P", Shape: Trapezoid{10, 35, 100, 100}},
			},
		},
		rules: [3][3]int{
			{Neg, Neg, Zero},
			{Zero, Zero, Zero},
			{Zero, Pos, Pos},
		},
		ki: ki,
	}
}

// Infer runs one fuzzification → rule firing → centroid pass and returns
// the crisp rule-map output. It never mutates controller state, so it is
// safe for control-surface sampling.
func (c *Controller) Infer(errDeg, deltaErrDeg float64) float64 {
	muErr := c.err.Fuzzify(errDeg)
	muDelta := c.dErr.Fuzzify(deltaErrDeg)

	var act [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			strength := muErr[i]
			if muDelta[j] < strength {
				strength = muDelta[j]
			}
			if k := c.rules[i][j]; strength > act[k] {
				act[k] = strength
			}
		}
	}
	return c.out.Centroid(act)
}

// Compute returns the crisp fuzzy output plus Ki times the clamped error
// integral. The integral accumulates errDeg·dt every call before
// clamping.
func (c *Controller) Compute(errDeg, deltaErrDeg, dt float64) float64 {
	c.integral += errDeg * dt
	if c.integral > integralLimit {
		c.integral = integralLimit
	} else if c.integral < -integralLimit {
		c.integral = -integralLimit
	}
	return c.Infer(errDeg, deltaErrDeg) + c.ki*c.integral
}

// Reset clears the accumulated integral, keeping the gain and tables.
func (c *Controller) Reset() { c.integral = 0 }

// Integral reports the accumulated, clamped error integral.
func (c *Controller) Integral() float64 { return c.integral }

// Ki reports the integral trim gain.
func (c *Controller) Ki() float64 { return c.ki }

// Variables returns the error, delta-error and control variables for
// membership rendering and surface sampling.
func (c *Controller) Variables() (errVar, deltaVar, outVar Variable) {
	return c.err, c.dErr, c.out
}
