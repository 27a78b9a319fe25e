package fuzzy

import "math"

// Indices into a Variable's sets and the rule table.
const (
	Neg = iota
	Zero
	Pos
)

// Set is one linguistic term of a variable.
type Set struct {
	Name  string
	Shape Shape
}

// Variable is a linguistic variable partitioned into Negative, Zero and
// Positive sets over a closed universe. The universe is sampled at unit
// steps for defuzzification, both ends inclusive.
type Variable struct {
	Name     string
	Min, Max float64
	Sets     [3]Set
}

// Clamp bounds x into the variable's universe.
func (v Variable) Clamp(x float64) float64 {
	return math.Min(math.Max(x, v.Min), v.Max)
}

// Fuzzify returns the membership degree of x in each set, clamping x to
// the universe first. Inside small gaps between sets all three degrees
// may legitimately be zero.
func (v Variable) Fuzzify(x float64) [3]float64 {
	x = v.Clamp(x)
	var mu [3]float64
	for i, s := range v.Sets {
		mu[i] = s.Shape.Membership(x)
	}
	return mu
}

// Centroid defuzzifies by discrete center of area: each set's membership
// is capped at its activation, samples take the elementwise max across
// sets, and the result is Σ µ·x / Σ µ over the unit-sampled universe.
// Zero aggregate mass defuzzifies to 0; no rule firing is not an error.
func (v Variable) Centroid(activation [3]float64) float64 {
	var num, den float64
	for x := v.Min; x <= v.Max; x++ {
		var mu float64
		for i, s := range v.Sets {
			m := math.Min(activation[i], s.Shape.Membership(x))
			if m > mu {
				mu = m
			}
		}
		num += mu * x
		den += mu
	}
	if den == 0 {
		return 0
	}
	return num / den
}
