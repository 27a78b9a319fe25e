package fuzzy

// Shape maps a crisp value to a membership degree in [0, 1].
type Shape interface {
	Membership(x float64) float64
}

// Trapezoid is a four-breakpoint membership function: zero outside
// [A, D], rising over [A, B], one over [B, C], falling over [C, D].
// A == B or C == D makes the corresponding shoulder vertical, pinning
// full membership at the universe edge.
type Trapezoid struct {
	A, B, C, D float64
}

func (t Trapezoid) Membership(x float64) float64 {
	switch {
	case x < t.A || x > t.D:
		return 0
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	case x <= t.C:
		return 1
	default:
		return (t.D - x) / (t.D - t.C)
	}
}

// Triangle is a three-breakpoint membership function peaking at B.
type Triangle struct {
	A, B, C float64
}

func (t Triangle) Membership(x float64) float64 {
	switch {
	case x < t.A || x > t.C:
		return 0
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	case x == t.B:
		return 1
	default:
		return (t.C - x) / (t.C - t.B)
	}
}
