package fuzzy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/servolab/servosim/internal/fuzzy"
)

var _ = Describe("Trapezoid", func() {
	shoulder := fuzzy.Trapezoid{A: 5, B: 30, C: 180, D: 180}

	DescribeTable("evaluates the positive error shape",
		func(x, want float64) {
			Expect(shoulder.Membership(x)).To(BeNumerically("~", want, 1e-12))
		},
		Entry("below the support", 0.0, 0.0),
		Entry("left breakpoint", 5.0, 0.0),
		Entry("mid rise", 17.5, 0.5),
		Entry("plateau start", 30.0, 1.0),
		Entry("deep plateau", 120.0, 1.0),
		Entry("universe edge", 180.0, 1.0),
		Entry("past the support", 200.0, 0.0),
	)

	It("pins full membership on a vertical shoulder", func() {
		edge := fuzzy.Trapezoid{A: -180, B: -180, C: -30, D: -5}
		Expect(edge.Membership(-180)).To(Equal(1.0))
		Expect(edge.Membership(-5)).To(Equal(0.0))
		Expect(edge.Membership(-17.5)).To(BeNumerically("~", 0.5, 1e-12))
	})
})

var _ = Describe("Triangle", func() {
	zero := fuzzy.Triangle{A: -8, B: 0, C: 8}

	DescribeTable("evaluates the zero error shape",
		func(x, want float64) {
			Expect(zero.Membership(x)).To(BeNumerically("~", want, 1e-12))
		},
		Entry("left foot", -8.0, 0.0),
		Entry("mid rise", -4.0, 0.5),
		Entry("peak", 0.0, 1.0),
		Entry("mid fall", 4.0, 0.5),
		Entry("right foot", 8.0, 0.0),
		Entry("outside", 9.0, 0.0),
	)
})

var _ = Describe("Variable", func() {
	var errVar fuzzy.Variable

	BeforeEach(func() {
		errVar, _, _ = fuzzy.NewController(fuzzy.DefaultKi).Variables()
	})

	It("clamps inputs to the universe before fuzzification", func() {
		Expect(errVar.Fuzzify(400)).To(Equal(errVar.Fuzzify(180)))
		Expect(errVar.Fuzzify(-400)).To(Equal(errVar.Fuzzify(-180)))
	})

	It("grades overlapping sets simultaneously", func() {
		mu := errVar.Fuzzify(6)
		Expect(mu[fuzzy.Neg]).To(BeZero())
		Expect(mu[fuzzy.Zero]).To(BeNumerically("~", 0.25, 1e-12))
		Expect(mu[fuzzy.Pos]).To(BeNumerically("~", 1.0/25.0, 1e-12))
	})

	It("defuzzifies a symmetric region to zero", func() {
		Expect(errVar.Centroid([3]float64{0, 1, 0})).To(BeNumerically("~", 0, 1e-12))
	})

	It("defuzzifies an empty region to zero", func() {
		Expect(errVar.Centroid([3]float64{0, 0, 0})).To(BeZero())
	})

	It("weights a one-sided region toward that side", func() {
		c := errVar.Centroid([3]float64{0, 0, 1})
		Expect(c).To(BeNumerically(">", 0))
		Expect(c).To(BeNumerically("<=", 180))
	})
})
