package fuzzy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/servolab/servosim/internal/fuzzy"
)

var _ = Describe("Inference", func() {
	var ctrl *fuzzy.Controller

	BeforeEach(func() {
		ctrl = fuzzy.NewController(fuzzy.DefaultKi)
	})

	It("outputs zero at the origin", func() {
		Expect(ctrl.Infer(0, 0)).To(BeNumerically("~", 0, 1e-12))
	})

	It("drives toward a positive target", func() {
		Expect(ctrl.Infer(90, 0)).To(BeNumerically(">", 0))
	})

	It("drives toward a negative target", func() {
		Expect(ctrl.Infer(-90, 0)).To(BeNumerically("<", 0))
	})

	It("is monotonically non-decreasing in error", func() {
		errs := []float64{-180, -90, -30, -12, -6, -3, 0, 3, 6, 12, 30, 90, 180}
		prev := ctrl.Infer(errs[0], 0)
		for _, e := range errs[1:] {
			cur := ctrl.Infer(e, 0)
			Expect(cur).To(BeNumerically(">=", prev-1e-9), "error %v", e)
			prev = cur
		}
	})

	It("is odd-symmetric in error", func() {
		for _, e := range []float64{3, 7, 20, 60, 179} {
			Expect(ctrl.Infer(e, 0)).To(BeNumerically("~", -ctrl.Infer(-e, 0), 1e-9))
		}
	})

	It("cuts drive when closing fast on the target", func() {
		// Large positive error with a strongly negative delta fires the
		// (P, N) → Z rule: braking instead of full forward drive.
		full := ctrl.Infer(90, 0)
		braking := ctrl.Infer(90, -20)
		Expect(braking).To(BeNumerically("<", full))
		Expect(braking).To(BeNumerically("~", 0, 1e-9))
	})

	It("clamps out-of-universe inputs", func() {
		Expect(ctrl.Infer(400, 0)).To(Equal(ctrl.Infer(180, 0)))
		Expect(ctrl.Infer(90, -500)).To(Equal(ctrl.Infer(90, -50)))
	})

	It("does not mutate controller state", func() {
		before := ctrl.Integral()
		ctrl.Infer(90, 5)
		Expect(ctrl.Integral()).To(Equal(before))
	})
})

var _ = Describe("Integral trim", func() {
	It("accumulates error·dt", func() {
		ctrl := fuzzy.NewController(fuzzy.DefaultKi)
		ctrl.Compute(10, 0, 0.5)
		Expect(ctrl.Integral()).To(BeNumerically("~", 5.0, 1e-12))
		ctrl.Compute(10, 0, 0.5)
		Expect(ctrl.Integral()).To(BeNumerically("~", 10.0, 1e-12))
	})

	It("adds Ki times the integral to the crisp output", func() {
		withTrim := fuzzy.NewController(0.1)
		pure := fuzzy.NewController(0)

		got := withTrim.Compute(10, 0, 0.5)
		want := pure.Compute(10, 0, 0.5) + 0.1*5.0
		Expect(got).To(BeNumerically("~", want, 1e-9))
	})

	It("clamps the integral at ±300", func() {
		ctrl := fuzzy.NewController(fuzzy.DefaultKi)
		ctrl.Compute(100, 0, 100)
		Expect(ctrl.Integral()).To(Equal(300.0))

		ctrl.Reset()
		ctrl.Compute(-100, 0, 100)
		Expect(ctrl.Integral()).To(Equal(-300.0))
	})

	It("clears on Reset without touching the gain", func() {
		ctrl := fuzzy.NewController(0.25)
		ctrl.Compute(50, 0, 1)
		ctrl.Reset()
		Expect(ctrl.Integral()).To(BeZero())
		Expect(ctrl.Ki()).To(Equal(0.25))
	})
})
