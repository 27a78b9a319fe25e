// Package fuzzy implements a Mamdani fuzzy inference controller for
// position tracking.
//
// Two inputs, the tracking error and its per-step change, are each
// partitioned into three linguistic sets {Negative, Zero, Positive}
// with fixed [Trapezoid] and [Triangle] membership functions. A 3×3
// conjunctive rule base maps input set pairs to an output set; rule
// firing strength is the min of the two input memberships, output set
// activation the max over concluding rules, and the crisp control value
// the discrete centroid of the aggregated output region sampled at unit
// steps over the control universe.
//
// The pure rule map leaves a steady-state bias, so [Controller.Compute]
// adds an integral trim: Ki times the accumulated error·dt, clamped to
// a fixed band. [Controller.Infer] exposes the trim-free rule map for
// control-surface rendering and analysis.
package fuzzy
