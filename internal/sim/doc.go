// Package sim couples a motor plant, an encoder and a controller into a
// fixed-step closed position loop.
//
// Each outer step reads the last measurement, computes error and
// clamped delta-error, asks the [Controller] for a control signal,
// scales it to voltage, integrates the plant across a fixed number of
// substeps at that constant voltage, re-measures, and appends a
// [TraceRecord]. The run ends [Converged] when both the error and
// delta-error magnitudes drop under their thresholds, or
// [StepLimitReached] when the step limit is hit. Termination is
// guaranteed either way, and no error can escape a started run.
//
// A run is single-threaded and, apart from configured sensor noise,
// deterministic: identical inputs reproduce identical traces. Parallel
// embeddings run whole simulations side by side with [Sweep]; the loop
// itself never spawns goroutines.
package sim
