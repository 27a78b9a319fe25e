package sim

import "sync"

// SweepResult pairs a target with its finished run.
type SweepResult struct {
	Target float64
	Result *Result
}

// Sweep runs one simulation per target concurrently and returns results
// in the order the targets were given. build must return a fresh
// controller on every call; controllers are stateful and must not be
// shared across runs. When the configuration carries an explicit seed,
// each run gets seed+index so noisy sweeps stay reproducible without
// every run seeing identical noise.
func Sweep(cfg Config, build func() Controller, initialDeg float64, targets []float64) ([]SweepResult, error) {
	results := make([]SweepResult, len(targets))
	errs := make([]error, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(idx int, targetDeg float64) {
			defer wg.Done()
			runCfg := cfg
			if runCfg.Seed != 0 {
				runCfg.Seed = cfg.Seed + int64(idx)
			}
			res, err := Simulate(runCfg, build(), initialDeg, targetDeg)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx] = SweepResult{Target: targetDeg, Result: res}
		}(i, target)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
