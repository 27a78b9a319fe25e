package config

import "sort"

func newPreset(mutate func(*Config)) Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return *cfg
}

var presets = map[string]Config{
	"step": newPreset(func(*Config) {}),
	"smallstep": newPreset(func(c *Config) {
		c.Target = 10
	}),
	"reverse": newPreset(func(c *Config) {
		c.Initial = 90
		c.Target = -90
	}),
	"quiet": newPreset(func(c *Config) {
		c.Encoder.NoiseStd = 0
		c.Encoder.Seed = 1
	}),
	"noisy": newPreset(func(c *Config) {
		c.Encoder.NoiseStd = 0.5
	}),
	"coarse": newPreset(func(c *Config) {
		c.Encoder.PPR = 100
	}),
	"fine": newPreset(func(c *Config) {
		c.Sim.Dt = 0.0005
		c.Sim.Substeps = 20
		c.Sim.MaxSteps = 600
	}),
	"pid": newPreset(func(c *Config) {
		c.Controller = ControllerPID
		c.Sim.MaxSteps = 2000
	}),
	"pid-soft": newPreset(func(c *Config) {
		c.Controller = ControllerPID
		c.Sim.MaxSteps = 2000
		c.PID.Kp = 0.5
		c.PID.Ki = 0.1
		c.PID.Kd = 0.05
	}),
}

// GetPreset returns a copy of the named preset, or nil when no such
// preset exists. Mutating the copy never affects later lookups.
func GetPreset(name string) *Config {
	cfg, ok := presets[name]
	if !ok {
		return nil
	}
	return &cfg
}

// ListPresets returns all preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
