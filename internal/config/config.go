// Package config loads, validates and saves run configurations, and
// builds the simulation pieces they describe.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/servolab/servosim/internal/encoder"
	"github.com/servolab/servosim/internal/fuzzy"
	"github.com/servolab/servosim/internal/motor"
	"github.com/servolab/servosim/internal/pid"
	"github.com/servolab/servosim/internal/sim"
)

// ErrUnknownController reports a controller name the build step has no
// implementation for.
var ErrUnknownController = errors.New("config: unknown controller")

// Controller names accepted in a configuration.
const (
	ControllerFuzzy = "fuzzy"
	ControllerPID   = "pid"
)

type Config struct {
	Controller string        `yaml:"controller"`
	Initial    float64       `yaml:"initial"`
	Target     float64       `yaml:"target"`
	Sim        SimConfig     `yaml:"sim"`
	Motor      MotorConfig   `yaml:"motor"`
	Encoder    EncoderConfig `yaml:"encoder"`
	Fuzzy      FuzzyConfig   `yaml:"fuzzy"`
	PID        PIDConfig     `yaml:"pid"`
}

type SimConfig struct {
	Dt                float64 `yaml:"dt"`
	Substeps          int     `yaml:"substeps"`
	MaxSteps          int     `yaml:"max_steps"`
	PositionThreshold float64 `yaml:"position_threshold"`
	DeltaThreshold    float64 `yaml:"delta_threshold"`
	VoltageScale      float64 `yaml:"voltage_scale"`
}

type MotorConfig struct {
	Resistance float64 `yaml:"resistance"`
	Inductance float64 `yaml:"inductance"`
	Torque     float64 `yaml:"torque"`
	BackEMF    float64 `yaml:"back_emf"`
	Inertia    float64 `yaml:"inertia"`
	Friction   float64 `yaml:"friction"`
}

type EncoderConfig struct {
	PPR      int     `yaml:"ppr"`
	NoiseStd float64 `yaml:"noise_std"`
	Seed     int64   `yaml:"seed"`
}

type FuzzyConfig struct {
	Ki float64 `yaml:"ki"`
}

type PIDConfig struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

func DefaultConfig() *Config {
	return &Config{
		Controller: ControllerFuzzy,
		Initial:    0,
		Target:     90,
		Sim: SimConfig{
			Dt:                sim.DefaultDt,
			Substeps:          sim.DefaultSubsteps,
			MaxSteps:          sim.DefaultMaxSteps,
			PositionThreshold: sim.DefaultPositionThreshold,
			DeltaThreshold:    sim.DefaultDeltaThreshold,
			VoltageScale:      sim.DefaultVoltageScale,
		},
		Motor: MotorConfig{
			Resistance: motor.DefaultResistance,
			Inductance: motor.DefaultInductance,
			Torque:     motor.DefaultTorque,
			BackEMF:    motor.DefaultBackEMF,
			Inertia:    motor.DefaultInertia,
			Friction:   motor.DefaultFriction,
		},
		Encoder: EncoderConfig{
			PPR:      encoder.DefaultPPR,
			NoiseStd: encoder.DefaultNoiseStd,
		},
		Fuzzy: FuzzyConfig{Ki: fuzzy.DefaultKi},
		PID: PIDConfig{
			Kp: pid.DefaultKp,
			Ki: pid.DefaultKi,
			Kd: pid.DefaultKd,
		},
	}
}

// Load reads a YAML file over the defaults, so partial files only need
// the fields they change.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SimConfig assembles the runtime configuration. The error-delta band
// and the legal position range are not configurable: both are tied to
// the fuzzy controller's input universes.
func (c *Config) SimConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Dt = c.Sim.Dt
	cfg.Substeps = c.Sim.Substeps
	cfg.MaxSteps = c.Sim.MaxSteps
	cfg.PositionThreshold = c.Sim.PositionThreshold
	cfg.DeltaThreshold = c.Sim.DeltaThreshold
	cfg.VoltageScale = c.Sim.VoltageScale
	cfg.Motor = motor.Params{
		Resistance: c.Motor.Resistance,
		Inductance: c.Motor.Inductance,
		Torque:     c.Motor.Torque,
		BackEMF:    c.Motor.BackEMF,
		Inertia:    c.Motor.Inertia,
		Friction:   c.Motor.Friction,
	}
	cfg.PPR = c.Encoder.PPR
	cfg.NoiseStd = c.Encoder.NoiseStd
	cfg.Seed = c.Encoder.Seed
	return cfg
}

// BuildController constructs the controller the configuration names,
// ready to drive toward the configured target.
func (c *Config) BuildController() (sim.Controller, error) {
	switch c.Controller {
	case ControllerFuzzy:
		return fuzzy.NewController(c.Fuzzy.Ki), nil
	case ControllerPID:
		p := pid.New(c.PID.Kp, c.PID.Ki, c.PID.Kd)
		p.SetSetpoint(c.Target)
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownController, c.Controller)
	}
}

// Validate checks the parts the runtime configuration cannot: gain
// sanity and the controller name. Runtime limits are delegated to the
// assembled sim configuration.
func (c *Config) Validate() error {
	if c.Controller != ControllerFuzzy && c.Controller != ControllerPID {
		return fmt.Errorf("%w: %q", ErrUnknownController, c.Controller)
	}
	gains := map[string]float64{
		"fuzzy.ki": c.Fuzzy.Ki,
		"pid.kp":   c.PID.Kp,
		"pid.ki":   c.PID.Ki,
		"pid.kd":   c.PID.Kd,
	}
	for name, g := range gains {
		if math.IsNaN(g) || math.IsInf(g, 0) {
			return fmt.Errorf("config: %s is not finite", name)
		}
		if g < 0 {
			return fmt.Errorf("config: %s is negative", name)
		}
	}
	simCfg := c.SimConfig()
	if err := simCfg.Validate(); err != nil {
		return err
	}
	if c.Initial < simCfg.PositionMin || c.Initial > simCfg.PositionMax {
		return fmt.Errorf("config: initial %g outside [%g, %g]",
			c.Initial, simCfg.PositionMin, simCfg.PositionMax)
	}
	if c.Target < simCfg.PositionMin || c.Target > simCfg.PositionMax {
		return fmt.Errorf("config: target %g outside [%g, %g]",
			c.Target, simCfg.PositionMin, simCfg.PositionMax)
	}
	return nil
}
