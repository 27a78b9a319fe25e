package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/servolab/servosim/internal/fuzzy"
	"github.com/servolab/servosim/internal/pid"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Controller != ControllerFuzzy {
		t.Errorf("Controller = %q, want %q", cfg.Controller, ControllerFuzzy)
	}
	if cfg.Target != 90 {
		t.Errorf("Target = %g, want 90", cfg.Target)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	body := `controller: pid
target: 45
encoder:
  noise_std: 0
  seed: 7
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Controller != ControllerPID {
		t.Errorf("Controller = %q, want pid", cfg.Controller)
	}
	if cfg.Target != 45 {
		t.Errorf("Target = %g, want 45", cfg.Target)
	}
	if cfg.Encoder.NoiseStd != 0 || cfg.Encoder.Seed != 7 {
		t.Errorf("Encoder = %+v, want noise 0 seed 7", cfg.Encoder)
	}
	// Untouched fields keep their defaults.
	if cfg.Sim.Dt != DefaultConfig().Sim.Dt {
		t.Errorf("Sim.Dt = %g, want default", cfg.Sim.Dt)
	}
	if cfg.PID.Kp != pid.DefaultKp {
		t.Errorf("PID.Kp = %g, want default", cfg.PID.Kp)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load accepted a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\n\t:::"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted malformed YAML")
	}
}

func TestSaveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")

	want := DefaultConfig()
	want.Controller = ControllerPID
	want.Target = 33
	want.Encoder.PPR = 500

	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("roundtrip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown controller", func(c *Config) { c.Controller = "bangbang" }},
		{"nan gain", func(c *Config) { c.PID.Kp = math.NaN() }},
		{"infinite gain", func(c *Config) { c.Fuzzy.Ki = math.Inf(1) }},
		{"negative gain", func(c *Config) { c.PID.Kd = -1 }},
		{"bad time step", func(c *Config) { c.Sim.Dt = 0 }},
		{"initial out of range", func(c *Config) { c.Initial = 200 }},
		{"target out of range", func(c *Config) { c.Target = -999 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid configuration")
			}
		})
	}
}

func TestBuildController(t *testing.T) {
	cfg := DefaultConfig()

	ctrl, err := cfg.BuildController()
	if err != nil {
		t.Fatalf("BuildController: %v", err)
	}
	if _, ok := ctrl.(*fuzzy.Controller); !ok {
		t.Errorf("controller is %T, want *fuzzy.Controller", ctrl)
	}

	cfg.Controller = ControllerPID
	cfg.Target = 42
	ctrl, err = cfg.BuildController()
	if err != nil {
		t.Fatalf("BuildController: %v", err)
	}
	p, ok := ctrl.(*pid.Controller)
	if !ok {
		t.Fatalf("controller is %T, want *pid.Controller", ctrl)
	}
	if p.Setpoint() != 42 {
		t.Errorf("Setpoint = %g, want 42", p.Setpoint())
	}

	cfg.Controller = "bangbang"
	if _, err := cfg.BuildController(); !errors.Is(err, ErrUnknownController) {
		t.Errorf("err = %v, want ErrUnknownController", err)
	}
}

func TestGetPresetReturnsCopy(t *testing.T) {
	a := GetPreset("quiet")
	if a == nil {
		t.Fatal("preset quiet missing")
	}
	a.Target = 1

	b := GetPreset("quiet")
	if b.Target == 1 {
		t.Error("mutating one preset copy leaked into the next lookup")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("GetPreset returned a config for an unknown name")
	}
}

func TestAllPresetsAreUsable(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Fatal("no presets registered")
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("ListPresets not sorted: %v", names)
	}
	for _, name := range names {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("GetPreset(%q) = nil", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %q invalid: %v", name, err)
		}
		if _, err := cfg.BuildController(); err != nil {
			t.Errorf("preset %q controller: %v", name, err)
		}
	}
}
