package charts

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/servolab/servosim/internal/fuzzy"
	"github.com/servolab/servosim/internal/sim"
)

func resultFixture(t *testing.T) *sim.Result {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.NoiseStd = 0
	cfg.Seed = 1
	cfg.MaxSteps = 40
	res, err := sim.Simulate(cfg, fuzzy.NewController(fuzzy.DefaultKi), 0, 90)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	return res
}

func checkPNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	if img.Width == 0 || img.Height == 0 {
		t.Errorf("%s has empty dimensions", path)
	}
}

func TestSaveRun(t *testing.T) {
	dir := t.TempDir()
	if err := SaveRun(dir, resultFixture(t)); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	for _, name := range []string{"position.png", "error.png", "control.png", "control_vs_error.png"} {
		checkPNG(t, filepath.Join(dir, name))
	}
}

func TestSaveRunRejectsEmptyTrace(t *testing.T) {
	if err := SaveRun(t.TempDir(), &sim.Result{}); err == nil {
		t.Error("SaveRun accepted an empty trace")
	}
}

func TestSaveMembership(t *testing.T) {
	dir := t.TempDir()
	if err := SaveMembership(dir, fuzzy.NewController(fuzzy.DefaultKi)); err != nil {
		t.Fatalf("SaveMembership: %v", err)
	}
	for _, name := range []string{"membership_error.png", "membership_delta_error.png", "membership_control.png"} {
		checkPNG(t, filepath.Join(dir, name))
	}
}

func TestSaveSurface(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surface.png")
	if err := SaveSurface(path, fuzzy.NewController(fuzzy.DefaultKi), 31, 21); err != nil {
		t.Fatalf("SaveSurface: %v", err)
	}
	checkPNG(t, path)
}

func TestSaveSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.png")
	if err := SaveSummary(path, resultFixture(t)); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}
	checkPNG(t, path)
}
