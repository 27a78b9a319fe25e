package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"

	"github.com/servolab/servosim/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Records: []sim.TraceRecord{
			{Time: 0, Actual: 0, Measured: 0, Target: 90, Error: 90, Count: 0},
			{Time: 0.001, Actual: 0.31, Measured: 0.36, Target: 90, Error: 90,
				Control: 61.5, Voltage: 5.043, Current: 1.2, Velocity: 310, Count: 1},
			{Time: 0.002, Actual: 1.15, Measured: 1.08, Target: 90, Error: 89.64,
				Control: 60.2, Voltage: 4.936, Current: 1.1, Velocity: 520, Count: 3},
		},
		Status: sim.StepLimitReached,
		Steps:  2,
		Metrics: map[string]float64{
			"control_effort": 60.85,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleResult()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header + 3 records", len(rows))
	}
	if !reflect.DeepEqual(rows[0], csvHeader) {
		t.Errorf("header = %v, want %v", rows[0], csvHeader)
	}

	// Full precision must survive the round trip.
	got, err := strconv.ParseFloat(rows[2][6], 64)
	if err != nil {
		t.Fatalf("parsing voltage: %v", err)
	}
	if got != 5.043 {
		t.Errorf("voltage = %g, want 5.043", got)
	}
	if rows[3][9] != "3" {
		t.Errorf("count = %q, want \"3\"", rows[3][9])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, "fuzzy", sampleResult()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var got runData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Controller != "fuzzy" {
		t.Errorf("controller = %q, want fuzzy", got.Controller)
	}
	if got.Status != "STEP_LIMIT_REACHED" || got.Converged {
		t.Errorf("status = %q converged = %v, want STEP_LIMIT_REACHED false", got.Status, got.Converged)
	}
	if got.Initial != 0 || got.Target != 90 {
		t.Errorf("initial/target = %g/%g, want 0/90", got.Initial, got.Target)
	}
	if got.Steps != 2 || len(got.Records) != 3 {
		t.Errorf("steps = %d records = %d, want 2 and 3", got.Steps, len(got.Records))
	}
	if got.Records[1].Voltage != 5.043 {
		t.Errorf("records[1].voltage = %g, want 5.043", got.Records[1].Voltage)
	}
	if got.Metrics["control_effort"] != 60.85 {
		t.Errorf("metrics = %v, want control_effort 60.85", got.Metrics)
	}
}

func TestJSONMarksConvergence(t *testing.T) {
	res := sampleResult()
	res.Status = sim.Converged

	var buf bytes.Buffer
	if err := WriteJSON(&buf, "pid", res); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var got runData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Status != "CONVERGED" || !got.Converged {
		t.Errorf("status = %q converged = %v, want CONVERGED true", got.Status, got.Converged)
	}
}

func TestSaveFiles(t *testing.T) {
	dir := t.TempDir()
	res := sampleResult()

	csvPath := filepath.Join(dir, "run.csv")
	if err := SaveCSV(csvPath, res); err != nil {
		t.Fatalf("SaveCSV: %v", err)
	}
	jsonPath := filepath.Join(dir, "run.json")
	if err := SaveJSON(jsonPath, "fuzzy", res); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	for _, path := range []string{csvPath, jsonPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", path)
		}
	}
}
