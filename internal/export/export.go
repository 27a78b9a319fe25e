// Package export serializes finished runs to CSV and JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/servolab/servosim/internal/sim"
)

var csvHeader = []string{
	"time", "actual", "measured", "target", "error",
	"control", "voltage", "current", "velocity", "count",
}

// WriteCSV writes the trace as CSV, one row per record, full float
// precision.
func WriteCSV(w io.Writer, res *sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	row := make([]string, len(csvHeader))
	for _, rec := range res.Records {
		row[0] = formatFloat(rec.Time)
		row[1] = formatFloat(rec.Actual)
		row[2] = formatFloat(rec.Measured)
		row[3] = formatFloat(rec.Target)
		row[4] = formatFloat(rec.Error)
		row[5] = formatFloat(rec.Control)
		row[6] = formatFloat(rec.Voltage)
		row[7] = formatFloat(rec.Current)
		row[8] = formatFloat(rec.Velocity)
		row[9] = strconv.FormatInt(rec.Count, 10)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the trace to a file, creating it if needed.
func SaveCSV(path string, res *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCSV(file, res)
}

type runData struct {
	Controller string             `json:"controller"`
	Initial    float64            `json:"initial"`
	Target     float64            `json:"target"`
	Status     string             `json:"status"`
	Steps      int                `json:"steps"`
	Converged  bool               `json:"converged"`
	Metrics    map[string]float64 `json:"metrics"`
	Records    []record           `json:"records"`
}

type record struct {
	Time     float64 `json:"time"`
	Actual   float64 `json:"actual"`
	Measured float64 `json:"measured"`
	Target   float64 `json:"target"`
	Error    float64 `json:"error"`
	Control  float64 `json:"control"`
	Voltage  float64 `json:"voltage"`
	Current  float64 `json:"current"`
	Velocity float64 `json:"velocity"`
	Count    int64   `json:"count"`
}

// WriteJSON writes the full run as an indented JSON object. The initial
// and target positions are taken from the first trace record.
func WriteJSON(w io.Writer, controller string, res *sim.Result) error {
	data := runData{
		Controller: controller,
		Status:     res.Status.String(),
		Steps:      res.Steps,
		Converged:  res.Status == sim.Converged,
		Metrics:    res.Metrics,
		Records:    make([]record, len(res.Records)),
	}
	if len(res.Records) > 0 {
		data.Initial = res.Records[0].Actual
		data.Target = res.Records[0].Target
	}
	for i, rec := range res.Records {
		data.Records[i] = record{
			Time:     rec.Time,
			Actual:   rec.Actual,
			Measured: rec.Measured,
			Target:   rec.Target,
			Error:    rec.Error,
			Control:  rec.Control,
			Voltage:  rec.Voltage,
			Current:  rec.Current,
			Velocity: rec.Velocity,
			Count:    rec.Count,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// SaveJSON writes the run to a file, creating it if needed.
func SaveJSON(path, controller string, res *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, controller, res)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
