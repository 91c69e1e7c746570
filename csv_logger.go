package malaria

import (
	"bytes"
	"fmt"
	"strings"
)

// CSVRecorder is a Recorder that writes one comma-delimited row per tick.
type CSVRecorder struct {
	path  string
	runID string
}

// NewCSVRecorder creates a CSV-backed Recorder writing to basepath with
// ".csv" appended.
func NewCSVRecorder(basepath string) *CSVRecorder {
	return &CSVRecorder{
		path:  strings.TrimSuffix(basepath, ".") + ".csv",
		runID: newRunID(),
	}
}

// Init writes the CSV header row.
func (l *CSVRecorder) Init() error {
	var b bytes.Buffer
	b.WriteString("run,tick,n_infections,parasite_density,gametocyte_density,fever_celsius,infectiousness\n")
	return NewFile(l.path, b.Bytes())
}

// Record appends one tick's readouts for h.
func (l *CSVRecorder) Record(tick int, h *Intrahost) error {
	row := newTickReadout(l.runID, tick, h)
	const template = "%s,%d,%d,%f,%f,%f,%f\n"
	line := fmt.Sprintf(template,
		row.RunID,
		row.Tick,
		row.NumInfections,
		row.ParasiteDensity,
		row.GametocyteDensity,
		row.FeverCelsius,
		row.Infectiousness,
	)
	return AppendToFile(l.path, []byte(line))
}

// Close is a no-op for CSVRecorder: every Record call opens and closes its
// own file handle.
func (l *CSVRecorder) Close() error { return nil }
