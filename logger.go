package malaria

import (
	"fmt"
	"os"

	"github.com/segmentio/ksuid"
)

// Recorder is an optional per-tick observer of one Intrahost's read-only
// aggregates. It is never called by the core itself (Intrahost.Update has
// no knowledge a Recorder exists); the caller in bin/intrahost is
// responsible for invoking Record after each Update.
type Recorder interface {
	// Init prepares the recorder's backing store (file headers, table
	// creation) before the first Record call.
	Init() error
	// Record logs one tick's readouts for the given host.
	Record(tick int, h *Intrahost) error
	// Close releases any resources the recorder holds open.
	Close() error
}

// TickReadout is the flat row shape both Recorder backends write: one row
// per (run, tick), carrying exactly the read-only aggregates spec §4.5
// names.
type TickReadout struct {
	RunID           string
	Tick            int
	NumInfections   int
	ParasiteDensity float64
	GametocyteDensity float64
	FeverCelsius    float64
	Infectiousness  float64
}

func newTickReadout(runID string, tick int, h *Intrahost) TickReadout {
	return TickReadout{
		RunID:             runID,
		Tick:              tick,
		NumInfections:     h.NumInfections(),
		ParasiteDensity:   h.ParasiteDensity(),
		GametocyteDensity: h.GametocyteDensity(),
		FeverCelsius:      h.FeverCelsius(),
		Infectiousness:    h.Infectiousness(),
	}
}

// newRunID stamps a fresh ksuid for one Recorder's lifetime. This is purely
// a run identifier for telemetry grouping; it is never used as an
// Infection's suid (see suid.go for why that stays a plain counter).
func newRunID() string {
	return ksuid.New().String()
}

// AppendToFile creates a new file on the given path if it does not exist, or
// appends to the end of the existing file if the file exists.
func AppendToFile(path string, b []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(b); err != nil {
		return err
	}
	return f.Sync()
}

// NewFile creates a new file on the given path, failing if it already
// exists.
func NewFile(path string, b []byte) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(b); err != nil {
		return err
	}
	return f.Sync()
}
