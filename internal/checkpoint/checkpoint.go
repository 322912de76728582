// Package checkpoint writes the append-only CSV audit log of driver
// lifecycle events.
package checkpoint

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Event names recorded in the log.
const (
	EventStart   = "start"
	EventCapture = "capture"
	EventStop    = "stop"
)

// Header column order is part of the on-disk format.
var Header = []string{
	"event",
	"ts_utc",
	"count",
	"filename",
	"out_dir",
	"interval_seconds",
	"display",
	"region",
	"send",
}

// Row is one lifecycle event plus a snapshot of the active
// configuration at write time. Filename is empty for start and stop.
type Row struct {
	Event           string
	TS              time.Time
	Count           int
	Filename        string
	OutDir          string
	IntervalSeconds string
	Display         string
	Region          string
	Send            string
}

func (r Row) record() []string {
	return []string{
		r.Event,
		r.TS.UTC().Format(time.RFC3339),
		strconv.Itoa(r.Count),
		r.Filename,
		r.OutDir,
		r.IntervalSeconds,
		r.Display,
		r.Region,
		r.Send,
	}
}

// Append writes row to csvPath, creating the parent directory as
// needed and the header only when the file does not exist yet. Each
// call is a single synchronous append; nothing is buffered across
// calls, so a crash after Append returns never loses the record.
func Append(csvPath string, row Row) error {
	if err := os.MkdirAll(filepath.Dir(csvPath), 0755); err != nil {
		return fmt.Errorf("checkpoint: failed to create log dir: %w", err)
	}

	_, statErr := os.Stat(csvPath)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(csvPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("checkpoint: failed to open log: %w", err)
	}

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(Header); err != nil {
			f.Close()
			return fmt.Errorf("checkpoint: failed to write header: %w", err)
		}
	}
	if err := w.Write(row.record()); err != nil {
		f.Close()
		return fmt.Errorf("checkpoint: failed to write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("checkpoint: failed to flush row: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("checkpoint: failed to close log: %w", err)
	}
	return nil
}
