package checkpoint

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(event string, count int, filename string) Row {
	return Row{
		Event:           event,
		TS:              time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Count:           count,
		Filename:        filename,
		OutDir:          "/tmp/shots",
		IntervalSeconds: "5",
		Display:         "1",
		Region:          "",
		Send:            "none",
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestAppend(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "logs", "axiom_checkpoints.csv")

	// First append creates the parent dir and writes header + row.
	require.NoError(t, Append(csvPath, row(EventStart, 0, "")))
	lines := readLines(t, csvPath)
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(Header, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "start,"))

	// Second append adds exactly one row, no duplicate header.
	require.NoError(t, Append(csvPath, row(EventCapture, 1, "axiom_x.png")))
	lines = readLines(t, csvPath)
	require.Len(t, lines, 3)
	assert.Equal(t, 1, strings.Count(strings.Join(lines, "\n"), "event,ts_utc"))
}

func TestAppendRecordsFields(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "axiom_checkpoints.csv")
	r := row(EventCapture, 3, "axiom_20260830T120000Z.png")
	r.Region = "10,11,12,13"
	r.Send = "git"
	require.NoError(t, Append(csvPath, r))

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{
		"capture", "2026-08-30T12:00:00Z", "3", "axiom_20260830T120000Z.png",
		"/tmp/shots", "5", "1", "10,11,12,13", "git",
	}, records[1])
}

func TestAppendSurvivesExistingFile(t *testing.T) {
	// Records from a previous driver run are never rewritten; new rows
	// interleave after them.
	csvPath := filepath.Join(t.TempDir(), "axiom_checkpoints.csv")
	require.NoError(t, Append(csvPath, row(EventStart, 0, "")))
	require.NoError(t, Append(csvPath, row(EventStop, 0, "")))
	require.NoError(t, Append(csvPath, row(EventStart, 0, "")))

	lines := readLines(t, csvPath)
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[3], "start,"))
}
