package driver

import (
	"context"
	"encoding/csv"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiom-sh/axiom/internal/config"
	"github.com/axiom-sh/axiom/internal/proc"
	"github.com/axiom-sh/axiom/internal/screen"
	"github.com/axiom-sh/axiom/internal/sender"
)

type stubBackend struct {
	grabs  int
	fail   bool
	onGrab func()
}

func (s *stubBackend) Monitors() ([]screen.Region, error) {
	return []screen.Region{
		{Width: 100, Height: 100},
		{Width: 100, Height: 100},
	}, nil
}

func (s *stubBackend) Grab(r screen.Region) (image.Image, error) {
	if s.fail {
		return nil, errors.New("grab failed")
	}
	if s.onGrab != nil {
		s.onGrab()
	}
	s.grabs++
	return image.NewRGBA(image.Rect(0, 0, r.Width, r.Height)), nil
}

type stubProbe struct{ alive bool }

func (p stubProbe) Alive(pid int) bool                  { return p.alive }
func (p stubProbe) Signal(pid int, sig os.Signal) error { return nil }

// failSender rejects every delivery.
type failSender struct{}

func (failSender) Send(ctx context.Context, filePath, message string) error {
	return sender.ErrDeliveryFailed
}
func (failSender) Mode() string { return "http" }

func testConfig(t *testing.T) config.ResolvedDriver {
	t.Helper()
	outDir := t.TempDir()
	return config.ResolvedDriver{
		ResolvedCapture: config.ResolvedCapture{
			OutDir:         outDir,
			Display:        1,
			FilenamePrefix: "axiom_",
		},
		IntervalSeconds: 0.001,
		Pidfile:         filepath.Join(outDir, "axiom.pid"),
		CheckpointCSV:   filepath.Join(outDir, "axiom_checkpoints.csv"),
	}
}

func readCheckpoints(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRunCapturesUntilLimit(t *testing.T) {
	cfg := testConfig(t)
	backend := &stubBackend{}

	d := New(cfg, backend, nil, stubProbe{alive: false}, nil)
	d.MaxShots = 2
	require.NoError(t, d.Run(context.Background()))
	assert.Equal(t, 2, backend.grabs)

	// Header plus start(0), capture(1), capture(2), stop(2).
	records := readCheckpoints(t, cfg.CheckpointCSV)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"start", "0"}, []string{records[1][0], records[1][2]})
	assert.Equal(t, []string{"capture", "1"}, []string{records[2][0], records[2][2]})
	assert.Equal(t, []string{"capture", "2"}, []string{records[3][0], records[3][2]})
	assert.Equal(t, []string{"stop", "2"}, []string{records[4][0], records[4][2]})

	// Capture rows carry a filename; start and stop do not.
	assert.Empty(t, records[1][3])
	assert.Contains(t, records[2][3], "axiom_")
	assert.Contains(t, records[2][3], ".png")
	assert.Empty(t, records[4][3])

	// The pidfile is gone after a clean exit.
	_, err := os.Stat(cfg.Pidfile)
	assert.True(t, os.IsNotExist(err))
}

func TestRunFailsFastWhenAlreadyRunning(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, proc.Write(cfg.Pidfile, 12345))

	d := New(cfg, &stubBackend{}, nil, stubProbe{alive: true}, nil)
	err := d.Run(context.Background())
	require.ErrorIs(t, err, proc.ErrAlreadyRunning)

	// Nothing was written: the other instance's pidfile is intact and
	// no checkpoint log appeared.
	assert.Equal(t, 12345, proc.Read(cfg.Pidfile))
	_, statErr := os.Stat(cfg.CheckpointCSV)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunReplacesStalePidfile(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, proc.Write(cfg.Pidfile, 12345))

	backend := &stubBackend{}
	d := New(cfg, backend, nil, stubProbe{alive: false}, nil)
	d.MaxShots = 1
	d.pid = func() int { return 777 }

	var pidDuringRun int
	backend.onGrab = func() { pidDuringRun = proc.Read(cfg.Pidfile) }

	require.NoError(t, d.Run(context.Background()))

	// The stale pid was replaced with our own for the duration of the
	// run, then removed on exit.
	assert.Equal(t, 777, pidDuringRun)
	_, err := os.Stat(cfg.Pidfile)
	assert.True(t, os.IsNotExist(err))
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	cfg := testConfig(t)
	backend := &stubBackend{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(cfg, backend, nil, stubProbe{alive: false}, nil)
	require.NoError(t, d.Run(ctx))

	// One capture completes before the cancellation is observed, then
	// the loop exits through the cleanup path.
	records := readCheckpoints(t, cfg.CheckpointCSV)
	require.Len(t, records, 4)
	assert.Equal(t, "start", records[1][0])
	assert.Equal(t, "capture", records[2][0])
	assert.Equal(t, "stop", records[3][0])

	_, err := os.Stat(cfg.Pidfile)
	assert.True(t, os.IsNotExist(err))
}

func TestRunDeliveryFailureStillCheckpoints(t *testing.T) {
	cfg := testConfig(t)

	d := New(cfg, &stubBackend{}, failSender{}, stubProbe{alive: false}, nil)
	d.MaxShots = 5
	err := d.Run(context.Background())
	require.ErrorIs(t, err, sender.ErrDeliveryFailed)

	// The failed cycle's capture row is absent, but the stop row still
	// lands with the final counter, and the pidfile is removed.
	records := readCheckpoints(t, cfg.CheckpointCSV)
	require.Len(t, records, 3)
	assert.Equal(t, "start", records[1][0])
	assert.Equal(t, []string{"stop", "1"}, []string{records[2][0], records[2][2]})
	assert.Equal(t, "http", records[2][8])

	_, statErr := os.Stat(cfg.Pidfile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunCaptureFailureStillCheckpoints(t *testing.T) {
	cfg := testConfig(t)

	d := New(cfg, &stubBackend{fail: true}, nil, stubProbe{alive: false}, nil)
	err := d.Run(context.Background())
	require.Error(t, err)

	records := readCheckpoints(t, cfg.CheckpointCSV)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"stop", "0"}, []string{records[2][0], records[2][2]})
}

func TestRunGitPushBatching(t *testing.T) {
	cfg := testConfig(t)

	var pushes, commits int
	git := sender.NewGitSender(cfg.OutDir, "", "", true)
	git.Run = func(ctx context.Context, dir string, args ...string) sender.CmdResult {
		switch args[1] {
		case "diff":
			return sender.CmdResult{ExitCode: 1}
		case "commit":
			commits++
		case "push":
			pushes++
		}
		return sender.CmdResult{}
	}

	d := New(cfg, &stubBackend{}, git, stubProbe{alive: false}, nil)
	d.MaxShots = 5
	d.PushEvery = 2
	require.NoError(t, d.Run(context.Background()))

	// Pushes land on captures 1, 3, 5; every capture commits.
	assert.Equal(t, 5, commits)
	assert.Equal(t, 3, pushes)

	records := readCheckpoints(t, cfg.CheckpointCSV)
	assert.Equal(t, "git", records[1][8])
}

func TestRunRecordsRegionSnapshot(t *testing.T) {
	cfg := testConfig(t)
	cfg.Region = &screen.Region{Left: 10, Top: 11, Width: 12, Height: 13}
	backend := &stubBackend{}

	d := New(cfg, backend, nil, stubProbe{alive: false}, nil)
	d.MaxShots = 1
	require.NoError(t, d.Run(context.Background()))

	records := readCheckpoints(t, cfg.CheckpointCSV)
	require.Len(t, records, 4)
	assert.Equal(t, "10,11,12,13", records[1][7])
}
