// Package driver runs the capture loop: it owns the pidfile lifecycle,
// the timed capture/deliver/checkpoint cycle, cancellation, and
// guaranteed cleanup.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/axiom-sh/axiom/internal/checkpoint"
	"github.com/axiom-sh/axiom/internal/config"
	"github.com/axiom-sh/axiom/internal/proc"
	"github.com/axiom-sh/axiom/internal/screen"
	"github.com/axiom-sh/axiom/internal/sender"
)

// TimestampLayout names capture files in UTC, second resolution.
const TimestampLayout = "20060102T150405Z"

// Driver is the orchestrator. One Driver corresponds to one process
// holding one pidfile; mutual exclusion across processes is enforced
// optimistically through that file.
type Driver struct {
	cfg     config.ResolvedDriver
	backend screen.Backend
	sink    sender.Sender // nil when delivery is disabled
	probe   proc.Probe
	log     *zap.Logger

	// MaxShots stops the loop after that many captures; 0 means run
	// until cancelled.
	MaxShots int

	// PushEvery gates git pushes: push on captures 1, N+1, 2N+1, ...
	// and commit-only otherwise. Ignored for non-git sinks.
	PushEvery int

	pid func() int
	now func() time.Time
}

// New assembles a Driver. A nil probe gets the OS probe; a nil logger
// is replaced with a no-op one.
func New(cfg config.ResolvedDriver, backend screen.Backend, sink sender.Sender, probe proc.Probe, log *zap.Logger) *Driver {
	if probe == nil {
		probe = proc.OSProbe{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{
		cfg:       cfg,
		backend:   backend,
		sink:      sink,
		probe:     probe,
		log:       log,
		PushEvery: 1,
		pid:       os.Getpid,
		now:       time.Now,
	}
}

// Run executes the driver until ctx is cancelled, MaxShots is reached,
// or a capture/delivery error occurs. Errors during the loop are not
// retried. On every exit path after startup the stop checkpoint is
// appended and the pidfile removed.
func (d *Driver) Run(ctx context.Context) (err error) {
	st := proc.CheckStatus(d.cfg.Pidfile, d.probe)
	if st.Running {
		return fmt.Errorf("%w (pid %d) per pidfile: %s", proc.ErrAlreadyRunning, st.PID, d.cfg.Pidfile)
	}
	if st.Stale {
		d.log.Warn("removing stale pidfile",
			zap.String("pidfile", d.cfg.Pidfile), zap.Int("pid", st.PID))
		if rmErr := os.Remove(d.cfg.Pidfile); rmErr != nil && !os.IsNotExist(rmErr) {
			d.log.Warn("failed to remove stale pidfile", zap.Error(rmErr))
		}
	}

	if err := proc.Write(d.cfg.Pidfile, d.pid()); err != nil {
		return err
	}

	count := 0
	defer func() {
		if cpErr := d.appendCheckpoint(checkpoint.EventStop, count, ""); cpErr != nil {
			d.log.Warn("failed to append stop checkpoint", zap.Error(cpErr))
		}
		if rmErr := os.Remove(d.cfg.Pidfile); rmErr != nil && !os.IsNotExist(rmErr) {
			d.log.Warn("failed to remove pidfile", zap.Error(rmErr))
		}
	}()

	if err := d.appendCheckpoint(checkpoint.EventStart, 0, ""); err != nil {
		return err
	}

	d.log.Info("driver started",
		zap.String("out_dir", d.cfg.OutDir),
		zap.Float64("interval_seconds", d.cfg.IntervalSeconds),
		zap.Int("display", d.cfg.Display),
		zap.String("region", d.regionString()),
		zap.String("pidfile", d.cfg.Pidfile),
		zap.String("send", d.sendMode()))

	interval := time.Duration(d.cfg.IntervalSeconds * float64(time.Second))
	for {
		outPath := filepath.Join(d.cfg.OutDir,
			d.cfg.FilenamePrefix+d.now().UTC().Format(TimestampLayout)+".png")

		saved, err := screen.CapturePNG(d.backend, outPath, d.cfg.Display, d.cfg.Region)
		if err != nil {
			return err
		}
		count++
		d.log.Info("saved capture", zap.Int("count", count), zap.String("path", saved))

		if d.sink != nil {
			if err := d.deliver(ctx, saved, count); err != nil {
				return err
			}
		}

		if err := d.appendCheckpoint(checkpoint.EventCapture, count, filepath.Base(saved)); err != nil {
			return err
		}

		if d.MaxShots > 0 && count >= d.MaxShots {
			d.log.Info("capture limit reached", zap.Int("max_shots", d.MaxShots))
			return nil
		}

		select {
		case <-ctx.Done():
			d.log.Info("stop requested")
			return nil
		case <-time.After(interval):
		}
	}
}

// deliver relays one capture, applying the push-batching policy for
// git sinks.
func (d *Driver) deliver(ctx context.Context, path string, count int) error {
	message := fmt.Sprintf("axiom: capture %d (%s)", count, filepath.Base(path))

	if git, ok := d.sink.(*sender.GitSender); ok {
		pushNow := d.PushEvery <= 1 || (count-1)%d.PushEvery == 0
		return git.SendPush(ctx, path, message, pushNow)
	}
	return d.sink.Send(ctx, path, message)
}

func (d *Driver) appendCheckpoint(event string, count int, filename string) error {
	return checkpoint.Append(d.cfg.CheckpointCSV, checkpoint.Row{
		Event:           event,
		TS:              d.now(),
		Count:           count,
		Filename:        filename,
		OutDir:          d.cfg.OutDir,
		IntervalSeconds: strconv.FormatFloat(d.cfg.IntervalSeconds, 'g', -1, 64),
		Display:         strconv.Itoa(d.cfg.Display),
		Region:          d.regionString(),
		Send:            d.sendMode(),
	})
}

func (d *Driver) regionString() string {
	if d.cfg.Region == nil {
		return ""
	}
	return d.cfg.Region.String()
}

func (d *Driver) sendMode() string {
	if d.sink == nil {
		return "none"
	}
	return d.sink.Mode()
}
