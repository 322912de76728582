// Package proc manages the driver pidfile and the liveness of the
// process it names: reading and writing the file, classifying whether
// the recorded process is alive, and stopping it with a graceful then
// forceful escalation.
package proc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// ErrAlreadyRunning is returned when a pidfile names a live process.
var ErrAlreadyRunning = errors.New("driver already running")

const (
	stopPollInterval = 100 * time.Millisecond
	forceKillWindow  = 2 * time.Second
)

// Status describes what a pidfile says about the driver. PID is 0 when
// the file is missing, empty, or unparseable; Running and Stale are
// mutually exclusive and both false only in that case.
type Status struct {
	Pidfile string
	PID     int
	Running bool
	Stale   bool
}

// Probe abstracts liveness checks and signal delivery so stop and
// status logic can be tested without real processes.
type Probe interface {
	Alive(pid int) bool
	Signal(pid int, sig os.Signal) error
}

// OSProbe is the real Probe backed by kill(2).
type OSProbe struct{}

// Alive reports whether pid names a live process. Signal 0 checks
// existence; EPERM means the process exists but belongs to another
// user. Any other failure counts as not alive so status reporting
// never blocks on an odd kernel answer.
func (OSProbe) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = p.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}

func (OSProbe) Signal(pid int, sig os.Signal) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Signal(sig)
}

// Read returns the pid recorded in pidfile, or 0 if the file is
// missing, empty, or its first line is not an integer. It never fails
// so that status checks stay total.
func Read(pidfile string) int {
	data, err := os.ReadFile(pidfile)
	if err != nil {
		return 0
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0
	}
	first := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	pid, err := strconv.Atoi(first)
	if err != nil || pid <= 0 {
		return 0
	}
	return pid
}

// Write records pid in pidfile, creating parent directories as needed.
func Write(pidfile string, pid int) error {
	if err := os.MkdirAll(filepath.Dir(pidfile), 0755); err != nil {
		return fmt.Errorf("proc: failed to create pidfile dir: %w", err)
	}
	if err := os.WriteFile(pidfile, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return fmt.Errorf("proc: failed to write pidfile: %w", err)
	}
	return nil
}

// CheckStatus reads the pidfile and classifies liveness. It has no
// side effects.
func CheckStatus(pidfile string, probe Probe) Status {
	pid := Read(pidfile)
	if pid == 0 {
		return Status{Pidfile: pidfile}
	}
	alive := probe.Alive(pid)
	return Status{Pidfile: pidfile, PID: pid, Running: alive, Stale: !alive}
}

// Stop sends SIGTERM to pid and polls liveness every 100ms until the
// process dies or timeout elapses. If it is still alive and force is
// set, SIGKILL is sent and the poll continues for up to 2 more seconds.
// Returns whether the process is confirmed gone; an already-dead pid
// returns true without signalling.
func Stop(probe Probe, pid int, timeout time.Duration, force bool) bool {
	if !probe.Alive(pid) {
		return true
	}

	_ = probe.Signal(pid, syscall.SIGTERM)
	if waitGone(probe, pid, timeout) {
		return true
	}
	if !force {
		return false
	}

	_ = probe.Signal(pid, syscall.SIGKILL)
	return waitGone(probe, pid, forceKillWindow)
}

func waitGone(probe Probe, pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if !probe.Alive(pid) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(stopPollInterval)
	}
}
