// Package config merges CLI flags, environment variables, and .env
// files into the resolved configuration consumed by the driver.
// Precedence: flags, then environment, then defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/axiom-sh/axiom/internal/constants"
	"github.com/axiom-sh/axiom/internal/durations"
	"github.com/axiom-sh/axiom/internal/screen"
)

// ResolvedCapture is the immutable configuration for one capture.
type ResolvedCapture struct {
	OutDir         string
	Display        int
	Region         *screen.Region // overrides Display when non-nil
	FilenamePrefix string
}

// ResolvedDriver extends ResolvedCapture with the driver loop settings.
// Pidfile and CheckpointCSV are always set, defaulted under OutDir.
type ResolvedDriver struct {
	ResolvedCapture
	IntervalSeconds float64
	Pidfile         string
	CheckpointCSV   string
}

// CaptureOptions carries flag values into resolution. Zero values mean
// "not given" except Display, which uses a pointer so 0 (the virtual
// screen) stays expressible.
type CaptureOptions struct {
	OutDir  string
	Display *int
	Region  []int
	Cwd     string
}

// DriverOptions adds the driver-only flags.
type DriverOptions struct {
	CaptureOptions
	Interval      string
	Pidfile       string
	CheckpointCSV string
}

// LoadDotenv loads the first of ./.env, ./axiom.env into the process
// environment without overriding variables that are already set.
// Returns the loaded path, or "" when no candidate exists.
func LoadDotenv(cwd string) (string, error) {
	for _, name := range constants.DotenvCandidates {
		path := filepath.Join(cwd, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return "", fmt.Errorf("config: failed to load %s: %w", path, err)
		}
		return path, nil
	}
	return "", nil
}

// ResolveCapture merges flags, environment, and defaults for a
// one-shot capture.
func ResolveCapture(opts CaptureOptions) (ResolvedCapture, error) {
	outDir := opts.OutDir
	if outDir == "" {
		outDir = envValue(constants.EnvOutDir)
	}
	if outDir == "" {
		outDir = opts.Cwd
	}
	outDir, err := filepath.Abs(outDir)
	if err != nil {
		return ResolvedCapture{}, fmt.Errorf("config: failed to resolve out dir: %w", err)
	}

	display := constants.DefaultDisplay
	if opts.Display != nil {
		display = *opts.Display
	} else if v := envValue(constants.EnvDisplay); v != "" {
		display, err = strconv.Atoi(v)
		if err != nil {
			return ResolvedCapture{}, fmt.Errorf("config: %s must be an integer", constants.EnvDisplay)
		}
	}
	if display < 0 {
		return ResolvedCapture{}, fmt.Errorf("config: display must be >= 0")
	}

	prefix := envValue(constants.EnvFilenamePrefix)
	if prefix == "" {
		prefix = constants.DefaultFilenamePrefix
	}

	var region *screen.Region
	if opts.Region != nil {
		region, err = RegionFromInts(opts.Region)
	} else {
		region, err = ParseRegion(envValue(constants.EnvRegion))
	}
	if err != nil {
		return ResolvedCapture{}, err
	}

	return ResolvedCapture{
		OutDir:         outDir,
		Display:        display,
		Region:         region,
		FilenamePrefix: prefix,
	}, nil
}

// ResolveDriver merges flags, environment, and defaults for the
// long-running driver.
func ResolveDriver(opts DriverOptions) (ResolvedDriver, error) {
	capture, err := ResolveCapture(opts.CaptureOptions)
	if err != nil {
		return ResolvedDriver{}, err
	}

	raw := opts.Interval
	if raw == "" {
		raw = envValue(constants.EnvIntervalSeconds)
	}
	if raw == "" {
		raw = constants.DefaultInterval
	}
	interval, err := durations.ParseSeconds(raw)
	if err != nil {
		return ResolvedDriver{}, fmt.Errorf("config: interval: %w", err)
	}

	pidfile := opts.Pidfile
	if pidfile == "" {
		pidfile = envValue(constants.EnvPidfile)
	}
	if pidfile == "" {
		pidfile = filepath.Join(capture.OutDir, constants.DefaultPidfileName)
	}
	pidfile, err = filepath.Abs(pidfile)
	if err != nil {
		return ResolvedDriver{}, fmt.Errorf("config: failed to resolve pidfile: %w", err)
	}

	csvPath := opts.CheckpointCSV
	if csvPath == "" {
		csvPath = envValue(constants.EnvCheckpointCSV)
	}
	if csvPath == "" {
		csvPath = filepath.Join(capture.OutDir, constants.DefaultCheckpointName)
	}
	csvPath, err = filepath.Abs(csvPath)
	if err != nil {
		return ResolvedDriver{}, fmt.Errorf("config: failed to resolve checkpoint log: %w", err)
	}

	return ResolvedDriver{
		ResolvedCapture: capture,
		IntervalSeconds: interval,
		Pidfile:         pidfile,
		CheckpointCSV:   csvPath,
	}, nil
}

// ParseRegion accepts "x y w h" or "x,y,w,h". An empty string means
// no region.
func ParseRegion(value string) (*screen.Region, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(value, ",", " "))
	if cleaned == "" {
		return nil, nil
	}
	parts := strings.Fields(cleaned)
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("config: region must be 4 integers like 'x y w h' or 'x,y,w,h'")
		}
		nums = append(nums, n)
	}
	return RegionFromInts(nums)
}

// RegionFromInts validates the (left, top, width, height) quadruple.
func RegionFromInts(nums []int) (*screen.Region, error) {
	if len(nums) != 4 {
		return nil, fmt.Errorf("config: region requires exactly 4 integers: x y width height")
	}
	if nums[2] <= 0 || nums[3] <= 0 {
		return nil, fmt.Errorf("config: region width/height must be > 0")
	}
	return &screen.Region{Left: nums[0], Top: nums[1], Width: nums[2], Height: nums[3]}, nil
}

func envValue(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}
