// Package screen wraps the capture backend behind display/region
// selection semantics and PNG encoding.
package screen

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/kbinani/screenshot"
)

// ErrDisplayNotAvailable is returned for monitor indices outside the
// backend-reported range.
var ErrDisplayNotAvailable = errors.New("display not available")

// Region is an absolute rectangle in virtual-screen coordinates.
type Region struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Rect converts the region to an image.Rectangle for the backend.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

func (r Region) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.Left, r.Top, r.Width, r.Height)
}

// Backend is the capture device. Monitors returns the selectable list:
// index 0 is the virtual screen (bounding box of all displays), 1..N
// are the individual displays in backend-reported order.
type Backend interface {
	Monitors() ([]Region, error)
	Grab(r Region) (image.Image, error)
}

// OSBackend captures through the kbinani/screenshot library.
type OSBackend struct{}

func (OSBackend) Monitors() ([]Region, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("screen: no active displays")
	}

	union := screenshot.GetDisplayBounds(0)
	displays := make([]Region, 0, n)
	for i := 0; i < n; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		union = union.Union(bounds)
		displays = append(displays, fromRect(bounds))
	}

	monitors := make([]Region, 0, n+1)
	monitors = append(monitors, fromRect(union))
	monitors = append(monitors, displays...)
	return monitors, nil
}

func (OSBackend) Grab(r Region) (image.Image, error) {
	img, err := screenshot.CaptureRect(r.Rect())
	if err != nil {
		return nil, fmt.Errorf("screen: capture failed: %w", err)
	}
	return img, nil
}

func fromRect(r image.Rectangle) Region {
	return Region{Left: r.Min.X, Top: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// SelectMonitor picks the capture rectangle for a monitor index from
// the Backend.Monitors list.
func SelectMonitor(monitors []Region, display int) (Region, error) {
	if display < 0 {
		return Region{}, fmt.Errorf("%w: display must be >= 0", ErrDisplayNotAvailable)
	}
	if display >= len(monitors) {
		return Region{}, fmt.Errorf("%w: display %d not available; found %d displays",
			ErrDisplayNotAvailable, display, len(monitors)-1)
	}
	return monitors[display], nil
}

// CapturePNG grabs one frame and writes it to outPath, creating the
// parent directory first. A non-nil region is used verbatim as the
// grab rectangle and bypasses display selection entirely. The output
// is always PNG regardless of the destination extension.
func CapturePNG(b Backend, outPath string, display int, region *Region) (string, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return "", fmt.Errorf("screen: failed to create output dir: %w", err)
	}

	var grabRect Region
	if region != nil {
		grabRect = *region
	} else {
		monitors, err := b.Monitors()
		if err != nil {
			return "", err
		}
		grabRect, err = SelectMonitor(monitors, display)
		if err != nil {
			return "", err
		}
	}

	img, err := b.Grab(grabRect)
	if err != nil {
		return "", err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("screen: failed to create %s: %w", outPath, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("screen: failed to encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("screen: failed to close %s: %w", outPath, err)
	}
	return outPath, nil
}
