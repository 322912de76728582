// Package sender delivers captured files to a remote sink: a git
// working tree (commit and optional push) or an HTTP endpoint
// (multipart upload). Exactly one sender, or none, is active per run.
package sender

import (
	"context"
	"errors"
)

var (
	// ErrNotARepo means the git sink's directory is not a working tree.
	ErrNotARepo = errors.New("not a git repository")

	// ErrDeliveryFailed wraps any sink rejection or transport error.
	ErrDeliveryFailed = errors.New("delivery failed")
)

// Sender relays one captured file per call. Deliveries are not retried
// here; a failure propagates to the caller.
type Sender interface {
	Send(ctx context.Context, filePath, message string) error

	// Mode is the sink tag recorded in checkpoint rows ("git", "http").
	Mode() string
}
