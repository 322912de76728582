// Package durations parses human-readable interval strings like "10s",
// "1.5m", "2h" or "1d" into a number of seconds.
package durations

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidDuration is returned for malformed or non-positive durations.
var ErrInvalidDuration = errors.New("invalid duration")

// No whitespace is allowed between the number and the unit; composite
// forms like "1m30s" are rejected rather than summed.
var durationRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)([smhdSMHD]?)$`)

var unitSeconds = map[string]float64{
	"s": 1,
	"m": 60,
	"h": 3600,
	"d": 86400,
}

// ParseSeconds converts a duration string into seconds. A bare number
// means seconds; surrounding whitespace is ignored.
func ParseSeconds(value string) (float64, error) {
	m := durationRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, fmt.Errorf("%w: %q (expected like 10, 10s, 1m, 2h, 1d)", ErrInvalidDuration, value)
	}

	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, value)
	}
	if num <= 0 {
		return 0, fmt.Errorf("%w: duration must be > 0", ErrInvalidDuration)
	}

	unit := strings.ToLower(m[2])
	if unit == "" {
		unit = "s"
	}
	return num * unitSeconds[unit], nil
}
