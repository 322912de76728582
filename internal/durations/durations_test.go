package durations

import (
	"errors"
	"testing"
)

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"10", 10},
		{"10s", 10},
		{"1m", 60},
		{"2h", 7200},
		{"1d", 86400},
		{"1.5m", 90},
		{"0.5s", 0.5},
		{"3M", 180},
		{"  10s  ", 10},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSeconds(tt.in)
			if err != nil {
				t.Fatalf("ParseSeconds(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseSeconds(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSecondsRejects(t *testing.T) {
	tests := []string{
		"",
		"abc",
		"10x",
		"-5",
		"-5s",
		"0",
		"0s",
		"1m30s",
		"10 s",
		"s",
		"1..5m",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseSeconds(in); !errors.Is(err, ErrInvalidDuration) {
				t.Errorf("ParseSeconds(%q) = %v, want ErrInvalidDuration", in, err)
			}
		})
	}
}
