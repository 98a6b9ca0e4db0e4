package config

import (
	"fmt"
	"strings"
	"time"
)

// DurationOrDefault parses value, or fallback when value is blank.
func DurationOrDefault(value string, fallback string) (time.Duration, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		raw = strings.TrimSpace(fallback)
	}
	if raw == "" {
		return 0, fmt.Errorf("duration value is empty")
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", raw, err)
	}
	return d, nil
}

// Interval is DurationOrDefault for loop periods and thresholds, which must
// be strictly positive. key only labels the error.
func Interval(key, value, fallback string) (time.Duration, error) {
	d, err := DurationOrDefault(value, fallback)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %v", key, d)
	}
	return d, nil
}
