// Package config reads pipeline settings from environment variables. The CLI
// loads .env.local best-effort before calling Load, so local runs can keep
// settings in a file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-events-summary/internal/domain"
)

// Row policies for malformed input lines.
const (
	PolicySkip  = "skip"  // count, log, continue
	PolicyAbort = "abort" // fail the run on the first malformed line
)

// Config holds all pipeline settings, populated from environment variables.
type Config struct {
	LogLevel  string
	LogFormat string

	// RowPolicy decides what a malformed CSV line does to the run.
	RowPolicy string

	// Window is the inclusive analysis date range; events beginning outside
	// it are excluded from aggregation.
	Window domain.Window

	// NullColumnThreshold drops a column when its share of blank cells
	// exceeds this value (0 < t <= 1).
	NullColumnThreshold float64

	// SpecPath optionally overrides the embedded normalization spec with a
	// YAML file.
	SpecPath string

	// SQLitePath, when set, additionally exports the summary tables into a
	// SQLite database file at this path.
	SQLitePath string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	windowStart, err := parseDate("WINDOW_START", "2024-01-01")
	if err != nil {
		return nil, err
	}
	windowEnd, err := parseDate("WINDOW_END", "2024-09-30")
	if err != nil {
		return nil, err
	}
	if windowEnd.Before(windowStart) {
		return nil, errors.New("WINDOW_END precedes WINDOW_START")
	}

	threshold, err := parseNullThreshold()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:            envOrDefault("LOG_LEVEL", "info"),
		LogFormat:           envOrDefault("LOG_FORMAT", "text"),
		RowPolicy:           envOrDefault("ROW_POLICY", PolicySkip),
		Window:              domain.Window{Start: windowStart, End: windowEnd},
		NullColumnThreshold: threshold,
		SpecPath:            os.Getenv("CLEAN_SPEC_PATH"),
		SQLitePath:          os.Getenv("SQLITE_PATH"),
	}

	if cfg.RowPolicy != PolicySkip && cfg.RowPolicy != PolicyAbort {
		return nil, fmt.Errorf("ROW_POLICY must be %q or %q", PolicySkip, PolicyAbort)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDate(key, fallback string) (time.Time, error) {
	raw := envOrDefault(key, fallback)
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: want YYYY-MM-DD", key, raw)
	}
	return t, nil
}

func parseNullThreshold() (float64, error) {
	raw := envOrDefault("CLEAN_NULL_THRESHOLD", "0.9")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 || v > 1 {
		return 0, errors.New("invalid CLEAN_NULL_THRESHOLD: want a value in (0, 1]")
	}
	return v, nil
}
