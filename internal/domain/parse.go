package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// damageRe matches NOAA damage figures: a decimal number with an optional
// K/M/B magnitude suffix, e.g. "10.00K" or "1.2M".
var damageRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)([KMB])?$`)

// ParseDamage converts a DAMAGE_PROPERTY / DAMAGE_CROPS figure to dollars.
// Blank, unparseable, or negative values come back as 0 (no reported damage).
func ParseDamage(s string) float64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0
	}

	m := damageRe.FindStringSubmatch(s)
	if m == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			return 0
		}
		return v
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch m[2] {
	case "K":
		v *= 1_000
	case "M":
		v *= 1_000_000
	case "B":
		v *= 1_000_000_000
	}
	return v
}

// CombineDateTime assembles a NOAA split timestamp (YEARMONTH, DAY, HHMM)
// into a UTC time. A blank or short HHMM defaults to midnight; an invalid
// year-month or day is an error.
func CombineDateTime(yearMonth, day, hhmm string) (time.Time, error) {
	yearMonth = strings.TrimSpace(yearMonth)
	day = strings.TrimSpace(day)

	if len(yearMonth) != 6 {
		return time.Time{}, fmt.Errorf("yearmonth %q: want YYYYMM", yearMonth)
	}
	year, errY := strconv.Atoi(yearMonth[:4])
	month, errM := strconv.Atoi(yearMonth[4:])
	if errY != nil || errM != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("yearmonth %q: want YYYYMM", yearMonth)
	}

	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, fmt.Errorf("day %q: want 1-31", day)
	}

	hour, minute := parseHHMM(hhmm)

	t := time.Date(year, time.Month(month), d, hour, minute, 0, 0, time.UTC)
	if t.Day() != d {
		// time.Date normalized an impossible date like Feb 30.
		return time.Time{}, fmt.Errorf("day %q: not a calendar date in %s", day, yearMonth)
	}
	return t, nil
}

// parseHHMM reads a 24-hour HHMM string ("1510" → 15:10). Three-digit values
// are zero-padded. Anything unparseable falls back to midnight, matching the
// blank-time convention in the bulk files.
func parseHHMM(hhmm string) (hour, minute int) {
	hhmm = strings.TrimSpace(hhmm)
	if len(hhmm) == 3 {
		hhmm = "0" + hhmm
	}
	if len(hhmm) != 4 {
		return 0, 0
	}

	h, errH := strconv.Atoi(hhmm[:2])
	m, errM := strconv.Atoi(hhmm[2:])
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0
	}
	return h, m
}

// ParseCoordinate parses a latitude or longitude cell. Blank or out-of-bounds
// values come back nil (missing), mirroring the source's habit of recording
// impossible coordinates for untraceable reports.
func ParseCoordinate(s string, bound float64) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < -bound || v > bound {
		return nil
	}
	return &v
}

// parseFloatOrNil parses a string as float64, returning nil for blank or
// unparseable values.
func parseFloatOrNil(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
