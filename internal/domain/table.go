package domain

import "time"

// Row is one data row of a raw table, keyed by header name. Line is the
// 1-based line number in the source file, kept for drop diagnostics.
type Row struct {
	Line   int
	Fields map[string]string
}

// Table is an immutable in-memory copy of one input CSV. Columns preserves
// the header order of the source file.
type Table struct {
	Name    string
	Path    string
	Columns []string
	Rows    []Row
}

// Window is the inclusive analysis date range. Events beginning outside it
// are excluded from aggregation.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t's calendar date falls inside the window.
func (w Window) Contains(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(w.Start) && !day.After(w.End)
}
