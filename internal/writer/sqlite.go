package writer

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/couchcryptid/storm-events-summary/internal/aggregator"
	"github.com/couchcryptid/storm-events-summary/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS events_by_type (
	event_type TEXT PRIMARY KEY,
	event_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS fatalities_by_type (
	event_type TEXT PRIMARY KEY,
	fatalities INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS fatalities_by_region (
	region TEXT PRIMARY KEY,
	fatalities INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS fatalities_by_month (
	month TEXT PRIMARY KEY,
	fatalities INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS damage_by_type (
	event_type TEXT PRIMARY KEY,
	damage_property REAL NOT NULL,
	damage_crops REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS events_master (
	event_id TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	begin_time TEXT NOT NULL,
	month TEXT NOT NULL,
	state TEXT,
	county TEXT,
	location TEXT,
	latitude REAL,
	longitude REAL,
	fatalities INTEGER NOT NULL,
	magnitude REAL,
	damage_property REAL NOT NULL,
	damage_crops REAL NOT NULL
);
`

// ExportSQLite writes the summaries and master table into a SQLite database
// file for dashboard tools that ingest databases. Existing rows are replaced
// so re-running against the same file is idempotent.
func ExportSQLite(ctx context.Context, path string, s aggregator.Summaries, joined []domain.JoinedRecord) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create sqlite schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sqlite tx: %w", err)
	}
	defer tx.Rollback()

	counts := []struct {
		table string
		rows  []aggregator.CountRow
	}{
		{"events_by_type", s.EventsByType},
		{"fatalities_by_type", s.FatalitiesByType},
		{"fatalities_by_region", s.FatalitiesByRegion},
		{"fatalities_by_month", s.FatalitiesByMonth},
	}
	for _, c := range counts {
		stmt := fmt.Sprintf("INSERT OR REPLACE INTO %s VALUES (?, ?)", c.table)
		for _, row := range c.rows {
			if _, err := tx.ExecContext(ctx, stmt, row.Key, row.Count); err != nil {
				return fmt.Errorf("insert %s: %w", c.table, err)
			}
		}
	}

	for _, row := range s.DamageByType {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO damage_by_type VALUES (?, ?, ?)",
			row.Key, row.Property, row.Crops,
		); err != nil {
			return fmt.Errorf("insert damage_by_type: %w", err)
		}
	}

	for _, j := range joined {
		var state, county, name any
		var lat, lon any
		if j.Location != nil {
			state = nullIfEmpty(j.Location.State)
			county = nullIfEmpty(j.Location.County)
			name = nullIfEmpty(j.Location.Name)
			lat = nullIfNilFloat(j.Location.Lat)
			lon = nullIfNilFloat(j.Location.Lon)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO events_master VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			j.EventID,
			j.EventType,
			j.BeginTime.UTC().Format("2006-01-02T15:04:05Z"),
			j.Month(),
			state, county, name, lat, lon,
			j.Fatalities,
			nullIfNilFloat(j.Magnitude),
			j.DamageProperty,
			j.DamageCrops,
		); err != nil {
			return fmt.Errorf("insert events_master: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sqlite tx: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfNilFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
