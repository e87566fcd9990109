// Package cleaner normalizes the raw tables into typed records. Each table
// gets the same treatment: drop null-heavy columns, normalize cells per the
// field spec, build typed records (dropping and counting rows that violate
// invariants), then remove duplicates keeping the first occurrence. Every
// transformation is counted in a per-table Report so data loss is never
// silent.
package cleaner

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/couchcryptid/storm-events-summary/internal/domain"
	"github.com/couchcryptid/storm-events-summary/internal/observability"
)

// Report summarizes the transformations applied to one table.
type Report struct {
	Table             string
	RowsIn            int
	RowsOut           int
	Trimmed           int      // cells changed by a string rule
	Coerced           int      // cells converted to a typed value
	Defaulted         int      // missing cells filled with a default
	DuplicatesRemoved int      // duplicate rows removed (first kept)
	DroppedMissingID  int      // rows without an event identifier
	DroppedBadDate    int      // rows whose date does not parse
	InconsistentDates int      // detail rows whose end precedes begin, kept but counted
	ColumnsDropped    []string // columns removed for exceeding the null threshold
}

// Dropped is the total number of rows removed from the table.
func (r Report) Dropped() int {
	return r.DuplicatesRemoved + r.DroppedMissingID + r.DroppedBadDate
}

// Cleaner applies the normalization spec to raw tables.
type Cleaner struct {
	spec          Spec
	nullThreshold float64
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// New creates a Cleaner. nullThreshold is the blank-cell share above which a
// column is dropped entirely.
func New(spec Spec, nullThreshold float64, logger *slog.Logger, metrics *observability.Metrics) *Cleaner {
	return &Cleaner{
		spec:          spec,
		nullThreshold: nullThreshold,
		logger:        logger,
		metrics:       metrics,
	}
}

// Details cleans the details table into DetailRecords.
func (c *Cleaner) Details(t domain.Table) ([]domain.DetailRecord, Report, error) {
	var records []domain.DetailRecord
	report, err := c.clean(t, c.spec.Details, func(fields map[string]string, rep *Report) error {
		rec, coerced, err := domain.NewDetailRecord(fields)
		if err != nil {
			return err
		}
		rep.Coerced += coerced
		if rec.BeginTime.After(rec.EndTime) {
			rep.InconsistentDates++
		}
		records = append(records, rec)
		return nil
	}, func() int { return len(records) }, func(n int) {
		records = records[:n]
	}, detailKey)
	if err != nil {
		return nil, report, err
	}
	return records, report, nil
}

// Fatalities cleans the fatalities table into FatalityRecords.
func (c *Cleaner) Fatalities(t domain.Table) ([]domain.FatalityRecord, Report, error) {
	var records []domain.FatalityRecord
	report, err := c.clean(t, c.spec.Fatalities, func(fields map[string]string, rep *Report) error {
		rec, coerced, err := domain.NewFatalityRecord(fields)
		if err != nil {
			return err
		}
		if fields["FATALITY_AGE"] == "" {
			rep.Defaulted++ // age -1 sentinel
		}
		if fields["FATALITY_SEX"] == "" {
			rep.Defaulted++ // sex "Unknown"
		}
		rep.Coerced += coerced
		records = append(records, rec)
		return nil
	}, func() int { return len(records) }, func(n int) {
		records = records[:n]
	}, fatalityKey)
	if err != nil {
		return nil, report, err
	}
	return records, report, nil
}

// Locations cleans the locations table into LocationRecords. Unlike the
// other tables, duplicates are keyed on EVENT_ID alone: the bulk files list
// several points per event and only the first is kept.
func (c *Cleaner) Locations(t domain.Table) ([]domain.LocationRecord, Report, error) {
	var records []domain.LocationRecord
	report, err := c.clean(t, c.spec.Locations, func(fields map[string]string, rep *Report) error {
		rec, coerced, err := domain.NewLocationRecord(fields)
		if err != nil {
			return err
		}
		rep.Coerced += coerced
		records = append(records, rec)
		return nil
	}, func() int { return len(records) }, func(n int) {
		records = records[:n]
	}, nil)
	if err != nil {
		return nil, report, err
	}

	// Dedupe on EVENT_ID, first occurrence wins.
	seen := make(map[string]bool, len(records))
	kept := records[:0]
	for _, rec := range records {
		if seen[rec.EventID] {
			report.DuplicatesRemoved++
			continue
		}
		seen[rec.EventID] = true
		kept = append(kept, rec)
	}
	report.RowsOut = len(kept)
	c.finish(&report)
	return kept, report, nil
}

// build is called per normalized row; it appends a typed record or returns a
// drop reason. keyFn produces the duplicate-identity key for a normalized
// row; nil disables row-identity deduplication (the caller handles it).
func (c *Cleaner) clean(
	t domain.Table,
	spec TableSpec,
	build func(map[string]string, *Report) error,
	count func() int,
	truncate func(int),
	keyFn func(map[string]string) string,
) (Report, error) {
	report := Report{Table: t.Name, RowsIn: len(t.Rows)}

	if len(t.Rows) == 0 {
		return report, &domain.ValidationError{Table: t.Name}
	}

	dropped := c.nullHeavyColumns(t, spec)
	report.ColumnsDropped = dropped

	seen := make(map[string]bool, len(t.Rows))
	for _, row := range t.Rows {
		fields := c.normalizeRow(row, t.Columns, spec, dropped, &report)

		if keyFn != nil {
			key := keyFn(fields)
			if seen[key] {
				report.DuplicatesRemoved++
				continue
			}
			seen[key] = true
		}

		if err := build(fields, &report); err != nil {
			switch {
			case errors.Is(err, domain.ErrMissingEventID):
				report.DroppedMissingID++
				c.metrics.RowsDropped.WithLabelValues(t.Name, "missing_event_id").Inc()
			case errors.Is(err, domain.ErrBadDate):
				report.DroppedBadDate++
				c.metrics.RowsDropped.WithLabelValues(t.Name, "bad_date").Inc()
			default:
				return report, fmt.Errorf("clean %s: %w", t.Name, err)
			}
			c.logger.Debug("row dropped", "table", t.Name, "line", row.Line, "reason", err)
		}
	}

	report.RowsOut = count()
	if report.RowsOut == 0 {
		truncate(0)
		return report, &domain.ValidationError{Table: t.Name, RowsIn: report.RowsIn, Dropped: report.Dropped()}
	}

	if keyFn != nil {
		c.finish(&report)
	}
	return report, nil
}

// normalizeRow applies the column rules and defaults to one row, returning
// the normalized field map. Dropped columns are omitted.
func (c *Cleaner) normalizeRow(row domain.Row, columns []string, spec TableSpec, droppedCols []string, report *Report) map[string]string {
	dropped := make(map[string]bool, len(droppedCols))
	for _, col := range droppedCols {
		dropped[col] = true
	}

	fields := make(map[string]string, len(columns))
	for _, col := range columns {
		colSpec := spec.Columns[col]
		if colSpec.Drop || dropped[col] {
			continue
		}

		raw := row.Fields[col]
		rules := colSpec.Rules
		if len(rules) == 0 {
			rules = []Rule{RuleTrim}
		}

		value := applyRules(raw, rules)
		if value != raw {
			report.Trimmed++
		}

		if value == "" && colSpec.Default != "" {
			value = colSpec.Default
			report.Defaulted++
		}
		fields[col] = value
	}
	return fields
}

func applyRules(value string, rules []Rule) string {
	for _, r := range rules {
		switch r {
		case RuleTrim:
			value = strings.TrimSpace(value)
		case RuleUpper:
			value = strings.ToUpper(value)
		case RuleLower:
			value = strings.ToLower(value)
		case RuleCollapseSpace:
			value = strings.Join(strings.Fields(value), " ")
		}
	}
	return value
}

// nullHeavyColumns returns the columns whose blank-cell share exceeds the
// threshold, sorted by name. Required columns and columns with a default are
// never dropped: the former decide row survival, the latter are filled.
func (c *Cleaner) nullHeavyColumns(t domain.Table, spec TableSpec) []string {
	if len(t.Rows) == 0 {
		return nil
	}

	blanks := make(map[string]int, len(t.Columns))
	for _, row := range t.Rows {
		for _, col := range t.Columns {
			if strings.TrimSpace(row.Fields[col]) == "" {
				blanks[col]++
			}
		}
	}

	var dropped []string
	for _, col := range t.Columns {
		colSpec := spec.Columns[col]
		if colSpec.Required || colSpec.Default != "" {
			continue
		}
		share := float64(blanks[col]) / float64(len(t.Rows))
		if share > c.nullThreshold {
			dropped = append(dropped, col)
		}
	}
	sort.Strings(dropped)

	if len(dropped) > 0 {
		c.logger.Info("null-heavy columns dropped", "table", t.Name, "columns", dropped, "threshold", c.nullThreshold)
	}
	return dropped
}

// finish publishes the report's counters and logs the outcome.
func (c *Cleaner) finish(report *Report) {
	c.metrics.ValuesTrimmed.WithLabelValues(report.Table).Add(float64(report.Trimmed))
	c.metrics.ValuesCoerced.WithLabelValues(report.Table).Add(float64(report.Coerced))
	c.metrics.ValuesDefaulted.WithLabelValues(report.Table).Add(float64(report.Defaulted))
	c.metrics.DuplicatesRemoved.WithLabelValues(report.Table).Add(float64(report.DuplicatesRemoved))

	c.logger.Info("table cleaned",
		"table", report.Table,
		"rows_in", report.RowsIn,
		"rows_out", report.RowsOut,
		"duplicates_removed", report.DuplicatesRemoved,
		"dropped_missing_id", report.DroppedMissingID,
		"dropped_bad_date", report.DroppedBadDate,
		"inconsistent_dates", report.InconsistentDates,
	)
}

// detailKey is the duplicate-identity key for a details row: the event
// identifier plus every remaining field.
func detailKey(fields map[string]string) string {
	return rowKey(fields)
}

// fatalityKey is the duplicate-identity key for a fatalities row.
func fatalityKey(fields map[string]string) string {
	return rowKey(fields)
}

func rowKey(fields map[string]string) string {
	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	var b strings.Builder
	for _, col := range cols {
		b.WriteString(col)
		b.WriteByte('=')
		b.WriteString(fields[col])
		b.WriteByte('\x1f')
	}
	return b.String()
}
