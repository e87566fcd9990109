// Package writer emits the pipeline's terminal output: one CSV per summary
// table, the joined master table, the cleaning report, and optionally a
// SQLite export for dashboard tools that ingest databases instead of flat
// files. All output is deterministic byte-for-byte given identical input.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/storm-events-summary/internal/aggregator"
	"github.com/couchcryptid/storm-events-summary/internal/cleaner"
	"github.com/couchcryptid/storm-events-summary/internal/domain"
)

// Output file names inside the run's output directory.
const (
	FileEventsByType       = "events_by_type.csv"
	FileFatalitiesByType   = "fatalities_by_type.csv"
	FileFatalitiesByRegion = "fatalities_by_region.csv"
	FileFatalitiesByMonth  = "fatalities_by_month.csv"
	FileDamageByType       = "damage_by_type.csv"
	FileMaster             = "events_master.csv"
	FileCleaningReport     = "cleaning_report.csv"
	FileMetrics            = "metrics.prom"
)

// Writer writes output files into a fixed directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// New creates a Writer rooted at dir, creating it if needed.
func New(dir string, logger *slog.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Writer{dir: dir, logger: logger}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// WriteSummaries writes one CSV per summary table.
func (w *Writer) WriteSummaries(s aggregator.Summaries) error {
	counts := []struct {
		file   string
		header []string
		rows   []aggregator.CountRow
	}{
		{FileEventsByType, []string{"event_type", "event_count"}, s.EventsByType},
		{FileFatalitiesByType, []string{"event_type", "fatalities"}, s.FatalitiesByType},
		{FileFatalitiesByRegion, []string{"region", "fatalities"}, s.FatalitiesByRegion},
		{FileFatalitiesByMonth, []string{"month", "fatalities"}, s.FatalitiesByMonth},
	}
	for _, c := range counts {
		records := make([][]string, 0, len(c.rows)+1)
		records = append(records, c.header)
		for _, row := range c.rows {
			records = append(records, []string{row.Key, strconv.Itoa(row.Count)})
		}
		if err := w.writeCSV(c.file, records); err != nil {
			return err
		}
	}

	damage := [][]string{{"event_type", "damage_property", "damage_crops"}}
	for _, row := range s.DamageByType {
		damage = append(damage, []string{row.Key, formatFloat(row.Property), formatFloat(row.Crops)})
	}
	return w.writeCSV(FileDamageByType, damage)
}

// WriteMaster writes the joined table, one row per event.
func (w *Writer) WriteMaster(joined []domain.JoinedRecord) error {
	records := [][]string{{
		"event_id", "event_type", "begin_time", "month",
		"state", "county", "location", "latitude", "longitude",
		"fatalities", "magnitude", "damage_property", "damage_crops",
	}}
	for _, j := range joined {
		var state, county, name, lat, lon string
		if j.Location != nil {
			state = j.Location.State
			county = j.Location.County
			name = j.Location.Name
			lat = formatFloatPtr(j.Location.Lat)
			lon = formatFloatPtr(j.Location.Lon)
		}
		records = append(records, []string{
			j.EventID,
			j.EventType,
			j.BeginTime.UTC().Format("2006-01-02T15:04:05Z"),
			j.Month(),
			state,
			county,
			name,
			lat,
			lon,
			strconv.Itoa(j.Fatalities),
			formatFloatPtr(j.Magnitude),
			formatFloat(j.DamageProperty),
			formatFloat(j.DamageCrops),
		})
	}
	return w.writeCSV(FileMaster, records)
}

// WriteCleaningReport writes the per-table transformation counts as a long
// (table, metric, value) CSV.
func (w *Writer) WriteCleaningReport(reports []cleaner.Report) error {
	records := [][]string{{"table", "metric", "value"}}
	for _, r := range reports {
		records = append(records,
			[]string{r.Table, "rows_in", strconv.Itoa(r.RowsIn)},
			[]string{r.Table, "rows_out", strconv.Itoa(r.RowsOut)},
			[]string{r.Table, "trimmed", strconv.Itoa(r.Trimmed)},
			[]string{r.Table, "coerced", strconv.Itoa(r.Coerced)},
			[]string{r.Table, "defaulted", strconv.Itoa(r.Defaulted)},
			[]string{r.Table, "duplicates_removed", strconv.Itoa(r.DuplicatesRemoved)},
			[]string{r.Table, "dropped_missing_id", strconv.Itoa(r.DroppedMissingID)},
			[]string{r.Table, "dropped_bad_date", strconv.Itoa(r.DroppedBadDate)},
			[]string{r.Table, "inconsistent_dates", strconv.Itoa(r.InconsistentDates)},
			[]string{r.Table, "columns_dropped", strconv.Itoa(len(r.ColumnsDropped))},
		)
	}
	return w.writeCSV(FileCleaningReport, records)
}

// WriteMetrics streams fn's output into the metrics textfile.
func (w *Writer) WriteMetrics(fn func(out io.Writer) error) error {
	path := filepath.Join(w.dir, FileMetrics)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", FileMetrics, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (w *Writer) writeCSV(name string, records [][]string) error {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	w.logger.Info("output written", "file", name, "rows", len(records)-1)
	return nil
}

// formatFloat renders a float without exponent notation or trailing zeros,
// so output bytes are stable across runs.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
