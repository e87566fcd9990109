// Package loader reads the NOAA bulk CSV files into in-memory tables. It
// handles the UTF-8 byte-order mark, falls back to Windows-1252 when bytes
// are not valid UTF-8, validates that required columns are present, and
// applies the configured policy to malformed rows.
package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/couchcryptid/storm-events-summary/internal/config"
	"github.com/couchcryptid/storm-events-summary/internal/domain"
	"github.com/couchcryptid/storm-events-summary/internal/observability"
)

// Schema names a table and the columns a file must carry to be loadable.
// Optional columns are simply absent from the row maps when the file lacks
// them.
type Schema struct {
	Table    string
	Required []string
}

// Expected schemas for the three NOAA bulk files.
var (
	DetailsSchema = Schema{
		Table:    "details",
		Required: []string{"EVENT_ID", "EVENT_TYPE", "BEGIN_YEARMONTH", "BEGIN_DAY", "BEGIN_TIME"},
	}
	FatalitiesSchema = Schema{
		Table:    "fatalities",
		Required: []string{"EVENT_ID", "FATALITY_ID"},
	}
	LocationsSchema = Schema{
		Table:    "locations",
		Required: []string{"EVENT_ID", "LOCATION"},
	}
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads CSV files under a fixed row policy.
type Loader struct {
	policy  string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Loader. Policy is config.PolicySkip or config.PolicyAbort.
func New(policy string, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{policy: policy, logger: logger, metrics: metrics}
}

// Load reads the file at path into a table, validating it against the schema.
// The input file is never modified. Malformed rows are skipped and counted,
// or abort the load, per the configured policy.
func (l *Loader) Load(path string, schema Schema) (domain.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("load %s: %w", schema.Table, err)
	}

	text, err := decode(raw, schema.Table)
	if err != nil {
		return domain.Table{}, err
	}

	r := csv.NewReader(strings.NewReader(text))
	header, err := r.Read()
	if err != nil {
		return domain.Table{}, &domain.SchemaError{Table: schema.Table, Missing: schema.Required}
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.ToUpper(strings.TrimSpace(h))
	}
	if missing := missingColumns(columns, schema.Required); len(missing) > 0 {
		return domain.Table{}, &domain.SchemaError{Table: schema.Table, Missing: missing}
	}

	rows, err := l.readRows(r, schema.Table, columns)
	if err != nil {
		return domain.Table{}, err
	}

	l.metrics.RowsRead.WithLabelValues(schema.Table).Add(float64(len(rows)))
	l.logger.Info("table loaded", "table", schema.Table, "path", path, "rows", len(rows))

	return domain.Table{
		Name:    schema.Table,
		Path:    path,
		Columns: columns,
		Rows:    rows,
	}, nil
}

// readRows consumes the remaining CSV records, applying the row policy to
// malformed lines.
func (l *Loader) readRows(r *csv.Reader, table string, columns []string) ([]domain.Row, error) {
	var rows []domain.Row
	line := 1 // header consumed

	for {
		line++
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			if l.policy == config.PolicyAbort {
				return nil, &domain.ParseError{Table: table, Line: line, Err: err}
			}
			l.logger.Warn("malformed row skipped", "table", table, "line", line, "error", err)
			l.metrics.RowsDropped.WithLabelValues(table, "malformed").Inc()
			continue
		}

		fields := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(record) {
				fields[col] = record[i]
			}
		}
		rows = append(rows, domain.Row{Line: line, Fields: fields})
	}
}

// decode returns the file content as UTF-8 text. UTF-8 input has its BOM
// stripped; anything else is retried as Windows-1252, the encoding older
// NOAA exports were distributed in.
func decode(raw []byte, table string) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", &domain.EncodingError{Table: table, Encodings: []string{"utf-8", "windows-1252"}}
	}
	return string(decoded), nil
}

func missingColumns(columns, required []string) []string {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	var missing []string
	for _, c := range required {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	sort.Strings(missing)
	return missing
}
