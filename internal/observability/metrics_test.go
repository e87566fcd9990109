package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsTextfile(t *testing.T) {
	m := NewMetrics()
	m.RowsRead.WithLabelValues("details").Add(6)
	m.RowsDropped.WithLabelValues("details", "missing_event_id").Inc()
	m.DuplicatesRemoved.WithLabelValues("details").Inc()
	m.RunSucceeded.Set(1)

	var buf bytes.Buffer
	require.NoError(t, m.WriteTextfile(&buf))

	out := buf.String()
	assert.Contains(t, out, `storm_summary_rows_read_total{table="details"} 6`)
	assert.Contains(t, out, `storm_summary_rows_dropped_total{reason="missing_event_id",table="details"} 1`)
	assert.Contains(t, out, "storm_summary_run_succeeded 1")
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger(&buf, "info", "json")
	logger.Info("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	logger = NewLogger(&buf, "error", "text")
	logger.Info("suppressed")
	assert.Empty(t, buf.String())
}
