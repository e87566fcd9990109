package observability

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds the Prometheus counters and histograms for one pipeline run.
// A batch job has no scrape endpoint, so the registry is private and the
// final values are exported as a textfile next to the summary output
// (node_exporter textfile-collector format).
type Metrics struct {
	registry *prometheus.Registry

	RowsRead          *prometheus.CounterVec // labels: table
	RowsDropped       *prometheus.CounterVec // labels: table, reason
	ValuesTrimmed     *prometheus.CounterVec // labels: table
	ValuesCoerced     *prometheus.CounterVec // labels: table
	ValuesDefaulted   *prometheus.CounterVec // labels: table
	DuplicatesRemoved *prometheus.CounterVec // labels: table
	EventsJoined      prometheus.Counter
	StageDuration     *prometheus.HistogramVec // labels: stage
	RunSucceeded      prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_summary",
			Name:      "rows_read_total",
			Help:      "Raw rows read per input table.",
		}, []string{"table"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_summary",
			Name:      "rows_dropped_total",
			Help:      "Rows dropped per table by reason.",
		}, []string{"table", "reason"}),
		ValuesTrimmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_summary",
			Name:      "values_trimmed_total",
			Help:      "Cells changed by whitespace trimming.",
		}, []string{"table"}),
		ValuesCoerced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_summary",
			Name:      "values_coerced_total",
			Help:      "Cells converted from text to a typed value.",
		}, []string{"table"}),
		ValuesDefaulted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_summary",
			Name:      "values_defaulted_total",
			Help:      "Missing cells filled with a documented default.",
		}, []string{"table"}),
		DuplicatesRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_summary",
			Name:      "duplicates_removed_total",
			Help:      "Duplicate rows removed, first occurrence kept.",
		}, []string{"table"}),
		EventsJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_summary",
			Name:      "events_joined_total",
			Help:      "Events in the joined output.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storm_summary",
			Name:      "stage_duration_seconds",
			Help:      "Wall time per pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		RunSucceeded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_summary",
			Name:      "run_succeeded",
			Help:      "1 when the run completed, 0 when it failed.",
		}),
	}

	m.registry.MustRegister(
		m.RowsRead,
		m.RowsDropped,
		m.ValuesTrimmed,
		m.ValuesCoerced,
		m.ValuesDefaulted,
		m.DuplicatesRemoved,
		m.EventsJoined,
		m.StageDuration,
		m.RunSucceeded,
	)

	return m
}

// WriteTextfile encodes the registry contents in Prometheus text exposition
// format, suitable for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metric family %q: %w", mf.GetName(), err)
		}
	}
	return nil
}
