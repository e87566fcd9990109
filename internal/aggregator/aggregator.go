// Package aggregator joins the cleaned tables on EVENT_ID and computes the
// grouped summaries consumed by the dashboard. Details is the anchor table:
// it alone decides what counts as an event. Location and fatality rows
// without a details match are excluded and counted, never joined.
package aggregator

import (
	"log/slog"

	"github.com/couchcryptid/storm-events-summary/internal/domain"
	"github.com/couchcryptid/storm-events-summary/internal/observability"
)

// Report summarizes the join.
type Report struct {
	RowsOut            int
	OutOfWindow        int // detail rows excluded by the analysis window
	OrphanLocations    int // location events with no details match
	OrphanFatalities   int // fatality rows whose event has no details match
	EventsWithLocation int
	EventsWithFatality int
}

// Aggregator joins cleaned records inside a fixed analysis window.
type Aggregator struct {
	window  domain.Window
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an Aggregator.
func New(window domain.Window, logger *slog.Logger, metrics *observability.Metrics) *Aggregator {
	return &Aggregator{window: window, logger: logger, metrics: metrics}
}

// Join left-joins locations and fatalities onto details. Every in-window
// detail row yields exactly one joined record; missing location fields stay
// nil and missing fatalities count zero. A join that produces no rows is an
// AggregationError.
func (a *Aggregator) Join(
	details []domain.DetailRecord,
	locations []domain.LocationRecord,
	fatalities []domain.FatalityRecord,
) ([]domain.JoinedRecord, Report, error) {
	report := Report{}

	locByEvent := make(map[string]*domain.LocationRecord, len(locations))
	for i := range locations {
		if _, ok := locByEvent[locations[i].EventID]; !ok {
			locByEvent[locations[i].EventID] = &locations[i]
		}
	}

	fatalByEvent := make(map[string]int, len(fatalities))
	for _, f := range fatalities {
		fatalByEvent[f.EventID]++
	}

	joined := make([]domain.JoinedRecord, 0, len(details))
	matched := make(map[string]bool, len(details))
	for _, d := range details {
		if !a.window.Contains(d.BeginTime) {
			report.OutOfWindow++
			a.metrics.RowsDropped.WithLabelValues("details", "out_of_window").Inc()
			continue
		}
		matched[d.EventID] = true

		rec := domain.JoinedRecord{
			EventID:        d.EventID,
			EventType:      d.EventType,
			BeginTime:      d.BeginTime,
			DamageProperty: d.DamageProperty,
			DamageCrops:    d.DamageCrops,
			Magnitude:      d.Magnitude,
		}
		if loc, ok := locByEvent[d.EventID]; ok {
			rec.Location = loc
			report.EventsWithLocation++
		}
		if n, ok := fatalByEvent[d.EventID]; ok {
			rec.Fatalities = n
			report.EventsWithFatality++
		}
		joined = append(joined, rec)
	}

	for id := range locByEvent {
		if !matched[id] {
			report.OrphanLocations++
		}
	}
	for _, f := range fatalities {
		if !matched[f.EventID] {
			report.OrphanFatalities++
		}
	}

	report.RowsOut = len(joined)
	if len(joined) == 0 {
		return nil, report, &domain.AggregationError{Details: len(details), OutOfWindow: report.OutOfWindow}
	}

	a.metrics.EventsJoined.Add(float64(len(joined)))
	a.logger.Info("tables joined",
		"events", report.RowsOut,
		"out_of_window", report.OutOfWindow,
		"orphan_locations", report.OrphanLocations,
		"orphan_fatalities", report.OrphanFatalities,
	)
	return joined, report, nil
}
