// Package pipeline orchestrates one Loader → Cleaner → Aggregator → Writer
// run. Stages execute sequentially; any taxonomy error aborts the run and
// propagates to the CLI exit code. Re-running against unchanged inputs
// produces byte-identical output.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/storm-events-summary/internal/aggregator"
	"github.com/couchcryptid/storm-events-summary/internal/cleaner"
	"github.com/couchcryptid/storm-events-summary/internal/config"
	"github.com/couchcryptid/storm-events-summary/internal/domain"
	"github.com/couchcryptid/storm-events-summary/internal/loader"
	"github.com/couchcryptid/storm-events-summary/internal/observability"
	"github.com/couchcryptid/storm-events-summary/internal/writer"
)

// Inputs are the three raw CSV paths.
type Inputs struct {
	Details    string
	Locations  string
	Fatalities string
}

// Result describes a completed run.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Events     int
	Cleaning   []cleaner.Report
	Join       aggregator.Report
	Summaries  aggregator.Summaries
}

// Pipeline wires the stages together.
type Pipeline struct {
	loader     *loader.Loader
	cleaner    *cleaner.Cleaner
	aggregator *aggregator.Aggregator
	writer     *writer.Writer
	sqlitePath string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Pipeline from loaded configuration. spec is the
// normalization spec (the embedded default or a YAML override).
func New(cfg *config.Config, spec cleaner.Spec, out *writer.Writer, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		loader:     loader.New(cfg.RowPolicy, logger, metrics),
		cleaner:    cleaner.New(spec, cfg.NullColumnThreshold, logger, metrics),
		aggregator: aggregator.New(cfg.Window, logger, metrics),
		writer:     out,
		sqlitePath: cfg.SQLitePath,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run executes the full batch: load and clean the three tables, join on
// EVENT_ID, summarize, and write every output file.
func (p *Pipeline) Run(ctx context.Context, in Inputs) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		StartedAt: domain.Now(),
	}
	logger := p.logger.With("run_id", result.RunID)
	logger.Info("run started",
		"details", in.Details,
		"locations", in.Locations,
		"fatalities", in.Fatalities,
	)

	details, locations, fatalities, err := p.loadAndClean(in, result, logger)
	if err != nil {
		p.metrics.RunSucceeded.Set(0)
		return nil, err
	}

	joinStart := time.Now()
	joined, joinReport, err := p.aggregator.Join(details, locations, fatalities)
	if err != nil {
		p.metrics.RunSucceeded.Set(0)
		return nil, err
	}
	result.Join = joinReport
	result.Summaries = aggregator.Summarize(joined)
	result.Events = len(joined)
	p.metrics.StageDuration.WithLabelValues("aggregate").Observe(time.Since(joinStart).Seconds())

	if err := p.writeOutputs(ctx, joined, result); err != nil {
		p.metrics.RunSucceeded.Set(0)
		return nil, err
	}

	p.metrics.RunSucceeded.Set(1)
	result.FinishedAt = domain.Now()
	logger.Info("run complete",
		"events", result.Events,
		"out_of_window", joinReport.OutOfWindow,
		"duration", result.FinishedAt.Sub(result.StartedAt),
	)
	return result, nil
}

func (p *Pipeline) loadAndClean(in Inputs, result *Result, logger *slog.Logger) (
	[]domain.DetailRecord, []domain.LocationRecord, []domain.FatalityRecord, error,
) {
	loadStart := time.Now()
	detailsTable, err := p.loader.Load(in.Details, loader.DetailsSchema)
	if err != nil {
		return nil, nil, nil, err
	}
	locationsTable, err := p.loader.Load(in.Locations, loader.LocationsSchema)
	if err != nil {
		return nil, nil, nil, err
	}
	fatalitiesTable, err := p.loader.Load(in.Fatalities, loader.FatalitiesSchema)
	if err != nil {
		return nil, nil, nil, err
	}
	p.metrics.StageDuration.WithLabelValues("load").Observe(time.Since(loadStart).Seconds())

	cleanStart := time.Now()
	details, detailsReport, err := p.cleaner.Details(detailsTable)
	if err != nil {
		return nil, nil, nil, err
	}
	locations, locationsReport, err := p.cleaner.Locations(locationsTable)
	if err != nil {
		return nil, nil, nil, err
	}
	fatalities, fatalitiesReport, err := p.cleaner.Fatalities(fatalitiesTable)
	if err != nil {
		return nil, nil, nil, err
	}
	p.metrics.StageDuration.WithLabelValues("clean").Observe(time.Since(cleanStart).Seconds())

	result.Cleaning = []cleaner.Report{detailsReport, locationsReport, fatalitiesReport}
	logger.Info("cleaning complete",
		"details", detailsReport.RowsOut,
		"locations", locationsReport.RowsOut,
		"fatalities", fatalitiesReport.RowsOut,
	)
	return details, locations, fatalities, nil
}

func (p *Pipeline) writeOutputs(ctx context.Context, joined []domain.JoinedRecord, result *Result) error {
	writeStart := time.Now()

	if err := p.writer.WriteSummaries(result.Summaries); err != nil {
		return err
	}
	if err := p.writer.WriteMaster(joined); err != nil {
		return err
	}
	if err := p.writer.WriteCleaningReport(result.Cleaning); err != nil {
		return err
	}

	if p.sqlitePath != "" {
		if err := writer.ExportSQLite(ctx, p.sqlitePath, result.Summaries, joined); err != nil {
			return err
		}
		p.logger.Info("sqlite export written", "path", p.sqlitePath)
	}

	p.metrics.StageDuration.WithLabelValues("write").Observe(time.Since(writeStart).Seconds())

	// Metrics go last so the textfile includes the write stage itself.
	return p.writer.WriteMetrics(p.metrics.WriteTextfile)
}
