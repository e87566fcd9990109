// Command stormsummary cleans, joins, and summarizes the three NOAA Storm
// Events bulk CSV files and writes the aggregated tables for the dashboard.
//
// Usage:
//
//	stormsummary -details StormEvents_details-2024.csv \
//	  -locations StormEvents_locations-2024.csv \
//	  -fatalities StormEvents_fatalities-2024.csv \
//	  -out ./out
//
// Exit code 0 on success; 1 on any schema, encoding, parse, validation, or
// aggregation failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/storm-events-summary/internal/cleaner"
	"github.com/couchcryptid/storm-events-summary/internal/config"
	"github.com/couchcryptid/storm-events-summary/internal/observability"
	"github.com/couchcryptid/storm-events-summary/internal/pipeline"
	"github.com/couchcryptid/storm-events-summary/internal/writer"
)

func main() {
	details := flag.String("details", "", "path to the details CSV")
	locations := flag.String("locations", "", "path to the locations CSV")
	fatalities := flag.String("fatalities", "", "path to the fatalities CSV")
	out := flag.String("out", "out", "output directory for summary tables")
	flag.Parse()

	if *details == "" || *locations == "" || *fatalities == "" {
		flag.Usage()
		os.Exit(1)
	}

	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	spec := cleaner.DefaultSpec()
	if cfg.SpecPath != "" {
		spec, err = cleaner.LoadSpec(cfg.SpecPath)
		if err != nil {
			logger.Error("load normalization spec failed", "error", err)
			os.Exit(1)
		}
		logger.Info("normalization spec overridden", "path", cfg.SpecPath)
	}

	w, err := writer.New(*out, logger)
	if err != nil {
		logger.Error("create output dir failed", "error", err)
		os.Exit(1)
	}

	p := pipeline.New(cfg, spec, w, logger, metrics)
	result, err := p.Run(context.Background(), pipeline.Inputs{
		Details:    *details,
		Locations:  *locations,
		Fatalities: *fatalities,
	})
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("run %s: %d events summarized into %s\n", result.RunID, result.Events, w.Dir())
}
