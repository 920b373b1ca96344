// Command benchmark runs the routing workload against a live engine pair.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/TFMV/janus/pkg/benchmark"
	"github.com/TFMV/janus/pkg/engines"
	"github.com/TFMV/janus/pkg/engines/duckdb"
	"github.com/TFMV/janus/pkg/engines/sqlite"
	"github.com/TFMV/janus/pkg/router"
)

func main() {
	var (
		transactionalDSN = flag.String("transactional-dsn", ":memory:", "SQLite DSN for the transactional engine")
		analyticalDSN    = flag.String("analytical-dsn", ":memory:", "DuckDB DSN for the analytical engine")
		statements       = flag.String("statements", "", "Comma-separated statement names (default: all)")
		seedRows         = flag.Int("seed-rows", 1000, "Rows seeded into the workload table before the run")
		iterations       = flag.Int("iterations", 3, "Iterations per statement")
		timeout          = flag.Duration("timeout", time.Minute, "Per-statement timeout")
		explain          = flag.Bool("explain", false, "Record the routing decision and plan for each statement")
		format           = flag.String("format", "table", "Output format: table or json")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	names := benchmark.GetAllStatements()
	if *statements != "" {
		parsed, err := benchmark.ParseStatements(*statements)
		if err != nil {
			logger.Fatal().Err(err).Msg("Invalid statement list")
		}
		names = parsed
	}

	transactional, err := sqlite.New(engines.Config{DSN: *transactionalDSN}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open transactional engine")
	}
	defer transactional.Close()

	analytical, err := duckdb.New(engines.Config{DSN: *analyticalDSN}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open analytical engine")
	}
	defer analytical.Close()

	runner := benchmark.NewRunner(router.NewRouter(transactional, analytical), logger)

	result, err := runner.Run(context.Background(), benchmark.BenchmarkConfig{
		Statements: names,
		SeedRows:   *seedRows,
		Iterations: *iterations,
		Timeout:    *timeout,
		Explain:    *explain,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Benchmark failed")
	}

	if err := benchmark.OutputResult(result, *format, os.Stdout); err != nil {
		logger.Fatal().Err(err).Msg("Failed to write results")
	}

	logger.Info().Dur("total_time", result.TotalTime).Msg("Benchmark complete")
}
