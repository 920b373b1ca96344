// Package benchmark provides routing workload benchmarks for Janus.
package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/TFMV/janus/pkg/router"
)

// BenchmarkConfig holds configuration for workload benchmarks.
type BenchmarkConfig struct {
	Statements []string      `json:"statements"`
	SeedRows   int           `json:"seed_rows"`
	Iterations int           `json:"iterations"`
	Timeout    time.Duration `json:"timeout"`
	Explain    bool          `json:"explain"`
}

// QueryResult represents the result of a single statement execution.
type QueryResult struct {
	Statement     string        `json:"statement"`
	QueryType     string        `json:"query_type"`
	Engine        string        `json:"engine,omitempty"`
	Iteration     int           `json:"iteration"`
	ExecutionTime time.Duration `json:"execution_time_ns"`
	RowCount      int64         `json:"row_count"`
	Error         string        `json:"error,omitempty"`
	Plan          string        `json:"plan,omitempty"`
}

// BenchmarkResult represents the complete benchmark results.
type BenchmarkResult struct {
	Config      BenchmarkConfig `json:"config"`
	Results     []QueryResult   `json:"results"`
	TotalTime   time.Duration   `json:"total_time_ns"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`
	Environment Environment     `json:"environment"`
}

// Environment captures system information for benchmark results.
type Environment struct {
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// Workload statement definitions. The transactional statements run against
// the seeded bench_accounts table; the analytical ones are self-contained so
// they exercise the analytical engine without shared state.
var workloadStatements = map[string]string{
	"point_lookup": `SELECT id, name, balance FROM bench_accounts WHERE id = 42`,

	"insert": `INSERT INTO bench_accounts (name, balance) VALUES ('burst', 0)`,

	"update": `UPDATE bench_accounts SET balance = balance + 1 WHERE id = 42`,

	"aggregation": `
		SELECT range % 10 AS bucket, COUNT(*) AS n, SUM(range) AS total
		FROM range(100000)
		GROUP BY bucket`,

	"top_n": `
		SELECT range AS v
		FROM range(100000)
		ORDER BY range DESC
		LIMIT 100`,

	"join": `
		SELECT a.range AS x, b.range AS y
		FROM range(1000) a JOIN range(1000) b ON a.range = b.range`,
}

// Runner executes workload benchmarks through the query router, so every
// statement takes the same classify-plan-route path production traffic does.
type Runner struct {
	router *router.Router
	logger zerolog.Logger
}

// NewRunner creates a new benchmark runner. The caller keeps ownership of
// the engines behind the router.
func NewRunner(queryRouter *router.Router, logger zerolog.Logger) *Runner {
	return &Runner{
		router: queryRouter,
		logger: logger.With().Str("component", "benchmark").Logger(),
	}
}

// Run executes the benchmark with the given configuration.
func (r *Runner) Run(ctx context.Context, config BenchmarkConfig) (*BenchmarkResult, error) {
	startTime := time.Now()

	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}
	if config.Iterations <= 0 {
		config.Iterations = 1
	}

	r.logger.Info().
		Strs("statements", config.Statements).
		Int("seed_rows", config.SeedRows).
		Int("iterations", config.Iterations).
		Msg("Starting workload benchmark")

	if config.SeedRows > 0 {
		if err := r.initializeWorkload(ctx, config.SeedRows); err != nil {
			return nil, fmt.Errorf("failed to initialize workload: %w", err)
		}
	}

	var results []QueryResult

	for _, name := range config.Statements {
		query, exists := workloadStatements[name]
		if !exists {
			r.logger.Warn().Str("statement", name).Msg("Unknown statement, skipping")
			continue
		}

		for iteration := 1; iteration <= config.Iterations; iteration++ {
			result := r.executeStatement(ctx, name, query, iteration, config)
			results = append(results, result)

			r.logger.Info().
				Str("statement", name).
				Str("query_type", result.QueryType).
				Int("iteration", iteration).
				Dur("time", result.ExecutionTime).
				Int64("rows", result.RowCount).
				Str("error", result.Error).
				Msg("Statement completed")
		}
	}

	endTime := time.Now()

	return &BenchmarkResult{
		Config:      config,
		Results:     results,
		TotalTime:   endTime.Sub(startTime),
		StartTime:   startTime,
		EndTime:     endTime,
		Environment: getEnvironment(),
	}, nil
}

// initializeWorkload seeds the transactional table the workload statements
// read and mutate. Seeding goes through the router like everything else.
func (r *Runner) initializeWorkload(ctx context.Context, seedRows int) error {
	r.logger.Info().Int("rows", seedRows).Msg("Seeding workload table")

	statements := []string{
		"DROP TABLE IF EXISTS bench_accounts",
		"CREATE TABLE bench_accounts (id INTEGER PRIMARY KEY, name TEXT, balance REAL)",
	}
	for _, stmt := range statements {
		if _, err := r.router.RouteQuery(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
	}

	for i := 1; i <= seedRows; i++ {
		stmt := fmt.Sprintf("INSERT INTO bench_accounts (id, name, balance) VALUES (%d, 'account-%d', %d)", i, i, i*10)
		if _, err := r.router.RouteQuery(ctx, stmt); err != nil {
			return fmt.Errorf("failed to seed row %d: %w", i, err)
		}
	}

	r.logger.Info().Int("rows", seedRows).Msg("Workload table seeded")
	return nil
}

// executeStatement runs a single statement and measures its performance.
func (r *Runner) executeStatement(ctx context.Context, name, query string, iteration int, config BenchmarkConfig) QueryResult {
	result := QueryResult{
		Statement: name,
		QueryType: r.router.ClassifyQuery(query).String(),
		Iteration: iteration,
	}

	queryCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	// Record the routing decision and plan if requested
	if config.Explain {
		explain, err := r.router.Explain(queryCtx, query)
		if err != nil {
			result.Plan = fmt.Sprintf("Error getting plan: %v", err)
		} else {
			result.Engine = explain.Engine
			result.Plan = explain.Explanation
		}
	}

	start := time.Now()
	res, err := r.router.RouteQuery(queryCtx, query)
	result.ExecutionTime = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.RowCount = int64(len(res.Rows))
	return result
}

// getEnvironment captures system information.
func getEnvironment() Environment {
	return Environment{
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// GetAvailableStatements returns the list of available workload statements.
func GetAvailableStatements() []string {
	statements := make([]string, 0, len(workloadStatements))
	for name := range workloadStatements {
		statements = append(statements, name)
	}
	return statements
}

// GetAllStatements returns every workload statement name in execution order.
func GetAllStatements() []string {
	return []string{"point_lookup", "insert", "update", "aggregation", "top_n", "join"}
}

// ParseStatements parses a comma-separated list of statement names.
func ParseStatements(statementStr string) ([]string, error) {
	if statementStr == "" {
		return nil, fmt.Errorf("no statements specified")
	}

	statements := strings.Split(statementStr, ",")
	for i, s := range statements {
		statements[i] = strings.TrimSpace(s)
		if _, exists := workloadStatements[statements[i]]; !exists {
			return nil, fmt.Errorf("unknown statement: %s", statements[i])
		}
	}

	return statements, nil
}

// OutputResult writes the benchmark result in the specified format.
func OutputResult(result *BenchmarkResult, format string, writer io.Writer) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)

	case "table":
		return outputTable(result, writer)

	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// outputTable writes results in human-readable table format.
func outputTable(result *BenchmarkResult, writer io.Writer) error {
	fmt.Fprintf(writer, "Janus Workload Benchmark Results\n")
	fmt.Fprintf(writer, "================================\n\n")
	fmt.Fprintf(writer, "Configuration:\n")
	fmt.Fprintf(writer, "  Seed Rows: %d\n", result.Config.SeedRows)
	fmt.Fprintf(writer, "  Iterations: %d\n", result.Config.Iterations)
	fmt.Fprintf(writer, "  Total Time: %v\n", result.TotalTime)
	fmt.Fprintf(writer, "  Started: %s\n", result.StartTime.Format(time.RFC3339))
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "Environment:\n")
	fmt.Fprintf(writer, "  Go Version: %s\n", result.Environment.GoVersion)
	fmt.Fprintf(writer, "  OS/Arch: %s/%s\n", result.Environment.OS, result.Environment.Arch)
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "Results:\n")
	fmt.Fprintf(writer, "%-14s %-14s %-4s %-12s %-8s %s\n", "Statement", "Type", "Iter", "Time", "Rows", "Status")
	fmt.Fprintf(writer, "%-14s %-14s %-4s %-12s %-8s %s\n", "---------", "----", "----", "----", "----", "------")

	for _, r := range result.Results {
		status := "OK"
		if r.Error != "" {
			status = "ERROR"
		}
		fmt.Fprintf(writer, "%-14s %-14s %-4d %-12s %-8d %s\n",
			r.Statement, r.QueryType, r.Iteration, r.ExecutionTime, r.RowCount, status)
	}

	return nil
}
