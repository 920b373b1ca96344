// Package duckdb provides the DuckDB-backed analytical engine.
package duckdb

import (
	"context"
	"database/sql"
	"os"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2" // duckdb driver
	"github.com/rs/zerolog"

	"github.com/TFMV/janus/pkg/engines"
	"github.com/TFMV/janus/pkg/errors"
	"github.com/TFMV/janus/pkg/models"
)

// Engine executes analytical queries against DuckDB.
type Engine struct {
	db     *sql.DB
	logger zerolog.Logger
}

// New opens a DuckDB-backed engine. An empty DSN selects an in-memory
// database; md: and motherduck: DSNs connect to MotherDuck, picking up the
// token from MOTHERDUCK_TOKEN when the DSN does not carry one.
func New(cfg engines.Config, logger zerolog.Logger) (*Engine, error) {
	if cfg.DSN == "" {
		cfg.DSN = ":memory:"
	}
	if isMotherDuckDSN(cfg.DSN) {
		cfg.DSN = injectMotherDuckToken(normalizeMotherDuckDSN(cfg.DSN), os.Getenv("MOTHERDUCK_TOKEN"))
	}

	db, err := engines.Open("duckdb", cfg, logger)
	if err != nil {
		return nil, err
	}

	return NewWithDB(db, logger), nil
}

// NewWithDB wraps an existing database handle. The caller keeps ownership
// of pool configuration.
func NewWithDB(db *sql.DB, logger zerolog.Logger) *Engine {
	return &Engine{
		db:     db,
		logger: logger.With().Str("engine", engines.NameAnalytical).Logger(),
	}
}

// Execute runs a statement. Mutations go through Exec and report their
// affected-row count; everything else returns its row set.
func (e *Engine) Execute(ctx context.Context, query string, args ...interface{}) (*models.QueryResult, error) {
	e.logger.Debug().
		Str("sql", truncate(query, 120)).
		Int("args_count", len(args)).
		Msg("executing query")

	start := time.Now()

	if engines.IsMutation(query) {
		result, err := e.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeQueryFailed, "failed to execute statement: %s", truncate(query, 120))
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeQueryFailed, "failed to get rows affected")
		}

		out := engines.RowsAffectedResult(affected)
		out.ExecutionTime = time.Since(start)

		e.logger.Debug().
			Int64("rows_affected", affected).
			Dur("duration", out.ExecutionTime).
			Msg("statement executed")
		return out, nil
	}

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeQueryFailed, "failed to execute query: %s", truncate(query, 120))
	}
	defer rows.Close()

	out, err := engines.CollectRows(rows)
	if err != nil {
		return nil, err
	}
	out.ExecutionTime = time.Since(start)

	e.logger.Debug().
		Int("rows", len(out.Rows)).
		Dur("duration", out.ExecutionTime).
		Msg("query executed")
	return out, nil
}

// ExecuteWithPlan executes the query carried by the plan's scan leaf.
func (e *Engine) ExecuteWithPlan(ctx context.Context, plan *models.PlanNode) (*models.QueryResult, error) {
	query, err := engines.PlanQueryText(plan)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, query)
}

// GetName returns the engine's display name.
func (e *Engine) GetName() string {
	return engines.NameAnalytical
}

// Ping verifies the backing database is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	if err := e.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, errors.CodeConnectionFailed, "duckdb ping failed")
	}
	return nil
}

// Close releases the database handle.
func (e *Engine) Close() error {
	return e.db.Close()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
