// Package sqlite provides the SQLite-backed transactional engine.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"

	"github.com/TFMV/janus/pkg/engines"
	"github.com/TFMV/janus/pkg/errors"
	"github.com/TFMV/janus/pkg/models"
)

// Engine executes transactional statements against SQLite.
type Engine struct {
	db     *sql.DB
	logger zerolog.Logger
}

// New opens a SQLite-backed engine. An empty DSN selects an in-memory
// database.
func New(cfg engines.Config, logger zerolog.Logger) (*Engine, error) {
	if cfg.DSN == "" {
		cfg.DSN = ":memory:"
	}

	// A single connection keeps writes serialized and makes the in-memory
	// DSN behave as one database instead of one per pooled connection.
	cfg.MaxOpenConnections = 1
	cfg.MaxIdleConnections = 1

	db, err := engines.Open("sqlite3", cfg, logger)
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
		logger: logger.With().Str("engine", engines.NameTransactional).Logger(),
	}
}

// Execute runs a statement. Mutations go through Exec and report their
// affected-row count; everything else returns its row set.
func (e *Engine) Execute(ctx context.Context, query string, args ...interface{}) (*models.QueryResult, error) {
	e.logger.Debug().
		Str("query", query).
		Int("args_count", len(args)).
		Msg("Executing query")

	start := time.Now()

	if engines.IsMutation(query) {
		result, err := e.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeQueryFailed, "failed to execute statement: %s", query)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeQueryFailed, "failed to get rows affected")
		}

		out := engines.RowsAffectedResult(affected)
		out.ExecutionTime = time.Since(start)

		e.logger.Debug().
			Int64("rows_affected", affected).
			Dur("execution_time", out.ExecutionTime).
			Msg("Statement executed")
		return out, nil
	}

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeQueryFailed, "failed to execute query: %s", query)
	}
	defer rows.Close()

	out, err := engines.CollectRows(rows)
	if err != nil {
		return nil, err
	}
	out.ExecutionTime = time.Since(start)

	e.logger.Debug().
		Int("rows", len(out.Rows)).
		Dur("execution_time", out.ExecutionTime).
		Msg("Query executed")
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
	return engines.NameTransactional
}

// Ping verifies the backing database is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	if err := e.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, errors.CodeConnectionFailed, "sqlite ping failed")
	}
	return nil
}

// Close releases the database handle.
func (e *Engine) Close() error {
	return e.db.Close()
}
