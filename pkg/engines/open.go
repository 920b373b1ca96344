package engines

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/TFMV/janus/pkg/errors"
)

// Open opens a database handle for the named driver, applies pool settings,
// and verifies the connection before handing it back.
func Open(driverName string, cfg Config, logger zerolog.Logger) (*sql.DB, error) {
	cfg = cfg.withDefaults()

	logger.Info().
		Str("driver", driverName).
		Str("dsn", MaskDSN(cfg.DSN)).
		Int("max_open", cfg.MaxOpenConnections).
		Int("max_idle", cfg.MaxIdleConnections).
		Dur("conn_lifetime", cfg.ConnMaxLifetime).
		Dur("conn_idle_time", cfg.ConnMaxIdleTime).
		Msg("Opening database")

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConnectionFailed, "failed to open database")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.CodeConnectionFailed, "failed to verify database connection")
	}

	return db, nil
}
