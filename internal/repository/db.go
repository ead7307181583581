package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pvolkova/trip-tracker/internal/common"
)

// Open creates the pgx pool used by all repositories.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "trip-tracker"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return pool, nil
}

// Close closes the database connections gracefully.
func Close(pool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("closing database connections")
	if pool != nil {
		pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the database to catch DSN issues early.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return pool.Ping(ctx)
}

// Bootstrap creates the schema when it does not exist yet. The tool is
// single-user, so idempotent DDL at startup replaces a migration stack.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS profiles (
	id             UUID PRIMARY KEY,
	fio            TEXT NOT NULL,
	tab_no         TEXT NOT NULL DEFAULT '',
	department     TEXT NOT NULL DEFAULT '',
	position       TEXT NOT NULL DEFAULT '',
	org_name       TEXT NOT NULL DEFAULT '',
	per_diem_rate  DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS trips (
	id                UUID PRIMARY KEY,
	profile_id        UUID NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
	destination_city  TEXT NOT NULL DEFAULT '',
	destination_org   TEXT NOT NULL DEFAULT '',
	date_from         DATE NOT NULL,
	date_to           DATE NOT NULL,
	departure_time    TIMESTAMPTZ,
	arrival_time      TIMESTAMPTZ,
	purpose           TEXT NOT NULL DEFAULT '',
	meals_breakfast   INTEGER NOT NULL DEFAULT 0,
	meals_lunch       INTEGER NOT NULL DEFAULT 0,
	meals_dinner      INTEGER NOT NULL DEFAULT 0,
	advance_rub       DOUBLE PRECISION NOT NULL DEFAULT 0,
	status            TEXT NOT NULL DEFAULT 'draft',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS receipts (
	id             UUID PRIMARY KEY,
	trip_id        UUID NOT NULL REFERENCES trips (id) ON DELETE CASCADE,
	file_path      TEXT NOT NULL,
	file_name      TEXT NOT NULL,
	category       TEXT NOT NULL DEFAULT 'other',
	document_type  TEXT NOT NULL DEFAULT 'fiscal',
	amount         DOUBLE PRECISION,
	receipt_date   TIMESTAMPTZ,
	org_name       TEXT,
	fn             TEXT,
	fd             TEXT,
	fp             TEXT,
	raw_qr         TEXT,
	has_qr         BOOLEAN NOT NULL DEFAULT FALSE,
	is_manual      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS receipts_trip_id_idx ON receipts (trip_id);
CREATE INDEX IF NOT EXISTS trips_profile_id_idx ON trips (profile_id);
`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		logger.Error("schema bootstrap failed", "error", err)
		return common.WrapError(err, "bootstrap schema")
	}
	logger.Debug("schema bootstrap complete")
	return nil
}
