package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"time"

	zerologadapter "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/multitracer"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/jackc/tern/v2/migrate"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"

	"github.com/akave-ai/hltmenu/internal/config"
)

const versionTable = "schema_version"

//go:embed migrations/*.sql
var migrations embed.FS

// RunMigrations brings the schema at databaseURL up to the latest version.
func RunMigrations(ctx context.Context, databaseURL string, logger zerolog.Logger) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)

	m, err := migrate.NewMigrator(ctx, conn, versionTable)
	if err != nil {
		return fmt.Errorf("migrator: %w", err)
	}
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	if err := m.LoadMigrations(sub); err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	m.OnStart = func(seq int32, name, direction, _ string) {
		logger.Info().Int32("sequence", seq).Str("name", name).Str("direction", direction).Msg("applying migration")
	}
	return m.Migrate(ctx)
}

// NewPool opens a connection pool. Queries are logged through zerolog and,
// when traceNewRelic is set, recorded as New Relic datastore segments.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig, logger zerolog.Logger, traceNewRelic bool) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pcfg.MaxConns = int32(cfg.MaxOpenConns)
	pcfg.MinConns = int32(min(cfg.MaxIdleConns, cfg.MaxOpenConns))
	pcfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifetime) * time.Second
	pcfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleTime) * time.Second

	tracers := []pgx.QueryTracer{
		&tracelog.TraceLog{
			Logger:   zerologadapter.NewLogger(logger.With().Str("component", "pgx").Logger()),
			LogLevel: tracelog.LogLevelWarn,
		},
	}
	if traceNewRelic {
		tracers = append(tracers, nrpgx5.NewTracer())
	}
	pcfg.ConnConfig.Tracer = multitracer.New(tracers...)

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}
