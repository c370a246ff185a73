package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/akave-ai/hltmenu/internal/config"
	"github.com/akave-ai/hltmenu/internal/database"
	"github.com/akave-ai/hltmenu/internal/logger"
	"github.com/akave-ai/hltmenu/internal/repository"
	"github.com/akave-ai/hltmenu/internal/server"
	"github.com/akave-ai/hltmenu/internal/storage"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadApp()
			log := logger.New(cfg.Observability)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var deps server.Deps

	if cfg.Observability.NewRelicEnabled() {
		app, err := newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.Observability.ServiceName),
			newrelic.ConfigLicense(cfg.Observability.NewRelic.LicenseKey),
			newrelic.ConfigAppLogForwardingEnabled(cfg.Observability.NewRelic.AppLogForwardingEnabled),
		)
		if err != nil {
			log.Error().Err(err).Msg("new relic disabled")
		} else {
			deps.NewRelic = app
		}
	}

	if cfg.Database != nil {
		if err := database.RunMigrations(ctx, cfg.Database.URL(), log); err != nil {
			return err
		}
		pool, err := database.NewPool(ctx, cfg.Database, log, deps.NewRelic != nil)
		if err != nil {
			return err
		}
		defer pool.Close()
		deps.Store = repository.NewModuleRepository(pool)
	} else {
		log.Warn().Msg("no database configured, modules created through the API are kept in memory")
	}

	if cfg.Storage != nil {
		o3, err := storage.NewO3Client(cfg.Storage.O3)
		if err != nil {
			return err
		}
		if o3 != nil {
			bucketCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if err := o3.EnsureBucket(bucketCtx); err != nil {
				log.Warn().Err(err).Msg("o3 ensure bucket failed, publishing may fail")
			}
			cancel()
			deps.Publisher = o3
		}
	}

	srv, err := server.New(cfg, log, deps)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}
