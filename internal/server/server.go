package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/akave-ai/hltmenu/internal/config"
	"github.com/akave-ai/hltmenu/internal/handler"
	"github.com/akave-ai/hltmenu/internal/infrastructure/modules"
	_ "github.com/akave-ai/hltmenu/internal/infrastructure/modules/quadeta"
	"github.com/akave-ai/hltmenu/internal/menu"
	"github.com/akave-ai/hltmenu/internal/menu/hlt75e33"
	"github.com/akave-ai/hltmenu/internal/repository"
)

// Deps are the optional collaborators of the server. A nil Store falls back to
// an in-memory store.
type Deps struct {
	Store     repository.ModuleStore
	Publisher handler.Publisher
	NewRelic  *newrelic.Application
}

// Server holds the Echo app and dependencies.
type Server struct {
	Echo   *echo.Echo
	Config *config.Config

	logger  zerolog.Logger
	store   repository.ModuleStore
	menus   *menu.Holder
	watcher *menu.Watcher // set when menu.watch is enabled
	nrApp   *newrelic.Application
}

// New builds the Echo server, loads the menu and registers routes.
func New(cfg *config.Config, logger zerolog.Logger, deps Deps) (*Server, error) {
	if deps.Store == nil {
		deps.Store = repository.NewMemoryStore()
	}
	s := &Server{
		Config: cfg,
		logger: logger.With().Str("component", "server").Logger(),
		store:  deps.Store,
		menus:  new(menu.Holder),
		nrApp:  deps.NewRelic,
	}
	if err := s.loadMenu(); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeout) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.Server.IdleTimeout) * time.Second
	e.Use(middleware.Recover(), requestLogger(logger))
	if s.nrApp != nil {
		e.Use(newRelicTransaction(s.nrApp))
	}
	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.Server.CORSAllowedOrigins}))
	}

	handler.Register(e,
		&handler.TypeHandler{Registry: modules.GlobalRegistry},
		&handler.ModuleHandler{
			Registry:  modules.GlobalRegistry,
			Store:     s.store,
			Menus:     s.menus,
			Publisher: deps.Publisher,
			Logger:    logger.With().Str("component", "modules").Logger(),
		},
	)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"status": "ok", "menu": s.menus.Load().Name})
	})

	s.logger.Info().Strs("types", modules.GlobalRegistry.ListRegistered()).Msg("registered module types")
	s.Echo = e
	return s, nil
}

// Menus returns the holder of the served menu.
func (s *Server) Menus() *menu.Holder { return s.menus }

func (s *Server) loadMenu() error {
	mc := s.Config.Menu
	if mc.Dir == "" {
		s.install(menu.Default())
		return nil
	}
	external := mc.External
	if len(external) == 0 {
		external = hlt75e33.External
	}
	if mc.Watch {
		w, err := menu.NewWatcher(mc.Name, mc.Dir, external, s.logger, s.install)
		if err != nil {
			return fmt.Errorf("watch menu dir: %w", err)
		}
		s.watcher = w
		return nil
	}
	m, err := menu.LoadDir(mc.Name, mc.Dir, external...)
	if err != nil {
		return fmt.Errorf("load menu dir: %w", err)
	}
	s.install(m)
	return nil
}

// install adds the stored modules to m and makes it the served menu. Modules
// of the menu itself win over stored ones with the same label.
func (s *Server) install(m *menu.Menu) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	recs, err := s.store.List(ctx, m.Name)
	if err != nil {
		s.logger.Error().Err(err).Msg("could not list stored modules")
	}
	for _, rec := range recs {
		mod, err := rec.Module()
		if err != nil {
			s.logger.Error().Err(err).Str("label", rec.Label).Msg("stored module does not parse")
			continue
		}
		if err := m.AddStored(mod); err != nil {
			s.logger.Warn().Err(err).Msg("stored module shadowed by menu")
		}
	}
	if err := m.Resolve(); err != nil {
		s.logger.Warn().Int("unresolved", len(m.Unresolved())).Msg("menu has unresolved references")
	}
	s.menus.Store(m)
	s.logger.Info().Str("menu", m.Name).Int("modules", m.Len()).Msg("menu installed")
}

// Start starts the HTTP server. Blocks until the context is cancelled or the server fails.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("shutdown")
		}
	}()
	addr := ":" + s.Config.Server.Port
	s.logger.Info().Str("addr", addr).Msg("listening")
	if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the menu watcher, flushes New Relic and shuts down Echo.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("close menu watcher")
		}
	}
	if s.nrApp != nil {
		s.nrApp.Shutdown(5 * time.Second)
	}
	return s.Echo.Shutdown(ctx)
}
