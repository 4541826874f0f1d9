// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/hotlines/internal/api"
	"github.com/starford/hotlines/internal/catalog"
	"github.com/starford/hotlines/internal/kv"
	"github.com/starford/hotlines/internal/prefs"
	"github.com/starford/hotlines/internal/session"
	"github.com/starford/hotlines/internal/sse"
	"github.com/starford/hotlines/internal/web"
)

// services are the long-lived components behind the HTTP server.
type services struct {
	catalog  *catalog.Catalog
	provider kv.Provider
	ownsKV   bool
	prefs    *prefs.Store
	broker   *sse.Broker
	views    *session.Registry
	web      *web.Handler
}

func (a *application) build(logger *slog.Logger) (*services, error) {
	cfg := a.config
	s := &services{catalog: a.catalog, provider: a.provider}

	if s.catalog == nil {
		cat, err := catalog.Load()
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		s.catalog = cat
	}

	if s.provider == nil {
		p, err := kv.Open(cfg.Store.Driver, cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open preference store: %w", err)
		}
		s.provider = p
		s.ownsKV = true
	}

	s.prefs = prefs.Open(s.provider, logger)
	s.broker = sse.NewBroker(15 * time.Second)
	s.views = session.NewRegistry(
		session.WithIdleTTL(cfg.Session.IdleTTL),
		session.WithLogger(logger),
	)

	h, err := web.NewHandler(s.catalog, s.prefs, s.broker, s.views, web.Options{
		TrustedHosts:  cfg.Share.TrustedHosts,
		BaseURL:       cfg.App.BaseURL,
		FeedbackEmail: cfg.App.FeedbackEmail,
		ConfirmWindow: cfg.Catalog.ConfirmWindow,
		Logger:        logger,
	})
	if err != nil {
		s.close()
		return nil, fmt.Errorf("init page: %w", err)
	}
	s.web = h
	return s, nil
}

func (s *services) router(cfg *Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","contacts":%d}`, s.catalog.Len())
	})

	r.Mount("/api", api.NewRouter(s.catalog, s.prefs, api.RouterConfig{
		RPS:   cfg.App.HTTP.RateLimit.RPS,
		Burst: cfg.App.HTTP.RateLimit.Burst,
	}))
	r.Mount("/", web.NewRouter(s.web))

	return r
}

func (s *services) close() {
	if s.views != nil {
		s.views.Close()
	}
	if s.broker != nil {
		s.broker.Close()
	}
	if s.ownsKV && s.provider != nil {
		if err := s.provider.Close(); err != nil {
			slog.Error("close preference store", slog.String("error", err.Error()))
		}
	}
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("store_path", cfg.Store.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, err := app.build(logger)
	if err != nil {
		return err
	}
	defer svc.close()

	p := svc.prefs.Current()
	logger.Info("Preferences loaded",
		slog.String("language", string(p.Language)),
		slog.Bool("dark_mode", p.DarkMode),
		slog.Int("contacts", svc.catalog.Len()))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           svc.router(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)

	// Evict pages nobody is looking at.
	g.Go(func() error {
		return svc.views.Run(gCtx, cfg.Session.SweepInterval, svc.web.Active)
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		cancel()

		// Open event streams would otherwise hold Shutdown until the timeout.
		svc.broker.Close()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
