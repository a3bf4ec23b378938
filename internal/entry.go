// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/api"
	"github.com/starford/folio/internal/blog"
	"github.com/starford/folio/internal/markdown"
	"github.com/starford/folio/internal/mcpserver"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/watcher"
)

func setup(opts []Option, defaultOutput io.Writer) (*application, *slog.Logger, error) {
	app := &application{logOutput: defaultOutput}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)

	return app, logger, nil
}

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts, os.Stdout)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_path", cfg.Content.Path),
		slog.Any("extensions", cfg.Content.Extensions),
		slog.String("assets_dir", cfg.Content.AssetsDir),
		slog.Bool("watch", cfg.Events.Watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize storage. The content directory is not created: a missing
	// directory is served as an empty catalog.
	store, err := storage.NewFS(cfg.Content.Path, cfg.Content.Extensions...)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	svc := blog.NewService(store, logger)
	renderer := markdown.NewRenderer(markdown.Options{
		UnsafeHTML: cfg.Markdown.UnsafeHTML,
		HardWraps:  cfg.Markdown.HardWraps,
	})

	// SSE broker.
	broker := sse.NewBroker(cfg.Events.CatalogThrottle)
	defer broker.Close()

	apiRouter := api.NewRouter(svc, renderer, api.Options{
		ActiveThreshold: cfg.Navigation.ActiveThreshold,
		WordsPerMinute:  cfg.Navigation.WordsPerMinute,
	}, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", readiness(store))

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// Post images.
	r.Get("/assets/{filename}", api.NewAssetHandler(cfg.Content.AssetsDir).ServeFile)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback. A content directory that cannot
	// be watched only disables notifications.
	if cfg.Events.Watch {
		g.Go(func() error {
			err := watcher.Watch(gCtx, store.Root(), cfg.Content.Extensions, logger, broker.PublishPost)
			if err != nil {
				logger.Warn("content watcher disabled",
					slog.String("path", store.Root()),
					slog.String("error", err.Error()))
			}
			return nil
		})
	}

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

		// Event streams never end on their own; close them so Shutdown can drain.
		broker.Close()

		timeout := cfg.App.HTTP.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Ends the watcher when shutdown came from a signal.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

const defaultShutdownTimeout = 10 * time.Second

var errShutdown = errors.New("shutdown")

// RunMCP serves the read-only MCP tools on stdin/stdout until the client
// disconnects. Logs go to stderr unless WithLogOutput says otherwise.
func RunMCP(_ context.Context, opts ...Option) error {
	app, logger, err := setup(opts, os.Stderr)
	if err != nil {
		return err
	}
	cfg := app.config

	store, err := storage.NewFS(cfg.Content.Path, cfg.Content.Extensions...)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	logger.Info("MCP server starting", slog.String("content_path", store.Root()))

	srv := mcpserver.New(blog.NewService(store, logger), cfg.Navigation.WordsPerMinute)
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// readiness reports whether the content directory can be listed. A missing
// directory is a valid empty catalog and counts as ready.
func readiness(store storage.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := store.List(); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Error("readiness check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
