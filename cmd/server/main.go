package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"scaffold/internal/bootstrap"
	"scaffold/internal/platform/config"
	"scaffold/internal/platform/httpserver"
	"scaffold/internal/platform/logger"
	httptransport "scaffold/internal/transport/http"
)

// main loads configuration, bootstraps the container, exposes the HTTP router
// and keeps the server lifecycle small. Business logic lives in the modules.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logger.New("error", "json").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	app, err := bootstrap.Run(bootstrap.Options{Config: cfg, Logger: log})
	if err != nil {
		log.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	router, err := httptransport.NewRouter(app.Container, app.Registry, log, app.Metrics)
	if err != nil {
		log.Error("route loading failed", "error", err)
		_ = app.Close()
		os.Exit(1)
	}

	srv := httpserver.New(cfg.Server.Addr, router)

	log.Info("starting scaffold", "addr", cfg.Server.Addr, "store", cfg.Store.Driver)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-quit:
	case err := <-errCh:
		log.Error("server error", "error", err)
		exitCode = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		exitCode = 1
	}
	if err := app.Close(); err != nil {
		log.Error("closing clients failed", "error", err)
		exitCode = 1
	}
	log.Info("server stopped")
	os.Exit(exitCode)
}
