package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"StorkPull/internal/usecase"
	"StorkPull/pkg/config"
	xhttp "StorkPull/pkg/http"
	applogger "StorkPull/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	fleet      *usecase.Fleet
	httpServer *xhttp.Server
	l          *applogger.Logger
}

// New creates a new App instance with all dependencies. httpServer may be
// nil when the status server is disabled.
func New(cfg *config.Config, fleet *usecase.Fleet, httpServer *xhttp.Server, l *applogger.Logger) *App {
	return &App{
		cfg:        cfg,
		fleet:      fleet,
		httpServer: httpServer,
		l:          l,
	}
}

// Fleet exposes the supervised accounts.
func (a *App) Fleet() *usecase.Fleet { return a.fleet }

// Run starts every account and blocks until ctx is done or an interrupt
// arrives, then shuts down.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.fleet.Len() == 0 {
		a.l.Warn("no account with credentials configured")
	}

	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			a.l.Error("http server start error", applogger.Error(err))
			return err
		}
	}

	// supervisors inherit a context that only shutdown cancels
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	started := make(chan struct{})
	go func() {
		defer close(started)
		a.fleet.StartAll(runCtx)
	}()
	a.l.Info("accounts starting",
		applogger.Int("accounts", a.fleet.Len()),
		applogger.Duration("interval_ms", a.cfg.Interval()),
		applogger.Int("max_workers", a.cfg.Threads.MaxWorkers),
	)

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	cancel()
	<-started
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.l.Info("shutting down...")

	a.fleet.StopAll()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(context.Background()); err != nil {
			a.l.Error("http shutdown error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
