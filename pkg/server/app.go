package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	drepo "SignalRelay/internal/domain/repository"
	"SignalRelay/internal/usecase"
	"SignalRelay/pkg/config"
	xhttp "SignalRelay/pkg/http"
	xlogger "SignalRelay/pkg/logger"
)

// App encapsulates the entire application lifecycle: the supervisor
// worker that runs the relay and the HTTP worker that serves health
// reads. The two share only the supervisor's read-only snapshot.
type App struct {
	cfg        *config.Config
	logger     *xlogger.Logger
	supervisor *usecase.Supervisor
	handler    xhttp.Handler
	publisher  drepo.Publisher
	offsets    drepo.OffsetStore
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *xlogger.Logger,
	supervisor *usecase.Supervisor,
	handler xhttp.Handler,
	publisher drepo.Publisher,
	offsets drepo.OffsetStore,
) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		supervisor: supervisor,
		handler:    handler,
		publisher:  publisher,
		offsets:    offsets,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := a.cfg.Metrics.Path
	if !a.cfg.Metrics.Enabled {
		metricsPath = ""
	}
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		_ = a.supervisor.Run(ctx)
	}()
	a.logger.Info("relay supervisor started",
		xlogger.String("source_chat", a.cfg.Telegram.SourceChatID),
		xlogger.String("target_chat", a.cfg.Telegram.TargetChatID),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", xlogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown(supDone)
}

// shutdown gracefully stops all workers and closes clients.
func (a *App) shutdown(supDone <-chan struct{}) error {
	// the supervisor observes cancellation within one backoff interval
	select {
	case <-supDone:
	case <-time.After(a.cfg.Telegram.RestartBackoff + 5*time.Second):
		a.logger.Warn("supervisor did not stop in time")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", xlogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("publisher close error", xlogger.Error(err))
		}
	}
	if a.offsets != nil {
		if err := a.offsets.Close(); err != nil {
			a.logger.Warn("offset store close error", xlogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
