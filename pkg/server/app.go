package server

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"DefiPrime/internal/domain/models"
	"DefiPrime/internal/domain/repository"
	"DefiPrime/internal/handler/api"
	"DefiPrime/internal/usecase"
	"DefiPrime/pkg/config"
	xhttp "DefiPrime/pkg/http"
	applogger "DefiPrime/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// App encapsulates the application lifecycle for both batch and serve modes.
type App struct {
	cfg         *config.Config
	l           *applogger.Logger
	pipeline    *usecase.CompositePipeline
	tvl         *usecase.TVLReport
	sink        repository.CompositeSink
	httpHandler xhttp.Handler
	registry    *prometheus.Registry
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	pipeline *usecase.CompositePipeline,
	tvl *usecase.TVLReport,
	sink repository.CompositeSink,
	handler *api.CompositeEchoHandler,
	registry *prometheus.Registry,
) *App {
	return &App{
		cfg:         cfg,
		l:           l,
		pipeline:    pipeline,
		tvl:         tvl,
		sink:        sink,
		httpHandler: handler,
		registry:    registry,
	}
}

// Run performs a single batch run and writes the composite to the sink.
// It stops early on SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(a.cfg.Entities) == 0 {
		return errNoIDs
	}
	res, err := a.pipeline.Export(ctx, a.cfg.Entities, a.sink)
	if res != nil {
		a.logDiagnostics(res.Diagnostics)
	}
	if err != nil {
		return err
	}
	a.l.Info("run complete",
		applogger.String("sink", a.cfg.Sink.Type),
		applogger.Int("rows", len(res.Rows)),
		applogger.Int("degenerate_days", res.Stats.DegenerateDays),
	)
	return nil
}

// TVL writes the locked value of protocols, trimmed to their common start,
// to the sink. An empty list falls back to tvl.protocols.
func (a *App) TVL(ctx context.Context, protocols []string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(protocols) == 0 {
		protocols = a.cfg.TVL.Protocols
	}
	if len(protocols) == 0 {
		return errNoIDs
	}
	res, err := a.tvl.Export(ctx, protocols, a.sink)
	if res != nil {
		a.logDiagnostics(res.Diagnostics)
	}
	if err != nil {
		return err
	}
	a.l.Info("tvl report complete",
		applogger.String("sink", a.cfg.Sink.Type),
		applogger.Strings("protocols", res.Entities),
		applogger.Int("rows", len(res.Table.Rows)),
	)
	return nil
}

var errNoIDs = errors.New("no ids to process")

func (a *App) logDiagnostics(diags []models.Diagnostic) {
	for _, d := range diags {
		a.l.Warn("entity excluded",
			applogger.String("entity", d.EntityID),
			applogger.String("reason", d.Reason),
			applogger.String("detail", d.Message),
		)
	}
}

// Serve starts the HTTP server and blocks until interrupted or the
// listener fails.
func (a *App) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(a.cfg.Metrics.Path, a.registry))
	}
	a.httpServer = xhttp.NewServer(a.httpHandler, a.l, opts...)

	errCh := a.httpServer.Start()
	a.l.Info("serving composite",
		applogger.Int("entities", len(a.cfg.Entities)),
		applogger.String("source", a.cfg.Source.Type),
	)

	var serveErr error
	select {
	case <-ctx.Done():
		a.l.Info("shutdown signal received")
	case err, ok := <-errCh:
		if ok && err != nil {
			serveErr = err
		}
	}

	return errors.Join(serveErr, a.shutdown())
}

// shutdown gracefully stops the HTTP server.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		return fmt.Errorf("http shutdown: %w", err)
	}
	a.l.Info("shutdown complete")
	return nil
}
