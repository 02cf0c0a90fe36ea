package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cimillas/festival/services/api/internal/app"
	"github.com/cimillas/festival/services/api/internal/clock"
	"github.com/cimillas/festival/services/api/internal/config"
	"github.com/cimillas/festival/services/api/internal/notify"
	"github.com/cimillas/festival/services/api/internal/storage/postgres"
	"github.com/cimillas/festival/services/api/internal/telemetry"
	transporthttp "github.com/cimillas/festival/services/api/internal/transport/http"
	"github.com/cimillas/festival/services/api/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Options{
		Endpoint:       cfg.OTLPEndpoint,
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    cfg.Environment,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("flush telemetry", "error", err)
		}
	}()
	if cfg.OTLPEndpoint != "" {
		logger.Info("otlp export enabled", "endpoint", cfg.OTLPEndpoint)
	}

	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		return err
	}

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("close publisher", "error", err)
		}
	}()

	handler, err := newHandler(pool, publisher, cfg, logger)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	srvErr := make(chan error, 1)
	go func() {
		logger.Info("api listening", "addr", server.Addr)
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown", "error", err)
	}
	logger.Info("server stopped")
	return nil
}

func newPublisher(cfg config.Config, logger *slog.Logger) (notify.Publisher, error) {
	if cfg.NATSURL == "" {
		logger.Info("change notifications disabled (NATS_URL not set)")
		return &notify.NoopPublisher{}, nil
	}
	pub, err := notify.NewNATSPublisher(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	logger.Info("change notifications enabled", "nats_url", cfg.NATSURL)
	return pub, nil
}

func newHandler(pool *pgxpool.Pool, publisher notify.Publisher, cfg config.Config, logger *slog.Logger) (http.Handler, error) {
	metrics, err := app.NewWriteMetrics()
	if err != nil {
		return nil, err
	}
	clk := clock.NewSystem()
	events := postgres.NewEventRepository(pool)
	catalog := postgres.NewCatalogRepository(pool)

	eventSvc := app.NewEventService(
		events,
		catalog,
		postgres.NewRelationStore(pool, postgres.EventArtists),
		postgres.NewRelationStore(pool, postgres.EventTags),
		clk,
		app.WithLogger(logger),
		app.WithMetrics(metrics),
	)
	artistTagSvc := app.NewArtistTagService(catalog, postgres.NewRelationStore(pool, postgres.ArtistTags))
	adminSvc := app.NewAdminService(postgres.NewAdminRepository(pool))

	return transporthttp.NewRouter(transporthttp.RouterConfig{
		Events:      eventSvc,
		Catalog:     adminSvc,
		ArtistTags:  artistTagSvc,
		Publisher:   publisher,
		DB:          pool,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	}), nil
}
