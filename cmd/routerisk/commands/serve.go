package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/route-risk-service/internal/adapter/api"
	"github.com/couchcryptid/route-risk-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/route-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/route-risk-service/internal/observability"
	"github.com/couchcryptid/route-risk-service/internal/publisher"
)

func serveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the route API, ops endpoints, and optional assessment publisher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), e)
		},
	}
}

func serve(parent context.Context, e *env) error {
	cfg, logger := e.cfg, e.logger
	metrics := observability.NewMetrics()

	repo, err := e.newRepository(metrics)
	if err != nil {
		return err
	}

	checkers := []httpadapter.ReadinessChecker{repo}

	var (
		pub    *publisher.Publisher
		writer *kafkaadapter.Writer
	)
	if cfg.PublisherEnabled() {
		writer = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		pub = publisher.New(repo, writer, cfg.PublishInterval, logger, metrics)
		checkers = append(checkers, pub)
	} else {
		logger.Info("assessment publisher disabled")
	}

	logger.Info("repository ready", "fallback_only", repo.FallbackOnly())

	// Publisher first: nothing is listening yet if scheduling fails.
	if pub != nil {
		if err := pub.Start(); err != nil {
			_ = writer.Close()
			return err
		}
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, logger, checkers...)
	app := api.NewApp(repo, logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start ops server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server error", "error", err)
			stop()
		}
	}()

	// Start route API.
	go func() {
		logger.Info("api server starting", "addr", cfg.APIAddr)
		if err := app.Listen(cfg.APIAddr); err != nil {
			logger.Error("api server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if pub != nil {
		pub.Stop()
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("api server shutdown error", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}
