// Package commands implements the routerisk command line.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/route-risk-service/internal/adapter/remote"
	"github.com/couchcryptid/route-risk-service/internal/config"
	"github.com/couchcryptid/route-risk-service/internal/domain"
	"github.com/couchcryptid/route-risk-service/internal/fallback"
	"github.com/couchcryptid/route-risk-service/internal/observability"
	"github.com/couchcryptid/route-risk-service/internal/repository"
)

// env is the configuration shared by every subcommand, filled in before any
// of them runs.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var (
		envFile      string
		fallbackOnly bool
	)
	e := &env{}

	root := &cobra.Command{
		Use:           "routerisk",
		Short:         "Weather-driven delivery route risk service",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if fallbackOnly {
				cfg.UseFallbackOnly = true
			}
			e.cfg = cfg
			e.logger = observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load (missing file is ignored)")
	root.PersistentFlags().BoolVar(&fallbackOnly, "fallback-only", false, "serve from the fallback catalog without calling the remote service")

	root.AddCommand(serveCmd(e), routesCmd(e), publishCmd(e))
	return root
}

// newRepository wires the remote client and fallback catalog per the loaded config.
func (e *env) newRepository(metrics *observability.Metrics) (*repository.Repository, error) {
	dataset, err := fallback.Load(e.cfg.FallbackDatasetPath)
	if err != nil {
		return nil, err
	}

	var src domain.RemoteSource
	if !e.cfg.UseFallbackOnly {
		src = remote.NewClient(remote.Options{
			BaseURL:        e.cfg.RemoteBaseURL,
			Timeout:        e.cfg.RequestTimeout,
			CircuitBreaker: e.cfg.CircuitBreakerEnabled,
		}, metrics, e.logger)
		e.logger.Info("remote route service configured",
			"base_url", e.cfg.RemoteBaseURL,
			"timeout", e.cfg.RequestTimeout,
			"circuit_breaker", e.cfg.CircuitBreakerEnabled,
		)
	} else {
		e.logger.Info("fallback-only mode: remote calls disabled", "routes", dataset.Len())
	}

	return repository.New(src, dataset, repository.Options{UseFallbackOnly: e.cfg.UseFallbackOnly}, metrics, e.logger), nil
}
