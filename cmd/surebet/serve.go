package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/surebet/internal/api"
	"github.com/yourusername/surebet/internal/health"
	"github.com/yourusername/surebet/internal/metrics"
	"github.com/yourusername/surebet/internal/repository"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	a, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	checkerCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Store:       cfg.Ledger.Store,
		Logger:      logger,
	}
	if a.db != nil {
		checkerCfg.DB = a.db
	}
	checker := health.NewChecker(checkerCfg)

	handler := api.NewHandler(a.allocator, a.ledger, logger)
	server := api.NewServer(cfg, handler, checker, logger)

	logger.WithFields(logrus.Fields{
		"port":        cfg.Server.Port,
		"environment": cfg.App.Environment,
		"store":       cfg.Ledger.Store,
		"max_legs":    a.allocator.MaxLegs(),
		"version":     Version,
	}).Info("Starting surebet API")

	if err := server.Run(ctx); err != nil {
		return err
	}

	if cached, ok := a.repos.Ledger.(*repository.CachedLedgerRepository); ok {
		hits, misses, ratio := cached.Stats()
		logger.WithFields(logrus.Fields{
			"hits":      hits,
			"misses":    misses,
			"hit_ratio": ratio,
		}).Info("Ledger cache statistics")
	}

	logger.Info("Surebet API stopped")
	return nil
}
