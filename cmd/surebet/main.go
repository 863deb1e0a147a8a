package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/surebet/internal/allocator"
	"github.com/yourusername/surebet/internal/config"
	"github.com/yourusername/surebet/internal/database"
	"github.com/yourusername/surebet/internal/ledger"
	applogger "github.com/yourusername/surebet/internal/logger"
	"github.com/yourusername/surebet/internal/repository"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	owner      string
	jsonOutput bool
	logger     *logrus.Logger
	cfg        *config.Config
)

// app holds the wired dependencies shared by subcommands
type app struct {
	db        *database.DB
	repos     *repository.Repositories
	allocator *allocator.Allocator
	ledger    *ledger.Service
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

var rootCmd = &cobra.Command{
	Use:   "surebet",
	Short: "Arbitrage stake allocation engine",
	Long: `Split a budget across mutually exclusive outcomes priced by different
bookmakers so every outcome pays the same, and keep a ledger of the
allocations you placed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger = applogger.ForEnvironment(cfg.App.LogLevel, cfg.App.Environment)
		logger.SetOutput(os.Stderr)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("surebet %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

func main() {
	rootCmd.AddCommand(serveCmd, allocateCmd, fixCmd, historyCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// loadConfig reads the config file (falling back to defaults when it is
// missing), overlays AWS secrets when enabled and validates the result
func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets from AWS: %w", err)
		}
	}

	return config.Validate(cfg)
}

// setupApp wires the ledger store selected by configuration
func setupApp(ctx context.Context) (*app, error) {
	a := &app{
		allocator: allocator.New(allocator.WithMaxLegs(cfg.Allocator.MaxLegs)),
	}

	if cfg.UsesPostgres() {
		db, err := database.Initialize(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		repos, err := repository.NewRepositories(db, cfg.LedgerCacheTTL())
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize repositories: %w", err)
		}
		a.db = db
		a.repos = repos
	} else {
		logger.Warn("Ledger store is in-memory; entries are lost when the process exits")
		a.repos = repository.NewMemoryRepositories()
	}

	a.ledger = ledger.NewService(a.repos.Ledger, logger)
	return a, nil
}
