package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/bookkeeping_core/internal/core/services"
	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_core/internal/platform/config"
	"github.com/SscSPs/bookkeeping_core/internal/repositories/database/pgsql"
	"github.com/SscSPs/bookkeeping_core/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once the root pre-run has loaded config.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	debug  bool
	actor  string
}

// newRootCommand creates the root CLI command with all subcommands registered.
func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "books_backend",
		Short: "Multi-currency double-entry bookkeeping backend",
		Long: `books_backend posts transactions into a balanced home-currency ledger,
applies payments to invoices and bills, and keeps exchange rates.

Example:
  books_backend migrate up
  books_backend seed --file chart.yaml
  books_backend serve`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logLevel := slog.LevelInfo
			if a.debug {
				logLevel = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
			slog.SetDefault(a.logger)

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.actor, "actor", "", "user id recorded on writes (default: system)")

	rootCmd.AddCommand(
		newServeCommand(a),
		newMigrateCommand(a),
		newSeedCommand(a),
		newRecalculateCommand(a),
		newRatesCommand(a),
		newImportCommand(a),
	)

	return rootCmd
}

// openPool connects to Postgres with the configured limits.
func (a *app) openPool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := database.NewPgxPool(ctx, a.cfg.DatabaseURL, a.cfg.DBMaxConns, a.cfg.EnableDBCheck)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	return pool, nil
}

// withServices opens the pool, wires every service and runs fn.
func (a *app) withServices(ctx context.Context, fn func(*portssvc.ServiceContainer) error) error {
	pool, err := a.openPool(ctx)
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(pool)

	return fn(services.NewServiceContainer(a.cfg, pgsql.NewRepositoryProvider(pool)))
}
